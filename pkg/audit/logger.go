package audit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Logger - интерфейс журнала операций
type Logger interface {
	Log(ctx context.Context, entry *Entry) error
	LogSuccess(ctx context.Context, operation Operation) *Entry
	LogFailure(ctx context.Context, operation Operation, err error) *Entry
	Close() error
}

// AuditLogger пишет записи синхронно во все appenders.
// Загрузчик — пакетный процесс: записей единицы на фазу,
// асинхронная буферизация здесь не нужна.
type AuditLogger struct {
	mu        sync.RWMutex
	appenders []Appender
}

// NewLogger создает audit logger с набором appenders
func NewLogger(appenders ...Appender) *AuditLogger {
	return &AuditLogger{appenders: appenders}
}

// Log записывает entry во все appenders
func (l *AuditLogger) Log(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("entry is nil")
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.ID == "" {
		entry.ID = generateID()
	}

	l.mu.RLock()
	appenders := l.appenders
	l.mu.RUnlock()

	var firstError error
	for _, appender := range appenders {
		if err := appender.Append(ctx, entry); err != nil && firstError == nil {
			firstError = fmt.Errorf("appender failed: %w", err)
		}
	}
	return firstError
}

// LogSuccess записывает успешную операцию
func (l *AuditLogger) LogSuccess(ctx context.Context, operation Operation) *Entry {
	entry := NewEntry(operation, StatusSuccess)
	l.Log(ctx, entry)
	return entry
}

// LogFailure записывает неудачную операцию
func (l *AuditLogger) LogFailure(ctx context.Context, operation Operation, err error) *Entry {
	entry := NewEntry(operation, StatusFailure).WithError(err)
	l.Log(ctx, entry)
	return entry
}

// AddAppender добавляет appender
func (l *AuditLogger) AddAppender(appender Appender) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.appenders = append(l.appenders, appender)
}

// Close закрывает все appenders
func (l *AuditLogger) Close() error {
	l.mu.RLock()
	appenders := l.appenders
	l.mu.RUnlock()

	var firstError error
	for _, appender := range appenders {
		if flusher, ok := appender.(interface{ Flush() error }); ok {
			flusher.Flush()
		}
		if err := appender.Close(); err != nil && firstError == nil {
			firstError = err
		}
	}
	return firstError
}

// NullLogger - пустой logger (для тестов и отключенного аудита)
type NullLogger struct{}

// NewNullLogger создает null logger
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

// Log - ничего не делает
func (nl *NullLogger) Log(ctx context.Context, entry *Entry) error {
	return nil
}

// LogSuccess - ничего не делает
func (nl *NullLogger) LogSuccess(ctx context.Context, operation Operation) *Entry {
	return NewEntry(operation, StatusSuccess)
}

// LogFailure - ничего не делает
func (nl *NullLogger) LogFailure(ctx context.Context, operation Operation, err error) *Entry {
	return NewEntry(operation, StatusFailure)
}

// Close - ничего не делает
func (nl *NullLogger) Close() error {
	return nil
}
