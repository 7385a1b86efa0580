package audit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Appender - приемник audit записей
type Appender interface {
	Append(ctx context.Context, entry *Entry) error
	Close() error
}

// FileAppender пишет записи в файл, по одной JSON-строке на запись
type FileAppender struct {
	mu       sync.Mutex
	file     *os.File
	filePath string
}

// NewFileAppender открывает (или создает) файл журнала
func NewFileAppender(path string) (*FileAppender, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit file: %w", err)
	}

	return &FileAppender{file: file, filePath: path}, nil
}

// Append записывает entry в файл
func (fa *FileAppender) Append(ctx context.Context, entry *Entry) error {
	data, err := entry.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	data = append(data, '\n')

	fa.mu.Lock()
	defer fa.mu.Unlock()

	if _, err := fa.file.Write(data); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}
	return nil
}

// Flush сбрасывает буфер файловой системы
func (fa *FileAppender) Flush() error {
	fa.mu.Lock()
	defer fa.mu.Unlock()

	if fa.file != nil {
		return fa.file.Sync()
	}
	return nil
}

// Close закрывает файл
func (fa *FileAppender) Close() error {
	fa.mu.Lock()
	defer fa.mu.Unlock()

	if fa.file != nil {
		err := fa.file.Close()
		fa.file = nil
		return err
	}
	return nil
}

// FilePath возвращает путь к файлу журнала
func (fa *FileAppender) FilePath() string {
	return fa.filePath
}

// ConsoleAppender пишет записи в stdout (ошибки — в stderr)
type ConsoleAppender struct{}

// NewConsoleAppender создает console appender
func NewConsoleAppender() *ConsoleAppender {
	return &ConsoleAppender{}
}

// Append печатает entry
func (ca *ConsoleAppender) Append(ctx context.Context, entry *Entry) error {
	if entry.Status == StatusFailure {
		fmt.Fprintln(os.Stderr, entry.String())
	} else {
		fmt.Println(entry.String())
	}
	return nil
}

// Close - noop
func (ca *ConsoleAppender) Close() error {
	return nil
}

// NullAppender - пустой appender (для тестов)
type NullAppender struct{}

// NewNullAppender создает null appender
func NewNullAppender() *NullAppender {
	return &NullAppender{}
}

// Append - ничего не делает
func (na *NullAppender) Append(ctx context.Context, entry *Entry) error {
	return nil
}

// Close - ничего не делает
func (na *NullAppender) Close() error {
	return nil
}
