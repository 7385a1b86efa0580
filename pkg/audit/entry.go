// Package audit реализует журнал операций загрузчика справочника:
// каждая фаза пайплайна и каждый запрос близости оставляют запись
// с длительностью, количеством строк и ошибкой.
package audit

import (
	"encoding/json"
	"fmt"
	"time"
)

// Operation - тип операции
type Operation string

const (
	OpConnect     Operation = "connect"
	OpResetSchema Operation = "reset_schema"
	OpBulkLoad    Operation = "bulk_load"
	OpEnrich      Operation = "enrich"
	OpBuildIndex  Operation = "build_indexes"
	OpVacuum      Operation = "vacuum"
	OpQuery       Operation = "query"
)

// Status - статус выполнения операции
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusPartial Status = "partial"
)

// Entry - запись в audit логе
type Entry struct {
	// ID - уникальный идентификатор записи
	ID string `json:"id"`

	// Timestamp - время операции
	Timestamp time.Time `json:"timestamp"`

	// Operation - тип операции
	Operation Operation `json:"operation"`

	// Status - статус выполнения
	Status Status `json:"status"`

	// Resource - ресурс: таблица или файл данных
	Resource string `json:"resource,omitempty"`

	// RowsAffected - количество затронутых строк
	RowsAffected int64 `json:"rows_affected,omitempty"`

	// Duration - длительность операции
	Duration time.Duration `json:"duration,omitempty"`

	// ErrorMessage - сообщение об ошибке
	ErrorMessage string `json:"error_message,omitempty"`

	// Metadata - дополнительные метаданные (диалект, стратегия, checksum)
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewEntry создает новую audit запись
func NewEntry(operation Operation, status Status) *Entry {
	return &Entry{
		ID:        generateID(),
		Timestamp: time.Now(),
		Operation: operation,
		Status:    status,
	}
}

// WithResource устанавливает ресурс
func (e *Entry) WithResource(resource string) *Entry {
	e.Resource = resource
	return e
}

// WithRowsAffected устанавливает количество строк
func (e *Entry) WithRowsAffected(count int64) *Entry {
	e.RowsAffected = count
	return e
}

// WithDuration устанавливает длительность
func (e *Entry) WithDuration(duration time.Duration) *Entry {
	e.Duration = duration
	return e
}

// WithError устанавливает ошибку и переводит статус в failure
func (e *Entry) WithError(err error) *Entry {
	if err != nil {
		e.ErrorMessage = err.Error()
		e.Status = StatusFailure
	}
	return e
}

// WithMetadata добавляет метаданные
func (e *Entry) WithMetadata(key string, value any) *Entry {
	if e.Metadata == nil {
		e.Metadata = make(map[string]any)
	}
	e.Metadata[key] = value
	return e
}

// ToJSON преобразует запись в JSON
func (e *Entry) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// String - строковое представление для текстового лога
func (e *Entry) String() string {
	return fmt.Sprintf("[%s] %s %s (resource=%s, rows=%d, duration=%v)",
		e.Timestamp.Format(time.RFC3339),
		e.Operation,
		e.Status,
		e.Resource,
		e.RowsAffected,
		e.Duration,
	)
}

// generateID - генерация уникального ID
func generateID() string {
	return fmt.Sprintf("audit-%d", time.Now().UnixNano())
}
