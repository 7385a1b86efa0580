package base

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rodgg/geonames-db/pkg/adapters"
	"github.com/rodgg/geonames-db/pkg/core/schema"
)

// DefaultChunkSize - размер чанка по умолчанию для chunked INSERT
const DefaultChunkSize = 10000

// ChunkedInserter - переносимый путь массовой загрузки для диалектов
// без нативного протокола COPY: multi-row INSERT чанками, каждый чанк
// в собственной транзакции.
//
// Память ограничена одним чанком независимо от размера входного файла.
// Каждый INSERT дробится так, чтобы не превысить лимит bind-параметров
// диалекта (Capabilities.MaxBindParams).
type ChunkedInserter struct {
	adapter   adapters.Adapter
	chunkSize int
}

// NewChunkedInserter создает inserter для адаптера.
// chunkSize <= 0 означает DefaultChunkSize.
func NewChunkedInserter(adapter adapters.Adapter, chunkSize int) *ChunkedInserter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &ChunkedInserter{adapter: adapter, chunkSize: chunkSize}
}

// Load читает строки из src и вставляет их в таблицу чанками.
// Возвращает количество вставленных строк.
func (c *ChunkedInserter) Load(ctx context.Context, table string, columns []string, src adapters.RowSource) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("no columns to load into %s", table)
	}

	rowsPerStmt := c.rowsPerStatement(len(columns))

	var total int64
	chunk := make([][]any, 0, c.chunkSize)

	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		if err := c.insertChunk(ctx, table, columns, chunk, rowsPerStmt); err != nil {
			return err
		}
		total += int64(len(chunk))
		chunk = chunk[:0]
		return nil
	}

	for {
		row, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, fmt.Errorf("failed to read source row: %w", err)
		}
		if len(row) != len(columns) {
			return total, fmt.Errorf("row has %d values, expected %d", len(row), len(columns))
		}

		chunk = append(chunk, row)
		if len(chunk) >= c.chunkSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}

	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}

// rowsPerStatement возвращает максимум строк в одном INSERT
// с учетом лимита bind-параметров диалекта
func (c *ChunkedInserter) rowsPerStatement(numCols int) int {
	maxParams := c.adapter.Capabilities().MaxBindParams
	if maxParams <= 0 {
		maxParams = 999
	}
	n := maxParams / numCols
	if n < 1 {
		n = 1
	}
	if n > c.chunkSize {
		n = c.chunkSize
	}
	return n
}

// insertChunk вставляет один чанк в рамках одной транзакции
func (c *ChunkedInserter) insertChunk(ctx context.Context, table string, columns []string, chunk [][]any, rowsPerStmt int) error {
	tx, err := c.adapter.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for off := 0; off < len(chunk); off += rowsPerStmt {
		end := off + rowsPerStmt
		if end > len(chunk) {
			end = len(chunk)
		}
		batch := chunk[off:end]

		query := c.buildInsert(table, columns, len(batch))
		args := make([]any, 0, len(batch)*len(columns))
		for _, row := range batch {
			args = append(args, row...)
		}

		if err := tx.Exec(ctx, query, args...); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("failed to insert batch into %s: %w", table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit chunk: %w", err)
	}
	return nil
}

// buildInsert строит multi-row INSERT с плейсхолдерами диалекта
func (c *ChunkedInserter) buildInsert(table string, columns []string, numRows int) string {
	b := schema.NewBuilder(c.adapter.Dialect())

	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = b.QuoteIdentifier(col)
	}

	row := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	rows := make([]string, numRows)
	for i := range rows {
		rows[i] = row
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s",
		b.QuoteIdentifier(table), strings.Join(quoted, ", "), strings.Join(rows, ", "),
	)
	return adapters.Rebind(c.adapter.Dialect(), query)
}
