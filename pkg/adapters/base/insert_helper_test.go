package base

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/rodgg/geonames-db/pkg/adapters"
)

// fakeAdapter records chunked INSERT traffic without a real database
type fakeAdapter struct {
	dialect       string
	maxBindParams int
	txs           []*fakeTx
}

type fakeTx struct {
	queries    []string
	argCounts  []int
	committed  bool
	rolledBack bool
}

func (f *fakeAdapter) Connect(ctx context.Context, cfg adapters.Config) error { return nil }
func (f *fakeAdapter) Close(ctx context.Context) error { return nil }
func (f *fakeAdapter) Ping(ctx context.Context) error { return nil }
func (f *fakeAdapter) Dialect() string { return f.dialect }
func (f *fakeAdapter) Capabilities() adapters.Capabilities {
	return adapters.Capabilities{MaxBindParams: f.maxBindParams}
}
func (f *fakeAdapter) DatabaseVersion(ctx context.Context) (string, error) { return "fake", nil }
func (f *fakeAdapter) Exec(ctx context.Context, sql string, args ...any) error {
	return nil
}
func (f *fakeAdapter) Query(ctx context.Context, sql string, args ...any) (adapters.Rows, error) {
	return nil, nil
}
func (f *fakeAdapter) QueryCount(ctx context.Context, sql string, args ...any) (int64, error) {
	return 0, nil
}
func (f *fakeAdapter) BeginTx(ctx context.Context) (adapters.Tx, error) {
	tx := &fakeTx{}
	f.txs = append(f.txs, tx)
	return tx, nil
}
func (f *fakeAdapter) TableExists(ctx context.Context, tableName string) (bool, error) {
	return false, nil
}
func (f *fakeAdapter) BulkCopy(ctx context.Context, table string, columns []string, src adapters.RowSource) (int64, error) {
	return 0, adapters.ErrBulkCopyUnsupported
}
func (f *fakeAdapter) HasExtension(ctx context.Context, name string) (bool, error) {
	return false, nil
}
func (f *fakeAdapter) HasType(ctx context.Context, name string) (bool, error) { return false, nil }
func (f *fakeAdapter) CreateExtension(ctx context.Context, name string) error { return nil }

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) error {
	t.queries = append(t.queries, sql)
	t.argCounts = append(t.argCounts, len(args))
	return nil
}
func (t *fakeTx) Commit(ctx context.Context) error { t.committed = true; return nil }
func (t *fakeTx) Rollback(ctx context.Context) error { t.rolledBack = true; return nil }

var _ adapters.Adapter = (*fakeAdapter)(nil)

// sliceSource feeds predefined rows as a RowSource
type sliceSource struct {
	rows [][]any
	pos  int
}

func (s *sliceSource) Next() ([]any, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.pos]
	s.pos++
	return row, nil
}

func makeRows(n int) [][]any {
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = []any{int64(i), "name", 1.5}
	}
	return rows
}

// TestChunkedInserterRowCount tests that every source row is inserted exactly once
func TestChunkedInserterRowCount(t *testing.T) {
	adapter := &fakeAdapter{dialect: "sqlite", maxBindParams: 999}
	ins := NewChunkedInserter(adapter, 10)

	total, err := ins.Load(context.Background(), "geoname", []string{"geonameid", "name", "latitude"},
		&sliceSource{rows: makeRows(25)})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if total != 25 {
		t.Errorf("total = %d, want 25", total)
	}

	// 25 rows / chunk 10 = 3 transactions, all committed
	if len(adapter.txs) != 3 {
		t.Fatalf("transactions = %d, want 3", len(adapter.txs))
	}
	var args int
	for _, tx := range adapter.txs {
		if !tx.committed {
			t.Errorf("transaction not committed")
		}
		for _, n := range tx.argCounts {
			args += n
		}
	}
	if args != 25*3 {
		t.Errorf("bound args = %d, want %d", args, 25*3)
	}
}

// TestChunkedInserterBindParamLimit tests sub-batching under a tight
// bind-parameter limit
func TestChunkedInserterBindParamLimit(t *testing.T) {
	// 7 params per statement max, 3 columns -> at most 2 rows per INSERT
	adapter := &fakeAdapter{dialect: "sqlite", maxBindParams: 7}
	ins := NewChunkedInserter(adapter, 10)

	total, err := ins.Load(context.Background(), "geoname", []string{"a", "b", "c"},
		&sliceSource{rows: makeRows(5)})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}

	for _, tx := range adapter.txs {
		for _, n := range tx.argCounts {
			if n > 7 {
				t.Errorf("statement bound %d params, limit is 7", n)
			}
		}
	}
}

// TestChunkedInserterPlaceholderStyle tests dialect-specific placeholder rewriting
func TestChunkedInserterPlaceholderStyle(t *testing.T) {
	tests := []struct {
		dialect string
		want    string
		absent  string
	}{
		{"postgres", "$1", "?"},
		{"mssql", "@p1", "?"},
		{"sqlite", "?", "$1"},
		{"mysql", "?", "$1"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			adapter := &fakeAdapter{dialect: tt.dialect, maxBindParams: 100}
			ins := NewChunkedInserter(adapter, 10)

			_, err := ins.Load(context.Background(), "geoname", []string{"a", "b", "c"},
				&sliceSource{rows: makeRows(1)})
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}

			query := adapter.txs[0].queries[0]
			if !strings.Contains(query, tt.want) {
				t.Errorf("query %q must contain %q", query, tt.want)
			}
			if strings.Contains(query, tt.absent) {
				t.Errorf("query %q must not contain %q", query, tt.absent)
			}
		})
	}
}

// TestChunkedInserterEmptySource tests that an empty source inserts nothing
func TestChunkedInserterEmptySource(t *testing.T) {
	adapter := &fakeAdapter{dialect: "sqlite", maxBindParams: 999}
	ins := NewChunkedInserter(adapter, 10)

	total, err := ins.Load(context.Background(), "geoname", []string{"a"}, &sliceSource{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if total != 0 {
		t.Errorf("total = %d, want 0", total)
	}
	if len(adapter.txs) != 0 {
		t.Errorf("transactions = %d, want 0", len(adapter.txs))
	}
}
