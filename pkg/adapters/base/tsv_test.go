package base

import (
	"io"
	"strings"
	"testing"

	"github.com/rodgg/geonames-db/pkg/core/schema"
)

func testColumns() []schema.ColumnDef {
	return []schema.ColumnDef{
		{Name: "geonameid", Type: schema.TypeInteger},
		{Name: "name", Type: schema.TypeText},
		{Name: "latitude", Type: schema.TypeReal},
	}
}

// TestTSVReaderBasic tests parsing of plain data rows
func TestTSVReaderBasic(t *testing.T) {
	input := "1\tCity One\t10.5\n2\tCity Two\t-3.25\n"
	r := NewTSVReader(strings.NewReader(input), testColumns())

	row, err := r.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if row[0] != int64(1) || row[1] != "City One" || row[2] != 10.5 {
		t.Errorf("unexpected row: %v", row)
	}

	row, err = r.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if row[0] != int64(2) || row[2] != -3.25 {
		t.Errorf("unexpected row: %v", row)
	}

	if _, err := r.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
	if r.RowsRead() != 2 {
		t.Errorf("RowsRead = %d, want 2", r.RowsRead())
	}
}

// TestTSVReaderCommentsAndBlankLines tests that comment and empty lines are skipped
func TestTSVReaderCommentsAndBlankLines(t *testing.T) {
	input := "# header comment\n\n1\tPlace\t0.0\n# trailing comment\n"
	r := NewTSVReader(strings.NewReader(input), testColumns())

	row, err := r.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if row[0] != int64(1) {
		t.Errorf("unexpected row: %v", row)
	}

	if _, err := r.Next(); err != io.EOF {
		t.Errorf("expected io.EOF after comments, got %v", err)
	}
}

// TestTSVReaderCommentOnlyWithTabs tests that a line with tabs starting with '#'
// is treated as data, not as a comment (comments are single-field lines)
func TestTSVReaderCommentOnlyWithTabs(t *testing.T) {
	input := "#notacomment\tname\t1.0\n"
	r := NewTSVReader(strings.NewReader(input), testColumns())

	row, err := r.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if row[1] != "name" {
		t.Errorf("expected data row, got: %v", row)
	}
}

// TestTSVReaderShortRowPadding tests that short rows are right-padded with NULL
func TestTSVReaderShortRowPadding(t *testing.T) {
	input := "5\tOnly Name\n"
	r := NewTSVReader(strings.NewReader(input), testColumns())

	row, err := r.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if len(row) != 3 {
		t.Fatalf("row length = %d, want 3", len(row))
	}
	if row[2] != nil {
		t.Errorf("missing field must be NULL, got %v", row[2])
	}
}

// TestTSVReaderEmptyFieldIsNull tests that an empty field becomes NULL, not ""
func TestTSVReaderEmptyFieldIsNull(t *testing.T) {
	input := "7\t\t1.5\n"
	r := NewTSVReader(strings.NewReader(input), testColumns())

	row, err := r.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if row[1] != nil {
		t.Errorf("empty field must be NULL, got %q", row[1])
	}
}

// TestTSVReaderNoTrailingNewline tests that the last line without '\n' is not lost
func TestTSVReaderNoTrailingNewline(t *testing.T) {
	input := "1\tA\t0.0\n2\tB\t1.0"
	r := NewTSVReader(strings.NewReader(input), testColumns())

	var count int
	for {
		_, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		count++
	}
	if count != 2 {
		t.Errorf("rows = %d, want 2", count)
	}
}

// TestTSVReaderInvalidUTF8 tests lossy decoding of broken byte sequences
func TestTSVReaderInvalidUTF8(t *testing.T) {
	input := "1\tCaf\xff\t0.0\n"
	r := NewTSVReader(strings.NewReader(input), testColumns())

	row, err := r.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	name, ok := row[1].(string)
	if !ok {
		t.Fatalf("name is not a string: %v", row[1])
	}
	if !strings.Contains(name, "�") {
		t.Errorf("expected replacement rune in %q", name)
	}
}

// TestTSVReaderBadNumericField tests that an unparseable field becomes NULL
// without failing the whole load
func TestTSVReaderBadNumericField(t *testing.T) {
	input := "abc\tPlace\tnot-a-number\n"
	r := NewTSVReader(strings.NewReader(input), testColumns())

	row, err := r.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if row[0] != nil || row[2] != nil {
		t.Errorf("bad numeric fields must be NULL, got %v", row)
	}
}
