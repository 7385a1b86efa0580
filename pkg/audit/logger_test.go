package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestEntryBuilder tests the fluent entry construction
func TestEntryBuilder(t *testing.T) {
	entry := NewEntry(OpBulkLoad, StatusSuccess).
		WithResource("geoname").
		WithRowsAffected(12500000).
		WithDuration(90 * time.Second).
		WithMetadata("dialect", "postgres")

	if entry.Operation != OpBulkLoad {
		t.Errorf("operation = %s, want %s", entry.Operation, OpBulkLoad)
	}
	if entry.Resource != "geoname" {
		t.Errorf("resource = %s", entry.Resource)
	}
	if entry.RowsAffected != 12500000 {
		t.Errorf("rows = %d", entry.RowsAffected)
	}
	if entry.Metadata["dialect"] != "postgres" {
		t.Errorf("metadata = %v", entry.Metadata)
	}
	if entry.ID == "" || entry.Timestamp.IsZero() {
		t.Error("ID and timestamp must be auto-populated")
	}
}

// TestEntryWithErrorFlipsStatus tests that WithError forces failure status
func TestEntryWithErrorFlipsStatus(t *testing.T) {
	entry := NewEntry(OpEnrich, StatusSuccess).WithError(errors.New("boom"))
	if entry.Status != StatusFailure {
		t.Errorf("status = %s, want failure", entry.Status)
	}
	if entry.ErrorMessage != "boom" {
		t.Errorf("error message = %q", entry.ErrorMessage)
	}

	// nil error must not touch the entry
	ok := NewEntry(OpEnrich, StatusSuccess).WithError(nil)
	if ok.Status != StatusSuccess || ok.ErrorMessage != "" {
		t.Error("nil error must leave the entry unchanged")
	}
}

// TestFileAppender tests JSON-lines output to a file
func TestFileAppender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "load.log")
	fa, err := NewFileAppender(path)
	if err != nil {
		t.Fatalf("NewFileAppender failed: %v", err)
	}

	logger := NewLogger(fa)
	ctx := context.Background()

	logger.LogSuccess(ctx, OpResetSchema)
	logger.Log(ctx, NewEntry(OpBulkLoad, StatusSuccess).WithResource("postalcodes").WithRowsAffected(42))
	logger.LogFailure(ctx, OpBuildIndex, errors.New("disk full"))

	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open log: %v", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("invalid JSON line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, e)
	}

	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[1].Resource != "postalcodes" || entries[1].RowsAffected != 42 {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
	if entries[2].Status != StatusFailure || entries[2].ErrorMessage != "disk full" {
		t.Errorf("unexpected failure entry: %+v", entries[2])
	}
}

// TestNullLogger tests that the null logger swallows everything quietly
func TestNullLogger(t *testing.T) {
	logger := NewNullLogger()
	ctx := context.Background()

	if err := logger.Log(ctx, NewEntry(OpQuery, StatusSuccess)); err != nil {
		t.Errorf("Log failed: %v", err)
	}
	if e := logger.LogFailure(ctx, OpConnect, errors.New("x")); e == nil {
		t.Error("LogFailure must still return an entry")
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
