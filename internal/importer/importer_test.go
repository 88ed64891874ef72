package importer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv.checkpoint")
	if got := readCheckpoint(path); got != 0 {
		t.Fatalf("expected 0 for missing checkpoint, got %d", got)
	}
	if err := writeCheckpoint(path, 250); err != nil {
		t.Fatalf("writeCheckpoint failed: %v", err)
	}
	if got := readCheckpoint(path); got != 250 {
		t.Fatalf("expected 250, got %d", got)
	}
}

func TestReadCheckpointRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.checkpoint")
	if err := os.WriteFile(path, []byte("not a number\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := readCheckpoint(path); got != 0 {
		t.Fatalf("expected 0 for garbage checkpoint, got %d", got)
	}
	if err := os.WriteFile(path, []byte("-5"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := readCheckpoint(path); got != 0 {
		t.Fatalf("expected 0 for negative checkpoint, got %d", got)
	}
}

func TestRunLogsFailingRowIndex(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:importer1?mode=memory&cache=shared"),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	csvPath := filepath.Join(t.TempDir(), "rows.csv")
	data := "name,city\nfirst,pune\nbad,delhi\nthird,goa\n"
	if err := os.WriteFile(csvPath, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	hook := logtest.NewGlobal()
	defer hook.Reset()

	im := &Importer{DB: db, BatchSize: 10}
	handler := func(tx *gorm.DB, record []string) error {
		if record[0] == "bad" {
			return errors.New("rejected")
		}
		return nil
	}
	res, err := im.Run(csvPath, handler, 0)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Imported != 2 || res.Skipped != 1 || !res.Exhausted {
		t.Fatalf("unexpected result: %+v", res)
	}

	// The skip log must carry the failing row's own index, not the batch tail
	found := false
	for _, entry := range hook.AllEntries() {
		if row, ok := entry.Data["row"]; ok && row == 2 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a skip log for row 2, entries: %+v", hook.AllEntries())
	}
}

func TestFieldHandlesShortRecords(t *testing.T) {
	record := []string{"Derma Care", " pune "}
	if got := field(record, 0); got != "Derma Care" {
		t.Fatalf("unexpected field: %q", got)
	}
	if got := field(record, 1); got != "pune" {
		t.Fatalf("expected trimmed field, got %q", got)
	}
	if got := field(record, 5); got != "" {
		t.Fatalf("expected empty for out-of-range index, got %q", got)
	}
}
