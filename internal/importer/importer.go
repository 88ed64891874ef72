package importer

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RowHandler inserts one CSV record inside the batch transaction
type RowHandler func(tx *gorm.DB, record []string) error

// Importer loads a CSV into Postgres in batches, persisting the last
// completed row index to a checkpoint file so an aborted run resumes where
// it stopped instead of duplicating rows.
type Importer struct {
	DB             *gorm.DB
	BatchSize      int    // Rows per transaction (default 100)
	CheckpointPath string // Defaults to <csv path>.checkpoint
}

// Result summarizes one import run
type Result struct {
	Imported  int // Rows inserted
	Skipped   int // Bad rows logged and skipped
	Resumed   int // Row index the run resumed from
	Exhausted bool // True when the file was fully consumed
}

// Run processes the CSV with the handler. maxBatches limits how many batches
// this invocation processes (0 = all), mirroring the old per-batch scripts.
func (im *Importer) Run(csvPath string, handler RowHandler, maxBatches int) (*Result, error) {
	batchSize := im.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	checkpointPath := im.CheckpointPath
	if checkpointPath == "" {
		checkpointPath = csvPath + ".checkpoint"
	}

	start := readCheckpoint(checkpointPath)
	res := &Result{Resumed: start}

	f, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // Rows are validated per handler, not globally

	// Skip the header row
	if _, err := reader.Read(); err != nil {
		return nil, err
	}

	type batchRow struct {
		index  int
		record []string
	}

	rowIndex := 0
	batches := 0
	batch := make([]batchRow, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := im.DB.Transaction(func(tx *gorm.DB) error {
			for _, row := range batch {
				if err := handler(tx, row.record); err != nil {
					// Bad rows never abort the run
					logrus.WithField("row", row.index).Warnf("skipping row: %v", err)
					res.Skipped++
					continue
				}
				res.Imported++
			}
			return nil
		})
		if err != nil {
			return err
		}
		batch = batch[:0]
		batches++
		return writeCheckpoint(checkpointPath, rowIndex)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			res.Exhausted = true
			break
		}
		if err != nil {
			// Malformed CSV line: count, log, move on
			logrus.WithField("row", rowIndex).Warnf("unreadable row: %v", err)
			res.Skipped++
			continue
		}
		rowIndex++
		if rowIndex <= start {
			continue // Already imported in a previous run
		}
		batch = append(batch, batchRow{index: rowIndex, record: record})
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return res, err
			}
			if maxBatches > 0 && batches >= maxBatches {
				return res, nil
			}
		}
	}
	if err := flush(); err != nil {
		return res, err
	}
	return res, nil
}

// readCheckpoint returns the last completed row index, 0 when absent
func readCheckpoint(path string) int {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// writeCheckpoint persists the last completed row index
func writeCheckpoint(path string, rowIndex int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(rowIndex)+"\n"), 0o644)
}
