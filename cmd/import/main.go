package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"antidote/internal/config"
	"antidote/internal/importer"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// usage: import <entity> <csv-path> [max-batches]
//
// Loads a CSV into Postgres in checkpointed batches. With a max-batches
// argument only that many batches run, so large files can be imported in
// chunks across invocations; reruns resume from the checkpoint file next to
// the CSV.
func main() {
	if len(os.Args) < 3 {
		entities := make([]string, 0, len(importer.Handlers))
		for name := range importer.Handlers {
			entities = append(entities, name)
		}
		sort.Strings(entities)
		fmt.Fprintf(os.Stderr, "usage: %s <entity> <csv-path> [max-batches]\nentities: %v\n", os.Args[0], entities)
		os.Exit(2)
	}
	entity := os.Args[1]
	csvPath := os.Args[2]
	maxBatches := 0
	if len(os.Args) > 3 {
		n, err := strconv.Atoi(os.Args[3])
		if err != nil || n < 1 {
			fmt.Fprintln(os.Stderr, "max-batches must be a positive integer")
			os.Exit(2)
		}
		maxBatches = n
	}

	handler, ok := importer.Handlers[entity]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown entity %q\n", entity)
		os.Exit(2)
	}

	cfg := config.LoadConfig()
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	gdb, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}

	im := &importer.Importer{DB: gdb, BatchSize: 100}
	res, err := im.Run(csvPath, handler, maxBatches)
	if err != nil {
		logrus.Fatalf("import failed: %v", err)
	}
	logrus.WithFields(logrus.Fields{
		"entity":    entity,
		"imported":  res.Imported,
		"skipped":   res.Skipped,
		"resumed":   res.Resumed,
		"exhausted": res.Exhausted,
	}).Info("Import run finished")
	if !res.Exhausted {
		logrus.Info("More rows remain, rerun to continue from the checkpoint")
	}
}
