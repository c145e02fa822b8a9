// Command datagen synthesizes a labeled beneficiary dataset for training.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/okian/nourish/internal/datagen"
	"github.com/okian/nourish/pkg/logger"
)

func main() {
	var (
		out   = flag.String("out", "beneficiary_data.csv", "output CSV path")
		count = flag.Int("count", 5000, "number of records to synthesize")
		seed  = flag.Int64("seed", 42, "random seed")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	log := logger.Get().Named("datagen")

	gen := datagen.NewGenerator(
		datagen.WithCount(*count),
		datagen.WithSeed(*seed),
	)
	rows := gen.Generate()

	f, err := os.Create(*out)
	if err != nil {
		log.Fatal(ctx, "failed to create output file", logger.String("path", *out), logger.Error(err))
	}
	defer f.Close()

	if err := datagen.WriteCSV(f, rows); err != nil {
		log.Fatal(ctx, "failed to write dataset", logger.String("path", *out), logger.Error(err))
	}

	var high, medium, low int
	for _, r := range rows {
		switch r.RiskCategory {
		case "High":
			high++
		case "Medium":
			medium++
		default:
			low++
		}
	}
	log.Info(ctx, "dataset generated",
		logger.String("path", *out),
		logger.Int("records", len(rows)),
		logger.Int("high", high),
		logger.Int("medium", medium),
		logger.Int("low", low),
	)
}
