// Command train fits the model pair on a labeled dataset and persists the
// artifact bundle the server loads at startup.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/okian/nourish/internal/training"
	"github.com/okian/nourish/pkg/logger"
)

func main() {
	var (
		dataset = flag.String("dataset", "beneficiary_data.csv", "labeled dataset CSV path")
		out     = flag.String("out", "nourish_models.gob", "artifact bundle output path")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	log := logger.Get().Named("train")

	result, err := training.TrainFile(*dataset, *out)
	if err != nil {
		log.Fatal(ctx, "training failed", logger.String("dataset", *dataset), logger.Error(err))
	}

	log.Info(ctx, "models trained and saved",
		logger.String("dataset", *dataset),
		logger.String("artifacts", *out),
		logger.Int("trainExamples", result.Report.TrainSize),
		logger.Int("testExamples", result.Report.TestSize),
		logger.Float64("mae", result.Report.MAE),
		logger.Float64("accuracy", result.Report.Accuracy),
	)
}
