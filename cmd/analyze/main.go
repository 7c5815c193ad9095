package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"claimsight/internal/claims"
	"claimsight/internal/ingest"
	"claimsight/internal/model"
)

func main() {
	input := flag.String("input", "", "path to a claims CSV or Excel file")
	output := flag.String("output", "", "write the analysis JSON here instead of stdout")
	pretty := flag.Bool("pretty", false, "indent the JSON output")
	train := flag.Bool("train", true, "train the denial prediction model and include its metadata")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze -input claims.csv [-output report.json] [-pretty]")
		os.Exit(2)
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		slog.Error("Failed to read input file", "error", err, "path", *input)
		os.Exit(1)
	}

	table, err := ingest.DecodeTable(data, logger)
	if err != nil {
		slog.Error("Failed to decode claims file", "error", err, "path", *input)
		os.Exit(1)
	}

	set, err := claims.Normalize(table, logger)
	if err != nil {
		slog.Error("Failed to normalize claim rows", "error", err)
		os.Exit(1)
	}

	result := claims.Analyze(context.Background(), set, claims.DefaultPatternRules())

	report := map[string]interface{}{
		"analysis": result,
	}

	if *train {
		_, trainResult, trainingInfo, err := model.Train(set, model.DefaultConfig(), logger)
		if err != nil {
			slog.Warn("Model training skipped", "error", err)
			report["ml_model"] = model.TrainFailure(err)
		} else {
			report["ml_model"] = trainResult
			report["training_info"] = trainingInfo
		}
	}

	var encoded []byte
	if *pretty {
		encoded, err = json.MarshalIndent(report, "", "  ")
	} else {
		encoded, err = json.Marshal(report)
	}
	if err != nil {
		slog.Error("Failed to encode report", "error", err)
		os.Exit(1)
	}
	encoded = append(encoded, '\n')

	if *output == "" {
		os.Stdout.Write(encoded)
		return
	}

	if err := os.WriteFile(*output, encoded, 0644); err != nil {
		slog.Error("Failed to write report", "error", err, "path", *output)
		os.Exit(1)
	}

	fmt.Printf("Report written to %s\n", *output)
}
