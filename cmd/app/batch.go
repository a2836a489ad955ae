package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"image-editor/internal/algorithms"
	"image-editor/internal/core"
	"image-editor/internal/io"
	"image-editor/internal/metrics"
)

// runBatch loads input, commits each step in order and saves the result to
// output, or back to input when output is empty.
func runBatch(logger *logrus.Logger, input, steps, output string) error {
	if input == "" {
		return errors.New("-apply needs an input image via -open")
	}

	parsed, err := algorithms.ParseSteps(steps)
	if err != nil {
		return err
	}
	if len(parsed) == 0 {
		return errors.New("no operations given")
	}
	for _, step := range parsed {
		if err := step.Validate(); err != nil {
			return err
		}
	}

	loader := io.NewImageLoader(logger)
	mat, err := loader.LoadImage(input)
	if err != nil {
		return err
	}
	defer mat.Close()

	history := core.NewHistory(loader, logger)
	defer history.Close()
	if err := history.Load(mat, input); err != nil {
		return err
	}

	runner := core.NewRunner(history, logger)
	ctx := context.Background()
	for _, step := range parsed {
		res := runner.Run(ctx, step)
		if res.Err != nil {
			return fmt.Errorf("%s: %w", step, res.Err)
		}
	}

	if err := history.Save(output); err != nil {
		return err
	}

	info, _ := history.Info()
	fields := logrus.Fields{
		"session": history.Session(),
		"input":   input,
		"output":  info.Path,
		"steps":   len(parsed),
		"width":   info.Width,
		"height":  info.Height,
	}
	_ = history.View(func(current, original gocv.Mat) {
		if summary := metrics.Summary(metrics.NewEvaluator().CalculateAll(original, current)); summary != "" {
			fields["metrics"] = summary
		}
	})
	logger.WithFields(fields).Info("Batch run complete")
	return nil
}
