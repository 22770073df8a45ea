package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Nishad-30/vibelist-ai/internal/curator"
	"github.com/urfave/cli/v3"
)

// smokeVibes exercise the freshly trained model so obvious regressions show
// up in the training output.
var smokeVibes = []string{
	"chill evening with wine",
	"high energy morning workout",
	"late night coding session",
}

// Train regenerates the interpretation model from the training data file.
func (r *Runner) Train(ctx context.Context, cmd *cli.Command) error {
	dataPath := cmd.String("data")
	if dataPath == "" {
		dataPath = r.config.Curator.TrainingDataPath
	}
	modelPath := cmd.String("model")
	if modelPath == "" {
		modelPath = r.config.Curator.ModelPath
	}

	r.logger.Info("training model", "data", dataPath, "model", modelPath)

	result, err := curator.Train(curator.TrainOpts{
		TrainingDataPath: dataPath,
		ModelPath:        modelPath,
		MaxFeatures:      cmd.Int("max-features"),
		Logger:           r.logger,
	})
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	r.writePlainHeader("Training Complete")
	r.writePlain("Examples: %d (%d train / %d test)\n", result.Examples, result.TrainExamples, result.TestExamples)
	r.writePlain("Genres: %s\n", strings.Join(result.Classes, ", "))
	r.writePlain("Vocabulary: %d features\n", result.Features)
	r.writePlain("Genre accuracy: %.2f\n", result.Accuracy)
	r.writePlain("Energy R²: %.2f (RMSE %.3f)\n", result.EnergyR2, result.EnergyRMSE)
	r.writePlain("Valence R²: %.2f (RMSE %.3f)\n", result.ValenceR2, result.ValenceRMSE)
	r.writePlain("Model saved to %s\n", modelPath)

	bundle, err := curator.LoadBundle(modelPath)
	if err != nil {
		return fmt.Errorf("failed to reload model: %w", err)
	}

	smoke := curator.NewWithBundle(bundle, r.logger)
	r.writePlainln("Sample interpretations:")
	for _, vibe := range smokeVibes {
		profile := smoke.InterpretVibe(vibe)
		r.writePlain("  %q → %s (energy %.2f, valence %.2f, %s)\n",
			vibe, profile.PrimaryGenre(), profile.Energy, profile.Valence, profile.Tempo)
	}

	// Later commands in the same process should use the new model.
	r.curator = smoke

	return nil
}
