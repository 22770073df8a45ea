package curator

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"

	"github.com/Nishad-30/vibelist-ai/internal/models"
	"github.com/Nishad-30/vibelist-ai/internal/shared"
	"github.com/charmbracelet/log"
)

const trainerSeed = 42

// TrainOpts configures the offline training pipeline.
type TrainOpts struct {
	TrainingDataPath string
	ModelPath        string
	MaxFeatures      int
	Logger           *log.Logger
}

// TrainResult summarizes a completed training run.
type TrainResult struct {
	Examples      int
	Classes       []string
	Features      int
	Accuracy      float64
	EnergyR2      float64
	EnergyRMSE    float64
	ValenceR2     float64
	ValenceRMSE   float64
	TestExamples  int
	TrainExamples int
}

// LoadTrainingData reads and validates the JSON training file.
func LoadTrainingData(path string) ([]models.TrainingExample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read training data: %w", err)
	}

	var examples []models.TrainingExample
	if err := json.Unmarshal(data, &examples); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidTraining, err)
	}

	if len(examples) == 0 {
		return nil, fmt.Errorf("%w: no examples", shared.ErrInvalidTraining)
	}

	for i, ex := range examples {
		if ex.Vibe == "" {
			return nil, fmt.Errorf("%w: example %d missing vibe text", shared.ErrInvalidTraining, i)
		}
		if ex.Energy < 0 || ex.Energy > 1 || ex.Valence < 0 || ex.Valence > 1 {
			return nil, fmt.Errorf("%w: example %d energy/valence out of [0,1]", shared.ErrInvalidTraining, i)
		}
	}

	return examples, nil
}

// Train runs the full pipeline: fit the TF-IDF vectorizer over vibe text
// combined with characteristics, train the genre classifier and the
// energy/valence regressors, evaluate on a held-out split, and persist the
// bundle to opts.ModelPath.
func Train(opts TrainOpts) (*TrainResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	examples, err := LoadTrainingData(opts.TrainingDataPath)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded training data", "examples", len(examples))

	// Combine vibe descriptions with characteristics for richer features.
	docs := make([]string, len(examples))
	genres := make([]string, len(examples))
	energies := make([]float64, len(examples))
	valences := make([]float64, len(examples))
	for i, ex := range examples {
		docs[i] = ex.Vibe
		for _, c := range ex.Characteristics {
			docs[i] += " " + c
		}
		genres[i] = ex.PrimaryGenre()
		energies[i] = ex.Energy
		valences[i] = ex.Valence
	}

	vectorizer := NewVectorizer(opts.MaxFeatures, 1)
	if err := vectorizer.Fit(docs); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidTraining, err)
	}
	features := vectorizer.TransformAll(docs)
	logger.Info("fitted vectorizer", "features", vectorizer.NumFeatures())

	classes, labels := encodeLabels(genres)
	logger.Info("encoded genres", "classes", len(classes), "labels", classes)

	// Tiny datasets get a 40% holdout so the test side is non-empty.
	testFrac := 0.2
	if len(examples) <= 15 {
		testFrac = 0.4
	}
	trainIdx, testIdx := split(len(examples), testFrac, trainerSeed)
	logger.Info("split data", "train", len(trainIdx), "test", len(testIdx))

	result := &TrainResult{
		Examples:      len(examples),
		Classes:       classes,
		Features:      vectorizer.NumFeatures(),
		TrainExamples: len(trainIdx),
		TestExamples:  len(testIdx),
	}

	trainFeatures := gather(features, trainIdx)
	genreForest := TrainClassifier(trainFeatures, gatherInts(labels, trainIdx), len(classes), DefaultForestOpts(trainerSeed))
	energyForest := TrainRegressor(trainFeatures, gatherFloats(energies, trainIdx), DefaultForestOpts(trainerSeed+1))
	valenceForest := TrainRegressor(trainFeatures, gatherFloats(valences, trainIdx), DefaultForestOpts(trainerSeed+2))

	if len(testIdx) > 0 {
		correct := 0
		for _, ti := range testIdx {
			if genreForest.PredictClass(features[ti]) == labels[ti] {
				correct++
			}
		}
		result.Accuracy = float64(correct) / float64(len(testIdx))

		energyPred := make([]float64, len(testIdx))
		valencePred := make([]float64, len(testIdx))
		energyTrue := make([]float64, len(testIdx))
		valenceTrue := make([]float64, len(testIdx))
		for i, ti := range testIdx {
			energyPred[i] = energyForest.PredictValue(features[ti])
			valencePred[i] = valenceForest.PredictValue(features[ti])
			energyTrue[i] = energies[ti]
			valenceTrue[i] = valences[ti]
		}
		result.EnergyR2, result.EnergyRMSE = regressionScores(energyTrue, energyPred)
		result.ValenceR2, result.ValenceRMSE = regressionScores(valenceTrue, valencePred)

		logger.Info("genre classification", "accuracy", fmt.Sprintf("%.3f", result.Accuracy))
		logger.Info("energy prediction", "r2", fmt.Sprintf("%.3f", result.EnergyR2), "rmse", fmt.Sprintf("%.3f", result.EnergyRMSE))
		logger.Info("valence prediction", "r2", fmt.Sprintf("%.3f", result.ValenceR2), "rmse", fmt.Sprintf("%.3f", result.ValenceRMSE))
	} else {
		logger.Warn("no test samples available, skipping evaluation")
	}

	bundle := &Bundle{
		Vectorizer:    vectorizer,
		Classes:       classes,
		GenreForest:   genreForest,
		EnergyForest:  energyForest,
		ValenceForest: valenceForest,
	}

	if err := bundle.Save(opts.ModelPath); err != nil {
		return nil, err
	}
	logger.Info("model saved", "path", opts.ModelPath)

	return result, nil
}

// encodeLabels maps genre strings to class indexes over the sorted unique set.
func encodeLabels(genres []string) ([]string, []int) {
	unique := make(map[string]struct{})
	for _, g := range genres {
		unique[g] = struct{}{}
	}

	classes := make([]string, 0, len(unique))
	for g := range unique {
		classes = append(classes, g)
	}
	sort.Strings(classes)

	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}

	labels := make([]int, len(genres))
	for i, g := range genres {
		labels[i] = index[g]
	}

	return classes, labels
}

// split shuffles indexes deterministically and carves off a test fraction.
func split(n int, testFrac float64, seed int64) (train, test []int) {
	idx := rand.New(rand.NewSource(seed)).Perm(n)
	testN := int(float64(n) * testFrac)
	return idx[testN:], idx[:testN]
}

func gather(rows [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out
}

func gatherInts(vals []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = vals[j]
	}
	return out
}

func gatherFloats(vals []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = vals[j]
	}
	return out
}

// regressionScores computes R² and RMSE for predictions against ground truth.
func regressionScores(truth, pred []float64) (r2, rmse float64) {
	if len(truth) == 0 {
		return 0, 0
	}

	var mean float64
	for _, t := range truth {
		mean += t
	}
	mean /= float64(len(truth))

	var ssRes, ssTot float64
	for i := range truth {
		d := truth[i] - pred[i]
		ssRes += d * d
		t := truth[i] - mean
		ssTot += t * t
	}

	rmse = math.Sqrt(ssRes / float64(len(truth)))
	if ssTot == 0 {
		return 0, rmse
	}
	return 1 - ssRes/ssTot, rmse
}
