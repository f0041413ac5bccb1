package ml

// gridsearch.go: selección de C por validación cruzada.
//
// Cada candidato se evalúa clonando el pipeline completo por fold, de modo que
// imputadores y scaler se ajustan solo con el train del fold. Un fold que no
// puede ajustarse puntúa NaN y arrastra al candidato a NaN. Un candidato NaN
// nunca se elige; si todos lo son, la búsqueda falla.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
)

// DefaultGrid es la grilla de fuerzas de regularización inversa.
var DefaultGrid = []float64{0.01, 0.1, 1.0, 10.0}

const defaultFolds = 5

// GridSearch busca el C con mejor accuracy media en validación cruzada.
type GridSearch struct {
	Pipeline PipelineConfig
	Grid     []float64
	Folds    int
	Jobs     int // candidatos evaluados en paralelo; <= 1 secuencial
}

// DefaultGridSearch devuelve la búsqueda por defecto: 4 valores de C, 5 folds.
func DefaultGridSearch() GridSearch {
	return GridSearch{
		Pipeline: DefaultPipelineConfig(),
		Grid:     append([]float64(nil), DefaultGrid...),
		Folds:    defaultFolds,
		Jobs:     1,
	}
}

// CandidateResult es la puntuación de un valor de C.
type CandidateResult struct {
	C          float64
	FoldScores []float64
	Mean       float64
	Std        float64
}

// SearchResult es el resultado de la búsqueda: el pipeline reajustado con el mejor
// C sobre todo el train, su score de CV y el detalle por candidato.
type SearchResult struct {
	Best       *Pipeline
	BestC      float64
	BestScore  float64
	Candidates []CandidateResult
}

// Fit ejecuta la búsqueda y reajusta el mejor candidato con todas las filas.
func (g GridSearch) Fit(ctx context.Context, X Frame, y []string) (*SearchResult, error) {
	if X.Len() == 0 || len(y) == 0 {
		return nil, fmt.Errorf("ml.GridSearch.Fit: %w", ErrEmptyTrainingSet)
	}
	if len(uniqueSorted(y)) < 2 {
		return nil, fmt.Errorf("ml.GridSearch.Fit: %w", ErrSingleClass)
	}
	grid := g.Grid
	if len(grid) == 0 {
		grid = DefaultGrid
	}
	folds, err := StratifiedKFold{Splits: g.folds()}.Split(y)
	if err != nil {
		return nil, fmt.Errorf("ml.GridSearch.Fit: %w", err)
	}

	candidates := make([]CandidateResult, len(grid))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(g.Jobs, 1))
	for i, c := range grid {
		eg.Go(func() error {
			res, err := g.evaluate(ctx, c, folds, X, y)
			if err != nil {
				return err
			}
			candidates[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("ml.GridSearch.Fit: %w", err)
	}

	best := -1
	for i, cand := range candidates {
		if math.IsNaN(cand.Mean) {
			continue
		}
		if best < 0 || cand.Mean > candidates[best].Mean {
			best = i
		}
	}
	if best < 0 {
		return nil, fmt.Errorf("ml.GridSearch.Fit: every candidate failed to fit")
	}

	pipe := NewPipeline(g.Pipeline.WithC(candidates[best].C))
	if err := pipe.Fit(X, y); err != nil {
		return nil, fmt.Errorf("ml.GridSearch.Fit: refit C=%g: %w", candidates[best].C, err)
	}

	slog.Debug("grid search complete",
		"best_c", candidates[best].C,
		"best_score", candidates[best].Mean,
		"candidates", len(candidates),
		"folds", len(folds),
	)

	return &SearchResult{
		Best:       pipe,
		BestC:      candidates[best].C,
		BestScore:  candidates[best].Mean,
		Candidates: candidates,
	}, nil
}

// evaluate puntúa un valor de C sobre todos los folds.
func (g GridSearch) evaluate(ctx context.Context, c float64, folds []Fold, X Frame, y []string) (CandidateResult, error) {
	res := CandidateResult{C: c, FoldScores: make([]float64, len(folds))}
	for i, fold := range folds {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		pipe := NewPipeline(g.Pipeline.WithC(c))
		score, err := fitAndScore(pipe, X, y, fold)
		if err != nil {
			if errors.Is(err, ErrLengthMismatch) || errors.Is(err, ErrMissingColumn) {
				return res, err
			}
			slog.Warn("fold fit failed, scoring NaN", "c", c, "fold", i, "err", err)
			score = math.NaN()
		}
		res.FoldScores[i] = score
	}

	res.Mean, res.Std = summarize(res.FoldScores)
	slog.Debug("candidate scored", "c", c, "mean", res.Mean, "std", res.Std)
	return res, nil
}

func fitAndScore(pipe *Pipeline, X Frame, y []string, fold Fold) (float64, error) {
	if err := pipe.Fit(X.Take(fold.Train), takeLabels(y, fold.Train)); err != nil {
		return 0, err
	}
	return pipe.Score(X.Take(fold.Test), takeLabels(y, fold.Test))
}

// summarize devuelve media y desviación poblacional; NaN si algún fold es NaN.
func summarize(scores []float64) (mean, std float64) {
	for _, s := range scores {
		if math.IsNaN(s) {
			return math.NaN(), math.NaN()
		}
	}
	data := stats.Float64Data(scores)
	mean, err := stats.Mean(data)
	if err != nil {
		return math.NaN(), math.NaN()
	}
	std, err = stats.StandardDeviationPopulation(data)
	if err != nil {
		return mean, math.NaN()
	}
	return mean, std
}

func (g GridSearch) folds() int {
	if g.Folds > 0 {
		return g.Folds
	}
	return defaultFolds
}
