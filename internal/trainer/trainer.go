package trainer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alejandrodnm/pitchmodel/internal/domain"
	"github.com/alejandrodnm/pitchmodel/internal/ml"
	"github.com/alejandrodnm/pitchmodel/internal/ports"
)

// Config contiene la configuración del entrenamiento.
type Config struct {
	Search        ml.GridSearch
	MinPitchCount int
	Workers       int               // pitchers entrenados en paralelo; <= 1 secuencial
	Players       []domain.PlayerID // vacío = todos los datasets del directorio
}

// DefaultConfig devuelve la búsqueda por defecto con el umbral de tipos raros de 5 pitches.
func DefaultConfig() Config {
	return Config{
		Search:        ml.DefaultGridSearch(),
		MinPitchCount: domain.DefaultMinPitchCount,
		Workers:       1,
	}
}

// Trainer orquesta load → split → filter → search → save → score para cada dataset.
type Trainer struct {
	cfg      Config
	datasets ports.DatasetStore
	models   ports.ModelStore
	storage  ports.RunStorage
	notifier ports.Notifier
	now      func() time.Time
}

// New crea un Trainer con todas las dependencias inyectadas.
// storage y notifier pueden ser nil.
func New(
	cfg Config,
	datasets ports.DatasetStore,
	models ports.ModelStore,
	storage ports.RunStorage,
	notifier ports.Notifier,
) *Trainer {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.MinPitchCount < 1 {
		cfg.MinPitchCount = domain.DefaultMinPitchCount
	}
	return &Trainer{
		cfg:      cfg,
		datasets: datasets,
		models:   models,
		storage:  storage,
		notifier: notifier,
		now:      time.Now,
	}
}

// Run entrena un modelo por dataset. Cada resultado se notifica en cuanto él y
// todos los anteriores en orden de dataset han terminado. El primer error cancela
// al resto y aborta; los modelos ya escritos se conservan.
func (t *Trainer) Run(ctx context.Context) ([]domain.TrainingResult, error) {
	ids, err := t.playerIDs()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	slog.Info("training starting",
		"datasets", len(ids),
		"grid", t.cfg.Search.Grid,
		"folds", t.cfg.Search.Folds,
		"workers", t.cfg.Workers,
	)

	results := make([]domain.TrainingResult, len(ids))
	done := make([]bool, len(ids))
	var (
		mu   sync.Mutex
		next int // primer índice aún no notificado
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.cfg.Workers)
	for i, id := range ids {
		g.Go(func() error {
			r, err := t.TrainPlayer(gctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			results[i] = r
			done[i] = true
			for next < len(ids) && done[next] {
				t.notifyTraining(ctx, results[next])
				next++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if t.notifier != nil {
		if err := t.notifier.NotifyTrainingSummary(ctx, results); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	slog.Info("training complete",
		"models", len(results),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return results, nil
}

// TrainPlayer entrena, persiste y evalúa el modelo de un pitcher.
//
// El test es el último partido del dataset y nunca se filtra; el filtro de tipos
// raros solo se aplica al train. Etiquetas del test que el modelo no conoce cuentan como fallo.
func (t *Trainer) TrainPlayer(ctx context.Context, id domain.PlayerID) (domain.TrainingResult, error) {
	ds, err := t.datasets.Load(id)
	if err != nil {
		return domain.TrainingResult{}, fmt.Errorf("trainer.TrainPlayer: %w", err)
	}
	if ds.Len() == 0 {
		return domain.TrainingResult{}, fmt.Errorf("trainer.TrainPlayer: player %s: %w", id, domain.ErrEmptyDataset)
	}

	train, test := domain.SplitLastGame(ds)
	filtered := domain.FilterRarePitchTypes(train, t.cfg.MinPitchCount)
	testDate, _ := ds.LastGameDate()

	slog.Debug("dataset split",
		"player_id", id,
		"train", train.Len(),
		"kept", filtered.Len(),
		"test", test.Len(),
		"test_date", testDate.Format(time.DateOnly),
		"games", len(ds.GameDates()),
	)

	X, y := DatasetFrame(filtered)
	res, err := t.cfg.Search.Fit(ctx, X, y)
	if err != nil {
		return domain.TrainingResult{}, fmt.Errorf("trainer.TrainPlayer: player %s: %w", id, err)
	}

	trainedAt := t.now().UTC()
	path, err := t.models.Save(id, ml.NewModel(id.String(), res, trainedAt))
	if err != nil {
		return domain.TrainingResult{}, fmt.Errorf("trainer.TrainPlayer: %w", err)
	}

	testX, testY := DatasetFrame(test)
	testAcc, err := res.Best.Score(testX, testY)
	if err != nil {
		return domain.TrainingResult{}, fmt.Errorf("trainer.TrainPlayer: player %s: score test: %w", id, err)
	}

	classes := pitchTypes(res.Best.Classes())
	r := domain.TrainingResult{
		RunID:        uuid.NewString(),
		PlayerID:     id,
		Source:       t.datasets.Path(id),
		BestC:        res.BestC,
		CVAccuracy:   res.BestScore,
		TestAccuracy: testAcc,
		Candidates:   candidateScores(res.Candidates),
		TrainRows:    filtered.Len(),
		DroppedRows:  train.Len() - filtered.Len(),
		TestRows:     test.Len(),
		Classes:      classes,
		UnseenLabels: domain.UnseenLabels(test, classes),
		TestDate:     testDate,
		ModelPath:    path,
		TrainedAt:    trainedAt,
	}

	if len(r.UnseenLabels) > 0 {
		slog.Warn("test labels unseen in training", "player_id", id, "labels", r.UnseenLabels)
	}
	slog.Info("model trained",
		"player_id", id,
		"best_c", r.BestC,
		"cv_accuracy", r.CVAccuracy,
		"test_accuracy", r.TestAccuracy,
		"path", path,
	)

	if t.storage != nil {
		if err := t.storage.SaveTrainingRun(ctx, r); err != nil {
			slog.Warn("storage error", "err", err)
		}
	}
	return r, nil
}

// Evaluate recarga el modelo persistido de un pitcher y lo puntúa contra el
// último partido de su dataset.
func (t *Trainer) Evaluate(_ context.Context, id domain.PlayerID) (domain.Evaluation, error) {
	model, err := t.models.Load(id)
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("trainer.Evaluate: %w", err)
	}
	ds, err := t.datasets.Load(id)
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("trainer.Evaluate: %w", err)
	}
	if ds.Len() == 0 {
		return domain.Evaluation{}, fmt.Errorf("trainer.Evaluate: player %s: %w", id, domain.ErrEmptyDataset)
	}

	_, test := domain.SplitLastGame(ds)
	testDate, _ := ds.LastGameDate()
	X, y := DatasetFrame(test)
	acc, err := model.Pipeline.Score(X, y)
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("trainer.Evaluate: player %s: %w", id, err)
	}

	return domain.Evaluation{
		PlayerID:     id,
		ModelPath:    t.models.Path(id),
		TrainedAt:    model.TrainedAt,
		BestC:        model.BestC,
		CVAccuracy:   model.CVScore,
		TestDate:     testDate,
		TestRows:     test.Len(),
		TestAccuracy: acc,
		UnseenLabels: domain.UnseenLabels(test, pitchTypes(model.Pipeline.Classes())),
	}, nil
}

func (t *Trainer) notifyTraining(ctx context.Context, r domain.TrainingResult) {
	if t.notifier == nil {
		return
	}
	if err := t.notifier.NotifyTraining(ctx, r); err != nil {
		slog.Warn("notifier error", "err", err)
	}
}

func (t *Trainer) playerIDs() ([]domain.PlayerID, error) {
	if len(t.cfg.Players) > 0 {
		return t.cfg.Players, nil
	}
	ids, err := t.datasets.List()
	if err != nil {
		return nil, fmt.Errorf("trainer.Run: %w", err)
	}
	if len(ids) == 0 {
		slog.Warn("no datasets found")
	}
	return ids, nil
}

func candidateScores(cands []ml.CandidateResult) []domain.CandidateScore {
	out := make([]domain.CandidateScore, len(cands))
	for i, c := range cands {
		out[i] = domain.CandidateScore{C: c.C, Mean: c.Mean, Std: c.Std}
	}
	return out
}
