package trainer_test

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/pitchmodel/internal/domain"
	"github.com/alejandrodnm/pitchmodel/internal/ml"
	"github.com/alejandrodnm/pitchmodel/internal/trainer"
)

// --- mocks ---

type mockDatasetStore struct {
	datasets map[domain.PlayerID]domain.Dataset
	err      error
}

func (m *mockDatasetStore) Save(d domain.Dataset) (string, error) { return m.Path(d.PlayerID), nil }

func (m *mockDatasetStore) Load(id domain.PlayerID) (domain.Dataset, error) {
	if m.err != nil {
		return domain.Dataset{}, m.err
	}
	d, ok := m.datasets[id]
	if !ok {
		return domain.Dataset{}, errors.New("no such dataset")
	}
	return d, nil
}

func (m *mockDatasetStore) List() ([]domain.PlayerID, error) {
	var ids []domain.PlayerID
	for id := range m.datasets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *mockDatasetStore) Path(id domain.PlayerID) string { return "data/" + id.String() + ".parquet" }

type mockModelStore struct {
	models map[domain.PlayerID]*ml.Model
	mu     sync.Mutex
}

func (m *mockModelStore) Save(id domain.PlayerID, model *ml.Model) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.models == nil {
		m.models = make(map[domain.PlayerID]*ml.Model)
	}
	m.models[id] = model
	return m.Path(id), nil
}

func (m *mockModelStore) Load(id domain.PlayerID) (*ml.Model, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	model, ok := m.models[id]
	if !ok {
		return nil, errors.New("no such model")
	}
	return model, nil
}

func (m *mockModelStore) Path(id domain.PlayerID) string { return "models/" + id.String() + ".model" }

type mockStorage struct {
	runs []domain.TrainingResult
	mu   sync.Mutex
}

func (m *mockStorage) SaveFetchRun(_ context.Context, _ domain.FetchResult) error { return nil }

func (m *mockStorage) SaveTrainingRun(_ context.Context, r domain.TrainingResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, r)
	return nil
}

func (m *mockStorage) GetTrainingRuns(_ context.Context, _ domain.PlayerID) ([]domain.TrainingResult, error) {
	return m.runs, nil
}

func (m *mockStorage) Close() error { return nil }

type mockNotifier struct {
	trained []domain.TrainingResult
	summary []domain.TrainingResult
}

func (m *mockNotifier) NotifyTraining(_ context.Context, r domain.TrainingResult) error {
	m.trained = append(m.trained, r)
	return nil
}

func (m *mockNotifier) NotifyTrainingSummary(_ context.Context, results []domain.TrainingResult) error {
	m.summary = results
	return nil
}

func (m *mockNotifier) NotifyFetch(_ context.Context, _ []domain.FetchResult) error { return nil }

// --- helpers ---

type center struct {
	pt                domain.PitchType
	speed, spin, x, z float64
}

var centers = []center{
	{domain.PitchTypeFourSeam, 95, 2400, -0.6, 1.4},
	{domain.PitchTypeSlider, 85, 2600, 0.4, 0.1},
	{domain.PitchTypeChangeup, 87, 1700, -1.2, 0.6},
}

func event(c center, jitter float64, date time.Time) domain.PitchEvent {
	return domain.PitchEvent{
		PitchType:       c.pt,
		ReleaseSpeed:    c.speed + jitter,
		ReleaseSpinRate: c.spin + jitter*10,
		PfxX:            c.x + jitter/10,
		PfxZ:            c.z - jitter/10,
		Stand:           domain.HandednessRight,
		GameDate:        date,
	}
}

// pitcherDataset genera 6 partidos con 3 pitches por tipo y partido, dos knuckleballs
// en el primer partido (tipo raro) y un curveball solo en el último (tipo no visto).
func pitcherDataset(id domain.PlayerID) domain.Dataset {
	var events []domain.PitchEvent
	base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	for g := 0; g < 6; g++ {
		date := base.AddDate(0, 0, g*5)
		for k := 0; k < 3; k++ {
			for _, c := range centers {
				events = append(events, event(c, float64((g+k)%5)*0.1, date))
			}
		}
	}
	events = append(events,
		event(center{domain.PitchTypeKnuckleball, 75, 300, 0, 0}, 0, base),
		event(center{domain.PitchTypeKnuckleball, 75, 300, 0, 0}, 0.1, base),
		event(center{domain.PitchTypeCurveball, 80, 2700, 0.8, -1.0}, 0, base.AddDate(0, 0, 25)),
	)
	return domain.Dataset{PlayerID: id, Events: events}
}

// --- tests ---

func TestTrainer_TrainPlayer(t *testing.T) {
	datasets := &mockDatasetStore{datasets: map[domain.PlayerID]domain.Dataset{684007: pitcherDataset(684007)}}
	models := &mockModelStore{}
	storage := &mockStorage{}

	tr := trainer.New(trainer.DefaultConfig(), datasets, models, storage, nil)
	r, err := tr.TrainPlayer(context.Background(), 684007)
	require.NoError(t, err)

	assert.NotEmpty(t, r.RunID)
	assert.Equal(t, "data/684007.parquet", r.Source)
	assert.Equal(t, "models/684007.model", r.ModelPath)
	assert.Equal(t, 45, r.TrainRows)
	assert.Equal(t, 2, r.DroppedRows)
	assert.Equal(t, 10, r.TestRows)
	assert.Equal(t, time.Date(2024, 4, 26, 0, 0, 0, 0, time.UTC), r.TestDate)
	assert.Equal(t, []domain.PitchType{domain.PitchTypeChangeup, domain.PitchTypeFourSeam, domain.PitchTypeSlider}, r.Classes)
	assert.Equal(t, []domain.PitchType{domain.PitchTypeCurveball}, r.UnseenLabels)
	assert.Contains(t, ml.DefaultGrid, r.BestC)
	require.Len(t, r.Candidates, len(ml.DefaultGrid))

	assert.InDelta(t, 1.0, r.CVAccuracy, 1e-9)
	// el curveball del test no puede acertarse
	assert.InDelta(t, 0.9, r.TestAccuracy, 1e-9)

	require.Contains(t, models.models, domain.PlayerID(684007))
	assert.Equal(t, r.BestC, models.models[684007].BestC)
	require.Len(t, storage.runs, 1)
	assert.Equal(t, r.RunID, storage.runs[0].RunID)
}

func TestTrainer_Run(t *testing.T) {
	datasets := &mockDatasetStore{datasets: map[domain.PlayerID]domain.Dataset{
		684007: pitcherDataset(684007),
		543294: pitcherDataset(543294),
	}}
	notifier := &mockNotifier{}
	cfg := trainer.DefaultConfig()
	cfg.Workers = 2

	results, err := trainer.New(cfg, datasets, &mockModelStore{}, nil, notifier).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, domain.PlayerID(543294), results[0].PlayerID)
	assert.Equal(t, domain.PlayerID(684007), results[1].PlayerID)
	require.Len(t, notifier.trained, 2)
	assert.Equal(t, domain.PlayerID(543294), notifier.trained[0].PlayerID)
	assert.Equal(t, domain.PlayerID(684007), notifier.trained[1].PlayerID)
	assert.Equal(t, results, notifier.summary)
}

func TestTrainer_RunNotifiesBeforeLaterFailure(t *testing.T) {
	datasets := &mockDatasetStore{datasets: map[domain.PlayerID]domain.Dataset{
		100: pitcherDataset(100),
		200: {PlayerID: 200},
	}}
	notifier := &mockNotifier{}

	_, err := trainer.New(trainer.DefaultConfig(), datasets, &mockModelStore{}, nil, notifier).Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmptyDataset)
	require.Len(t, notifier.trained, 1)
	assert.Equal(t, domain.PlayerID(100), notifier.trained[0].PlayerID)
	assert.Nil(t, notifier.summary)
}

func TestTrainer_RunSelectedPlayers(t *testing.T) {
	datasets := &mockDatasetStore{datasets: map[domain.PlayerID]domain.Dataset{
		684007: pitcherDataset(684007),
		543294: pitcherDataset(543294),
	}}
	cfg := trainer.DefaultConfig()
	cfg.Players = []domain.PlayerID{684007}

	results, err := trainer.New(cfg, datasets, &mockModelStore{}, nil, nil).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.PlayerID(684007), results[0].PlayerID)
}

func TestTrainer_SingleGameDatasetFails(t *testing.T) {
	date := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	var events []domain.PitchEvent
	for _, c := range centers {
		for k := 0; k < 6; k++ {
			events = append(events, event(c, float64(k)*0.1, date))
		}
	}
	datasets := &mockDatasetStore{datasets: map[domain.PlayerID]domain.Dataset{
		1: {PlayerID: 1, Events: events},
	}}

	_, err := trainer.New(trainer.DefaultConfig(), datasets, &mockModelStore{}, nil, nil).TrainPlayer(context.Background(), 1)
	assert.ErrorIs(t, err, ml.ErrEmptyTrainingSet)
}

func TestTrainer_EmptyDatasetFails(t *testing.T) {
	datasets := &mockDatasetStore{datasets: map[domain.PlayerID]domain.Dataset{1: {PlayerID: 1}}}

	_, err := trainer.New(trainer.DefaultConfig(), datasets, &mockModelStore{}, nil, nil).Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmptyDataset)
}

func TestTrainer_LoadErrorAborts(t *testing.T) {
	loadErr := errors.New("corrupt parquet")
	datasets := &mockDatasetStore{
		datasets: map[domain.PlayerID]domain.Dataset{1: {PlayerID: 1}},
		err:      loadErr,
	}

	_, err := trainer.New(trainer.DefaultConfig(), datasets, &mockModelStore{}, nil, nil).Run(context.Background())
	assert.ErrorIs(t, err, loadErr)
}

func TestTrainer_NoDatasets(t *testing.T) {
	notifier := &mockNotifier{}
	results, err := trainer.New(trainer.DefaultConfig(), &mockDatasetStore{}, &mockModelStore{}, nil, notifier).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, notifier.summary)
}

func TestTrainer_Evaluate(t *testing.T) {
	datasets := &mockDatasetStore{datasets: map[domain.PlayerID]domain.Dataset{684007: pitcherDataset(684007)}}
	models := &mockModelStore{}
	tr := trainer.New(trainer.DefaultConfig(), datasets, models, nil, nil)

	r, err := tr.TrainPlayer(context.Background(), 684007)
	require.NoError(t, err)

	ev, err := tr.Evaluate(context.Background(), 684007)
	require.NoError(t, err)
	assert.Equal(t, r.TestAccuracy, ev.TestAccuracy)
	assert.Equal(t, r.TestRows, ev.TestRows)
	assert.Equal(t, r.TestDate, ev.TestDate)
	assert.Equal(t, r.BestC, ev.BestC)
	assert.Equal(t, r.UnseenLabels, ev.UnseenLabels)
	assert.Equal(t, "models/684007.model", ev.ModelPath)
}

func TestTrainer_EvaluateMissingModel(t *testing.T) {
	datasets := &mockDatasetStore{datasets: map[domain.PlayerID]domain.Dataset{1: pitcherDataset(1)}}
	_, err := trainer.New(trainer.DefaultConfig(), datasets, &mockModelStore{}, nil, nil).Evaluate(context.Background(), 1)
	assert.Error(t, err)
}

func TestDatasetFrame(t *testing.T) {
	ds := domain.Dataset{PlayerID: 1, Events: []domain.PitchEvent{
		{PitchType: domain.PitchTypeFourSeam, ReleaseSpeed: 95, ReleaseSpinRate: math.NaN(), Stand: domain.HandednessLeft,
			GameDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
		{PitchType: domain.PitchTypeUnknown, ReleaseSpeed: 88, Stand: domain.HandednessUnknown,
			GameDate: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)},
	}}

	X, y := trainer.DatasetFrame(ds)
	assert.Equal(t, 2, X.Len())
	assert.Equal(t, []string{"FF", ""}, y)
	assert.Equal(t, []string{"L", ""}, X.Categorical["stand"])
	assert.Equal(t, []string{"2024-04-01", "2024-04-02"}, X.Categorical["game_date"])
	assert.True(t, math.IsNaN(X.Numeric["release_spin_rate"][0]))
	assert.NotContains(t, X.Numeric, "pitch_type")
}
