package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alejandrodnm/pitchmodel/internal/domain"
	"github.com/alejandrodnm/pitchmodel/internal/ports"
)

// Config contiene la configuración del fetcher.
type Config struct {
	Players   []domain.Player
	StartDate time.Time
	EndDate   time.Time
	Workers   int // pitchers descargados en paralelo; <= 1 secuencial
}

// DefaultConfig devuelve la rotación de Chicago Cubs, temporadas 2022-2024.
func DefaultConfig() Config {
	return Config{
		Players:   DefaultPlayers(),
		StartDate: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Workers:   1,
	}
}

// DefaultPlayers devuelve los pitchers que se descargan si la config no dice otra cosa.
func DefaultPlayers() []domain.Player {
	return []domain.Player{
		{Last: "Imanaga", First: "Shota"},
		{Last: "Hendricks", First: "Kyle"},
		{Last: "Steele", First: "Justin"},
		{Last: "Taillon", First: "Jameson"},
		{Last: "Wicks", First: "Jordan"},
		{Last: "Assad", First: "Javier"},
		{Last: "Brown", First: "Ben"},
	}
}

// Fetcher orquesta resolve → fetch → normalize → save para cada pitcher configurado.
type Fetcher struct {
	cfg      Config
	resolver ports.PlayerResolver
	pitches  ports.PitchProvider
	datasets ports.DatasetStore
	storage  ports.RunStorage
	notifier ports.Notifier
	now      func() time.Time
}

// New crea un Fetcher con todas las dependencias inyectadas.
// storage y notifier pueden ser nil.
func New(
	cfg Config,
	resolver ports.PlayerResolver,
	pitches ports.PitchProvider,
	datasets ports.DatasetStore,
	storage ports.RunStorage,
	notifier ports.Notifier,
) *Fetcher {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Fetcher{
		cfg:      cfg,
		resolver: resolver,
		pitches:  pitches,
		datasets: datasets,
		storage:  storage,
		notifier: notifier,
		now:      time.Now,
	}
}

// Run descarga todos los pitchers configurados. El primer error cancela al resto
// y aborta la ejecución; los archivos ya escritos se conservan.
func (f *Fetcher) Run(ctx context.Context) ([]domain.FetchResult, error) {
	if f.cfg.EndDate.Before(f.cfg.StartDate) {
		return nil, fmt.Errorf("fetcher.Run: end date %s before start date %s",
			f.cfg.EndDate.Format(time.DateOnly), f.cfg.StartDate.Format(time.DateOnly))
	}

	start := time.Now()
	slog.Info("fetch starting",
		"players", len(f.cfg.Players),
		"start_date", f.cfg.StartDate.Format(time.DateOnly),
		"end_date", f.cfg.EndDate.Format(time.DateOnly),
		"workers", f.cfg.Workers,
	)

	results := make([]domain.FetchResult, len(f.cfg.Players))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.Workers)
	for i, p := range f.cfg.Players {
		g.Go(func() error {
			r, err := f.FetchPlayer(gctx, p)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if f.notifier != nil {
		if err := f.notifier.NotifyFetch(ctx, results); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	slog.Info("fetch complete",
		"players", len(results),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return results, nil
}

// FetchPlayer resuelve, descarga, normaliza y persiste el dataset de un pitcher.
func (f *Fetcher) FetchPlayer(ctx context.Context, p domain.Player) (domain.FetchResult, error) {
	if p.ID == 0 {
		resolved, err := f.resolver.LookupPlayer(ctx, p.Last, p.First)
		if err != nil {
			return domain.FetchResult{}, fmt.Errorf("fetcher.FetchPlayer: %s: %w", p.Name(), err)
		}
		p.ID = resolved.ID
	}

	raws, err := f.pitches.FetchPitches(ctx, f.cfg.StartDate, f.cfg.EndDate, p.ID)
	if err != nil {
		return domain.FetchResult{}, fmt.Errorf("fetcher.FetchPlayer: %s: %w", p.Name(), err)
	}

	ds := domain.NormalizeDataset(p.ID, raws)
	path, err := f.datasets.Save(ds)
	if err != nil {
		return domain.FetchResult{}, fmt.Errorf("fetcher.FetchPlayer: %s: %w", p.Name(), err)
	}

	r := domain.FetchResult{
		RunID:     uuid.NewString(),
		Player:    p,
		StartDate: f.cfg.StartDate,
		EndDate:   f.cfg.EndDate,
		RawRows:   len(raws),
		Rows:      ds.Len(),
		Path:      path,
		FetchedAt: f.now().UTC(),
	}

	if ds.Len() == 0 {
		slog.Warn("no pitches in range", "player", p.Name(), "player_id", p.ID)
	}
	slog.Info("player fetched",
		"player", p.Name(),
		"player_id", p.ID,
		"rows", r.Rows,
		"excluded", r.Excluded(),
		"path", path,
	)

	if f.storage != nil {
		if err := f.storage.SaveFetchRun(ctx, r); err != nil {
			slog.Warn("storage error", "err", err)
		}
	}
	return r, nil
}
