package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alejandrodnm/pitchmodel/config"
	"github.com/alejandrodnm/pitchmodel/internal/adapters/notify"
	"github.com/alejandrodnm/pitchmodel/internal/adapters/parquetstore"
	"github.com/alejandrodnm/pitchmodel/internal/adapters/savant"
	"github.com/alejandrodnm/pitchmodel/internal/domain"
	"github.com/alejandrodnm/pitchmodel/internal/fetcher"
)

func fetchCmd(opts *rootOptions) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download regular season pitches and write one dataset per pitcher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				cfg.Fetch.Workers = workers
			}

			fetchCfg, err := fetcherConfig(cfg)
			if err != nil {
				return err
			}

			slog.Info("pitchmodel fetch starting",
				"config", opts.configPath,
				"players", len(fetchCfg.Players),
				"start", cfg.Fetch.StartDate,
				"end", cfg.Fetch.EndDate,
				"data_dir", cfg.Paths.DataDir,
			)

			client := savant.NewClient(cfg.API.SavantBase, cfg.API.RegisterBase)
			client.SetMaxRetries(cfg.Fetch.MaxRetries)
			client.SetTimeout(cfg.Timeout())

			store := openStorage(cfg)
			if store != nil {
				defer store.Close()
			}

			f := fetcher.New(fetchCfg, client, client, parquetstore.New(cfg.Paths.DataDir), store, notify.NewConsole())
			_, err = f.Run(cmd.Context())
			return err
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 1, "pitchers downloaded in parallel")
	return cmd
}

func fetcherConfig(cfg *config.Config) (fetcher.Config, error) {
	start, end, err := cfg.DateRange()
	if err != nil {
		return fetcher.Config{}, err
	}
	fc := fetcher.DefaultConfig()
	fc.StartDate = start
	fc.EndDate = end
	fc.Workers = cfg.Fetch.Workers
	if len(cfg.Fetch.Players) > 0 {
		fc.Players = make([]domain.Player, len(cfg.Fetch.Players))
		for i, p := range cfg.Fetch.Players {
			fc.Players[i] = domain.Player{Last: p.Last, First: p.First, ID: domain.PlayerID(p.ID)}
		}
	}
	return fc, nil
}
