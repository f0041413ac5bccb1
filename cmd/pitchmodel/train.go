package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alejandrodnm/pitchmodel/config"
	"github.com/alejandrodnm/pitchmodel/internal/adapters/modelstore"
	"github.com/alejandrodnm/pitchmodel/internal/adapters/notify"
	"github.com/alejandrodnm/pitchmodel/internal/adapters/parquetstore"
	"github.com/alejandrodnm/pitchmodel/internal/domain"
	"github.com/alejandrodnm/pitchmodel/internal/trainer"
)

func trainCmd(opts *rootOptions) *cobra.Command {
	var (
		workers    int
		players    []string
		candidates bool
	)
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Fit one pitch type classifier per dataset and score it on the last game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				cfg.Train.Workers = workers
			}

			trainCfg := trainerConfig(cfg)
			for _, raw := range players {
				id, err := domain.ParsePlayerID(raw)
				if err != nil {
					return err
				}
				trainCfg.Players = append(trainCfg.Players, id)
			}

			slog.Info("pitchmodel train starting",
				"config", opts.configPath,
				"data_dir", cfg.Paths.DataDir,
				"models_dir", cfg.Paths.ModelsDir,
			)

			store := openStorage(cfg)
			if store != nil {
				defer store.Close()
			}

			console := notify.NewConsole()
			t := trainer.New(trainCfg, parquetstore.New(cfg.Paths.DataDir), modelstore.New(cfg.Paths.ModelsDir), store, console)
			results, err := t.Run(cmd.Context())
			if err != nil {
				return err
			}
			if candidates {
				for _, r := range results {
					if err := console.NotifyCandidates(cmd.Context(), r); err != nil {
						slog.Warn("notifier error", "err", err)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 1, "pitchers trained in parallel")
	cmd.Flags().StringSliceVar(&players, "player", nil, "train only these player ids (default: every dataset)")
	cmd.Flags().BoolVar(&candidates, "candidates", false, "print the cross-validation score of every C")
	return cmd
}

func trainerConfig(cfg *config.Config) trainer.Config {
	tc := trainer.DefaultConfig()
	tc.Search.Grid = cfg.Train.Grid
	tc.Search.Folds = cfg.Train.Folds
	tc.Search.Jobs = cfg.Train.Jobs
	tc.Search.Pipeline.MaxIter = cfg.Train.MaxIter
	tc.MinPitchCount = cfg.Train.MinPitchCount
	tc.Workers = cfg.Train.Workers
	return tc
}
