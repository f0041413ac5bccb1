package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alejandrodnm/pitchmodel/internal/adapters/notify"
	"github.com/alejandrodnm/pitchmodel/internal/adapters/parquetstore"
	"github.com/alejandrodnm/pitchmodel/internal/domain"
)

func inspectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [player_id...]",
		Short: "Print missing value counts and a preview of each dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			store := parquetstore.New(cfg.Paths.DataDir)
			ids := make([]domain.PlayerID, 0, len(args))
			for _, raw := range args {
				id, err := domain.ParsePlayerID(raw)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			if len(ids) == 0 {
				if ids, err = store.List(); err != nil {
					return err
				}
			}
			if len(ids) == 0 {
				slog.Warn("no datasets found", "data_dir", store.Dir())
				return nil
			}

			console := notify.NewConsole()
			for _, id := range ids {
				ds, err := store.Load(id)
				if err != nil {
					return err
				}
				if err := console.NotifyInspection(cmd.Context(), store.Path(id), ds, domain.CountMissing(ds)); err != nil {
					slog.Warn("notifier error", "err", err)
				}
			}
			return nil
		},
	}
}
