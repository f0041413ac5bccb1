package main

import (
	"github.com/spf13/cobra"

	"github.com/alejandrodnm/pitchmodel/internal/adapters/notify"
	"github.com/alejandrodnm/pitchmodel/internal/adapters/storage"
	"github.com/alejandrodnm/pitchmodel/internal/domain"
)

func historyCmd(opts *rootOptions) *cobra.Command {
	var (
		player  int64
		fetches bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded training or fetch runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
			if err != nil {
				return err
			}
			defer store.Close()

			if fetches {
				runs, err := store.GetFetchRuns(cmd.Context(), domain.PlayerID(player))
				if err != nil {
					return err
				}
				return notify.NewConsole().NotifyFetchHistory(cmd.Context(), runs)
			}

			runs, err := store.GetTrainingRuns(cmd.Context(), domain.PlayerID(player))
			if err != nil {
				return err
			}
			return notify.NewConsole().NotifyHistory(cmd.Context(), runs)
		},
	}
	cmd.Flags().Int64Var(&player, "player", 0, "only runs of this player id (default: all)")
	cmd.Flags().BoolVar(&fetches, "fetch", false, "list fetch runs instead of training runs")
	return cmd
}
