package main

import (
	"github.com/spf13/cobra"

	"github.com/alejandrodnm/pitchmodel/internal/adapters/modelstore"
	"github.com/alejandrodnm/pitchmodel/internal/adapters/notify"
	"github.com/alejandrodnm/pitchmodel/internal/adapters/parquetstore"
	"github.com/alejandrodnm/pitchmodel/internal/domain"
	"github.com/alejandrodnm/pitchmodel/internal/trainer"
)

func evaluateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate <player_id>",
		Short: "Reload a saved model and score it on the last game of its dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParsePlayerID(args[0])
			if err != nil {
				return err
			}
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			t := trainer.New(trainerConfig(cfg), parquetstore.New(cfg.Paths.DataDir), modelstore.New(cfg.Paths.ModelsDir), nil, nil)
			eval, err := t.Evaluate(cmd.Context(), id)
			if err != nil {
				return err
			}
			return notify.NewConsole().NotifyEvaluation(cmd.Context(), eval)
		},
	}
}
