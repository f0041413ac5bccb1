package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/pitchmodel/config"
	"github.com/alejandrodnm/pitchmodel/internal/domain"
	"github.com/alejandrodnm/pitchmodel/internal/fetcher"
)

func TestFetcherConfig(t *testing.T) {
	cfg := &config.Config{Fetch: config.FetchConfig{
		Players:   []config.PlayerConfig{{Last: "Imanaga", First: "Shota"}, {Last: "Brown", ID: 605400}},
		StartDate: "2024-03-01",
		EndDate:   "2024-10-01",
		Workers:   2,
	}}

	fc, err := fetcherConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), fc.StartDate)
	assert.Equal(t, time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC), fc.EndDate)
	assert.Equal(t, 2, fc.Workers)
	assert.Equal(t, []domain.Player{{Last: "Imanaga", First: "Shota"}, {Last: "Brown", ID: 605400}}, fc.Players)
}

func TestFetcherConfig_DefaultPlayers(t *testing.T) {
	fc, err := fetcherConfig(&config.Config{Fetch: config.FetchConfig{StartDate: "2022-01-01", EndDate: "2024-12-31"}})
	require.NoError(t, err)
	assert.Equal(t, fetcher.DefaultPlayers(), fc.Players)
	require.Len(t, fc.Players, 7)
}

func TestFetcherConfig_BadDate(t *testing.T) {
	_, err := fetcherConfig(&config.Config{Fetch: config.FetchConfig{StartDate: "yesterday", EndDate: "2024-10-01"}})
	assert.Error(t, err)
}

func TestTrainerConfig(t *testing.T) {
	cfg := &config.Config{Train: config.TrainConfig{
		Grid:          []float64{0.5, 5},
		Folds:         3,
		Jobs:          2,
		Workers:       4,
		MinPitchCount: 10,
		MaxIter:       200,
	}}

	tc := trainerConfig(cfg)
	assert.Equal(t, []float64{0.5, 5}, tc.Search.Grid)
	assert.Equal(t, 3, tc.Search.Folds)
	assert.Equal(t, 2, tc.Search.Jobs)
	assert.Equal(t, 200, tc.Search.Pipeline.MaxIter)
	assert.Equal(t, 10, tc.MinPitchCount)
	assert.Equal(t, 4, tc.Workers)
	assert.Equal(t, []string{"stand"}, tc.Search.Pipeline.CategoricalFeatures)
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"fetch", "train", "inspect", "evaluate", "history"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
	for _, flag := range []string{"config", "verbose", "format"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
	history, _, err := root.Find([]string{"history"})
	require.NoError(t, err)
	assert.NotNil(t, history.Flags().Lookup("fetch"))
	assert.NotNil(t, history.Flags().Lookup("player"))
}
