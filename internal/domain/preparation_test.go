package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func makeEvent(pt PitchType, date time.Time, speed float64) PitchEvent {
	return PitchEvent{
		PitchType:       pt,
		ReleaseSpeed:    speed,
		ReleaseSpinRate: 2300,
		PfxX:            -0.5,
		PfxZ:            1.2,
		Stand:           HandednessRight,
		GameDate:        date,
	}
}

func makeDataset(events ...PitchEvent) Dataset {
	return Dataset{PlayerID: 684007, Events: events}
}

// --- SplitLastGame ---

func TestSplitLastGame_TwoDates(t *testing.T) {
	a := day(2024, time.May, 1)
	b := day(2024, time.May, 7)

	var events []PitchEvent
	for i := 0; i < 6; i++ {
		events = append(events, makeEvent(PitchTypeFourSeam, a, float64(90+i)))
	}
	for i := 0; i < 4; i++ {
		events = append(events, makeEvent(PitchTypeSlider, b, float64(80+i)))
	}

	train, test := SplitLastGame(makeDataset(events...))

	require.Equal(t, 6, train.Len())
	require.Equal(t, 4, test.Len())
	for _, e := range train.Events {
		assert.True(t, e.GameDate.Equal(a))
	}
	for _, e := range test.Events {
		assert.True(t, e.GameDate.Equal(b))
	}
	assert.Equal(t, PlayerID(684007), train.PlayerID)
	assert.Equal(t, PlayerID(684007), test.PlayerID)
}

func TestSplitLastGame_PartitionsEveryRowOnce(t *testing.T) {
	d1 := day(2023, time.April, 2)
	d2 := day(2023, time.April, 9)
	d3 := day(2023, time.April, 15)

	// Orden intercalado: la última fecha no está al final
	ds := makeDataset(
		makeEvent(PitchTypeFourSeam, d3, 1),
		makeEvent(PitchTypeFourSeam, d1, 2),
		makeEvent(PitchTypeChangeup, d2, 3),
		makeEvent(PitchTypeSlider, d3, 4),
		makeEvent(PitchTypeCurveball, d1, 5),
	)

	train, test := SplitLastGame(ds)
	require.Equal(t, ds.Len(), train.Len()+test.Len())

	// test: fechas = {max}
	dates := test.GameDates()
	require.Len(t, dates, 1)
	assert.True(t, dates[0].Equal(d3))

	// train ∪ test reconstruye el input (speed identifica la fila)
	seen := map[float64]int{}
	for _, e := range append(append([]PitchEvent{}, train.Events...), test.Events...) {
		seen[e.ReleaseSpeed]++
	}
	for _, e := range ds.Events {
		assert.Equal(t, 1, seen[e.ReleaseSpeed])
	}

	// orden original preservado dentro de cada partición
	assert.Equal(t, []float64{2, 3, 5}, speeds(train))
	assert.Equal(t, []float64{1, 4}, speeds(test))
}

func TestSplitLastGame_SingleDate(t *testing.T) {
	d := day(2024, time.June, 1)
	ds := makeDataset(makeEvent(PitchTypeFourSeam, d, 95), makeEvent(PitchTypeSlider, d, 85))

	train, test := SplitLastGame(ds)
	assert.Equal(t, 0, train.Len())
	assert.Equal(t, 2, test.Len())
}

func TestSplitLastGame_Empty(t *testing.T) {
	train, test := SplitLastGame(makeDataset())
	assert.Equal(t, 0, train.Len())
	assert.Equal(t, 0, test.Len())
}

// --- FilterRarePitchTypes ---

func TestFilterRarePitchTypes_DropsBelowThreshold(t *testing.T) {
	d := day(2024, time.May, 1)
	var events []PitchEvent
	for i := 0; i < 10; i++ {
		events = append(events, makeEvent(PitchTypeFourSeam, d, 95))
	}
	for i := 0; i < 3; i++ {
		events = append(events, makeEvent(PitchTypeSlider, d, 85))
	}
	for i := 0; i < 6; i++ {
		events = append(events, makeEvent(PitchTypeChangeup, d, 87))
	}

	filtered := FilterRarePitchTypes(makeDataset(events...), DefaultMinPitchCount)

	counts := PitchTypeCounts(filtered)
	assert.Equal(t, map[PitchType]int{PitchTypeFourSeam: 10, PitchTypeChangeup: 6}, counts)
	assert.Equal(t, 16, filtered.Len())
}

func TestFilterRarePitchTypes_ExactThresholdKept(t *testing.T) {
	d := day(2024, time.May, 1)
	var events []PitchEvent
	for i := 0; i < 5; i++ {
		events = append(events, makeEvent(PitchTypeCutter, d, 90))
	}
	events = append(events, makeEvent(PitchTypeSweeper, d, 82))

	filtered := FilterRarePitchTypes(makeDataset(events...), 5)
	assert.Equal(t, 5, filtered.Len())
	for label, n := range PitchTypeCounts(filtered) {
		assert.GreaterOrEqual(t, n, 5, "label %s", label)
	}
}

func TestFilterRarePitchTypes_UnknownLabelsDropped(t *testing.T) {
	d := day(2024, time.May, 1)
	var events []PitchEvent
	for i := 0; i < 6; i++ {
		events = append(events, makeEvent(PitchTypeUnknown, d, 90))
		events = append(events, makeEvent(PitchTypeSinker, d, 93))
	}

	filtered := FilterRarePitchTypes(makeDataset(events...), 5)
	assert.Equal(t, 6, filtered.Len())
	for _, e := range filtered.Events {
		assert.Equal(t, PitchTypeSinker, e.PitchType)
	}
}

// --- NormalizeDataset ---

func TestNormalizeDataset_ExcludesExhibitionAndCasts(t *testing.T) {
	ts := time.Date(2024, time.March, 30, 19, 5, 0, 0, time.UTC)
	raws := []RawPitch{
		{GameType: GameTypeRegular, PitchCode: "FF", ReleaseSpeed: 94.1, ReleaseSpinRate: 2400, PfxX: -0.6, PfxZ: 1.4, Stand: "R", GameDate: ts},
		{GameType: GameTypeSpring, PitchCode: "SL", ReleaseSpeed: 85, GameDate: ts},
		{GameType: GameTypeExhibition, PitchCode: "CH", ReleaseSpeed: 86, GameDate: ts},
		{GameType: GameTypeDivision, PitchCode: "fs", ReleaseSpeed: 86.5, ReleaseSpinRate: math.NaN(), Stand: "l", GameDate: ts},
		{GameType: GameTypeRegular, PitchCode: "", ReleaseSpeed: math.NaN(), Stand: "", GameDate: ts},
	}

	ds := NormalizeDataset(684007, raws)

	require.Equal(t, 3, ds.Len())
	assert.Equal(t, PitchTypeFourSeam, ds.Events[0].PitchType)
	assert.Equal(t, PitchTypeSplitter, ds.Events[1].PitchType)
	assert.Equal(t, HandednessLeft, ds.Events[1].Stand)
	assert.True(t, math.IsNaN(ds.Events[1].ReleaseSpinRate))
	assert.Equal(t, PitchTypeUnknown, ds.Events[2].PitchType)
	assert.Equal(t, HandednessUnknown, ds.Events[2].Stand)
	assert.Equal(t, day(2024, time.March, 30), ds.Events[0].GameDate)
	assert.Equal(t, []PitchType{PitchTypeFourSeam, PitchTypeSplitter}, ds.Categories)
}

func TestNormalizeDataset_Idempotent(t *testing.T) {
	raws := []RawPitch{
		{GameType: GameTypeRegular, PitchCode: "FF", ReleaseSpeed: 94, GameDate: day(2024, time.April, 1)},
		{GameType: GameTypeRegular, PitchCode: "SL", ReleaseSpeed: 84, GameDate: day(2024, time.April, 1)},
	}
	a := NormalizeDataset(1, raws)
	b := NormalizeDataset(1, raws)
	assert.Equal(t, a, b)
}

func TestNormalizeDataset_KeepsUncataloguedCodes(t *testing.T) {
	var raws []RawPitch
	for i := 0; i < 10; i++ {
		raws = append(raws,
			RawPitch{GameType: GameTypeRegular, PitchCode: "FT", ReleaseSpeed: 92, GameDate: day(2022, time.April, 10)},
			RawPitch{GameType: GameTypeRegular, PitchCode: "FF", ReleaseSpeed: 94, GameDate: day(2022, time.April, 10)},
		)
	}

	ds := NormalizeDataset(543294, raws)
	assert.Equal(t, []PitchType{PitchTypeFourSeam, PitchType("FT")}, ds.Categories)
	assert.Equal(t, PitchType("FT"), ds.Events[0].PitchType)

	filtered := FilterRarePitchTypes(ds, 5)
	assert.Equal(t, 20, filtered.Len())
	for _, m := range CountMissing(ds) {
		if m.Column == ColumnPitchType {
			assert.Equal(t, 0, m.Missing)
		}
	}
}

func TestParsePitchType(t *testing.T) {
	cases := map[string]struct {
		want PitchType
		ok   bool
	}{
		"FF":   {PitchTypeFourSeam, true},
		" sl ": {PitchTypeSlider, true},
		"FT":   {PitchType("FT"), true},
		"":     {PitchTypeUnknown, false},
		"null": {PitchTypeUnknown, false},
		"<NA>": {PitchTypeUnknown, false},
	}
	for raw, tc := range cases {
		got, ok := ParsePitchType(raw)
		assert.Equal(t, tc.want, got, raw)
		assert.Equal(t, tc.ok, ok, raw)
	}
	assert.Equal(t, "Sweeper", PitchTypeSweeper.Description())
	assert.Equal(t, "Other", PitchType("FT").Description())
	assert.Equal(t, "Missing", PitchTypeUnknown.Description())
}

// --- CountMissing ---

func TestCountMissing(t *testing.T) {
	d := day(2024, time.May, 1)
	e1 := makeEvent(PitchTypeFourSeam, d, math.NaN())
	e2 := makeEvent(PitchTypeUnknown, d, 90)
	e2.Stand = HandednessUnknown
	e2.PfxZ = math.NaN()

	missing := CountMissing(makeDataset(e1, e2))
	require.Len(t, missing, len(Columns))

	got := map[Column]int{}
	for _, m := range missing {
		got[m.Column] = m.Missing
	}
	assert.Equal(t, 1, got[ColumnPitchType])
	assert.Equal(t, 1, got[ColumnReleaseSpeed])
	assert.Equal(t, 0, got[ColumnReleaseSpinRate])
	assert.Equal(t, 1, got[ColumnPfxZ])
	assert.Equal(t, 1, got[ColumnStand])
	assert.Equal(t, 0, got[ColumnGameDate])
}

func TestUnseenLabels(t *testing.T) {
	d := day(2024, time.May, 1)
	test := makeDataset(
		makeEvent(PitchTypeFourSeam, d, 1),
		makeEvent(PitchTypeSlider, d, 2),
		makeEvent(PitchTypeSlider, d, 3),
	)
	assert.Equal(t, []PitchType{PitchTypeSlider}, UnseenLabels(test, []PitchType{PitchTypeFourSeam, PitchTypeChangeup}))
	assert.Empty(t, UnseenLabels(test, []PitchType{PitchTypeFourSeam, PitchTypeSlider}))
}

func speeds(d Dataset) []float64 {
	out := make([]float64, len(d.Events))
	for i, e := range d.Events {
		out[i] = e.ReleaseSpeed
	}
	return out
}
