package domain

// preparation.go: preparación de datos previa al entrenamiento.
//
// El split se hace por fecha de partido y no al azar: lanzamientos del mismo
// partido están correlacionados, así que el test es siempre el último partido
// completo y el train todo lo anterior.

import "math"

// DefaultMinPitchCount es el soporte mínimo de una etiqueta para entrenar con ella.
const DefaultMinPitchCount = 5

// SplitLastGame separa el dataset en partidos previos (train) y el último partido (test).
// Todas las filas con la fecha máxima van a test y el resto a train, respetando el orden.
// Con una sola fecha el train queda vacío; con el dataset vacío ambos quedan vacíos.
func SplitLastGame(d Dataset) (train, test Dataset) {
	last, ok := d.LastGameDate()
	if !ok {
		return d.with(nil), d.with(nil)
	}

	var prev, current []PitchEvent
	for _, e := range d.Events {
		if e.GameDate.Equal(last) {
			current = append(current, e)
		} else {
			prev = append(prev, e)
		}
	}
	return d.with(prev), d.with(current)
}

// PitchTypeCounts cuenta las apariciones de cada tipo.
// Los tipos desconocidos (faltantes) no se cuentan.
func PitchTypeCounts(d Dataset) map[PitchType]int {
	counts := make(map[PitchType]int)
	for _, e := range d.Events {
		if e.PitchType == PitchTypeUnknown {
			continue
		}
		counts[e.PitchType]++
	}
	return counts
}

// FilterRarePitchTypes elimina las filas cuyo tipo aparece menos de minCount veces
// dentro del propio dataset. Solo se aplica al train: el test nunca se filtra.
func FilterRarePitchTypes(d Dataset, minCount int) Dataset {
	counts := PitchTypeCounts(d)
	kept := make([]PitchEvent, 0, len(d.Events))
	for _, e := range d.Events {
		if e.PitchType == PitchTypeUnknown {
			continue
		}
		if counts[e.PitchType] >= minCount {
			kept = append(kept, e)
		}
	}
	return d.with(kept)
}

// Column es el nombre de una columna del dataset normalizado.
type Column string

const (
	ColumnPitchType       Column = "pitch_type"
	ColumnReleaseSpeed    Column = "release_speed"
	ColumnReleaseSpinRate Column = "release_spin_rate"
	ColumnPfxX            Column = "pfx_x"
	ColumnPfxZ            Column = "pfx_z"
	ColumnStand           Column = "stand"
	ColumnGameDate        Column = "game_date"
)

// Columns es el esquema del dataset, en orden.
var Columns = []Column{
	ColumnPitchType,
	ColumnReleaseSpeed,
	ColumnReleaseSpinRate,
	ColumnPfxX,
	ColumnPfxZ,
	ColumnStand,
	ColumnGameDate,
}

// MissingCount es el número de valores faltantes de una columna.
type MissingCount struct {
	Column  Column
	Missing int
}

// CountMissing cuenta los valores faltantes por columna, en el orden del esquema.
func CountMissing(d Dataset) []MissingCount {
	counts := make(map[Column]int, len(Columns))
	for _, e := range d.Events {
		if e.PitchType == PitchTypeUnknown {
			counts[ColumnPitchType]++
		}
		if math.IsNaN(e.ReleaseSpeed) {
			counts[ColumnReleaseSpeed]++
		}
		if math.IsNaN(e.ReleaseSpinRate) {
			counts[ColumnReleaseSpinRate]++
		}
		if math.IsNaN(e.PfxX) {
			counts[ColumnPfxX]++
		}
		if math.IsNaN(e.PfxZ) {
			counts[ColumnPfxZ]++
		}
		if e.Stand == HandednessUnknown {
			counts[ColumnStand]++
		}
		if e.GameDate.IsZero() {
			counts[ColumnGameDate]++
		}
	}

	out := make([]MissingCount, len(Columns))
	for i, c := range Columns {
		out[i] = MissingCount{Column: c, Missing: counts[c]}
	}
	return out
}
