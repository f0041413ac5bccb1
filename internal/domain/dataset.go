package domain

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"
)

// Errores centinela del dominio.
var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrEmptyDataset   = errors.New("dataset is empty")
)

// PlayerID es la clave MLBAM de un jugador.
type PlayerID int64

func (id PlayerID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParsePlayerID parsea una clave MLBAM decimal.
func ParsePlayerID(s string) (PlayerID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("domain.ParsePlayerID: invalid id %q", s)
	}
	return PlayerID(v), nil
}

// Player identifica a un lanzador por nombre. Si ID != 0 no hace falta resolverlo.
type Player struct {
	Last  string
	First string
	ID    PlayerID
}

// Name devuelve "Apellido, Nombre".
func (p Player) Name() string {
	if p.First == "" {
		return p.Last
	}
	return p.Last + ", " + p.First
}

// Dataset es la colección de lanzamientos de un pitcher en un rango de fechas,
// en el orden en que se obtuvieron.
type Dataset struct {
	PlayerID PlayerID
	Events   []PitchEvent
	// Categories es el conjunto ordenado de tipos conocidos presentes al hacer fetch.
	Categories []PitchType
}

// Len devuelve el número de lanzamientos.
func (d Dataset) Len() int {
	return len(d.Events)
}

// Labels devuelve la columna pitch_type.
func (d Dataset) Labels() []PitchType {
	out := make([]PitchType, len(d.Events))
	for i, e := range d.Events {
		out[i] = e.PitchType
	}
	return out
}

// GameDates devuelve las fechas distintas en orden ascendente.
func (d Dataset) GameDates() []time.Time {
	seen := make(map[time.Time]struct{})
	var dates []time.Time
	for _, e := range d.Events {
		if _, ok := seen[e.GameDate]; ok {
			continue
		}
		seen[e.GameDate] = struct{}{}
		dates = append(dates, e.GameDate)
	}
	sortDates(dates)
	return dates
}

// LastGameDate devuelve la fecha máxima del dataset. ok=false si está vacío.
func (d Dataset) LastGameDate() (last time.Time, ok bool) {
	for _, e := range d.Events {
		if !ok || e.GameDate.After(last) {
			last = e.GameDate
			ok = true
		}
	}
	return last, ok
}

// with devuelve un Dataset con los mismos metadatos y otros eventos.
func (d Dataset) with(events []PitchEvent) Dataset {
	return Dataset{PlayerID: d.PlayerID, Events: events, Categories: d.Categories}
}

// NormalizeDataset convierte los eventos crudos en el dataset del pitcher:
// descarta partidos de exhibición y spring training, proyecta a las 7 columnas
// y castea el código de lanzamiento a PitchType. Solo el código vacío queda como faltante.
func NormalizeDataset(id PlayerID, raws []RawPitch) Dataset {
	events := make([]PitchEvent, 0, len(raws))
	var present []PitchType
	uncatalogued := make(map[PitchType]int)
	for _, r := range raws {
		if r.GameType.IsExhibition() {
			continue
		}
		pt, ok := ParsePitchType(r.PitchCode)
		if ok {
			present = append(present, pt)
			if !pt.IsKnown() {
				uncatalogued[pt]++
			}
		}
		events = append(events, PitchEvent{
			PitchType:       pt,
			ReleaseSpeed:    r.ReleaseSpeed,
			ReleaseSpinRate: r.ReleaseSpinRate,
			PfxX:            r.PfxX,
			PfxZ:            r.PfxZ,
			Stand:           ParseHandedness(r.Stand),
			GameDate:        Date(r.GameDate),
		})
	}
	for pt, n := range uncatalogued {
		slog.Warn("pitch type outside the statcast catalog, kept as its own label",
			"player_id", id, "pitch_type", string(pt), "rows", n)
	}
	return Dataset{
		PlayerID:   id,
		Events:     events,
		Categories: SortPitchTypes(present),
	}
}

func sortDates(dates []time.Time) {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
}
