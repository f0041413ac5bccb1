package parquetstore

// store.go: persistencia de datasets por pitcher en Parquet.
//
// Un archivo por pitcher: <dir>/<player_id>.parquet. Los numéricos faltantes se escriben
// como null y el conjunto de categorías de pitch_type viaja en el key/value metadata
// del archivo, de modo que Load reconstruye el Dataset completo.

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/alejandrodnm/pitchmodel/internal/domain"
)

const (
	fileExt = ".parquet"

	// CategoriesKey es la clave del metadata con las categorías de pitch_type, separadas por coma.
	CategoriesKey = "pitch_type.categories"
	playerIDKey   = "pitchmodel.player_id"
)

var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// pitchRow es el esquema físico de una fila.
type pitchRow struct {
	PitchType       *string  `parquet:"pitch_type,optional,dict"`
	ReleaseSpeed    *float64 `parquet:"release_speed,optional"`
	ReleaseSpinRate *float64 `parquet:"release_spin_rate,optional"`
	PfxX            *float64 `parquet:"pfx_x,optional"`
	PfxZ            *float64 `parquet:"pfx_z,optional"`
	Stand           *string  `parquet:"stand,optional,dict"`
	GameDate        int32    `parquet:"game_date,date"`
}

// Store lee y escribe datasets en un directorio.
type Store struct {
	dir string
}

// New crea un Store sobre dir. El directorio se crea en el primer Save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir devuelve el directorio del store.
func (s *Store) Dir() string {
	return s.dir
}

// Path devuelve la ruta del archivo de un pitcher.
func (s *Store) Path(id domain.PlayerID) string {
	return filepath.Join(s.dir, id.String()+fileExt)
}

// Save escribe el dataset, reemplazando el archivo anterior si existía.
func (s *Store) Save(d domain.Dataset) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("parquetstore.Save: %w", err)
	}

	rows := make([]pitchRow, len(d.Events))
	for i, e := range d.Events {
		rows[i] = toRow(e)
	}

	path := s.Path(d.PlayerID)
	tmp := path + ".tmp"
	err := parquet.WriteFile(tmp, rows,
		parquet.KeyValueMetadata(CategoriesKey, encodeCategories(d.Categories)),
		parquet.KeyValueMetadata(playerIDKey, d.PlayerID.String()),
	)
	if err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("parquetstore.Save: player %s: %w", d.PlayerID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("parquetstore.Save: %w", err)
	}

	slog.Debug("dataset saved", "player_id", d.PlayerID, "rows", len(rows), "path", path)
	return path, nil
}

// Load lee el dataset de un pitcher.
func (s *Store) Load(id domain.PlayerID) (domain.Dataset, error) {
	path := s.Path(id)

	categories, err := readCategories(path)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("parquetstore.Load: player %s: %w", id, err)
	}

	rows, err := parquet.ReadFile[pitchRow](path)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("parquetstore.Load: player %s: %w", id, err)
	}

	events := make([]domain.PitchEvent, len(rows))
	for i, r := range rows {
		events[i] = fromRow(r)
	}
	return domain.Dataset{PlayerID: id, Events: events, Categories: categories}, nil
}

// List devuelve los ids de los pitchers con dataset, en orden ascendente.
// Un directorio inexistente es una lista vacía.
func (s *Store) List() ([]domain.PlayerID, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("parquetstore.List: %w", err)
	}

	var ids []domain.PlayerID
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		id, err := domain.ParsePlayerID(strings.TrimSuffix(name, fileExt))
		if err != nil {
			slog.Debug("skipping non-dataset file", "file", name)
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func readCategories(path string) ([]domain.PitchType, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, err
	}
	raw, ok := pf.Lookup(CategoriesKey)
	if !ok {
		return nil, nil
	}
	return decodeCategories(raw), nil
}

func encodeCategories(types []domain.PitchType) string {
	codes := make([]string, len(types))
	for i, t := range types {
		codes[i] = string(t)
	}
	return strings.Join(codes, ",")
}

func decodeCategories(raw string) []domain.PitchType {
	if raw == "" {
		return []domain.PitchType{}
	}
	parts := strings.Split(raw, ",")
	out := make([]domain.PitchType, 0, len(parts))
	for _, p := range parts {
		if pt, ok := domain.ParsePitchType(p); ok {
			out = append(out, pt)
		}
	}
	return out
}

func toRow(e domain.PitchEvent) pitchRow {
	return pitchRow{
		PitchType:       optionalString(string(e.PitchType)),
		ReleaseSpeed:    optionalFloat(e.ReleaseSpeed),
		ReleaseSpinRate: optionalFloat(e.ReleaseSpinRate),
		PfxX:            optionalFloat(e.PfxX),
		PfxZ:            optionalFloat(e.PfxZ),
		Stand:           optionalString(string(e.Stand)),
		GameDate:        int32(domain.Date(e.GameDate).Sub(epoch) / (24 * time.Hour)),
	}
}

func fromRow(r pitchRow) domain.PitchEvent {
	e := domain.PitchEvent{
		ReleaseSpeed:    valueOrMissing(r.ReleaseSpeed),
		ReleaseSpinRate: valueOrMissing(r.ReleaseSpinRate),
		PfxX:            valueOrMissing(r.PfxX),
		PfxZ:            valueOrMissing(r.PfxZ),
		GameDate:        epoch.AddDate(0, 0, int(r.GameDate)),
	}
	if r.PitchType != nil {
		e.PitchType, _ = domain.ParsePitchType(*r.PitchType)
	}
	if r.Stand != nil {
		e.Stand = domain.ParseHandedness(*r.Stand)
	}
	return e
}

func optionalFloat(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func valueOrMissing(v *float64) float64 {
	if v == nil {
		return domain.Missing()
	}
	return *v
}
