package savant

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/pitchmodel/internal/domain"
)

// mapStatcastRows convierte las filas CSV a domain.RawPitch.
func mapStatcastRows(raw []statcastRow) ([]domain.RawPitch, error) {
	pitches := make([]domain.RawPitch, 0, len(raw))
	for i, r := range raw {
		p, err := mapStatcastRow(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		pitches = append(pitches, p)
	}
	return pitches, nil
}

// mapStatcastRow convierte una fila. Una fecha ilegible es un error;
// un numérico ilegible es un faltante (NaN).
func mapStatcastRow(r statcastRow) (domain.RawPitch, error) {
	date, err := parseGameDate(r.GameDate)
	if err != nil {
		return domain.RawPitch{}, err
	}
	return domain.RawPitch{
		GameType:        domain.GameType(strings.TrimSpace(r.GameType)),
		PitchCode:       strings.TrimSpace(r.PitchType),
		ReleaseSpeed:    parseMeasure(r.ReleaseSpeed),
		ReleaseSpinRate: parseMeasure(r.ReleaseSpinRate),
		PfxX:            parseMeasure(r.PfxX),
		PfxZ:            parseMeasure(r.PfxZ),
		Stand:           strings.TrimSpace(r.Stand),
		GameDate:        date,
	}, nil
}

// parseGameDate acepta los formatos que Savant usa en game_date.
func parseGameDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.Date(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid game_date %q", s)
}

// parseMeasure parsea un numérico de Savant; vacío, "null" o ilegible es NaN.
func parseMeasure(s string) float64 {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "null", "na", "nan":
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// mapRegisterRow convierte una fila del register. ok=false si no tiene clave MLBAM.
func mapRegisterRow(r registerRow) (domain.Player, bool) {
	key := strings.TrimSpace(r.KeyMLBAM)
	if key == "" {
		return domain.Player{}, false
	}
	// el register exporta algunas claves como float ("660271.0")
	key = strings.TrimSuffix(key, ".0")
	id, err := domain.ParsePlayerID(key)
	if err != nil {
		return domain.Player{}, false
	}
	return domain.Player{
		Last:  strings.TrimSpace(r.NameLast),
		First: strings.TrimSpace(r.NameFirst),
		ID:    id,
	}, true
}
