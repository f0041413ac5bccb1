package domain

import (
	"math"
	"sort"
	"strings"
	"time"
)

// PitchType es el código Statcast del tipo de lanzamiento (la etiqueta a predecir).
type PitchType string

// Catálogo de códigos Statcast. Un código fuera del catálogo sigue siendo una etiqueta válida.
const (
	PitchTypeUnknown         PitchType = ""
	PitchTypeFourSeam        PitchType = "FF"
	PitchTypeSinker          PitchType = "SI"
	PitchTypeCutter          PitchType = "FC"
	PitchTypeSlider          PitchType = "SL"
	PitchTypeSweeper         PitchType = "ST"
	PitchTypeSlurve          PitchType = "SV"
	PitchTypeCurveball       PitchType = "CU"
	PitchTypeKnuckleCurve    PitchType = "KC"
	PitchTypeSlowCurve       PitchType = "CS"
	PitchTypeChangeup        PitchType = "CH"
	PitchTypeSplitter        PitchType = "FS"
	PitchTypeForkball        PitchType = "FO"
	PitchTypeScrewball       PitchType = "SC"
	PitchTypeKnuckleball     PitchType = "KN"
	PitchTypeEephus          PitchType = "EP"
	PitchTypeFastball        PitchType = "FA"
	PitchTypePitchout        PitchType = "PO"
	PitchTypeIntentionalBall PitchType = "IN"
	PitchTypeAutomaticBall   PitchType = "AB"
	PitchTypeUnclassified    PitchType = "UN"
)

var knownPitchTypes = map[PitchType]string{
	PitchTypeFourSeam:        "4-Seam Fastball",
	PitchTypeSinker:          "Sinker",
	PitchTypeCutter:          "Cutter",
	PitchTypeSlider:          "Slider",
	PitchTypeSweeper:         "Sweeper",
	PitchTypeSlurve:          "Slurve",
	PitchTypeCurveball:       "Curveball",
	PitchTypeKnuckleCurve:    "Knuckle Curve",
	PitchTypeSlowCurve:       "Slow Curve",
	PitchTypeChangeup:        "Changeup",
	PitchTypeSplitter:        "Split-Finger",
	PitchTypeForkball:        "Forkball",
	PitchTypeScrewball:       "Screwball",
	PitchTypeKnuckleball:     "Knuckleball",
	PitchTypeEephus:          "Eephus",
	PitchTypeFastball:        "Fastball",
	PitchTypePitchout:        "Pitch Out",
	PitchTypeIntentionalBall: "Intentional Ball",
	PitchTypeAutomaticBall:   "Automatic Ball",
	PitchTypeUnclassified:    "Unknown",
}

// ParsePitchType convierte un código crudo en PitchType.
// Devuelve false solo si el código está vacío o es un marcador de faltante;
// códigos fuera del catálogo (p. ej. FT antiguos) se conservan tal cual.
func ParsePitchType(code string) (PitchType, bool) {
	pt := PitchType(strings.ToUpper(strings.TrimSpace(code)))
	switch pt {
	case "", "NULL", "NA", "NAN", "<NA>":
		return PitchTypeUnknown, false
	}
	return pt, true
}

// IsKnown devuelve true si el tipo es uno de los códigos Statcast del catálogo.
func (p PitchType) IsKnown() bool {
	_, ok := knownPitchTypes[p]
	return ok
}

// Description devuelve el nombre legible del tipo de lanzamiento.
func (p PitchType) Description() string {
	if d, ok := knownPitchTypes[p]; ok {
		return d
	}
	if p == PitchTypeUnknown {
		return "Missing"
	}
	return "Other"
}

func (p PitchType) String() string {
	if p == PitchTypeUnknown {
		return "<NA>"
	}
	return string(p)
}

// Handedness es el lado del plato desde el que batea el bateador (columna stand).
type Handedness string

const (
	HandednessUnknown Handedness = ""
	HandednessLeft    Handedness = "L"
	HandednessRight   Handedness = "R"
)

// ParseHandedness normaliza el valor stand. Valores no reconocidos quedan como faltantes.
func ParseHandedness(v string) Handedness {
	switch Handedness(strings.ToUpper(strings.TrimSpace(v))) {
	case HandednessLeft:
		return HandednessLeft
	case HandednessRight:
		return HandednessRight
	default:
		return HandednessUnknown
	}
}

// GameType es el código de tipo de partido de Statcast (R, F, D, L, W, S, E, ...).
type GameType string

const (
	GameTypeRegular      GameType = "R"
	GameTypeSpring       GameType = "S"
	GameTypeExhibition   GameType = "E"
	GameTypeWildCard     GameType = "F"
	GameTypeDivision     GameType = "D"
	GameTypeLeagueSeries GameType = "L"
	GameTypeWorldSeries  GameType = "W"
)

// IsExhibition devuelve true para partidos de exhibición y spring training.
func (g GameType) IsExhibition() bool {
	return g == GameTypeExhibition || g == GameTypeSpring
}

// RawPitch es un evento tal como llega de la fuente externa, antes de normalizar.
// Los campos numéricos ausentes valen NaN.
type RawPitch struct {
	GameType        GameType
	PitchCode       string
	ReleaseSpeed    float64
	ReleaseSpinRate float64
	PfxX            float64
	PfxZ            float64
	Stand           string
	GameDate        time.Time
}

// PitchEvent es un lanzamiento normalizado: exactamente las 7 columnas del dataset.
type PitchEvent struct {
	PitchType       PitchType
	ReleaseSpeed    float64 // mph, NaN si falta
	ReleaseSpinRate float64 // rpm, NaN si falta
	PfxX            float64 // movimiento horizontal (pies), NaN si falta
	PfxZ            float64 // movimiento vertical (pies), NaN si falta
	Stand           Handedness
	GameDate        time.Time // medianoche UTC
}

// Date trunca t a medianoche UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Missing devuelve NaN, el marcador de valor numérico ausente.
func Missing() float64 {
	return math.NaN()
}

// SortPitchTypes ordena y deduplica una lista de tipos.
func SortPitchTypes(types []PitchType) []PitchType {
	seen := make(map[PitchType]struct{}, len(types))
	out := make([]PitchType, 0, len(types))
	for _, t := range types {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
