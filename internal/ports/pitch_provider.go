package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/pitchmodel/internal/domain"
)

// PlayerResolver traduce un nombre de jugador a su clave MLBAM.
type PlayerResolver interface {
	// LookupPlayer busca (apellido, nombre) sin distinguir mayúsculas.
	// Si no hay coincidencias devuelve domain.ErrPlayerNotFound.
	// Si hay varias devuelve la primera.
	LookupPlayer(ctx context.Context, last, first string) (domain.Player, error)
}

// PitchProvider obtiene los lanzamientos de un pitcher desde la fuente externa.
type PitchProvider interface {
	// FetchPitches devuelve todos los eventos lanzados por el pitcher entre start y end,
	// ambos inclusive, sin filtrar ni normalizar.
	FetchPitches(ctx context.Context, start, end time.Time, id domain.PlayerID) ([]domain.RawPitch, error)
}
