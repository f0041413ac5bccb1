package ports

import (
	"context"

	"github.com/alejandrodnm/pitchmodel/internal/domain"
)

// RunStorage registra las ejecuciones de fetch y training.
type RunStorage interface {
	// SaveFetchRun persiste el resultado de descargar un pitcher.
	SaveFetchRun(ctx context.Context, r domain.FetchResult) error

	// SaveTrainingRun persiste el resultado de entrenar un pitcher.
	SaveTrainingRun(ctx context.Context, r domain.TrainingResult) error

	// GetTrainingRuns devuelve los entrenamientos, los más recientes primero.
	// playerID 0 devuelve todos.
	GetTrainingRuns(ctx context.Context, playerID domain.PlayerID) ([]domain.TrainingResult, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
