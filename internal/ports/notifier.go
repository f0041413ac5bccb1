package ports

import (
	"context"

	"github.com/alejandrodnm/pitchmodel/internal/domain"
)

// Notifier presenta los resultados al usuario.
type Notifier interface {
	// NotifyTraining muestra el resultado de un pitcher en cuanto termina,
	// respetando el orden de los datasets.
	NotifyTraining(ctx context.Context, r domain.TrainingResult) error

	// NotifyTrainingSummary muestra la tabla final de todos los pitchers.
	NotifyTrainingSummary(ctx context.Context, results []domain.TrainingResult) error

	// NotifyFetch muestra el resumen de la descarga.
	NotifyFetch(ctx context.Context, results []domain.FetchResult) error
}
