package ml

import (
	"fmt"
	"math"
)

// Accuracy devuelve la fracción de predicciones iguales a la etiqueta real.
// Sin filas devuelve NaN.
func Accuracy(pred, truth []string) (float64, error) {
	if len(pred) != len(truth) {
		return 0, fmt.Errorf("ml.Accuracy: %d predictions for %d labels: %w", len(pred), len(truth), ErrLengthMismatch)
	}
	if len(truth) == 0 {
		return math.NaN(), nil
	}
	hits := 0
	for i := range truth {
		if pred[i] == truth[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(truth)), nil
}
