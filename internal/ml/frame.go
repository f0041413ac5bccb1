// Package ml implementa el pipeline de clasificación por pitcher: imputación,
// estandarización, one-hot, regresión logística multinomial y búsqueda en grilla
// con validación cruzada estratificada.
package ml

import (
	"errors"
	"fmt"
)

// Errores centinela del entrenamiento.
var (
	ErrEmptyTrainingSet = errors.New("empty training set")
	ErrSingleClass      = errors.New("training set needs at least 2 classes")
	ErrTooFewSamples    = errors.New("too few samples for cross-validation")
	ErrNotFitted        = errors.New("model is not fitted")
	ErrMissingColumn    = errors.New("missing column")
	ErrLengthMismatch   = errors.New("length mismatch")
)

// Frame es una tabla columnar con columnas numéricas y categóricas con nombre.
// Los numéricos faltantes son NaN y los categóricos faltantes la cadena vacía.
type Frame struct {
	Numeric     map[string][]float64
	Categorical map[string][]string
}

// NewFrame crea un Frame vacío.
func NewFrame() Frame {
	return Frame{
		Numeric:     make(map[string][]float64),
		Categorical: make(map[string][]string),
	}
}

// Len devuelve el número de filas. Un Frame sin columnas tiene 0 filas.
func (f Frame) Len() int {
	for _, c := range f.Numeric {
		return len(c)
	}
	for _, c := range f.Categorical {
		return len(c)
	}
	return 0
}

// Validate verifica que todas las columnas tengan el mismo largo.
func (f Frame) Validate() error {
	n := f.Len()
	for name, c := range f.Numeric {
		if len(c) != n {
			return fmt.Errorf("ml.Frame: column %q has %d rows, want %d: %w", name, len(c), n, ErrLengthMismatch)
		}
	}
	for name, c := range f.Categorical {
		if len(c) != n {
			return fmt.Errorf("ml.Frame: column %q has %d rows, want %d: %w", name, len(c), n, ErrLengthMismatch)
		}
	}
	return nil
}

// Take devuelve un Frame con las filas idx, en ese orden.
func (f Frame) Take(idx []int) Frame {
	out := NewFrame()
	for name, c := range f.Numeric {
		col := make([]float64, len(idx))
		for i, j := range idx {
			col[i] = c[j]
		}
		out.Numeric[name] = col
	}
	for name, c := range f.Categorical {
		col := make([]string, len(idx))
		for i, j := range idx {
			col[i] = c[j]
		}
		out.Categorical[name] = col
	}
	return out
}

// numericColumns extrae las columnas pedidas. Las no declaradas se ignoran.
func (f Frame) numericColumns(names []string) ([][]float64, error) {
	cols := make([][]float64, len(names))
	for i, name := range names {
		c, ok := f.Numeric[name]
		if !ok {
			return nil, fmt.Errorf("ml.Frame: numeric %q: %w", name, ErrMissingColumn)
		}
		cols[i] = c
	}
	return cols, nil
}

func (f Frame) categoricalColumns(names []string) ([][]string, error) {
	cols := make([][]string, len(names))
	for i, name := range names {
		c, ok := f.Categorical[name]
		if !ok {
			return nil, fmt.Errorf("ml.Frame: categorical %q: %w", name, ErrMissingColumn)
		}
		cols[i] = c
	}
	return cols, nil
}

func takeLabels(y []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}
	return out
}
