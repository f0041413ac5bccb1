package ml

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// PipelineConfig declara las columnas que usa el pipeline y los hiperparámetros
// del clasificador. Cualquier columna no declarada se descarta.
type PipelineConfig struct {
	NumericFeatures     []string
	CategoricalFeatures []string
	C                   float64
	MaxIter             int
	Tol                 float64
}

// DefaultPipelineConfig devuelve la configuración de features de pitch tracking.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		NumericFeatures:     []string{"release_speed", "release_spin_rate", "pfx_x", "pfx_z"},
		CategoricalFeatures: []string{"stand"},
		C:                   1.0,
		MaxIter:             defaultMaxIter,
		Tol:                 defaultTol,
	}
}

// WithC devuelve una copia de la configuración con otro C.
func (c PipelineConfig) WithC(v float64) PipelineConfig {
	c.C = v
	return c
}

// Pipeline encapsula imputadores, scaler, encoder y clasificador como una unidad.
// Todos los campos son exportados para poder serializarlo.
type Pipeline struct {
	NumericFeatures     []string
	CategoricalFeatures []string

	NumericImputer     MedianImputer
	Scaler             StandardScaler
	CategoricalImputer ModeImputer
	Encoder            OneHotEncoder
	Classifier         *LogisticRegression
}

// NewPipeline crea un pipeline sin ajustar.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	clf := NewLogisticRegression(cfg.C)
	if cfg.MaxIter > 0 {
		clf.MaxIter = cfg.MaxIter
	}
	if cfg.Tol > 0 {
		clf.Tol = cfg.Tol
	}
	return &Pipeline{
		NumericFeatures:     append([]string(nil), cfg.NumericFeatures...),
		CategoricalFeatures: append([]string(nil), cfg.CategoricalFeatures...),
		Classifier:          clf,
	}
}

// Fit ajusta todos los pasos sobre el train. Los estadísticos de los
// transformadores se calculan solo con estas filas.
func (p *Pipeline) Fit(X Frame, y []string) error {
	if err := X.Validate(); err != nil {
		return fmt.Errorf("ml.Pipeline.Fit: %w", err)
	}
	n := X.Len()
	if n == 0 || len(y) == 0 {
		return fmt.Errorf("ml.Pipeline.Fit: %w", ErrEmptyTrainingSet)
	}
	if len(y) != n {
		return fmt.Errorf("ml.Pipeline.Fit: %d labels for %d rows: %w", len(y), n, ErrLengthMismatch)
	}

	num, err := X.numericColumns(p.NumericFeatures)
	if err != nil {
		return fmt.Errorf("ml.Pipeline.Fit: %w", err)
	}
	cat, err := X.categoricalColumns(p.CategoricalFeatures)
	if err != nil {
		return fmt.Errorf("ml.Pipeline.Fit: %w", err)
	}

	p.NumericImputer.Fit(num)
	imputed := p.NumericImputer.Transform(num)
	p.Scaler.Fit(imputed)

	p.CategoricalImputer.Fit(cat)
	p.Encoder.Fit(p.CategoricalImputer.Transform(cat))

	features, err := p.Transform(X)
	if err != nil {
		return fmt.Errorf("ml.Pipeline.Fit: %w", err)
	}
	if err := p.Classifier.Fit(features, y); err != nil {
		return fmt.Errorf("ml.Pipeline.Fit: %w", err)
	}
	return nil
}

// Transform aplica el preprocesado ajustado y devuelve la matriz de features:
// numéricas estandarizadas seguidas de las columnas one-hot.
func (p *Pipeline) Transform(X Frame) (*mat.Dense, error) {
	n := X.Len()
	if n == 0 {
		return nil, fmt.Errorf("ml.Pipeline.Transform: %w", ErrEmptyTrainingSet)
	}
	num, err := X.numericColumns(p.NumericFeatures)
	if err != nil {
		return nil, err
	}
	cat, err := X.categoricalColumns(p.CategoricalFeatures)
	if err != nil {
		return nil, err
	}

	cols := p.Scaler.Transform(p.NumericImputer.Transform(num))
	cols = append(cols, p.Encoder.Transform(p.CategoricalImputer.Transform(cat))...)

	out := mat.NewDense(n, len(cols), nil)
	for j, c := range cols {
		out.SetCol(j, c)
	}
	return out, nil
}

// Predict devuelve la clase predicha para cada fila. Un Frame vacío da un slice vacío.
func (p *Pipeline) Predict(X Frame) ([]string, error) {
	if p.Classifier == nil || len(p.Classifier.Classes) == 0 {
		return nil, fmt.Errorf("ml.Pipeline.Predict: %w", ErrNotFitted)
	}
	if X.Len() == 0 {
		return []string{}, nil
	}
	features, err := p.Transform(X)
	if err != nil {
		return nil, fmt.Errorf("ml.Pipeline.Predict: %w", err)
	}
	return p.Classifier.Predict(features)
}

// Score devuelve la accuracy del pipeline sobre (X, y).
func (p *Pipeline) Score(X Frame, y []string) (float64, error) {
	pred, err := p.Predict(X)
	if err != nil {
		return 0, err
	}
	return Accuracy(pred, y)
}

// Classes devuelve las clases que el pipeline puede predecir.
func (p *Pipeline) Classes() []string {
	if p.Classifier == nil {
		return nil
	}
	return p.Classifier.Classes
}
