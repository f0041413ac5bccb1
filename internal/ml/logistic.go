package ml

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

const (
	defaultMaxIter = 1000
	defaultTol     = 1e-4
)

// LogisticRegression es un clasificador softmax multinomial con regularización L2.
//
// Minimiza 0.5·||W||² + C·Σ logloss con L-BFGS. El intercepto no se penaliza.
type LogisticRegression struct {
	C       float64
	MaxIter int
	Tol     float64

	Classes   []string
	Coef      [][]float64 // k × d
	Intercept []float64   // k

	Iterations int
	Converged  bool
}

// NewLogisticRegression crea un clasificador con fuerza de regularización inversa c.
func NewLogisticRegression(c float64) *LogisticRegression {
	return &LogisticRegression{C: c, MaxIter: defaultMaxIter, Tol: defaultTol}
}

// Fit ajusta el modelo sobre X (n × d) y las etiquetas y.
// Que L-BFGS agote las iteraciones no es un error: se usa el último punto.
func (m *LogisticRegression) Fit(X *mat.Dense, y []string) error {
	n, d := X.Dims()
	if n == 0 {
		return fmt.Errorf("ml.LogisticRegression.Fit: %w", ErrEmptyTrainingSet)
	}
	if len(y) != n {
		return fmt.Errorf("ml.LogisticRegression.Fit: %d labels for %d rows: %w", len(y), n, ErrLengthMismatch)
	}

	classes := uniqueSorted(y)
	if len(classes) < 2 {
		return fmt.Errorf("ml.LogisticRegression.Fit: got %d class(es): %w", len(classes), ErrSingleClass)
	}
	k := len(classes)

	index := make(map[string]int, k)
	for i, c := range classes {
		index[c] = i
	}
	target := make([]int, n)
	for i, label := range y {
		target[i] = index[label]
	}

	obj := &softmaxObjective{X: X, target: target, k: k, d: d, c: m.C}
	problem := optimize.Problem{
		Func: func(x []float64) float64 { return obj.eval(x, nil) },
		Grad: func(grad, x []float64) { obj.eval(x, grad) },
	}
	settings := &optimize.Settings{
		MajorIterations:   m.maxIter(),
		GradientThreshold: m.tol(),
	}

	init := make([]float64, k*(d+1))
	result, err := optimize.Minimize(problem, init, settings, &optimize.LBFGS{})
	if result == nil {
		return fmt.Errorf("ml.LogisticRegression.Fit: minimize: %w", err)
	}
	if err != nil {
		slog.Debug("lbfgs stopped early", "c", m.C, "status", result.Status.String(), "err", err)
	}

	m.Classes = classes
	m.Coef = make([][]float64, k)
	for j := 0; j < k; j++ {
		m.Coef[j] = append([]float64(nil), result.X[j*d:(j+1)*d]...)
	}
	m.Intercept = append([]float64(nil), result.X[k*d:]...)
	m.Iterations = result.Stats.MajorIterations
	m.Converged = result.Status == optimize.GradientThreshold || result.Status == optimize.FunctionConvergence

	if !m.Converged {
		slog.Debug("logistic regression did not converge",
			"c", m.C,
			"iterations", m.Iterations,
			"status", result.Status.String(),
		)
	}
	return nil
}

// DecisionFunction devuelve los logits (n × k).
func (m *LogisticRegression) DecisionFunction(X *mat.Dense) (*mat.Dense, error) {
	if len(m.Classes) == 0 {
		return nil, fmt.Errorf("ml.LogisticRegression: %w", ErrNotFitted)
	}
	n, d := X.Dims()
	k := len(m.Classes)
	if len(m.Coef[0]) != d {
		return nil, fmt.Errorf("ml.LogisticRegression: got %d features, want %d: %w", d, len(m.Coef[0]), ErrLengthMismatch)
	}

	W := mat.NewDense(k, d, flatten(m.Coef))
	Z := mat.NewDense(n, k, nil)
	Z.Mul(X, W.T())
	for i := 0; i < n; i++ {
		row := Z.RawRowView(i)
		floats.Add(row, m.Intercept)
	}
	return Z, nil
}

// Predict devuelve la clase de mayor logit para cada fila.
func (m *LogisticRegression) Predict(X *mat.Dense) ([]string, error) {
	Z, err := m.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	n, _ := Z.Dims()
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = m.Classes[floats.MaxIdx(Z.RawRowView(i))]
	}
	return out, nil
}

func (m *LogisticRegression) maxIter() int {
	if m.MaxIter > 0 {
		return m.MaxIter
	}
	return defaultMaxIter
}

func (m *LogisticRegression) tol() float64 {
	if m.Tol > 0 {
		return m.Tol
	}
	return defaultTol
}

// softmaxObjective es la pérdida regularizada y su gradiente.
// El vector de parámetros es W (k × d, por filas) seguido de b (k).
type softmaxObjective struct {
	X      *mat.Dense
	target []int
	k, d   int
	c      float64
}

// eval devuelve la pérdida en x y, si grad != nil, escribe el gradiente.
func (o *softmaxObjective) eval(x, grad []float64) float64 {
	n, _ := o.X.Dims()
	k, d := o.k, o.d

	W := mat.NewDense(k, d, x[:k*d])
	b := x[k*d:]

	Z := mat.NewDense(n, k, nil)
	Z.Mul(o.X, W.T())

	var loss float64
	for i := 0; i < n; i++ {
		row := Z.RawRowView(i)
		floats.Add(row, b)
		lse := floats.LogSumExp(row)
		loss += lse - row[o.target[i]]
		if grad != nil {
			// row pasa a ser P - Y
			for j := range row {
				row[j] = math.Exp(row[j] - lse)
			}
			row[o.target[i]] -= 1
		}
	}

	penalty := 0.5 * floats.Dot(x[:k*d], x[:k*d])
	f := o.c*loss + penalty

	if grad != nil {
		gW := mat.NewDense(k, d, grad[:k*d])
		gW.Mul(Z.T(), o.X)
		gW.Scale(o.c, gW)
		gW.Add(gW, W)

		gb := grad[k*d:]
		for j := 0; j < k; j++ {
			gb[j] = o.c * floats.Sum(mat.Col(nil, j, Z))
		}
	}
	return f
}

func uniqueSorted(y []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, v := range y {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func flatten(rows [][]float64) []float64 {
	var out []float64
	for _, r := range rows {
		out = append(out, r...)
	}
	return out
}
