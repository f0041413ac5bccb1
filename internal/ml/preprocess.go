package ml

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// MedianImputer reemplaza los NaN de cada columna por la mediana vista en Fit.
type MedianImputer struct {
	Medians []float64
}

// Fit calcula la mediana de los valores no faltantes de cada columna.
// Una columna sin ningún valor se imputa con 0.
func (m *MedianImputer) Fit(cols [][]float64) {
	m.Medians = make([]float64, len(cols))
	for i, c := range cols {
		present := nonMissing(c)
		if len(present) == 0 {
			m.Medians[i] = 0
			continue
		}
		med, err := stats.Median(present)
		if err != nil {
			med = 0
		}
		m.Medians[i] = med
	}
}

// Transform devuelve copias de las columnas con los NaN imputados.
func (m *MedianImputer) Transform(cols [][]float64) [][]float64 {
	out := make([][]float64, len(cols))
	for i, c := range cols {
		col := make([]float64, len(c))
		for j, v := range c {
			if math.IsNaN(v) {
				v = m.Medians[i]
			}
			col[j] = v
		}
		out[i] = col
	}
	return out
}

// StandardScaler centra cada columna en media 0 y la escala a varianza 1.
type StandardScaler struct {
	Means  []float64
	Scales []float64
}

// Fit calcula media y desviación estándar poblacional por columna.
// Una columna constante conserva escala 1.
func (s *StandardScaler) Fit(cols [][]float64) {
	s.Means = make([]float64, len(cols))
	s.Scales = make([]float64, len(cols))
	for i, c := range cols {
		data := stats.Float64Data(c)
		mean, err := stats.Mean(data)
		if err != nil {
			mean = 0
		}
		std, err := stats.StandardDeviationPopulation(data)
		if err != nil || std == 0 || math.IsNaN(std) {
			std = 1
		}
		s.Means[i] = mean
		s.Scales[i] = std
	}
}

// Transform devuelve copias estandarizadas de las columnas.
func (s *StandardScaler) Transform(cols [][]float64) [][]float64 {
	out := make([][]float64, len(cols))
	for i, c := range cols {
		col := make([]float64, len(c))
		for j, v := range c {
			col[j] = (v - s.Means[i]) / s.Scales[i]
		}
		out[i] = col
	}
	return out
}

// ModeImputer reemplaza los valores vacíos por el más frecuente visto en Fit.
type ModeImputer struct {
	Modes []string
}

// Fit calcula la moda de cada columna. Ante empate gana el menor valor.
func (m *ModeImputer) Fit(cols [][]string) {
	m.Modes = make([]string, len(cols))
	for i, c := range cols {
		counts := make(map[string]int)
		for _, v := range c {
			if v != "" {
				counts[v]++
			}
		}
		best, bestN := "", 0
		for v, n := range counts {
			if n > bestN || (n == bestN && v < best) {
				best, bestN = v, n
			}
		}
		m.Modes[i] = best
	}
}

// Transform devuelve copias de las columnas con los vacíos imputados.
func (m *ModeImputer) Transform(cols [][]string) [][]string {
	out := make([][]string, len(cols))
	for i, c := range cols {
		col := make([]string, len(c))
		for j, v := range c {
			if v == "" {
				v = m.Modes[i]
			}
			col[j] = v
		}
		out[i] = col
	}
	return out
}

// OneHotEncoder expande cada columna categórica en una columna 0/1 por categoría.
// Las categorías no vistas en Fit se codifican como todo ceros.
type OneHotEncoder struct {
	Categories [][]string
}

// Fit aprende las categorías ordenadas de cada columna.
func (o *OneHotEncoder) Fit(cols [][]string) {
	o.Categories = make([][]string, len(cols))
	for i, c := range cols {
		seen := make(map[string]struct{})
		var cats []string
		for _, v := range c {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			cats = append(cats, v)
		}
		sort.Strings(cats)
		o.Categories[i] = cats
	}
}

// Width devuelve el número de columnas que produce Transform.
func (o *OneHotEncoder) Width() int {
	w := 0
	for _, cats := range o.Categories {
		w += len(cats)
	}
	return w
}

// Transform devuelve las columnas expandidas, en el orden de Categories.
func (o *OneHotEncoder) Transform(cols [][]string) [][]float64 {
	out := make([][]float64, 0, o.Width())
	for i, c := range cols {
		for _, cat := range o.Categories[i] {
			col := make([]float64, len(c))
			for j, v := range c {
				if v == cat {
					col[j] = 1
				}
			}
			out = append(out, col)
		}
	}
	return out
}

func nonMissing(c []float64) stats.Float64Data {
	out := make(stats.Float64Data, 0, len(c))
	for _, v := range c {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
