package ml

import (
	"fmt"
	"log/slog"
	"sort"
)

// Fold es una partición train/test por índices de fila.
type Fold struct {
	Train []int
	Test  []int
}

// StratifiedKFold reparte las filas en Splits folds preservando la proporción de
// cada clase. Es determinista (sin shuffle): las clases se ordenan por primera
// aparición y los miembros de cada clase se asignan a folds consecutivos según
// un reparto round-robin de las etiquetas ordenadas.
type StratifiedKFold struct {
	Splits int
}

// Split devuelve los Splits folds para las etiquetas y.
func (s StratifiedKFold) Split(y []string) ([]Fold, error) {
	k := s.Splits
	n := len(y)
	if k < 2 {
		return nil, fmt.Errorf("ml.StratifiedKFold: need at least 2 splits, got %d", k)
	}
	if n < k {
		return nil, fmt.Errorf("ml.StratifiedKFold: %d samples for %d splits: %w", n, k, ErrTooFewSamples)
	}

	// clases codificadas por orden de primera aparición
	order := make(map[string]int)
	encoded := make([]int, n)
	for i, label := range y {
		c, ok := order[label]
		if !ok {
			c = len(order)
			order[label] = c
		}
		encoded[i] = c
	}
	nClasses := len(order)

	counts := make([]int, nClasses)
	for _, c := range encoded {
		counts[c]++
	}
	minCount, maxCount := n, 0
	for _, c := range counts {
		minCount = min(minCount, c)
		maxCount = max(maxCount, c)
	}
	if maxCount < k {
		return nil, fmt.Errorf("ml.StratifiedKFold: %d splits exceed the members of every class: %w", k, ErrTooFewSamples)
	}
	if minCount < k {
		slog.Warn("least populated class has fewer members than splits",
			"min_members", minCount,
			"splits", k,
		)
	}

	// allocation[f][c]: cuántos miembros de la clase c van al test del fold f
	sorted := append([]int(nil), encoded...)
	sort.Ints(sorted)
	allocation := make([][]int, k)
	for f := 0; f < k; f++ {
		allocation[f] = make([]int, nClasses)
		for i := f; i < n; i += k {
			allocation[f][sorted[i]]++
		}
	}

	testFold := make([]int, n)
	for c := 0; c < nClasses; c++ {
		var assign []int
		for f := 0; f < k; f++ {
			for r := 0; r < allocation[f][c]; r++ {
				assign = append(assign, f)
			}
		}
		next := 0
		for i, e := range encoded {
			if e == c {
				testFold[i] = assign[next]
				next++
			}
		}
	}

	folds := make([]Fold, k)
	for i, f := range testFold {
		for g := 0; g < k; g++ {
			if g == f {
				folds[g].Test = append(folds[g].Test, i)
			} else {
				folds[g].Train = append(folds[g].Train, i)
			}
		}
	}
	return folds, nil
}
