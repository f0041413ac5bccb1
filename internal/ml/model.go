package ml

import "time"

// Model es el artefacto persistido por pitcher: el pipeline ajustado más los
// metadatos de la búsqueda que lo produjo.
type Model struct {
	Key        string // clave del pitcher (MLBAM id)
	BestC      float64
	CVScore    float64
	Candidates []CandidateResult
	TrainedAt  time.Time
	Pipeline   *Pipeline
}

// NewModel construye el artefacto a partir del resultado de la búsqueda.
func NewModel(key string, res *SearchResult, trainedAt time.Time) *Model {
	return &Model{
		Key:        key,
		BestC:      res.BestC,
		CVScore:    res.BestScore,
		Candidates: res.Candidates,
		TrainedAt:  trainedAt.UTC(),
		Pipeline:   res.Best,
	}
}
