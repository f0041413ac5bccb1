package domain

import "time"

// CandidateScore es el resultado de validación cruzada de un valor de C.
type CandidateScore struct {
	C    float64
	Mean float64 // accuracy media entre folds
	Std  float64 // desviación estándar poblacional entre folds
}

// TrainingResult resume el entrenamiento y evaluación del modelo de un pitcher.
type TrainingResult struct {
	RunID        string
	PlayerID     PlayerID
	Source       string // archivo del dataset
	BestC        float64
	CVAccuracy   float64
	TestAccuracy float64
	Candidates   []CandidateScore
	TrainRows    int // filas del train tras filtrar tipos raros
	DroppedRows  int // filas eliminadas por el filtro de tipos raros
	TestRows     int
	Classes      []PitchType // clases que el modelo puede predecir
	UnseenLabels []PitchType // etiquetas del test ausentes en el train
	TestDate     time.Time
	ModelPath    string
	TrainedAt    time.Time
}

// FetchResult resume la descarga de un pitcher.
type FetchResult struct {
	RunID     string
	Player    Player
	StartDate time.Time
	EndDate   time.Time
	RawRows   int // filas devueltas por la fuente
	Rows      int // filas tras normalizar
	Path      string
	FetchedAt time.Time
}

// Excluded devuelve las filas descartadas por tipo de partido.
func (r FetchResult) Excluded() int {
	return r.RawRows - r.Rows
}

// UnseenLabels devuelve las etiquetas presentes en test que no están en classes.
// Esas filas siempre cuentan como fallos al evaluar.
func UnseenLabels(test Dataset, classes []PitchType) []PitchType {
	known := make(map[PitchType]struct{}, len(classes))
	for _, c := range classes {
		known[c] = struct{}{}
	}
	var unseen []PitchType
	for _, e := range test.Events {
		if _, ok := known[e.PitchType]; !ok {
			unseen = append(unseen, e.PitchType)
		}
	}
	return SortPitchTypes(unseen)
}

// Evaluation es la puntuación de un modelo persistido contra el último partido del dataset.
type Evaluation struct {
	PlayerID     PlayerID
	ModelPath    string
	TrainedAt    time.Time
	BestC        float64
	CVAccuracy   float64
	TestDate     time.Time
	TestRows     int
	TestAccuracy float64
	UnseenLabels []PitchType
}
