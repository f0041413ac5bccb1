package ports

import (
	"github.com/alejandrodnm/pitchmodel/internal/domain"
	"github.com/alejandrodnm/pitchmodel/internal/ml"
)

// DatasetStore persiste un dataset por pitcher.
type DatasetStore interface {
	// Save escribe el dataset y devuelve la ruta del archivo.
	Save(d domain.Dataset) (string, error)

	// Load lee el dataset de un pitcher.
	Load(id domain.PlayerID) (domain.Dataset, error)

	// List devuelve los pitchers con dataset, en orden ascendente.
	List() ([]domain.PlayerID, error)

	// Path devuelve la ruta del dataset de un pitcher, exista o no.
	Path(id domain.PlayerID) string
}

// ModelStore persiste el modelo entrenado de cada pitcher.
type ModelStore interface {
	Save(id domain.PlayerID, m *ml.Model) (string, error)
	Load(id domain.PlayerID) (*ml.Model, error)
	Path(id domain.PlayerID) string
}
