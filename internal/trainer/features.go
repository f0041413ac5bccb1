package trainer

import (
	"github.com/alejandrodnm/pitchmodel/internal/domain"
	"github.com/alejandrodnm/pitchmodel/internal/ml"
)

// DatasetFrame convierte un dataset en features y etiquetas.
// El Frame lleva todas las columnas del dataset salvo la etiqueta; el pipeline
// se queda con las que declara y descarta el resto (game_date).
// Las etiquetas desconocidas quedan como "" y nunca coinciden con una predicción.
func DatasetFrame(d domain.Dataset) (ml.Frame, []string) {
	n := d.Len()
	speed := make([]float64, n)
	spin := make([]float64, n)
	pfxX := make([]float64, n)
	pfxZ := make([]float64, n)
	stand := make([]string, n)
	dates := make([]string, n)
	labels := make([]string, n)

	for i, e := range d.Events {
		speed[i] = e.ReleaseSpeed
		spin[i] = e.ReleaseSpinRate
		pfxX[i] = e.PfxX
		pfxZ[i] = e.PfxZ
		stand[i] = string(e.Stand)
		dates[i] = e.GameDate.Format("2006-01-02")
		labels[i] = string(e.PitchType)
	}

	f := ml.NewFrame()
	f.Numeric[string(domain.ColumnReleaseSpeed)] = speed
	f.Numeric[string(domain.ColumnReleaseSpinRate)] = spin
	f.Numeric[string(domain.ColumnPfxX)] = pfxX
	f.Numeric[string(domain.ColumnPfxZ)] = pfxZ
	f.Categorical[string(domain.ColumnStand)] = stand
	f.Categorical[string(domain.ColumnGameDate)] = dates
	return f, labels
}

// pitchTypes convierte las clases del pipeline de vuelta al enum.
func pitchTypes(classes []string) []domain.PitchType {
	out := make([]domain.PitchType, len(classes))
	for i, c := range classes {
		out[i] = domain.PitchType(c)
	}
	return out
}
