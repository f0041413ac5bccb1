package notify

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/pitchmodel/internal/domain"
)

const (
	separator   = "----------------------------------------------------------"
	previewRows = 5 // filas de cabeza y de cola en el preview del dataset
	dateLayout  = "2006-01-02"
)

// Console implementa ports.Notifier.
type Console struct {
	out io.Writer
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// NotifyTraining imprime el bloque de un pitcher: cabecera con el archivo y las dos accuracies.
func (c *Console) NotifyTraining(_ context.Context, r domain.TrainingResult) error {
	c.header(r.Source)
	fmt.Fprintf(c.out, "CV Accuracy:   %s\n", formatFloat(r.CVAccuracy))
	fmt.Fprintf(c.out, "Test Accuracy: %s\n", formatFloat(r.TestAccuracy))
	if len(r.UnseenLabels) > 0 {
		fmt.Fprintf(c.out, "  unseen test labels: %s\n", joinTypes(r.UnseenLabels))
	}
	return nil
}

// NotifyTrainingSummary imprime la tabla resumen de todos los pitchers entrenados.
func (c *Console) NotifyTrainingSummary(_ context.Context, results []domain.TrainingResult) error {
	if len(results) == 0 {
		fmt.Fprintln(c.out, "No models trained")
		return nil
	}

	fmt.Fprintf(c.out, "\n[%s] %d models trained\n", time.Now().Format("15:04:05"), len(results))
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Player", "Best C", "CV Acc", "Test Acc", "Train", "Dropped", "Test", "Test date", "Classes")
	for i, r := range results {
		table.Append(
			fmt.Sprintf("%d", i+1),
			r.PlayerID.String(),
			fmt.Sprintf("%g", r.BestC),
			formatPct(r.CVAccuracy),
			formatPct(r.TestAccuracy),
			fmt.Sprintf("%d", r.TrainRows),
			fmt.Sprintf("%d", r.DroppedRows),
			fmt.Sprintf("%d", r.TestRows),
			formatDate(r.TestDate),
			joinTypes(r.Classes),
		)
	}
	return table.Render()
}

// NotifyCandidates imprime el detalle de la grid search de un pitcher.
func (c *Console) NotifyCandidates(_ context.Context, r domain.TrainingResult) error {
	table := tablewriter.NewWriter(c.out)
	table.Header("C", "Mean", "Std", "")
	for _, cand := range r.Candidates {
		mark := ""
		if cand.C == r.BestC {
			mark = "*"
		}
		table.Append(fmt.Sprintf("%g", cand.C), formatFloat(cand.Mean), formatFloat(cand.Std), mark)
	}
	return table.Render()
}

// NotifyFetch imprime el resumen de la descarga.
func (c *Console) NotifyFetch(_ context.Context, results []domain.FetchResult) error {
	if len(results) == 0 {
		fmt.Fprintln(c.out, "No players fetched")
		return nil
	}

	fmt.Fprintf(c.out, "\n[%s] %d players fetched\n", time.Now().Format("15:04:05"), len(results))
	table := tablewriter.NewWriter(c.out)
	table.Header("Player", "MLBAM", "Range", "Raw", "Kept", "Excluded", "File")
	for _, r := range results {
		table.Append(
			r.Player.Name(),
			r.Player.ID.String(),
			formatDate(r.StartDate)+" → "+formatDate(r.EndDate),
			fmt.Sprintf("%d", r.RawRows),
			fmt.Sprintf("%d", r.Rows),
			fmt.Sprintf("%d", r.Excluded()),
			r.Path,
		)
	}
	return table.Render()
}

// NotifyInspection imprime los faltantes por columna y un preview del dataset.
func (c *Console) NotifyInspection(_ context.Context, source string, d domain.Dataset, missing []domain.MissingCount) error {
	c.header(source)
	fmt.Fprintln(c.out)

	mt := tablewriter.NewWriter(c.out)
	mt.Header("Column", "Missing")
	for _, m := range missing {
		mt.Append(string(m.Column), fmt.Sprintf("%d", m.Missing))
	}
	if err := mt.Render(); err != nil {
		return err
	}
	fmt.Fprintln(c.out)

	counts := domain.PitchTypeCounts(d)
	types := make([]domain.PitchType, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	ct := tablewriter.NewWriter(c.out)
	ct.Header("Pitch type", "Description", "Count")
	for _, t := range domain.SortPitchTypes(types) {
		ct.Append(t.String(), t.Description(), fmt.Sprintf("%d", counts[t]))
	}
	if err := ct.Render(); err != nil {
		return err
	}
	fmt.Fprintln(c.out)

	pt := tablewriter.NewWriter(c.out)
	header := []any{""}
	for _, col := range domain.Columns {
		header = append(header, string(col))
	}
	pt.Header(header...)
	for _, i := range previewIndexes(d.Len()) {
		if i < 0 {
			pt.Append("...", "...", "...", "...", "...", "...", "...", "...")
			continue
		}
		e := d.Events[i]
		pt.Append(
			fmt.Sprintf("%d", i),
			e.PitchType.String(),
			formatFloat(e.ReleaseSpeed),
			formatFloat(e.ReleaseSpinRate),
			formatFloat(e.PfxX),
			formatFloat(e.PfxZ),
			formatHand(e.Stand),
			formatDate(e.GameDate),
		)
	}
	if err := pt.Render(); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "[%d rows x %d columns]\n", d.Len(), len(domain.Columns))
	return nil
}

// NotifyEvaluation imprime el resultado de evaluar un modelo persistido.
func (c *Console) NotifyEvaluation(_ context.Context, e domain.Evaluation) error {
	c.header(e.ModelPath)
	fmt.Fprintf(c.out, "Trained at:    %s (C=%g)\n", e.TrainedAt.Format(time.RFC3339), e.BestC)
	fmt.Fprintf(c.out, "CV Accuracy:   %s\n", formatFloat(e.CVAccuracy))
	fmt.Fprintf(c.out, "Test Accuracy: %s (%d pitches on %s)\n", formatFloat(e.TestAccuracy), e.TestRows, formatDate(e.TestDate))
	if len(e.UnseenLabels) > 0 {
		fmt.Fprintf(c.out, "  unseen test labels: %s\n", joinTypes(e.UnseenLabels))
	}
	return nil
}

// NotifyHistory imprime los entrenamientos registrados.
func (c *Console) NotifyHistory(_ context.Context, runs []domain.TrainingResult) error {
	if len(runs) == 0 {
		fmt.Fprintln(c.out, "No training runs recorded")
		return nil
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Trained at", "Run", "Player", "Best C", "CV Acc", "Test Acc", "Test date", "Model")
	for _, r := range runs {
		table.Append(
			r.TrainedAt.Local().Format("2006-01-02 15:04"),
			shortID(r.RunID),
			r.PlayerID.String(),
			fmt.Sprintf("%g", r.BestC),
			formatPct(r.CVAccuracy),
			formatPct(r.TestAccuracy),
			formatDate(r.TestDate),
			r.ModelPath,
		)
	}
	return table.Render()
}

// NotifyFetchHistory imprime las descargas registradas.
func (c *Console) NotifyFetchHistory(_ context.Context, runs []domain.FetchResult) error {
	if len(runs) == 0 {
		fmt.Fprintln(c.out, "No fetch runs recorded")
		return nil
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Fetched at", "Run", "Player", "MLBAM", "Range", "Raw", "Kept", "File")
	for _, r := range runs {
		table.Append(
			r.FetchedAt.Local().Format("2006-01-02 15:04"),
			shortID(r.RunID),
			r.Player.Name(),
			r.Player.ID.String(),
			formatDate(r.StartDate)+" → "+formatDate(r.EndDate),
			fmt.Sprintf("%d", r.RawRows),
			fmt.Sprintf("%d", r.Rows),
			r.Path,
		)
	}
	return table.Render()
}

// --- helpers ---

func (c *Console) header(name string) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, name, separator)
}

// previewIndexes devuelve las filas a mostrar; -1 marca el corte entre cabeza y cola.
func previewIndexes(n int) []int {
	if n <= 2*previewRows {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	idx := make([]int, 0, 2*previewRows+1)
	for i := 0; i < previewRows; i++ {
		idx = append(idx, i)
	}
	idx = append(idx, -1)
	for i := n - previewRows; i < n; i++ {
		idx = append(idx, i)
	}
	return idx
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%g", v)
}

func formatPct(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", v*100)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}

func formatHand(h domain.Handedness) string {
	if h == domain.HandednessUnknown {
		return "<NA>"
	}
	return string(h)
}

func joinTypes(types []domain.PitchType) string {
	codes := make([]string, len(types))
	for i, t := range types {
		codes[i] = t.String()
	}
	return strings.Join(codes, ",")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
