package savant

// statcast.go: Baseball Savant Statcast search adapter.
//
// Savant devuelve el resultado de /statcast_search/csv como un CSV plano, un pitch por fila.
// Una búsqueda sin resultados vuelve con body vacío o solo con el header.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/alejandrodnm/pitchmodel/internal/domain"
)

const (
	statcastSearchPath = "/statcast_search/csv"
	dateLayout         = "2006-01-02"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FetchPitches descarga todos los pitches lanzados por el pitcher entre start y end, inclusive.
// Las filas se devuelven tal cual vienen de Savant; la normalización la hace domain.NormalizeDataset.
func (c *Client) FetchPitches(ctx context.Context, start, end time.Time, id domain.PlayerID) ([]domain.RawPitch, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("savant.FetchPitches: end %s before start %s", end.Format(dateLayout), start.Format(dateLayout))
	}

	body, err := c.get(ctx, c.savantLimiter, c.statcastURL(start, end, id))
	if err != nil {
		return nil, fmt.Errorf("savant.FetchPitches: player %s: %w", id, err)
	}

	rows, err := decodeStatcast(body)
	if err != nil {
		return nil, fmt.Errorf("savant.FetchPitches: player %s: %w", id, err)
	}

	pitches, err := mapStatcastRows(rows)
	if err != nil {
		return nil, fmt.Errorf("savant.FetchPitches: player %s: %w", id, err)
	}

	slog.Debug("statcast pitches fetched",
		"player_id", id,
		"start", start.Format(dateLayout),
		"end", end.Format(dateLayout),
		"rows", len(pitches),
	)
	return pitches, nil
}

func (c *Client) statcastURL(start, end time.Time, id domain.PlayerID) string {
	q := url.Values{}
	q.Set("all", "true")
	q.Set("type", "details")
	q.Set("player_type", "pitcher")
	q.Set("player_lookup[]", id.String())
	q.Set("game_date_gt", start.Format(dateLayout))
	q.Set("game_date_lt", end.Format(dateLayout))
	return c.savantBase + statcastSearchPath + "?" + q.Encode()
}

// decodeStatcast parsea el body CSV. Sin header o sin filas devuelve un slice vacío.
func decodeStatcast(body []byte) ([]statcastRow, error) {
	body = trimBOM(body)
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var rows []statcastRow
	if err := gocsv.UnmarshalBytes(body, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode csv: %w", err)
	}
	return rows, nil
}

func trimBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, utf8BOM)
}
