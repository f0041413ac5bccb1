package savant

// register.go: Chadwick Bureau register adapter.
//
// El register se publica en 16 shards (people-0.csv … people-f.csv). Se descargan
// concurrentemente la primera vez que se resuelve un nombre y quedan cacheados en el Client.

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gocarina/gocsv"
	"golang.org/x/sync/errgroup"

	"github.com/alejandrodnm/pitchmodel/internal/domain"
)

const registerShards = "0123456789abcdef"

// LookupPlayer resuelve (apellido, nombre) a un Player con su MLBAM id.
// La comparación no distingue mayúsculas. Si hay varios jugadores con el mismo nombre
// devuelve el primero del register y loguea un warning.
func (c *Client) LookupPlayer(ctx context.Context, last, first string) (domain.Player, error) {
	people, err := c.loadRegister(ctx)
	if err != nil {
		return domain.Player{}, fmt.Errorf("register.LookupPlayer: %w", err)
	}

	var matches []domain.Player
	for _, row := range people {
		if !strings.EqualFold(strings.TrimSpace(row.NameLast), strings.TrimSpace(last)) ||
			!strings.EqualFold(strings.TrimSpace(row.NameFirst), strings.TrimSpace(first)) {
			continue
		}
		if p, ok := mapRegisterRow(row); ok {
			matches = append(matches, p)
		}
	}

	if len(matches) == 0 {
		return domain.Player{}, fmt.Errorf("register.LookupPlayer: %s, %s: %w", last, first, domain.ErrPlayerNotFound)
	}
	if len(matches) > 1 {
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ID.String()
		}
		slog.Warn("ambiguous player name, using first match",
			"last", last,
			"first", first,
			"candidates", strings.Join(ids, ","),
		)
	}
	return matches[0], nil
}

// loadRegister descarga los shards una sola vez. Un fallo no se cachea.
func (c *Client) loadRegister(ctx context.Context) ([]registerRow, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.people != nil {
		return c.people, nil
	}

	shards := make([][]registerRow, len(registerShards))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range registerShards {
		url := fmt.Sprintf("%s/people-%c.csv", c.registerBase, s)
		g.Go(func() error {
			body, err := c.get(gctx, c.registerLimiter, url)
			if err != nil {
				return fmt.Errorf("shard %c: %w", s, err)
			}
			rows, err := decodeRegister(body)
			if err != nil {
				return fmt.Errorf("shard %c: %w", s, err)
			}
			shards[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	people := make([]registerRow, 0)
	for _, rows := range shards {
		people = append(people, rows...)
	}
	slog.Debug("chadwick register loaded", "people", len(people))
	c.people = people
	return people, nil
}

func decodeRegister(body []byte) ([]registerRow, error) {
	var rows []registerRow
	if err := gocsv.UnmarshalBytes(trimBOM(body), &rows); err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}
	return rows, nil
}
