package savant

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultSavantBase   = "https://baseballsavant.mlb.com"
	defaultRegisterBase = "https://raw.githubusercontent.com/chadwickbureau/register/master/data"

	// Savant no documenta límites; una request por segundo es lo que tolera sin 429.
	savantRatePerSec = 1
	// raw.githubusercontent.com sirve los shards del register sin límite práctico.
	registerRatePerSec = 10

	defaultTimeout = 120 * time.Second
	baseRetryWait  = 500 * time.Millisecond
	maxBodyBytes   = 256 << 20
)

// ErrBodyTooLarge indica que la respuesta supera el tamaño máximo aceptado.
var ErrBodyTooLarge = errors.New("response body too large")

// Client es el HTTP client de Baseball Savant y del Chadwick register,
// con rate limiting y retries opcionales.
type Client struct {
	http            *http.Client
	savantBase      string
	registerBase    string
	savantLimiter   *rate.Limiter
	registerLimiter *rate.Limiter
	maxRetries      int
	maxBodyBytes    int64

	mu     sync.Mutex
	people []registerRow // cache del register, cargado en el primer lookup
}

// NewClient crea un Client con los base URLs dados.
// Si savantBase o registerBase están vacíos, usa los URLs de producción.
// Por defecto no reintenta: cualquier error de la fuente se propaga.
func NewClient(savantBase, registerBase string) *Client {
	if savantBase == "" {
		savantBase = defaultSavantBase
	}
	if registerBase == "" {
		registerBase = defaultRegisterBase
	}
	return &Client{
		http:            &http.Client{Timeout: defaultTimeout},
		savantBase:      savantBase,
		registerBase:    registerBase,
		savantLimiter:   rate.NewLimiter(savantRatePerSec, 1),
		registerLimiter: rate.NewLimiter(registerRatePerSec, 4),
		maxBodyBytes:    maxBodyBytes,
	}
}

// SetMaxRetries configura cuántas veces se reintenta ante errores de red, 429 o 5xx.
func (c *Client) SetMaxRetries(n int) {
	if n < 0 {
		n = 0
	}
	c.maxRetries = n
}

// SetTimeout cambia el timeout por request.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.http.Timeout = d
	}
}

// SetMaxBodyBytes cambia el tamaño máximo aceptado de un body de respuesta.
func (c *Client) SetMaxBodyBytes(n int64) {
	if n > 0 {
		c.maxBodyBytes = n
	}
}

// get hace un GET con rate limiting y devuelve el body completo.
func (c *Client) get(ctx context.Context, limiter *rate.Limiter, url string) ([]byte, error) {
	var body []byte
	err := c.doWithRetry(ctx, limiter, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "text/csv")
		return c.http.Do(req)
	}, func(r io.Reader) error {
		b, err := io.ReadAll(io.LimitReader(r, c.maxBodyBytes+1))
		if err != nil {
			return err
		}
		if int64(len(b)) > c.maxBodyBytes {
			return fmt.Errorf("body exceeds %d bytes: %w", c.maxBodyBytes, ErrBodyTooLarge)
		}
		body = b
		return nil
	})
	return body, err
}

// doWithRetry ejecuta la función con backoff exponencial entre intentos.
func (c *Client) doWithRetry(ctx context.Context, limiter *rate.Limiter, fn func() (*http.Response, error), read func(io.Reader) error) error {
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if attempt == c.maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", c.maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == c.maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, c.maxRetries)
			}
			slog.Warn("retrying request", "status", resp.StatusCode, "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(bytes.TrimSpace(body)))
		}

		defer resp.Body.Close()
		if err := read(resp.Body); err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", c.maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
