package modelstore

// store.go: persistencia de modelos entrenados.
//
// Un archivo por pitcher: <dir>/<player_id>.model, el ml.Model codificado con gob
// y comprimido con xz. El formato es opaco para el resto del sistema.

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"

	"github.com/alejandrodnm/pitchmodel/internal/domain"
	"github.com/alejandrodnm/pitchmodel/internal/ml"
)

const fileExt = ".model"

// Store guarda y carga modelos en un directorio.
type Store struct {
	dir string
}

// New crea un Store sobre dir. El directorio se crea en el primer Save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Path devuelve la ruta del modelo de un pitcher.
func (s *Store) Path(id domain.PlayerID) string {
	return filepath.Join(s.dir, id.String()+fileExt)
}

// Save serializa el modelo y devuelve la ruta escrita.
func (s *Store) Save(id domain.PlayerID, m *ml.Model) (string, error) {
	if m == nil || m.Pipeline == nil {
		return "", fmt.Errorf("modelstore.Save: player %s: %w", id, ml.ErrNotFitted)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("modelstore.Save: %w", err)
	}

	path := s.Path(id)
	tmp := path + ".tmp"
	if err := writeModel(tmp, m); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("modelstore.Save: player %s: %w", id, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("modelstore.Save: %w", err)
	}

	slog.Debug("model saved", "player_id", id, "path", path)
	return path, nil
}

// Load deserializa el modelo de un pitcher.
func (s *Store) Load(id domain.PlayerID) (*ml.Model, error) {
	f, err := os.Open(s.Path(id))
	if err != nil {
		return nil, fmt.Errorf("modelstore.Load: player %s: %w", id, err)
	}
	defer f.Close()

	zr, err := xz.NewReader(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("modelstore.Load: player %s: xz: %w", id, err)
	}
	var m ml.Model
	if err := gob.NewDecoder(zr).Decode(&m); err != nil {
		return nil, fmt.Errorf("modelstore.Load: player %s: decode: %w", id, err)
	}
	return &m, nil
}

func writeModel(path string, m *ml.Model) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	zw, err := xz.NewWriter(bw)
	if err != nil {
		return fmt.Errorf("xz: %w", err)
	}
	if err := gob.NewEncoder(zw).Encode(m); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("xz: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}
