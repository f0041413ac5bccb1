package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// Config es la configuración completa de pitchmodel.
type Config struct {
	Fetch   FetchConfig   `yaml:"fetch"`
	Train   TrainConfig   `yaml:"train"`
	Paths   PathsConfig   `yaml:"paths"`
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// FetchConfig controla qué pitchers y qué rango de fechas se descargan.
type FetchConfig struct {
	Players        []PlayerConfig `yaml:"players"`    // vacío = rotación por defecto del fetcher
	StartDate      string         `yaml:"start_date"` // YYYY-MM-DD, inclusive
	EndDate        string         `yaml:"end_date"`   // YYYY-MM-DD, inclusive
	Workers        int            `yaml:"workers"`
	MaxRetries     int            `yaml:"max_retries"` // 0 = un solo intento
	TimeoutSeconds int            `yaml:"timeout_seconds"`
}

// PlayerConfig identifica a un pitcher. Si ID es 0 se resuelve por nombre.
type PlayerConfig struct {
	Last  string `yaml:"last"`
	First string `yaml:"first"`
	ID    int64  `yaml:"id"`
}

// TrainConfig controla la búsqueda de hiperparámetros.
type TrainConfig struct {
	Grid          []float64 `yaml:"grid"`
	Folds         int       `yaml:"folds"`
	Jobs          int       `yaml:"jobs"` // candidatos de C evaluados en paralelo
	Workers       int       `yaml:"workers"`
	MinPitchCount int       `yaml:"min_pitch_count"`
	MaxIter       int       `yaml:"max_iter"`
}

// PathsConfig contiene los directorios de datasets y modelos.
type PathsConfig struct {
	DataDir   string `yaml:"data_dir"`
	ModelsDir string `yaml:"models_dir"`
}

// APIConfig contiene los base URLs de las fuentes externas.
type APIConfig struct {
	SavantBase   string `yaml:"savant_base"`
	RegisterBase string `yaml:"register_base"`
}

// StorageConfig controla dónde se persiste el registro de ejecuciones.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// DateRange devuelve el rango de fechas de la descarga.
func (c *Config) DateRange() (start, end time.Time, err error) {
	start, err = time.Parse(dateLayout, c.Fetch.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date %q: %w", c.Fetch.StartDate, err)
	}
	end, err = time.Parse(dateLayout, c.Fetch.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date %q: %w", c.Fetch.EndDate, err)
	}
	return start, end, nil
}

// Timeout devuelve el timeout por request HTTP.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

func (c *Config) validate() error {
	start, end, err := c.DateRange()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("end_date %s before start_date %s", c.Fetch.EndDate, c.Fetch.StartDate)
	}
	for i, p := range c.Fetch.Players {
		if p.ID == 0 && p.Last == "" {
			return fmt.Errorf("player %d: needs last name or id", i)
		}
	}
	if c.Train.Folds < 2 {
		return fmt.Errorf("folds must be >= 2, got %d", c.Train.Folds)
	}
	for _, v := range c.Train.Grid {
		if v <= 0 {
			return fmt.Errorf("grid values must be > 0, got %v", v)
		}
	}
	return nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("PITCHMODEL_DATA_DIR"); v != "" {
		cfg.Paths.DataDir = v
	}
	if v := os.Getenv("PITCHMODEL_MODELS_DIR"); v != "" {
		cfg.Paths.ModelsDir = v
	}
	if v := os.Getenv("PITCHMODEL_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Fetch.StartDate == "" {
		cfg.Fetch.StartDate = "2022-01-01"
	}
	if cfg.Fetch.EndDate == "" {
		cfg.Fetch.EndDate = "2024-12-31"
	}
	if cfg.Fetch.Workers <= 0 {
		cfg.Fetch.Workers = 1
	}
	if cfg.Fetch.MaxRetries < 0 {
		cfg.Fetch.MaxRetries = 0
	}
	if cfg.Fetch.TimeoutSeconds <= 0 {
		cfg.Fetch.TimeoutSeconds = 120
	}
	if len(cfg.Train.Grid) == 0 {
		cfg.Train.Grid = []float64{0.01, 0.1, 1.0, 10.0}
	}
	if cfg.Train.Folds == 0 {
		cfg.Train.Folds = 5
	}
	if cfg.Train.Jobs <= 0 {
		cfg.Train.Jobs = 1
	}
	if cfg.Train.Workers <= 0 {
		cfg.Train.Workers = 1
	}
	if cfg.Train.MinPitchCount <= 0 {
		cfg.Train.MinPitchCount = 5
	}
	if cfg.Train.MaxIter <= 0 {
		cfg.Train.MaxIter = 1000
	}
	if cfg.Paths.DataDir == "" {
		cfg.Paths.DataDir = "data"
	}
	if cfg.Paths.ModelsDir == "" {
		cfg.Paths.ModelsDir = "models"
	}
	if cfg.API.SavantBase == "" {
		cfg.API.SavantBase = "https://baseballsavant.mlb.com"
	}
	if cfg.API.RegisterBase == "" {
		cfg.API.RegisterBase = "https://raw.githubusercontent.com/chadwickbureau/register/master/data"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "pitchmodel.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
