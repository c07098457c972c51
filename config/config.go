package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for mantis.
type Config struct {
	KnowledgeBase KnowledgeBaseConfig `yaml:"knowledge_base" toml:"knowledge_base"`
	Ingest        IngestConfig        `yaml:"ingest" toml:"ingest"`
	Retrieve      RetrieveConfig      `yaml:"retrieve" toml:"retrieve"`
	LLM           LLMConfig           `yaml:"llm" toml:"llm"`
	Logging       LoggingConfig       `yaml:"logging" toml:"logging"`
}

// KnowledgeBaseConfig locates the corpus. A .json path uses the JSON store,
// .db uses bbolt.
type KnowledgeBaseConfig struct {
	Path  string `yaml:"path" toml:"path"`
	Watch bool   `yaml:"watch" toml:"watch"`
}

// IngestConfig controls how manuals become chunks.
type IngestConfig struct {
	ManualsDir string   `yaml:"manuals_dir" toml:"manuals_dir"`
	Includes   []string `yaml:"includes" toml:"includes"`
	Excludes   []string `yaml:"excludes" toml:"excludes"`
	Workers    int      `yaml:"workers" toml:"workers"`
	Extractor  string   `yaml:"extractor" toml:"extractor"` // pdftotext binary
}

type RetrieveConfig struct {
	TopK      int      `yaml:"top_k" toml:"top_k"`
	CacheSize int      `yaml:"cache_size" toml:"cache_size"`
	CacheTTL  Duration `yaml:"cache_ttl" toml:"cache_ttl"`
}

// LLMConfig holds the KoboldCPP generation parameters.
type LLMConfig struct {
	BaseURL       string   `yaml:"base_url" toml:"base_url"`
	MaxLength     int      `yaml:"max_length" toml:"max_length"`
	Temperature   float64  `yaml:"temperature" toml:"temperature"`
	TopP          float64  `yaml:"top_p" toml:"top_p"`
	TopK          int      `yaml:"top_k" toml:"top_k"`
	RepPen        float64  `yaml:"rep_pen" toml:"rep_pen"`
	Timeout       Duration `yaml:"timeout" toml:"timeout"`
	StopSequences []string `yaml:"stop_sequences" toml:"stop_sequences"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // text or json
}

// Duration reads and writes Go duration strings such as "5m" in both YAML and TOML.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// DefaultStopSequences end generation before the model drifts past the answer.
var DefaultStopSequences = []string{
	"\n\nHowever",
	"\n\nThis section",
	"\n\nNote:",
	"<|im_end|>",
	"Not found in loaded manuals.",
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		KnowledgeBase: KnowledgeBaseConfig{
			Path:  filepath.Join("data", "knowledge_base.json"),
			Watch: false,
		},
		Ingest: IngestConfig{
			ManualsDir: "Manuals",
			Includes:   []string{"**/*.pdf", "**/*.txt"},
			Excludes:   []string{"**/.git/**"},
			Workers:    4,
			Extractor:  "pdftotext",
		},
		Retrieve: RetrieveConfig{
			TopK:      3,
			CacheSize: 100,
			CacheTTL:  Duration{5 * time.Minute},
		},
		LLM: LLMConfig{
			BaseURL:       "http://localhost:5001",
			MaxLength:     1000,
			Temperature:   0.05,
			TopP:          0.9,
			TopK:          40,
			RepPen:        1.1,
			Timeout:       Duration{300 * time.Second},
			StopSequences: append([]string(nil), DefaultStopSequences...),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load loads configuration from a YAML or TOML file, chosen by extension.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// LoadFromDir looks for mantis.yaml, mantis.toml, then .mantis/config.yaml.
// Relative knowledge base and manuals paths resolve against dir.
func LoadFromDir(dir string) (*Config, error) {
	candidates := []string{
		filepath.Join(dir, "mantis.yaml"),
		filepath.Join(dir, "mantis.toml"),
		filepath.Join(dir, ".mantis", "config.yaml"),
	}

	cfg := DefaultConfig()
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			loaded, err := Load(path)
			if err != nil {
				return nil, err
			}
			cfg = loaded
			break
		}
	}

	cfg.resolvePaths(dir)
	return cfg, nil
}

func (c *Config) resolvePaths(dir string) {
	if c.KnowledgeBase.Path != "" && !filepath.IsAbs(c.KnowledgeBase.Path) {
		c.KnowledgeBase.Path = filepath.Join(dir, c.KnowledgeBase.Path)
	}
	if c.Ingest.ManualsDir != "" && !filepath.IsAbs(c.Ingest.ManualsDir) {
		c.Ingest.ManualsDir = filepath.Join(dir, c.Ingest.ManualsDir)
	}
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	if c.KnowledgeBase.Path == "" {
		return fmt.Errorf("knowledge_base.path must be set")
	}
	if c.Retrieve.TopK < 1 {
		return fmt.Errorf("retrieve.top_k must be at least 1, got %d", c.Retrieve.TopK)
	}
	if c.Ingest.Workers < 1 {
		return fmt.Errorf("ingest.workers must be at least 1, got %d", c.Ingest.Workers)
	}
	if c.LLM.BaseURL == "" {
		return fmt.Errorf("llm.base_url must be set")
	}
	if c.LLM.Timeout.Duration <= 0 {
		return fmt.Errorf("llm.timeout must be positive")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

// Save writes the configuration as TOML or YAML, chosen by extension.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(c)
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
