// Package config loads docrag settings from a YAML file with environment
// variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/fwojciec/docrag"
	"gopkg.in/yaml.v3"
)

// Defaults applied before the file and environment are read.
const (
	DefaultModel              = "gemini-2.5-flash"
	DefaultEmbeddingModel     = "gemini-embedding-001"
	DefaultDatabase           = "docrag.db"
	DefaultRegistry           = "corpora.json"
	DefaultStagingDir         = "staging"
	DefaultMaxPages           = 100
	DefaultCrawlRate          = 2.0
	DefaultFetcher            = "auto"
	DefaultTopK               = 5
	DefaultClassifier         = "generative"
	DefaultCleanupConcurrency = 10
	DefaultPort               = 8080
	DefaultLogLevel           = "info"
)

// Config is the complete runtime configuration.
type Config struct {
	GeminiAPIKey        string `yaml:"gemini_api_key"`
	Model               string `yaml:"model"`
	EmbeddingModel      string `yaml:"embedding_model"`
	EmbeddingDimensions int    `yaml:"embedding_dimensions"`

	// Database is the SQLite file backing the local corpus service.
	Database string `yaml:"database"`

	// Registry is the JSON file mapping labels to corpus handles.
	Registry string `yaml:"registry"`

	// StagingDir is used for staging when S3 is not configured.
	StagingDir string `yaml:"staging_dir"`

	S3     S3     `yaml:"s3"`
	Crawl  Crawl  `yaml:"crawl"`
	Ingest Ingest `yaml:"ingest"`

	TopK int `yaml:"top_k"`

	// Classifier picks corpora in auto mode: "generative" asks the model,
	// "keyword" matches label words against the question.
	Classifier string `yaml:"classifier"`

	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// S3 holds staging bucket settings. It converts directly to minio.Config.
type S3 struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Crawl holds crawler settings.
type Crawl struct {
	MaxPages int `yaml:"max_pages"`

	// Rate is the request budget per second for each domain.
	Rate float64 `yaml:"rate"`

	// Fetcher is one of "http", "browser" or "auto".
	Fetcher string `yaml:"fetcher"`

	Sitemap bool `yaml:"sitemap"`
}

// Ingest holds ingestion settings.
type Ingest struct {
	BatchSize          int `yaml:"batch_size"`
	ChunkSize          int `yaml:"chunk_size"`
	ChunkOverlap       int `yaml:"chunk_overlap"`
	RateLimit          int `yaml:"rate_limit"`
	CleanupConcurrency int `yaml:"cleanup_concurrency"`
}

// ImportOptions returns the import parameters for the corpus service.
func (i Ingest) ImportOptions() docrag.ImportOptions {
	return docrag.ImportOptions{
		ChunkSize:    i.ChunkSize,
		ChunkOverlap: i.ChunkOverlap,
		RateLimit:    i.RateLimit,
	}
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	opts := docrag.DefaultImportOptions()
	return &Config{
		Model:          DefaultModel,
		EmbeddingModel: DefaultEmbeddingModel,
		Database:       DefaultDatabase,
		Registry:       DefaultRegistry,
		StagingDir:     DefaultStagingDir,
		Crawl: Crawl{
			MaxPages: DefaultMaxPages,
			Rate:     DefaultCrawlRate,
			Fetcher:  DefaultFetcher,
		},
		Ingest: Ingest{
			BatchSize:          docrag.DefaultBatchSize,
			ChunkSize:          opts.ChunkSize,
			ChunkOverlap:       opts.ChunkOverlap,
			RateLimit:          opts.RateLimit,
			CleanupConcurrency: DefaultCleanupConcurrency,
		},
		TopK:       DefaultTopK,
		Classifier: DefaultClassifier,
		Port:       DefaultPort,
		LogLevel:   DefaultLogLevel,
	}
}

// LookupFunc reports the value of an environment variable.
type LookupFunc func(key string) (string, bool)

// Load reads the YAML file at path over the defaults and applies
// environment overrides. A missing file is not an error; an empty path
// skips the file.
func Load(path string) (*Config, error) {
	return LoadEnv(path, os.LookupEnv)
}

// LoadEnv is Load with a custom environment lookup.
func LoadEnv(path string, lookup LookupFunc) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, docrag.Errorf(docrag.EINVALID, "parse config %s: %v", path, err)
			}
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("GEMINI_API_KEY", &c.GeminiAPIKey)
	str("DOCRAG_DB", &c.Database)
	str("DOCRAG_REGISTRY", &c.Registry)
	str("DOCRAG_STAGING_DIR", &c.StagingDir)
	str("S3_ENDPOINT", &c.S3.Endpoint)
	str("S3_ACCESS_KEY", &c.S3.AccessKey)
	str("S3_SECRET_KEY", &c.S3.SecretKey)
	str("S3_BUCKET", &c.S3.Bucket)
	str("LOG_LEVEL", &c.LogLevel)
	str("DOCRAG_CLASSIFIER", &c.Classifier)

	if v, ok := lookup("S3_USE_SSL"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return docrag.Errorf(docrag.EINVALID, "S3_USE_SSL: invalid boolean %q", v)
		}
		c.S3.UseSSL = b
	}
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return docrag.Errorf(docrag.EINVALID, "PORT: invalid number %q", v)
		}
		c.Port = port
	}
	return nil
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	if c.Crawl.MaxPages <= 0 {
		return docrag.Errorf(docrag.EINVALID, "crawl.max_pages must be positive")
	}
	if c.Crawl.Rate <= 0 {
		return docrag.Errorf(docrag.EINVALID, "crawl.rate must be positive")
	}
	switch c.Crawl.Fetcher {
	case "http", "browser", "auto":
	default:
		return docrag.Errorf(docrag.EINVALID, "crawl.fetcher must be http, browser or auto, got %q", c.Crawl.Fetcher)
	}
	if c.Ingest.BatchSize <= 0 {
		return docrag.Errorf(docrag.EINVALID, "ingest.batch_size must be positive")
	}
	if err := c.Ingest.ImportOptions().Validate(); err != nil {
		return err
	}
	if c.TopK <= 0 {
		return docrag.Errorf(docrag.EINVALID, "top_k must be positive")
	}
	switch c.Classifier {
	case "generative", "keyword":
	default:
		return docrag.Errorf(docrag.EINVALID, "classifier must be generative or keyword, got %q", c.Classifier)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return docrag.Errorf(docrag.EINVALID, "port out of range: %d", c.Port)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// ParseLevel maps a level name to its slog level value.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, docrag.Errorf(docrag.EINVALID, "unknown log level %q", s)
}
