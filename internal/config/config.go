package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Catalog source kinds accepted in CATALOG_SOURCE.
const (
	SourceBuiltin  = "builtin"
	SourceYAML     = "yaml"
	SourceBigQuery = "bigquery"
	SourcePostgres = "postgres"
	SourceNotion   = "notion"
)

type Config struct {
	Server   ServerConfig
	Catalog  CatalogConfig
	BigQuery BigQueryConfig
	Database DatabaseConfig
	Notion   NotionConfig
	Storage  StorageConfig
	Gemini   GeminiConfig
	Jobs     JobsConfig
	LogLevel string
}

type ServerConfig struct {
	Port string
}

type CatalogConfig struct {
	// Source selects where cards are read from. One of the Source* constants.
	Source string
	// Path is the YAML catalog file when Source is yaml.
	Path string
}

type BigQueryConfig struct {
	ProjectID string
	Dataset   string
	Table     string
}

type DatabaseConfig struct {
	URL string
}

type NotionConfig struct {
	Token     string
	CardsDBID string
}

type StorageConfig struct {
	Bucket string
}

// GeminiConfig selects the model used to read PDF statements. Credentials
// and backend come from the GOOGLE_* variables read by the genai client.
type GeminiConfig struct {
	Model string
}

type JobsConfig struct {
	Workers    int
	QueueSize  int
	MaxRetries int
}

// Load reads configuration from the environment. Variables that belong to a
// catalog source are only required when that source is selected.
func Load() (*Config, error) {
	workers, err := getIntEnv("JOB_WORKERS", 5)
	if err != nil {
		return nil, err
	}
	queueSize, err := getIntEnv("JOB_QUEUE_SIZE", 100)
	if err != nil {
		return nil, err
	}
	maxRetries, err := getIntEnv("JOB_MAX_RETRIES", 3)
	if err != nil {
		return nil, err
	}

	project := getEnv("BIGQUERY_PROJECT", getEnv("GOOGLE_CLOUD_PROJECT", ""))

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Catalog: CatalogConfig{
			Source: strings.ToLower(getEnv("CATALOG_SOURCE", SourceBuiltin)),
			Path:   getEnv("CATALOG_PATH", ""),
		},
		BigQuery: BigQueryConfig{
			ProjectID: project,
			Dataset:   getEnv("BIGQUERY_DATASET", "cards"),
			Table:     getEnv("BIGQUERY_TABLE", "credit_cards"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Notion: NotionConfig{
			Token:     getEnv("NOTION_TOKEN", ""),
			CardsDBID: getEnv("NOTION_CARDS_DB_ID", ""),
		},
		Storage: StorageConfig{
			Bucket: getEnv("GCS_BUCKET", ""),
		},
		Gemini: GeminiConfig{
			Model: getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Jobs: JobsConfig{
			Workers:    workers,
			QueueSize:  queueSize,
			MaxRetries: maxRetries,
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected catalog source is fully configured and
// that job settings are usable.
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case SourceBuiltin:
	case SourceYAML:
		if c.Catalog.Path == "" {
			return fmt.Errorf("CATALOG_PATH is required when CATALOG_SOURCE=yaml")
		}
	case SourceBigQuery:
		if c.BigQuery.ProjectID == "" {
			return fmt.Errorf("BIGQUERY_PROJECT is required when CATALOG_SOURCE=bigquery")
		}
	case SourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when CATALOG_SOURCE=postgres")
		}
	case SourceNotion:
		if c.Notion.Token == "" {
			return fmt.Errorf("NOTION_TOKEN is required when CATALOG_SOURCE=notion")
		}
		if c.Notion.CardsDBID == "" {
			return fmt.Errorf("NOTION_CARDS_DB_ID is required when CATALOG_SOURCE=notion")
		}
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.Catalog.Source)
	}

	if c.Jobs.Workers < 1 {
		return fmt.Errorf("JOB_WORKERS must be at least 1")
	}
	if c.Jobs.QueueSize < 1 {
		return fmt.Errorf("JOB_QUEUE_SIZE must be at least 1")
	}
	if c.Jobs.MaxRetries < 0 {
		return fmt.Errorf("JOB_MAX_RETRIES must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
