// Package config reads runtime settings from the environment (and an
// optional .env file) and the controlled vocabulary from YAML.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator"
	"github.com/joho/godotenv"
	"github.com/pbaille/toolcat/internal/filter"
	"gopkg.in/yaml.v3"
)

// DefaultVocabulary is the vocabulary used when TOOLCAT_VOCABULARY is unset
//
//go:embed vocabulary.yaml
var DefaultVocabulary []byte

// Archive drivers
const (
	ArchiveNone = "none"
	ArchiveDir  = "dir"
	ArchiveS3   = "s3"
)

// Config holds the process settings
type Config struct {
	Driver            string        `validate:"required,oneof=sqlite3 pgx memory"`
	DSN               string
	Addr              string        `validate:"required"`
	VocabularyFile    string
	Archive           string        `validate:"oneof=none dir s3"`
	ArchiveDir        string
	S3Bucket          string
	S3Region          string
	S3Endpoint        string        `validate:"omitempty,url"`
	S3Prefix          string
	FetchDescriptions bool
	FetchTimeout      time.Duration `validate:"min=0"`
}

// Load reads .env (when present) and the environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	fetch, err := strconv.ParseBool(envOrDefault("TOOLCAT_FETCH_DESCRIPTIONS", "false"))
	if err != nil {
		return nil, fmt.Errorf("TOOLCAT_FETCH_DESCRIPTIONS: %w", err)
	}
	timeout, err := time.ParseDuration(envOrDefault("TOOLCAT_FETCH_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("TOOLCAT_FETCH_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Driver:            envOrDefault("TOOLCAT_DRIVER", "sqlite3"),
		DSN:               os.Getenv("TOOLCAT_DB"),
		Addr:              envOrDefault("TOOLCAT_ADDR", ":8080"),
		VocabularyFile:    os.Getenv("TOOLCAT_VOCABULARY"),
		Archive:           envOrDefault("TOOLCAT_ARCHIVE", ArchiveNone),
		ArchiveDir:        os.Getenv("TOOLCAT_ARCHIVE_DIR"),
		S3Bucket:          os.Getenv("TOOLCAT_S3_BUCKET"),
		S3Region:          envOrDefault("TOOLCAT_S3_REGION", "us-east-1"),
		S3Endpoint:        os.Getenv("TOOLCAT_S3_ENDPOINT"),
		S3Prefix:          os.Getenv("TOOLCAT_S3_PREFIX"),
		FetchDescriptions: fetch,
		FetchTimeout:      timeout,
	}
	return cfg, nil
}

// Validate checks the settings once flags have been applied
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation error: %w", err)
	}
	switch {
	case c.Driver != "memory" && c.DSN == "":
		return fmt.Errorf("config validation error: database DSN required for driver %s", c.Driver)
	case c.Archive == ArchiveDir && c.ArchiveDir == "":
		return fmt.Errorf("config validation error: TOOLCAT_ARCHIVE_DIR required for dir archive")
	case c.Archive == ArchiveS3 && c.S3Bucket == "":
		return fmt.Errorf("config validation error: TOOLCAT_S3_BUCKET required for s3 archive")
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Vocabulary is the controlled vocabulary offered for each filter dimension
type Vocabulary struct {
	Functions       []string `yaml:"functions" json:"functions" validate:"required,unique,dive,required"`
	Roles           []string `yaml:"roles" json:"roles" validate:"required,unique,dive,required"`
	UseCases        []string `yaml:"useCases" json:"useCases" validate:"required,unique,dive,required"`
	TechnicalLevels []string `yaml:"technicalLevels" json:"technicalLevels" validate:"required,unique,dive,required"`
}

// NewVocabularyFromReader parses and validates a YAML vocabulary
func NewVocabularyFromReader(r io.Reader) (*Vocabulary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read vocabulary: %w", err)
	}

	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("unable to unmarshal vocabulary: %w", err)
	}
	if err := validator.New().Struct(v); err != nil {
		return nil, fmt.Errorf("vocabulary validation error: %w", err)
	}
	return &v, nil
}

// LoadVocabulary reads the vocabulary file, or the embedded default when
// path is empty.
func (c *Config) LoadVocabulary() (*Vocabulary, error) {
	if c.VocabularyFile == "" {
		return NewVocabularyFromReader(bytes.NewReader(DefaultVocabulary))
	}
	f, err := os.Open(c.VocabularyFile)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary: %w", err)
	}
	defer f.Close()
	return NewVocabularyFromReader(f)
}

// ByDimension maps the vocabulary onto filter dimensions
func (v *Vocabulary) ByDimension() map[filter.Dimension][]string {
	return map[filter.Dimension][]string{
		filter.Functions:       v.Functions,
		filter.Roles:           v.Roles,
		filter.UseCases:        v.UseCases,
		filter.TechnicalLevels: v.TechnicalLevels,
	}
}
