package config

import (
	"strings"
	"testing"

	"github.com/pbaille/toolcat/internal/filter"
)

func TestDefaultVocabularyIsValid(t *testing.T) {
	v, err := (&Config{}).LoadVocabulary()
	if err != nil {
		t.Fatalf("load default vocabulary: %v", err)
	}
	byDim := v.ByDimension()
	for _, d := range filter.Dimensions() {
		if len(byDim[d]) == 0 {
			t.Fatalf("dimension %s has no values", d)
		}
	}
}

func TestVocabularyRejectsDuplicates(t *testing.T) {
	doc := `
functions: [Sales, Sales]
roles: [Manager]
useCases: [Research]
technicalLevels: [No-code]
`
	if _, err := NewVocabularyFromReader(strings.NewReader(doc)); err == nil {
		t.Fatal("expected duplicate functions to be rejected")
	}
}

func TestVocabularyRequiresEveryDimension(t *testing.T) {
	if _, err := NewVocabularyFromReader(strings.NewReader("functions: [Sales]\n")); err == nil {
		t.Fatal("expected missing dimensions to be rejected")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TOOLCAT_DRIVER", "pgx")
	t.Setenv("TOOLCAT_DB", "postgres://localhost/toolcat")
	t.Setenv("TOOLCAT_ARCHIVE", "s3")
	t.Setenv("TOOLCAT_S3_BUCKET", "follow-up")
	t.Setenv("TOOLCAT_FETCH_DESCRIPTIONS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Driver != "pgx" || cfg.Addr != ":8080" || !cfg.FetchDescriptions || cfg.S3Region != "us-east-1" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := Config{Driver: "sqlite3", DSN: "x.db", Addr: ":8080", Archive: ArchiveNone}
	if err := base.Validate(); err != nil {
		t.Fatalf("base config: %v", err)
	}

	tests := map[string]func(*Config){
		"unknown driver":    func(c *Config) { c.Driver = "mysql" },
		"missing dsn":       func(c *Config) { c.DSN = "" },
		"dir without path":  func(c *Config) { c.Archive = ArchiveDir },
		"s3 without bucket": func(c *Config) { c.Archive = ArchiveS3 },
		"unknown archive":   func(c *Config) { c.Archive = "email" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			if err := c.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	mem := Config{Driver: "memory", Addr: ":8080", Archive: ArchiveNone}
	if err := mem.Validate(); err != nil {
		t.Fatalf("memory driver needs no dsn: %v", err)
	}
}
