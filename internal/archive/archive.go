// Package archive keeps a copy of every stored submission so that it can be
// followed up by hand. Archivers never alter the record they are given.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pbaille/toolcat/internal/domain"
)

// Key returns the object key of a record: <collection>/<yyyy>/<mm>/<id>.json.
// The month comes from the record's created_at, or from now when unset.
func Key(c domain.Collection, rec domain.Record, now time.Time) string {
	t := now.UTC()
	if s, ok := rec["created_at"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
			t = parsed.UTC()
		}
	}
	return fmt.Sprintf("%s/%04d/%02d/%v.json", c, t.Year(), int(t.Month()), rec["id"])
}

// Nop discards everything
type Nop struct{}

// Archive does nothing
func (Nop) Archive(context.Context, domain.Collection, domain.Record) error { return nil }

// Dir writes submissions as JSON files below a root directory
type Dir struct {
	root string
	now  func() time.Time
}

// NewDir creates a Dir archiver rooted at path
func NewDir(path string) *Dir {
	return &Dir{root: path, now: time.Now}
}

// Archive writes rec to <root>/<key>
func (d *Dir) Archive(ctx context.Context, c domain.Collection, rec domain.Record) error {
	path := filepath.Join(d.root, filepath.FromSlash(Key(c, rec, d.now())))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return fmt.Errorf("write archive file: %w", err)
	}
	return nil
}
