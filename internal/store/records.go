// Package store persists catalog records. Every collection shares one
// document table; records are kept as JSON payloads.
package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pbaille/toolcat/internal/domain"
)

// prepare copies rec, turns its id into a string, and assigns an id and
// creation time when missing.
func prepare(rec domain.Record, now time.Time) domain.Record {
	out := make(domain.Record, len(rec)+2)
	for k, v := range rec {
		out[k] = v
	}

	id := ""
	if v, ok := out["id"]; ok && v != nil {
		id = strings.TrimSpace(fmt.Sprint(v))
	}
	if id == "" {
		id = uuid.New().String()
	}
	out["id"] = id

	if v, ok := out["created_at"]; !ok || v == nil {
		out["created_at"] = now.UTC().Format(time.RFC3339Nano)
	}
	return out
}

// uniqueKey returns the per-collection deduplication key of a record, or
// "" when the collection has none. Subscriptions are unique by email.
func uniqueKey(c domain.Collection, rec domain.Record) string {
	if c != domain.Subscriptions {
		return ""
	}
	email, _ := rec["email"].(string)
	return strings.ToLower(strings.TrimSpace(email))
}
