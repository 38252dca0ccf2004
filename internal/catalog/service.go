// Package catalog loads, normalizes and filters catalog entries, and
// handles the submissions users make against the catalog store.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/pbaille/toolcat/internal/domain"
	"github.com/pbaille/toolcat/internal/filter"
	"github.com/pbaille/toolcat/internal/forms"
)

// Submission outcomes reported to the Observer
const (
	OutcomeStored   = "stored"
	OutcomeInvalid  = "invalid"
	OutcomeConflict = "conflict"
	OutcomeFailed   = "failed"
	OutcomeLocal    = "local"
)

// Archiver keeps a copy of a stored submission for manual follow-up
type Archiver interface {
	Archive(ctx context.Context, collection domain.Collection, rec domain.Record) error
}

// Describer looks up a short description of a tool from its website
type Describer interface {
	Describe(ctx context.Context, url string) (string, error)
}

// Observer is told the outcome of every submission
type Observer interface {
	Submitted(collection domain.Collection, outcome string)
}

// Service is the catalog's application layer
type Service struct {
	store     domain.RecordStore
	archiver  Archiver
	describer Describer
	observer  Observer
	now       func() time.Time

	mu    sync.Mutex
	local map[string]Thread
}

// Option configures a Service
type Option func(*Service)

// WithArchiver archives stored entry submissions and queries
func WithArchiver(a Archiver) Option { return func(s *Service) { s.archiver = a } }

// WithDescriber fills empty entry descriptions from the tool's website
func WithDescriber(d Describer) Option { return func(s *Service) { s.describer = d } }

// WithObserver reports submission outcomes
func WithObserver(o Observer) Option { return func(s *Service) { s.observer = o } }

// WithClock overrides the time source used for local reviews
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// New creates a Service on top of a record store
func New(store domain.RecordStore, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
		local: make(map[string]Thread),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadEntries fetches and normalizes every entry
func (s *Service) LoadEntries(ctx context.Context) ([]domain.Entry, error) {
	recs, err := s.store.FetchAll(ctx, domain.Entries)
	if err != nil {
		return nil, &domain.StoreError{Op: "fetch entries", Err: err}
	}
	return NormalizeEntries(recs), nil
}

// Browse returns the entries matching state
func (s *Service) Browse(ctx context.Context, state filter.State) ([]domain.Entry, error) {
	entries, err := s.LoadEntries(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Apply(entries, state), nil
}

// Entry fetches a single entry. A missing entry, or one whose record lacks
// identity, yields an error matching domain.ErrNotFound.
func (s *Service) Entry(ctx context.Context, id string) (domain.Entry, error) {
	rec, err := s.store.FetchOne(ctx, domain.Entries, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Entry{}, fmt.Errorf("entry %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Entry{}, &domain.StoreError{Op: "fetch entry", Err: err}
	}

	e, err := NormalizeEntry(rec)
	if err != nil {
		log.Printf("entry %s unreadable: %v", id, err)
		return domain.Entry{}, fmt.Errorf("entry %s: %w", id, domain.ErrNotFound)
	}
	return e, nil
}

// SubmitEntry validates and stores a new catalog entry
func (s *Service) SubmitEntry(ctx context.Context, sub forms.EntrySubmission) (domain.Entry, error) {
	sub.Clean()
	if err := forms.Validate(sub); err != nil {
		s.observe(domain.Entries, OutcomeInvalid)
		return domain.Entry{}, err
	}

	if sub.Description == "" && sub.Website != "" && s.describer != nil {
		desc, err := s.describer.Describe(ctx, sub.Website)
		if err != nil {
			log.Printf("describe %s: %v", sub.Website, err)
		} else {
			sub.Description = desc
		}
	}

	stored, err := s.store.Insert(ctx, domain.Entries, entryRecord(sub))
	if err != nil {
		s.observe(domain.Entries, OutcomeFailed)
		return domain.Entry{}, &domain.StoreError{Op: "insert entry", Err: err}
	}
	s.archive(ctx, domain.Entries, stored)
	s.observe(domain.Entries, OutcomeStored)

	return NormalizeEntry(stored)
}

// Subscribe registers an email for the newsletter. An address that is
// already subscribed yields an error matching domain.ErrConflict.
func (s *Service) Subscribe(ctx context.Context, in forms.SubscriptionInput) (domain.Subscription, error) {
	in.Clean()
	if err := forms.Validate(in); err != nil {
		s.observe(domain.Subscriptions, OutcomeInvalid)
		return domain.Subscription{}, err
	}

	stored, err := s.store.Insert(ctx, domain.Subscriptions, domain.Record{"email": in.Email})
	if errors.Is(err, domain.ErrConflict) {
		s.observe(domain.Subscriptions, OutcomeConflict)
		return domain.Subscription{}, fmt.Errorf("subscribe %s: %w", in.Email, domain.ErrConflict)
	}
	if err != nil {
		s.observe(domain.Subscriptions, OutcomeFailed)
		return domain.Subscription{}, &domain.StoreError{Op: "insert subscription", Err: err}
	}
	s.observe(domain.Subscriptions, OutcomeStored)

	return domain.Subscription{
		ID:        stringField(stored, keysID...),
		Email:     stringField(stored, "email"),
		CreatedAt: timeField(stored, keysCreatedAt...),
	}, nil
}

// SubmitQuery stores an open-ended request for manual follow-up
func (s *Service) SubmitQuery(ctx context.Context, q forms.QuerySubmission) (domain.Query, error) {
	q.Clean()
	if err := forms.Validate(q); err != nil {
		s.observe(domain.Queries, OutcomeInvalid)
		return domain.Query{}, err
	}

	stored, err := s.store.Insert(ctx, domain.Queries, domain.Record{
		"name":    q.Name,
		"email":   q.Email,
		"message": q.Message,
	})
	if err != nil {
		s.observe(domain.Queries, OutcomeFailed)
		return domain.Query{}, &domain.StoreError{Op: "insert query", Err: err}
	}
	s.archive(ctx, domain.Queries, stored)
	s.observe(domain.Queries, OutcomeStored)

	return domain.Query{
		ID:        stringField(stored, keysID...),
		Name:      stringField(stored, "name"),
		Email:     stringField(stored, "email"),
		Message:   stringField(stored, "message"),
		CreatedAt: timeField(stored, keysCreatedAt...),
	}, nil
}

// Import stores raw entry records as they are, skipping those without a
// name. It returns the number of records stored.
func (s *Service) Import(ctx context.Context, recs []domain.Record) (int, error) {
	n := 0
	for i, rec := range recs {
		if stringField(rec, keysName...) == "" {
			log.Printf("import: skipping record %d without name", i)
			continue
		}
		if _, err := s.store.Insert(ctx, domain.Entries, rec); err != nil {
			return n, &domain.StoreError{Op: "import entry", Err: err}
		}
		n++
	}
	return n, nil
}

func (s *Service) archive(ctx context.Context, c domain.Collection, rec domain.Record) {
	if s.archiver == nil {
		return
	}
	if err := s.archiver.Archive(ctx, c, rec); err != nil {
		log.Printf("archive %s %v: %v", c, rec["id"], err)
	}
}

func (s *Service) observe(c domain.Collection, outcome string) {
	if s.observer != nil {
		s.observer.Submitted(c, outcome)
	}
}

func entryRecord(sub forms.EntrySubmission) domain.Record {
	rec := domain.Record{
		"name":             sub.Name,
		"description":      sub.Description,
		"website":          sub.Website,
		"functions":        sub.Functions,
		"roles":            sub.Roles,
		"use_case":         sub.UseCase,
		"technical_level":  sub.TechnicalLevel,
		"gdpr_compliant":   sub.GDPRCompliant,
		"data_residency":   sub.DataResidency,
		"ai_act_compliant": sub.AIActCompliant,
		"contact_email":    sub.ContactEmail,
	}
	if sub.Company.Name != "" {
		rec["company"] = map[string]any{
			"name":           sub.Company.Name,
			"founded_year":   sub.Company.FoundedYear,
			"location":       sub.Company.Location,
			"employee_count": sub.Company.EmployeeCount,
		}
	}
	return rec
}
