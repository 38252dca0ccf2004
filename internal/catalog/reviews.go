package catalog

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pbaille/toolcat/internal/domain"
	"github.com/pbaille/toolcat/internal/forms"
)

// Thread is a list of reviews ordered newest first
type Thread []domain.Review

// NewThread orders reviews newest first. Reviews with equal timestamps keep
// their relative order.
func NewThread(reviews ...domain.Review) Thread {
	t := make(Thread, len(reviews))
	copy(t, reviews)
	sort.SliceStable(t, func(i, j int) bool {
		return t[i].CreatedAt.After(t[j].CreatedAt)
	})
	return t
}

// Prepend returns a new thread with r in front; t is left unchanged
func (t Thread) Prepend(r domain.Review) Thread {
	out := make(Thread, 0, len(t)+1)
	out = append(out, r)
	return append(out, t...)
}

// ValidateReviewText rejects review text that is blank once trimmed
func ValidateReviewText(text string) error {
	if strings.TrimSpace(text) == "" {
		return &domain.ValidationError{Field: "text", Reason: "empty"}
	}
	return nil
}

// SubmitReview validates and stores a review. When the store rejects or
// cannot be reached, the review is still accepted: it gets a local id and
// timestamp and is kept in memory for the tool.
func (s *Service) SubmitReview(ctx context.Context, in forms.ReviewInput) (domain.Review, error) {
	if err := ValidateReviewText(in.Text); err != nil {
		s.observe(domain.Reviews, OutcomeInvalid)
		return domain.Review{}, err
	}
	in.ToolID = strings.TrimSpace(in.ToolID)
	if err := forms.Validate(in); err != nil {
		s.observe(domain.Reviews, OutcomeInvalid)
		return domain.Review{}, err
	}

	author := strings.TrimSpace(in.AuthorName)
	if author == "" {
		author = domain.AnonymousAuthor
	}
	rating := in.Rating
	if rating == 0 {
		rating = domain.DefaultRating
	}

	stored, err := s.store.Insert(ctx, domain.Reviews, domain.Record{
		"tool_id":     in.ToolID,
		"text":        in.Text,
		"author_name": author,
		"rating":      rating,
	})
	if err == nil {
		r, nerr := NormalizeReview(stored)
		if nerr == nil {
			s.observe(domain.Reviews, OutcomeStored)
			return r, nil
		}
		err = nerr
	}

	log.Printf("review for %s kept locally: %v", in.ToolID, err)
	r := domain.Review{
		ID:         uuid.New().String(),
		ToolID:     in.ToolID,
		Text:       in.Text,
		AuthorName: author,
		Rating:     rating,
		CreatedAt:  s.now(),
		Local:      true,
	}

	s.mu.Lock()
	s.local[in.ToolID] = s.local[in.ToolID].Prepend(r)
	s.mu.Unlock()

	s.observe(domain.Reviews, OutcomeLocal)
	return r, nil
}

// Reviews returns the stored and locally accepted reviews of one entry,
// newest first.
func (s *Service) Reviews(ctx context.Context, toolID string) (Thread, error) {
	recs, err := s.store.FetchAll(ctx, domain.Reviews)
	if err != nil {
		return nil, &domain.StoreError{Op: "fetch reviews", Err: err}
	}

	var reviews []domain.Review
	for _, rec := range recs {
		r, err := NormalizeReview(rec)
		if err != nil {
			log.Printf("skipping review record: %v", err)
			continue
		}
		if r.ToolID == toolID {
			reviews = append(reviews, r)
		}
	}

	s.mu.Lock()
	reviews = append(reviews, s.local[toolID]...)
	s.mu.Unlock()

	return NewThread(reviews...), nil
}
