package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/pbaille/toolcat/internal/domain"
)

// ErrMissingIdentity is returned for records without an id or a name
var ErrMissingIdentity = errors.New("record missing id or name")

// Store records use snake_case keys; older submissions used camelCase and
// the singular function/role keys. All spellings are accepted.
var (
	keysID             = []string{"id"}
	keysName           = []string{"name"}
	keysDescription    = []string{"description"}
	keysWebsite        = []string{"website", "website_url", "websiteUrl", "url"}
	keysFunctions      = []string{"functions", "function"}
	keysRoles          = []string{"roles", "role"}
	keysUseCase        = []string{"use_case", "useCase"}
	keysTechnicalLevel = []string{"technical_level", "technicalLevel"}
	keysGDPR           = []string{"gdpr_compliant", "gdprCompliant"}
	keysDataResidency  = []string{"data_residency", "dataResidency"}
	keysAIAct          = []string{"ai_act_compliant", "aiActCompliant"}
	keysCreatedAt      = []string{"created_at", "createdAt"}
	keysToolID         = []string{"tool_id", "toolId"}
	keysText           = []string{"text"}
	keysAuthor         = []string{"author_name", "authorName"}
	keysRating         = []string{"rating"}
)

// NormalizeEntry converts a raw record into a fully populated Entry.
// Missing optional fields take their zero value; multi-valued fields are
// never nil. Records without an id or a name yield ErrMissingIdentity.
func NormalizeEntry(rec domain.Record) (domain.Entry, error) {
	id := strings.TrimSpace(stringField(rec, keysID...))
	name := strings.TrimSpace(stringField(rec, keysName...))
	if id == "" || name == "" {
		return domain.Entry{}, fmt.Errorf("%w (id=%q name=%q)", ErrMissingIdentity, id, name)
	}

	return domain.Entry{
		ID:             id,
		Name:           name,
		Description:    stringField(rec, keysDescription...),
		Website:        strings.TrimSpace(stringField(rec, keysWebsite...)),
		Functions:      setField(rec, keysFunctions...),
		Roles:          setField(rec, keysRoles...),
		UseCase:        strings.TrimSpace(stringField(rec, keysUseCase...)),
		TechnicalLevel: strings.TrimSpace(stringField(rec, keysTechnicalLevel...)),
		GDPRCompliant:  boolField(rec, keysGDPR...),
		DataResidency:  boolField(rec, keysDataResidency...),
		AIActCompliant: boolField(rec, keysAIAct...),
		Company:        companyField(rec),
		CreatedAt:      timeField(rec, keysCreatedAt...),
	}, nil
}

// NormalizeEntries normalizes every record, dropping (and logging) those
// without identity. The order of the remaining entries is kept.
func NormalizeEntries(recs []domain.Record) []domain.Entry {
	entries := make([]domain.Entry, 0, len(recs))
	for i, rec := range recs {
		e, err := NormalizeEntry(rec)
		if err != nil {
			log.Printf("skipping entry record %d: %v", i, err)
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

// NormalizeReview converts a raw review record, applying the anonymous
// author and default rating when they are missing.
func NormalizeReview(rec domain.Record) (domain.Review, error) {
	id := strings.TrimSpace(stringField(rec, keysID...))
	if id == "" {
		return domain.Review{}, fmt.Errorf("%w (review)", ErrMissingIdentity)
	}

	author := strings.TrimSpace(stringField(rec, keysAuthor...))
	if author == "" {
		author = domain.AnonymousAuthor
	}
	rating := intField(rec, keysRating...)
	if rating == 0 {
		rating = domain.DefaultRating
	}

	return domain.Review{
		ID:         id,
		ToolID:     strings.TrimSpace(stringField(rec, keysToolID...)),
		Text:       stringField(rec, keysText...),
		AuthorName: author,
		Rating:     rating,
		CreatedAt:  timeField(rec, keysCreatedAt...),
	}, nil
}

func lookup(rec domain.Record, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func stringField(rec domain.Record, keys ...string) string {
	v, ok := lookup(rec, keys...)
	if !ok {
		return ""
	}
	return toString(v)
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case []any:
		// single-valued fields stored as arrays keep their first value
		if len(x) > 0 && x[0] != nil {
			return toString(x[0])
		}
		return ""
	case []string:
		if len(x) > 0 {
			return x[0]
		}
		return ""
	}
	return ""
}

func setField(rec domain.Record, keys ...string) []string {
	out := []string{}
	v, ok := lookup(rec, keys...)
	if !ok {
		return out
	}

	var raw []string
	switch x := v.(type) {
	case []any:
		for _, item := range x {
			if item != nil {
				raw = append(raw, toString(item))
			}
		}
	case []string:
		raw = x
	default:
		raw = []string{toString(x)}
	}

	seen := make(map[string]bool, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func boolField(rec domain.Record, keys ...string) bool {
	v, ok := lookup(rec, keys...)
	if !ok {
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "yes", "y", "1", "on":
			return true
		}
	case float64:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	}
	return false
}

func intField(rec domain.Record, keys ...string) int {
	v, ok := lookup(rec, keys...)
	if !ok {
		return 0
	}
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		return int(x)
	case json.Number:
		n, _ := x.Int64()
		return int(n)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(x))
		return n
	}
	return 0
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05", "2006-01-02"}

func timeField(rec domain.Record, keys ...string) time.Time {
	v, ok := lookup(rec, keys...)
	if !ok {
		return time.Time{}
	}
	switch x := v.(type) {
	case time.Time:
		return x
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, x); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

// companyField reads either a nested company object or the flat
// company_* columns. It returns nil when no company name is known.
func companyField(rec domain.Record) *domain.Company {
	src := rec
	prefix := "company_"
	switch nested := rec["company"].(type) {
	case map[string]any:
		src, prefix = nested, ""
	case domain.Record:
		src, prefix = nested, ""
	}

	c := domain.Company{
		Name:          strings.TrimSpace(stringField(src, prefix+"name")),
		FoundedYear:   intField(src, prefix+"founded_year", prefix+"foundedYear", prefix+"founded"),
		Location:      strings.TrimSpace(stringField(src, prefix+"location")),
		EmployeeCount: strings.TrimSpace(stringField(src, prefix+"employee_count", prefix+"employeeCount", prefix+"employees")),
	}
	if c.Name == "" {
		return nil
	}
	return &c
}
