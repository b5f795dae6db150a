package domain

import (
	"context"
	"strings"
	"time"
	"unicode"
)

//go:generate mockgen -destination mocks/mock_environment_data_repository.go -package mocks github.com/authcove/authcove/internal/domain EnvironmentDataRepository

// EnvironmentData is one key-value configuration slot of an environment. The
// id is the canonical (normalized) key; the same key may exist independently
// per environment. New settings land here instead of new columns.
type EnvironmentData struct {
	ID            string    `json:"id"`
	Value         JSONValue `json:"value"`
	EnvironmentID string    `json:"environment_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NormalizeKey collapses a caller-supplied configuration key to its canonical
// form: trimmed, case-folded, with every run of non-alphanumeric characters
// replaced by a single underscore. Keys often come from UI labels, so
// cosmetic variants ("Enable SignUp", "enable_signup", " enable-signup ")
// must land in the same storage slot.
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	var b strings.Builder
	b.Grow(len(key))
	pendingSep := false
	for _, r := range key {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
		} else {
			pendingSep = true
		}
	}
	return b.String()
}

// EnvironmentDataRepository defines the interface for environment data
// database operations. Keys passed in are already normalized; normalization
// is the service's job.
type EnvironmentDataRepository interface {
	// Get retrieves a row by normalized key
	Get(ctx context.Context, environmentID, id string) (*EnvironmentData, error)

	// GetMany retrieves the rows whose ids are in the given set; missing
	// keys are simply absent from the result
	GetMany(ctx context.Context, environmentID string, ids []string) ([]*EnvironmentData, error)

	// List retrieves all rows of an environment
	List(ctx context.Context, environmentID string) ([]*EnvironmentData, error)

	// Upsert creates the row or wholly replaces its value
	Upsert(ctx context.Context, environmentID string, data *EnvironmentData) error

	// Update replaces the value of an existing row
	Update(ctx context.Context, environmentID string, data *EnvironmentData) error

	// Delete removes a row by normalized key
	Delete(ctx context.Context, environmentID, id string) error
}

// ErrEnvironmentDataNotFound is returned when no row exists for a key under
// the given environment
type ErrEnvironmentDataNotFound struct {
	Key string
}

func (e *ErrEnvironmentDataNotFound) Error() string {
	return "environment data not found: " + e.Key
}
