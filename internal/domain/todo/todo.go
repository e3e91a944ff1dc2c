// Package todo contains the todo entity, its status state machine, and the
// typed listing criteria executed by the storage adapter.
package todo

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/planagain/todo-api/internal/domain"
)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 700

	// DateLayout is the wire and storage format for DueDate.
	DateLayout = "2006-01-02"
	// TimeLayout is the wire and storage format for DueTime.
	TimeLayout = "15:04"
)

// Todo is a task item owned by exactly one user. DueDate and DueTime are kept
// as independent fields; the single due instant only exists as a derived value
// (see DueInstant) interpreted in the notifier's reference timezone.
type Todo struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Title       string
	Description string
	DueDate     string // "YYYY-MM-DD"
	DueTime     string // "HH:mm"
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Normalize trims whitespace from free-text fields. Called before Validate so
// that "  Buy milk  " is persisted as "Buy milk" and blank-after-trim input
// is rejected.
func (t *Todo) Normalize() {
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
	t.DueDate = strings.TrimSpace(t.DueDate)
	t.DueTime = strings.TrimSpace(t.DueTime)
}

// Validate checks business rules for the Todo entity.
// Returns a *domain.ValidationError (wrapping domain.ErrValidation) with
// per-field details, or nil if all rules pass. Call Normalize first.
func (t *Todo) Validate() error {
	fields := make(map[string]string)

	if t.Title == "" {
		fields["title"] = domain.MsgRequired
	} else if len(t.Title) > maxTitleLen {
		fields["title"] = fmt.Sprintf("must be at most %d characters", maxTitleLen)
	}

	if t.Description == "" {
		fields["description"] = domain.MsgRequired
	} else if len(t.Description) > maxDescriptionLen {
		fields["description"] = fmt.Sprintf("must be at most %d characters", maxDescriptionLen)
	}

	if t.DueDate == "" {
		fields["dueDate"] = domain.MsgRequired
	} else if _, err := ParseDueDate(t.DueDate); err != nil {
		fields["dueDate"] = "must be a valid calendar date in YYYY-MM-DD form"
	}

	if t.DueTime == "" {
		fields["dueTime"] = domain.MsgRequired
	} else if _, err := ParseDueTime(t.DueTime); err != nil {
		fields["dueTime"] = "must be a valid time in HH:mm form"
	}

	if !t.Status.IsValid() {
		fields["status"] = fmt.Sprintf("invalid: %q", t.Status)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// ParseDueDate strictly parses a "YYYY-MM-DD" calendar date. Out-of-range
// components ("2024-02-30", "2024-13-40") are rejected, matching the strict
// parse the create/update contract requires.
func ParseDueDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing due date %q: %w", s, err)
	}
	return d, nil
}

// ParseDueTime strictly parses an "HH:mm" time of day.
func ParseDueTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing due time %q: %w", s, err)
	}
	return t, nil
}

// DueInstant merges DueDate and DueTime into a single point in time
// interpreted as wall-clock time in loc. The date is parsed and formatted
// back to YYYY-MM-DD before concatenation so both fields pass through one
// strict round trip. Comparing DueDate alone against now would misclassify
// items near day boundaries, so all due-window logic goes through here.
func (t *Todo) DueInstant(loc *time.Location) (time.Time, error) {
	d, err := ParseDueDate(t.DueDate)
	if err != nil {
		return time.Time{}, err
	}
	combined := d.Format(DateLayout) + " " + t.DueTime
	instant, err := time.ParseInLocation(DateLayout+" "+TimeLayout, combined, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("combining due date and time %q: %w", combined, err)
	}
	return instant, nil
}
