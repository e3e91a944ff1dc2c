package app

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/planagain/todo-api/internal/domain/todo"
	"github.com/planagain/todo-api/internal/ports"
)

// Compile-time check that Notifier implements ports.NotificationService.
var _ ports.NotificationService = (*Notifier)(nil)

// Notifier computes the due-window feed: Upcoming todos whose due instant
// falls strictly between now and now+window, plus every Completed todo,
// ordered ascending by due instant. All due instants are interpreted in the
// single configured reference timezone, not per user.
type Notifier struct {
	repo   ports.TodoRepository
	loc    *time.Location
	window time.Duration
	logger *slog.Logger
}

// NewNotifier creates a Notifier with the reference timezone and window size.
func NewNotifier(repo ports.TodoRepository, loc *time.Location, window time.Duration, logger *slog.Logger) *Notifier {
	return &Notifier{
		repo:   repo,
		loc:    loc,
		window: window,
		logger: logger,
	}
}

// Feed returns the owner's notification feed at the given instant. The read
// is side-effect free: a todo crossing the window boundary never changes
// status. Both window comparisons are strict, so an item due exactly now or
// exactly window ahead is excluded.
func (n *Notifier) Feed(ctx context.Context, ownerID uuid.UUID, now time.Time) ([]todo.Todo, error) {
	all, err := n.repo.AllByOwner(ctx, ownerID)
	if err != nil {
		n.logger.ErrorContext(ctx, "failed to load todos for notification feed",
			slog.String("operation", "Feed"),
			slog.String("owner_id", ownerID.String()),
			slog.Any("error", err),
		)
		return nil, err
	}

	cutoff := now.Add(n.window)

	type entry struct {
		item    todo.Todo
		instant time.Time
	}

	entries := make([]entry, 0, len(all))
	for _, t := range all {
		instant, err := t.DueInstant(n.loc)
		if err != nil {
			// Stored rows passed validation on the way in; an unparsable due
			// field indicates out-of-band data damage. Skip rather than fail
			// the whole feed.
			n.logger.WarnContext(ctx, "skipping todo with unparsable due fields",
				slog.String("todo_id", t.ID.String()),
				slog.Any("error", err),
			)
			continue
		}

		switch t.Status {
		case todo.StatusCompleted:
			entries = append(entries, entry{item: t, instant: instant})
		case todo.StatusUpcoming:
			if instant.After(now) && instant.Before(cutoff) {
				entries = append(entries, entry{item: t, instant: instant})
			}
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].instant.Before(entries[j].instant)
	})

	feed := make([]todo.Todo, len(entries))
	for i, e := range entries {
		feed[i] = e.item
	}
	return feed, nil
}
