package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planagain/todo-api/internal/app"
	"github.com/planagain/todo-api/internal/domain/todo"
)

const feedWindow = 4 * time.Hour

// seed stores a todo directly in the fake repo, bypassing service defaults so
// tests control status.
func seed(repo *fakeTodoRepo, owner uuid.UUID, date, at string, status todo.Status) uuid.UUID {
	t := todo.Todo{
		OwnerID:     owner,
		Title:       date + " " + at,
		Description: "desc",
		DueDate:     date,
		DueTime:     at,
		Status:      status,
	}
	stored, _ := repo.Insert(context.Background(), &t)
	return stored.ID
}

func TestFeed_WindowBoundaries(t *testing.T) {
	t.Parallel()

	repo := newFakeTodoRepo()
	notifier := app.NewNotifier(repo, time.UTC, feedWindow, discardLogger())
	owner := uuid.New()
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	justInside := seed(repo, owner, "2024-06-01", "13:59", todo.StatusUpcoming)
	atCutoff := seed(repo, owner, "2024-06-01", "14:00", todo.StatusUpcoming)
	atNow := seed(repo, owner, "2024-06-01", "10:00", todo.StatusUpcoming)
	past := seed(repo, owner, "2024-06-01", "09:59", todo.StatusUpcoming)
	farFuture := seed(repo, owner, "2024-06-02", "10:00", todo.StatusUpcoming)
	oldCompleted := seed(repo, owner, "2020-01-01", "00:00", todo.StatusCompleted)

	feed, err := notifier.Feed(context.Background(), owner, now)
	require.NoError(t, err)

	got := make(map[uuid.UUID]bool, len(feed))
	for _, item := range feed {
		got[item.ID] = true
	}

	assert.True(t, got[justInside], "due just inside the window must be included")
	assert.True(t, got[oldCompleted], "completed todos are always included")
	assert.False(t, got[atCutoff], "due exactly at now+window is excluded (strict)")
	assert.False(t, got[atNow], "due exactly now is excluded (strict)")
	assert.False(t, got[past], "overdue upcoming todos are excluded")
	assert.False(t, got[farFuture], "beyond the window is excluded")
}

func TestFeed_OrderedByDueInstant(t *testing.T) {
	t.Parallel()

	repo := newFakeTodoRepo()
	notifier := app.NewNotifier(repo, time.UTC, feedWindow, discardLogger())
	owner := uuid.New()
	now := time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC)

	seed(repo, owner, "2024-06-01", "09:00", todo.StatusUpcoming)
	seed(repo, owner, "2024-06-01", "08:00", todo.StatusUpcoming)
	seed(repo, owner, "2024-06-01", "10:00", todo.StatusUpcoming)

	feed, err := notifier.Feed(context.Background(), owner, now)
	require.NoError(t, err)

	require.Len(t, feed, 3)
	assert.Equal(t, "08:00", feed[0].DueTime)
	assert.Equal(t, "09:00", feed[1].DueTime)
	assert.Equal(t, "10:00", feed[2].DueTime)
}

func TestFeed_TimezoneChangesInclusion(t *testing.T) {
	t.Parallel()

	repo := newFakeTodoRepo()
	owner := uuid.New()

	// 13:00 wall clock: inside a 4h window from 10:00 UTC only when the
	// reference zone is UTC itself.
	seed(repo, owner, "2024-06-01", "13:00", todo.StatusUpcoming)
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	utcNotifier := app.NewNotifier(repo, time.UTC, feedWindow, discardLogger())
	feed, err := utcNotifier.Feed(context.Background(), owner, now)
	require.NoError(t, err)
	assert.Len(t, feed, 1)

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 13:00 in Tokyo is 04:00 UTC, already in the past at 10:00 UTC.
	tokyoNotifier := app.NewNotifier(repo, tokyo, feedWindow, discardLogger())
	feed, err = tokyoNotifier.Feed(context.Background(), owner, now)
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestFeed_ScopedToOwner(t *testing.T) {
	t.Parallel()

	repo := newFakeTodoRepo()
	notifier := app.NewNotifier(repo, time.UTC, feedWindow, discardLogger())
	alice, bob := uuid.New(), uuid.New()
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	seed(repo, alice, "2024-06-01", "11:00", todo.StatusUpcoming)
	seed(repo, bob, "2024-06-01", "11:00", todo.StatusUpcoming)

	feed, err := notifier.Feed(context.Background(), alice, now)
	require.NoError(t, err)

	require.Len(t, feed, 1)
	assert.Equal(t, alice, feed[0].OwnerID)
}

func TestFeed_ReadOnly(t *testing.T) {
	t.Parallel()

	repo := newFakeTodoRepo()
	notifier := app.NewNotifier(repo, time.UTC, feedWindow, discardLogger())
	owner := uuid.New()
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	id := seed(repo, owner, "2024-06-01", "09:00", todo.StatusUpcoming)

	_, err := notifier.Feed(context.Background(), owner, now)
	require.NoError(t, err)

	// Crossing out of the window must not have transitioned the status.
	stored, err := repo.GetByID(context.Background(), owner, id)
	require.NoError(t, err)
	assert.Equal(t, todo.StatusUpcoming, stored.Status)
}
