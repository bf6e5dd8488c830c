package conversation

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSessionStore(client, 24*time.Hour, time.UTC)
}

func TestLoadMissingSessionIsNil(t *testing.T) {
	store := newTestStore(t)
	sess, err := store.Load(context.Background(), "nope", time.Now())
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestLoadExpiresIdleSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 9, 6, 12, 0, 0, 0, time.UTC)

	date := day(2026, 9, 10)
	sess := &Session{
		ID:            "s1",
		BarbershopID:  uuid.New(),
		CurrentDate:   &date,
		LastMessageAt: now.Add(-25 * time.Hour),
		ClientPhone:   "11988887777",
		Status:        SessionActive,
	}
	require.NoError(t, store.Save(ctx, sess))

	loaded, err := store.Load(ctx, "s1", now)
	require.NoError(t, err)
	assert.Nil(t, loaded.CurrentDate)
	assert.Equal(t, SessionExpired, loaded.Status)
	assert.Empty(t, loaded.ClientPhone)

	// The clearing must be persisted, not just returned.
	again, err := store.Load(ctx, "s1", now)
	require.NoError(t, err)
	assert.Nil(t, again.CurrentDate)
	assert.Equal(t, SessionExpired, again.Status)
}

func TestLoadKeepsFreshSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 9, 6, 12, 0, 0, 0, time.UTC)

	date := day(2026, 9, 10)
	sess := &Session{
		ID:            "s2",
		BarbershopID:  uuid.New(),
		CurrentDate:   &date,
		LastMessageAt: now.Add(-1 * time.Hour),
		Status:        SessionActive,
	}
	require.NoError(t, store.Save(ctx, sess))

	loaded, err := store.Load(ctx, "s2", now)
	require.NoError(t, err)
	require.NotNil(t, loaded.CurrentDate)
	assert.True(t, loaded.CurrentDate.Equal(date))
	assert.Equal(t, SessionActive, loaded.Status)
}

func TestLoadClearsPastDate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 9, 6, 0, 30, 0, 0, time.UTC)

	past := day(2026, 9, 5)
	sess := &Session{
		ID:            "s3",
		BarbershopID:  uuid.New(),
		CurrentDate:   &past,
		LastMessageAt: now.Add(-2 * time.Hour),
		Status:        SessionActive,
	}
	require.NoError(t, store.Save(ctx, sess))

	loaded, err := store.Load(ctx, "s3", now)
	require.NoError(t, err)
	assert.Nil(t, loaded.CurrentDate, "past date should be cleared")
	// A stale date alone does not expire the session.
	assert.Equal(t, SessionActive, loaded.Status)
}

func TestClearDateKeepsStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 9, 6, 12, 0, 0, 0, time.UTC)

	date := day(2026, 9, 10)
	sess := &Session{ID: "s6", BarbershopID: uuid.New(), CurrentDate: &date, LastMessageAt: now, Status: SessionActive}
	require.NoError(t, store.Save(ctx, sess))
	require.NoError(t, store.ClearDate(ctx, sess))

	loaded, err := store.Load(ctx, "s6", now)
	require.NoError(t, err)
	assert.Nil(t, loaded.CurrentDate)
	assert.Equal(t, SessionActive, loaded.Status)
}

func TestCompleteClearsDate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 9, 6, 12, 0, 0, 0, time.UTC)

	date := day(2026, 9, 10)
	sess := &Session{ID: "s4", BarbershopID: uuid.New(), CurrentDate: &date, LastMessageAt: now, Status: SessionActive}
	require.NoError(t, store.Save(ctx, sess))
	require.NoError(t, store.Complete(ctx, sess))

	loaded, err := store.Load(ctx, "s4", now)
	require.NoError(t, err)
	assert.Nil(t, loaded.CurrentDate)
	assert.Equal(t, SessionCompleted, loaded.Status)
}

func TestSetDate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 9, 6, 12, 0, 0, 0, time.UTC)

	sess := &Session{ID: "s5", BarbershopID: uuid.New(), LastMessageAt: now, Status: SessionActive}
	require.NoError(t, store.SetDate(ctx, sess, day(2026, 9, 9)))

	loaded, err := store.Load(ctx, "s5", now)
	require.NoError(t, err)
	require.NotNil(t, loaded.CurrentDate)
	assert.True(t, loaded.CurrentDate.Equal(day(2026, 9, 9)))
}
