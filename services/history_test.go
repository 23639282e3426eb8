package services

import (
	"context"
	"testing"
	"time"

	"agriqa/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHistoryStore(t *testing.T) HistoryStore {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisHistoryStore(client)
}

func TestRedisHistoryStore_AppendAndReadBack(t *testing.T) {
	store := newTestHistoryStore(t)
	ctx := context.Background()

	user := models.ChatMessage{
		ID:        "m1",
		SessionID: "session-1",
		Role:      models.RoleUser,
		Content:   "What are rice prices?",
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}
	assistant := models.ChatMessage{
		ID:        "m2",
		SessionID: "session-1",
		Role:      models.RoleAssistant,
		Content:   "Rice prices vary by mandi.",
		Sources:   []models.Source{{Title: "Agmarknet", URL: "https://agmarknet.gov.in"}},
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, store.Append(ctx, user))
	require.NoError(t, store.Append(ctx, assistant))

	messages, err := store.History(ctx, "session-1", 1000)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, models.RoleUser, messages[0].Role)
	assert.Equal(t, models.RoleAssistant, messages[1].Role)
	assert.Equal(t, assistant.Sources, messages[1].Sources)
}

func TestRedisHistoryStore_UnknownSessionIsEmpty(t *testing.T) {
	store := newTestHistoryStore(t)

	messages, err := store.History(context.Background(), "never-seen", 1000)

	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestRedisHistoryStore_SessionsAreIsolated(t *testing.T) {
	store := newTestHistoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, models.ChatMessage{ID: "a", SessionID: "s1", Role: models.RoleUser, Content: "one"}))
	require.NoError(t, store.Append(ctx, models.ChatMessage{ID: "b", SessionID: "s2", Role: models.RoleUser, Content: "two"}))

	s1, err := store.History(ctx, "s1", 1000)
	require.NoError(t, err)
	require.Len(t, s1, 1)
	assert.Equal(t, "one", s1[0].Content)
}
