package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chatty-im/chatty/internal/database"
)

func newTestQueries(t *testing.T) *Queries {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db.DB)
}

func createUser(t *testing.T, q *Queries, id, name, email string) {
	t.Helper()
	require.NoError(t, q.CreateUser(context.Background(), CreateUserParams{
		ID:           id,
		FullName:     name,
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	}))
}

func TestUserLifecycle(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	createUser(t, q, "u1", "Alice", "alice@example.com")

	err := q.CreateUser(ctx, CreateUserParams{
		ID:           "u2",
		FullName:     "Alice Again",
		Email:        "alice@example.com",
		PasswordHash: "hash2",
		CreatedAt:    time.Now().UTC(),
	})
	require.Error(t, err, "duplicate email must be rejected")

	u, err := q.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)
	require.Equal(t, "Alice", u.FullName)

	require.NoError(t, q.UpdateUserProfile(ctx, UpdateUserProfileParams{
		ProfilePic: "https://example.com/a.png",
		ID:         "u1",
	}))
	u, err = q.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/a.png", u.ProfilePic)
}

func TestListUsersExcept(t *testing.T) {
	q := newTestQueries(t)

	createUser(t, q, "u1", "Alice", "alice@example.com")
	createUser(t, q, "u2", "Bob", "bob@example.com")
	createUser(t, q, "u3", "Carol", "carol@example.com")

	users, err := q.ListUsersExcept(context.Background(), "u2")
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		require.NotEqual(t, "u2", u.ID)
	}
}

func TestMessagesBetween(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	createUser(t, q, "u1", "Alice", "alice@example.com")
	createUser(t, q, "u2", "Bob", "bob@example.com")
	createUser(t, q, "u3", "Carol", "carol@example.com")

	base := time.Now().UTC().Truncate(time.Second)
	msgs := []CreateMessageParams{
		{ID: "m1", SenderID: "u1", ReceiverID: "u2", Text: "hi", CreatedAt: base},
		{ID: "m2", SenderID: "u2", ReceiverID: "u1", Text: "hello", CreatedAt: base.Add(time.Second)},
		{ID: "m3", SenderID: "u1", ReceiverID: "u3", Text: "other chat", CreatedAt: base.Add(2 * time.Second)},
	}
	for _, m := range msgs {
		require.NoError(t, q.CreateMessage(ctx, m))
	}

	conv, err := q.ListMessagesBetween(ctx, ListMessagesBetweenParams{UserA: "u1", UserB: "u2"})
	require.NoError(t, err)
	require.Len(t, conv, 2)
	require.Equal(t, "m1", conv[0].ID)
	require.Equal(t, "m2", conv[1].ID)
}
