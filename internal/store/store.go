package store

import (
	"context"
	"database/sql"
	"time"
)

// Queries exposes the SQL operations used by the REST handlers.
type Queries struct {
	db *sql.DB
}

// New creates a Queries instance over an open database handle.
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// User is a row in the users table.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	ProfilePic   string
	CreatedAt    time.Time
}

// Message is a row in the messages table.
type Message struct {
	ID         string
	SenderID   string
	ReceiverID string
	Text       string
	Image      string
	CreatedAt  time.Time
}

// CreateUserParams holds the fields for a new user row.
type CreateUserParams struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO users (id, full_name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		arg.ID, arg.FullName, arg.Email, arg.PasswordHash, arg.CreatedAt,
	)
	return err
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := q.db.QueryRowContext(ctx, `
		SELECT id, full_name, email, password_hash, profile_pic, created_at
		FROM users WHERE email = ?`, email,
	).Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.ProfilePic, &u.CreatedAt)
	return u, err
}

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	var u User
	err := q.db.QueryRowContext(ctx, `
		SELECT id, full_name, email, password_hash, profile_pic, created_at
		FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.ProfilePic, &u.CreatedAt)
	return u, err
}

// ListUsersExcept returns every user other than the given one, for the
// conversation sidebar.
func (q *Queries) ListUsersExcept(ctx context.Context, id string) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, full_name, email, password_hash, profile_pic, created_at
		FROM users WHERE id != ? ORDER BY full_name`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.ProfilePic, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUserProfileParams holds a profile picture update.
type UpdateUserProfileParams struct {
	ProfilePic string
	ID         string
}

func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET profile_pic = ? WHERE id = ?`,
		arg.ProfilePic, arg.ID,
	)
	return err
}

// CreateMessageParams holds the fields for a new message row.
type CreateMessageParams struct {
	ID         string
	SenderID   string
	ReceiverID string
	Text       string
	Image      string
	CreatedAt  time.Time
}

func (q *Queries) CreateMessage(ctx context.Context, arg CreateMessageParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO messages (id, sender_id, receiver_id, text, image, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		arg.ID, arg.SenderID, arg.ReceiverID, arg.Text, arg.Image, arg.CreatedAt,
	)
	return err
}

// ListMessagesBetweenParams selects a two-party conversation.
type ListMessagesBetweenParams struct {
	UserA string
	UserB string
}

// ListMessagesBetween returns the conversation between two users in arrival
// order (insertion order, ties broken by id for stability).
func (q *Queries) ListMessagesBetween(ctx context.Context, arg ListMessagesBetweenParams) ([]Message, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, sender_id, receiver_id, text, image, created_at
		FROM messages
		WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		ORDER BY created_at, id`,
		arg.UserA, arg.UserB, arg.UserB, arg.UserA,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.Image, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
