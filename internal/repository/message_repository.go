package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mathclub/club-backend/internal/model"
)

// MessageRepository handles member/admin chat threads.
type MessageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// Create inserts a message. The sender has always seen their own message.
func (r *MessageRepository) Create(ctx context.Context, m *model.Message) error {
	m.SeenByUser = m.From == model.MessageFromUser
	m.SeenByAdmin = m.From == model.MessageFromAdmin
	return r.pool.QueryRow(ctx,
		`INSERT INTO messages (user_id, sender, text, image_url, seen_by_user, seen_by_admin)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		m.UserID, m.From, m.Text, m.ImageURL, m.SeenByUser, m.SeenByAdmin,
	).Scan(&m.ID, &m.CreatedAt)
}

// ListThread returns a member's thread, oldest first.
func (r *MessageRepository) ListThread(ctx context.Context, userID int) ([]model.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, sender, text, image_url, seen_by_user, seen_by_admin, created_at
		 FROM messages WHERE user_id = $1
		 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.From, &m.Text, &m.ImageURL, &m.SeenByUser, &m.SeenByAdmin, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// MarkSeen flags every message written by the other side as seen by reader.
func (r *MessageRepository) MarkSeen(ctx context.Context, userID int, reader model.MessageSender) error {
	var err error
	if reader == model.MessageFromUser {
		_, err = r.pool.Exec(ctx,
			`UPDATE messages SET seen_by_user = TRUE WHERE user_id = $1 AND sender = 'admin' AND NOT seen_by_user`, userID)
	} else {
		_, err = r.pool.Exec(ctx,
			`UPDATE messages SET seen_by_admin = TRUE WHERE user_id = $1 AND sender = 'user' AND NOT seen_by_admin`, userID)
	}
	return err
}

// ListThreads returns one inbox row per member who has messages, most recent first.
func (r *MessageRepository) ListThreads(ctx context.Context) ([]model.ThreadSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.name, u.email,
			COUNT(*) FILTER (WHERE m.sender = 'user' AND NOT m.seen_by_admin)::int AS unread,
			MAX(m.created_at) AS last_message_at
		 FROM messages m
		 JOIN users u ON u.id = m.user_id
		 GROUP BY u.id, u.name, u.email
		 ORDER BY last_message_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var threads []model.ThreadSummary
	for rows.Next() {
		var t model.ThreadSummary
		if err := rows.Scan(&t.UserID, &t.UserName, &t.UserEmail, &t.Unread, &t.LastMessageAt); err != nil {
			return nil, err
		}
		threads = append(threads, t)
	}
	return threads, rows.Err()
}
