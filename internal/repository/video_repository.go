package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mathclub/club-backend/internal/model"
)

// VideoRepository handles video topics and lessons.
type VideoRepository struct {
	pool *pgxpool.Pool
}

// NewVideoRepository creates a new VideoRepository.
func NewVideoRepository(pool *pgxpool.Pool) *VideoRepository {
	return &VideoRepository{pool: pool}
}

// ListTopics returns topics ordered by sort order, then creation time.
func (r *VideoRepository) ListTopics(ctx context.Context) ([]model.VideoTopic, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, sort_order, created_at FROM video_topics ORDER BY sort_order, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []model.VideoTopic
	for rows.Next() {
		var t model.VideoTopic
		if err := rows.Scan(&t.ID, &t.Title, &t.Order, &t.CreatedAt); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// ListLessons returns all lessons ordered by sort order, then creation time.
func (r *VideoRepository) ListLessons(ctx context.Context) ([]model.VideoLesson, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, topic_id, title, video_url, thumbnail_url, sort_order, created_at
		 FROM video_lessons ORDER BY sort_order, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lessons []model.VideoLesson
	for rows.Next() {
		var l model.VideoLesson
		if err := rows.Scan(&l.ID, &l.TopicID, &l.Title, &l.VideoURL, &l.ThumbnailURL, &l.Order, &l.CreatedAt); err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

// CreateTopic inserts a topic.
func (r *VideoRepository) CreateTopic(ctx context.Context, t *model.VideoTopic) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO video_topics (title, sort_order) VALUES ($1, $2) RETURNING id, created_at`,
		t.Title, t.Order,
	).Scan(&t.ID, &t.CreatedAt)
}

// CreateLesson inserts a lesson.
func (r *VideoRepository) CreateLesson(ctx context.Context, l *model.VideoLesson) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO video_lessons (topic_id, title, video_url, thumbnail_url, sort_order)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		l.TopicID, l.Title, l.VideoURL, l.ThumbnailURL, l.Order,
	).Scan(&l.ID, &l.CreatedAt)
}

// TopicExists reports whether a topic exists.
func (r *VideoRepository) TopicExists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM video_topics WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
