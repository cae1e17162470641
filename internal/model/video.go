package model

import "time"

// VideoTopic groups lessons.
type VideoTopic struct {
	ID        int           `json:"id"`
	Title     string        `json:"title"`
	Order     int           `json:"order"`
	CreatedAt time.Time     `json:"created_at"`
	Lessons   []VideoLesson `json:"lessons"`
}

// VideoLesson is a single recorded lesson.
type VideoLesson struct {
	ID           int       `json:"id"`
	TopicID      *int      `json:"topic_id,omitempty"`
	Title        string    `json:"title"`
	VideoURL     string    `json:"video_url"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty"`
	Order        int       `json:"order"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateTopicRequest is the payload for a new topic.
type CreateTopicRequest struct {
	Title string `json:"title" binding:"required,notblank,max=200"`
	Order int    `json:"order"`
}

// CreateLessonRequest is the payload for a new lesson.
type CreateLessonRequest struct {
	TopicID      *int   `json:"topic_id"`
	Title        string `json:"title" binding:"required,notblank,max=200"`
	VideoURL     string `json:"video_url" binding:"required,url,max=1024"`
	ThumbnailURL string `json:"thumbnail_url" binding:"omitempty,url,max=1024"`
	Order        int    `json:"order"`
}
