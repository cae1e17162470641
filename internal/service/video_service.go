package service

import (
	"context"
	"errors"
	"strings"

	"github.com/mathclub/club-backend/internal/model"
)

var ErrTopicNotFound = errors.New("video topic not found")

// VideoService serves the lesson library.
type VideoService struct {
	videos VideoStore
}

// NewVideoService creates a new VideoService.
func NewVideoService(videos VideoStore) *VideoService {
	return &VideoService{videos: videos}
}

// Library returns topics with their lessons nested, plus lessons that
// belong to no topic. Both are kept in store order.
func (s *VideoService) Library(ctx context.Context) ([]model.VideoTopic, []model.VideoLesson, error) {
	topics, err := s.videos.ListTopics(ctx)
	if err != nil {
		return nil, nil, err
	}
	lessons, err := s.videos.ListLessons(ctx)
	if err != nil {
		return nil, nil, err
	}

	idx := make(map[int]int, len(topics))
	for i := range topics {
		topics[i].Lessons = []model.VideoLesson{}
		idx[topics[i].ID] = i
	}

	loose := []model.VideoLesson{}
	for _, l := range lessons {
		if l.TopicID != nil {
			if i, ok := idx[*l.TopicID]; ok {
				topics[i].Lessons = append(topics[i].Lessons, l)
				continue
			}
		}
		loose = append(loose, l)
	}
	return topics, loose, nil
}

// CreateTopic adds a topic.
func (s *VideoService) CreateTopic(ctx context.Context, req model.CreateTopicRequest) (*model.VideoTopic, error) {
	t := &model.VideoTopic{Title: strings.TrimSpace(req.Title), Order: req.Order}
	if err := s.videos.CreateTopic(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateLesson adds a lesson, optionally under an existing topic.
func (s *VideoService) CreateLesson(ctx context.Context, req model.CreateLessonRequest) (*model.VideoLesson, error) {
	if req.TopicID != nil {
		ok, err := s.videos.TopicExists(ctx, *req.TopicID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrTopicNotFound
		}
	}

	l := &model.VideoLesson{
		TopicID:  req.TopicID,
		Title:    strings.TrimSpace(req.Title),
		VideoURL: strings.TrimSpace(req.VideoURL),
		Order:    req.Order,
	}
	if th := strings.TrimSpace(req.ThumbnailURL); th != "" {
		l.ThumbnailURL = &th
	}
	if err := s.videos.CreateLesson(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}
