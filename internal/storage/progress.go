package storage

import (
	"context"
	"errors"
)

func progressKey(roadmapID string) string {
	return "progress:" + roadmapID
}

// TopicProgress 返回某个路线图下各主题的学习状态，没有记录时返回空 map
func (s *Store) TopicProgress(ctx context.Context, roadmapID string) (map[string]string, error) {
	progress := map[string]string{}
	err := s.getJSON(ctx, progressKey(roadmapID), &progress)
	if errors.Is(err, ErrNotFound) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// SetTopicStatus 读-改-写整份进度，单用户场景下不加锁
func (s *Store) SetTopicStatus(ctx context.Context, roadmapID, topic, status string) error {
	progress, err := s.TopicProgress(ctx, roadmapID)
	if err != nil {
		return err
	}
	progress[topic] = status
	return s.setJSON(ctx, progressKey(roadmapID), progress, 0)
}
