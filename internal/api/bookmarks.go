package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/LJTian/Updevted/internal/roadmap"
	"github.com/LJTian/Updevted/internal/storage"
	"github.com/gin-gonic/gin"
)

type addBookmarkReq struct {
	Kind string          `json:"kind"`
	Item json.RawMessage `json:"item"`
}

func (s *Server) listBookmarks(c *gin.Context) {
	items, err := s.store.ListBookmarks(c.Request.Context(), c.Query("kind"))
	if errors.Is(err, storage.ErrInvalidKind) {
		fail(c, http.StatusBadRequest, "invalid_kind", "kind must be article or repo")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	ok(c, items)
}

func (s *Server) addBookmark(c *gin.Context) {
	var req addBookmarkReq
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Item) == 0 {
		fail(c, http.StatusBadRequest, "invalid_request", "kind and item are required")
		return
	}

	b, err := s.store.AddBookmark(c.Request.Context(), req.Item, req.Kind)
	switch {
	case errors.Is(err, storage.ErrInvalidKind):
		fail(c, http.StatusBadRequest, "invalid_kind", "kind must be article or repo")
	case errors.Is(err, storage.ErrMissingID):
		fail(c, http.StatusBadRequest, "invalid_request", "item must have an id")
	case err != nil:
		fail(c, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		ok(c, b)
	}
}

func bookmarkParams(c *gin.Context) (kind, id string) {
	return c.Param("kind"), strings.TrimPrefix(c.Param("id"), "/")
}

func (s *Server) isBookmarked(c *gin.Context) {
	kind, id := bookmarkParams(c)
	marked, err := s.store.IsBookmarked(c.Request.Context(), id, kind)
	if errors.Is(err, storage.ErrInvalidKind) {
		fail(c, http.StatusBadRequest, "invalid_kind", "kind must be article or repo")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	ok(c, gin.H{"id": id, "kind": kind, "bookmarked": marked})
}

func (s *Server) removeBookmark(c *gin.Context) {
	kind, id := bookmarkParams(c)
	err := s.store.RemoveBookmark(c.Request.Context(), id, kind)
	if errors.Is(err, storage.ErrInvalidKind) {
		fail(c, http.StatusBadRequest, "invalid_kind", "kind must be article or repo")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	ok(c, gin.H{"id": id, "kind": kind, "bookmarked": false})
}

func (s *Server) listRoadmaps(c *gin.Context) {
	careers := roadmap.List()
	for i, career := range careers {
		progress, err := s.store.TopicProgress(c.Request.Context(), career.ID)
		if err != nil {
			fail(c, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}
		careers[i] = career.WithProgress(progress)
	}
	ok(c, careers)
}

func (s *Server) getRoadmap(c *gin.Context) {
	career, err := roadmap.Get(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, "not_found", "roadmap not found")
		return
	}
	progress, err := s.store.TopicProgress(c.Request.Context(), career.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	ok(c, career.WithProgress(progress))
}

type topicStatusReq struct {
	Status string `json:"status"`
}

func (s *Server) setTopicStatus(c *gin.Context) {
	career, err := roadmap.Get(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, "not_found", "roadmap not found")
		return
	}
	topic := strings.TrimPrefix(c.Param("topic"), "/")

	// 请求体无法解析时 Status 为空，按非法状态处理
	var req topicStatusReq
	_ = c.ShouldBindJSON(&req)

	switch err := career.ValidateTopicStatus(topic, req.Status); {
	case errors.Is(err, roadmap.ErrUnknownTopic):
		fail(c, http.StatusNotFound, "not_found", "topic not found")
		return
	case errors.Is(err, roadmap.ErrInvalidStatus):
		fail(c, http.StatusBadRequest, "invalid_status", "status must be completed, learning or not-started")
		return
	}

	if err := s.store.SetTopicStatus(c.Request.Context(), career.ID, topic, req.Status); err != nil {
		fail(c, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	progress, err := s.store.TopicProgress(c.Request.Context(), career.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	ok(c, career.WithProgress(progress))
}

func (s *Server) listJobs(c *gin.Context) {
	ok(c, roadmap.Jobs(c.Query("role")))
}
