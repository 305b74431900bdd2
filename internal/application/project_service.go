package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/blinkforge/blinkforge-api/internal/domain/entity"
	repo "github.com/blinkforge/blinkforge-api/internal/domain/repository"
	"github.com/blinkforge/blinkforge-api/pkg/helpers"
)

var (
	ErrEmptyPrompt  = errors.New("prompt must not be empty")
	ErrBuildPending = errors.New("a build is already pending for this user")
)

// BuildJob is the JSON payload put on the RabbitMQ queue for the build
// worker. The worker simulates the build, persists the status transition,
// and notifies the user.
type BuildJob struct {
	ProjectID string `json:"project_id"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Title     string `json:"title"`
	Prompt    string `json:"prompt"`
}

// BuildPublisher abstracts the queue so the service can be tested without a
// broker connection.
type BuildPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type ProjectService struct {
	Repo            repo.ProjectRepository
	Redis           *redis.Client
	Logger          *logrus.Logger
	Pub             BuildPublisher
	ES              *elasticsearch.Client
	ESProjectsIndex string
	PendingTTL      time.Duration
}

func NewProjectService(r repo.ProjectRepository, rdb *redis.Client, logger *logrus.Logger, pub BuildPublisher, es *elasticsearch.Client, esIndex string, pendingTTL time.Duration) *ProjectService {
	return &ProjectService{
		Repo:            r,
		Redis:           rdb,
		Logger:          logger,
		Pub:             pub,
		ES:              es,
		ESProjectsIndex: esIndex,
		PendingTTL:      pendingTTL,
	}
}

func pendingKey(userID string) string {
	return "build:pending:" + userID
}

// CreateFromPrompt validates the prompt, writes a new creating-status project
// scoped to the user, and hands the build off to the queue. Exactly one
// store create happens per invocation. While a build is pending for the user
// another create is rejected; the guard clears when the build finishes or
// its TTL lapses. A store failure aborts the flow before any side effect so
// the caller keeps its form state and may resubmit.
func (s *ProjectService) CreateFromPrompt(ctx context.Context, user *entity.User, prompt string) (*entity.Project, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	ok, err := s.Redis.SetNX(ctx, pendingKey(user.ID), "1", s.PendingTTL).Result()
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", user.ID).Error("pending guard failed")
		return nil, err
	}
	if !ok {
		return nil, ErrBuildPending
	}

	p := &entity.Project{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Title:       entity.TitleFromPrompt(prompt),
		Description: prompt,
		Prompt:      prompt,
		Status:      entity.StatusCreating,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		// Release the guard so the user can resubmit immediately.
		_ = s.Redis.Del(ctx, pendingKey(user.ID)).Err()
		s.Logger.WithError(err).WithField("user_id", user.ID).Error("project create failed")
		return nil, err
	}

	job := BuildJob{ProjectID: p.ID, UserID: p.UserID, Email: user.Email, Title: p.Title, Prompt: p.Prompt}
	if err := s.Pub.PublishJSON(ctx, job); err != nil {
		// The record exists; the build just never starts. Surface it for the
		// operator and let the pending guard TTL clear the submission lock.
		s.Logger.WithError(err).WithField("project_id", p.ID).Error("build job publish failed")
	}

	s.indexProject(ctx, p)
	return p, nil
}

// List returns the user's projects, most recent first.
func (s *ProjectService) List(ctx context.Context, userID string) ([]entity.Project, error) {
	return s.Repo.List(ctx, userID)
}

// Delete removes a project. A row that is already gone is not an error.
func (s *ProjectService) Delete(ctx context.Context, userID, projectID string) error {
	err := s.Repo.Delete(ctx, userID, projectID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	s.deleteFromIndex(ctx, projectID)
	return nil
}

// FinishBuild persists the creating -> completed transition exactly once and
// clears the user's pending guard. Called by the build worker.
func (s *ProjectService) FinishBuild(ctx context.Context, projectID, userID, appURL string) error {
	err := s.Repo.MarkStatus(ctx, projectID, entity.StatusCreating, entity.StatusCompleted, appURL)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if derr := s.Redis.Del(ctx, pendingKey(userID)).Err(); derr != nil {
		s.Logger.WithError(derr).WithField("user_id", userID).Warn("pending guard release failed")
	}
	return err
}

// FailBuild persists the creating -> failed transition and clears the guard.
func (s *ProjectService) FailBuild(ctx context.Context, projectID, userID string) error {
	err := s.Repo.MarkStatus(ctx, projectID, entity.StatusCreating, entity.StatusFailed, "")
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if derr := s.Redis.Del(ctx, pendingKey(userID)).Err(); derr != nil {
		s.Logger.WithError(derr).WithField("user_id", userID).Warn("pending guard release failed")
	}
	return err
}

func (s *ProjectService) indexProject(ctx context.Context, p *entity.Project) {
	if s.ES == nil || s.ESProjectsIndex == "" {
		return
	}
	doc := map[string]any{
		"id":         p.ID,
		"user_id":    p.UserID,
		"title":      p.Title,
		"prompt":     p.Prompt,
		"status":     p.Status,
		"created_at": p.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESProjectsIndex, DocumentID: p.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("project_id", p.ID).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("project_id", p.ID).Warn("es index response error")
	}
}

func (s *ProjectService) deleteFromIndex(ctx context.Context, projectID string) {
	if s.ES == nil || s.ESProjectsIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESProjectsIndex, DocumentID: projectID}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("project_id", projectID).Warn("es delete failed")
		return
	}
	_ = res.Body.Close()
}

// Search performs a multi_match query over the user's projects.
func (s *ProjectService) Search(ctx context.Context, userID, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESProjectsIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"title^2", "prompt"},
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"user_id": userID},
				},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESProjectsIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

var _ BuildPublisher = (*helpers.RabbitPublisher)(nil)
