package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	v1 "kanban-backend/internal/api/v1"
	"kanban-backend/internal/api/v1/handlers"
	"kanban-backend/internal/apperr"
	"kanban-backend/internal/middleware"
	"kanban-backend/internal/models"
	"kanban-backend/internal/repository"
	"kanban-backend/internal/token"
	ws "kanban-backend/internal/websocket"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// fakeUserStore keeps users in memory with the same (nil, nil) miss
// convention as the Postgres implementation.
type fakeUserStore struct {
	users []*models.User
}

func (s *fakeUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id int) (*models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeTeamStore struct {
	teams []models.Team
}

func (s *fakeTeamStore) List(context.Context) ([]models.Team, error) {
	return append([]models.Team{}, s.teams...), nil
}

func (s *fakeTeamStore) names() map[string]bool {
	known := map[string]bool{}
	for _, t := range s.teams {
		known[t.Name] = true
	}
	return known
}

// fakeTaskStore mirrors the Postgres task store contract: id-ordered
// listings, name-ordered team sets, validation of team names on write.
type fakeTaskStore struct {
	teams  *fakeTeamStore
	nextID int
	tasks  map[int]*models.TaskDetail
	order  []int
}

func newFakeTaskStore(teams *fakeTeamStore) *fakeTaskStore {
	return &fakeTaskStore{teams: teams, nextID: 1, tasks: map[int]*models.TaskDetail{}}
}

func (s *fakeTaskStore) resolve(names []string) ([]string, error) {
	known := s.teams.names()
	out := append([]string{}, names...)
	for _, n := range out {
		if !known[n] {
			return nil, apperr.Validationf("Team '%s' not found", n)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *fakeTaskStore) Create(_ context.Context, createdBy int, in repository.NewTask) (*models.TaskDetail, error) {
	teams, err := s.resolve(in.Teams)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	task := &models.TaskDetail{
		Task: models.Task{
			ID:           s.nextID,
			Name:         in.Name,
			Description:  in.Description,
			Status:       in.Status,
			ExternalLink: in.ExternalLink,
			CreatedBy:    createdBy,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		Teams:       teams,
		Attachments: []models.AttachmentRef{},
	}
	s.tasks[task.ID] = task
	s.order = append(s.order, task.ID)
	s.nextID++
	cp := *task
	return &cp, nil
}

func (s *fakeTaskStore) Get(_ context.Context, id int) (*models.TaskDetail, error) {
	task, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	cp := *task
	return &cp, nil
}

func (s *fakeTaskStore) List(context.Context) ([]models.TaskDetail, error) {
	out := []models.TaskDetail{}
	for _, id := range s.order {
		out = append(out, *s.tasks[id])
	}
	return out, nil
}

func (s *fakeTaskStore) Update(_ context.Context, id int, patch repository.TaskPatch) (*models.TaskDetail, error) {
	task, ok := s.tasks[id]
	if !ok {
		return nil, apperr.NotFound("Task not found")
	}
	if patch.Teams != nil {
		teams, err := s.resolve(*patch.Teams)
		if err != nil {
			return nil, err
		}
		task.Teams = teams
	}
	if patch.Name != nil {
		task.Name = *patch.Name
	}
	if patch.Description != nil {
		task.Description = patch.Description
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.ExternalLink != nil {
		task.ExternalLink = patch.ExternalLink
	}
	task.UpdatedAt = time.Now()
	cp := *task
	return &cp, nil
}

func (s *fakeTaskStore) Delete(_ context.Context, id int) error {
	if _, ok := s.tasks[id]; !ok {
		return apperr.NotFound("Task not found")
	}
	delete(s.tasks, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

type fakeAttachmentStore struct {
	nextID      int
	attachments map[int][]*models.TaskAttachment
}

func newFakeAttachmentStore() *fakeAttachmentStore {
	return &fakeAttachmentStore{nextID: 1, attachments: map[int][]*models.TaskAttachment{}}
}

func (s *fakeAttachmentStore) Add(_ context.Context, att *models.TaskAttachment) error {
	att.ID = s.nextID
	att.CreatedAt = time.Now()
	att.DownloadURL = fmt.Sprintf("/api/tasks/%d/attachments/%d/download", att.TaskID, att.ID)
	s.nextID++
	cp := *att
	s.attachments[att.TaskID] = append(s.attachments[att.TaskID], &cp)
	return nil
}

func (s *fakeAttachmentStore) ListByTask(_ context.Context, taskID int) ([]models.TaskAttachment, error) {
	out := []models.TaskAttachment{}
	for _, a := range s.attachments[taskID] {
		out = append(out, *a)
	}
	return out, nil
}

func (s *fakeAttachmentStore) Get(_ context.Context, taskID, attachmentID int) (*models.TaskAttachment, error) {
	for _, a := range s.attachments[taskID] {
		if a.ID == attachmentID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeAttachmentStore) Delete(_ context.Context, taskID, attachmentID int) error {
	list := s.attachments[taskID]
	for i, a := range list {
		if a.ID == attachmentID {
			s.attachments[taskID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("Attachment not found")
}

// env bundles a fully wired test application with direct access to the
// fakes behind it.
type env struct {
	app    *fiber.App
	tokens *token.Service
	users  *fakeUserStore
	teams  *fakeTeamStore
	tasks  *fakeTaskStore
	atts   *fakeAttachmentStore
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newEnv(t *testing.T, cache *redis.Client) *env {
	t.Helper()

	users := &fakeUserStore{users: []*models.User{{
		ID:           1,
		Username:     "admin",
		PasswordHash: mustHash(t, "admin123"),
		Name:         "Administrator",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}}}
	teams := &fakeTeamStore{teams: []models.Team{
		{ID: 1, Name: "BACKEND"}, {ID: 2, Name: "DESIGN"},
		{ID: 3, Name: "FRONTEND"}, {ID: 4, Name: "QA"},
	}}
	tasks := newFakeTaskStore(teams)
	atts := newFakeAttachmentStore()

	tokens := token.NewService(testSecret, time.Hour)
	hub := ws.NewHub()
	go hub.Run()

	app := fiber.New(fiber.Config{BodyLimit: 10 * 1024 * 1024})
	v1.RegisterRoutes(app, v1.Handlers{
		Auth:        handlers.NewAuthHandler(users, tokens),
		Tasks:       handlers.NewTaskHandler(tasks, cache, hub, validator.New()),
		Teams:       handlers.NewTeamHandler(teams),
		Attachments: handlers.NewAttachmentHandler(atts, tasks, t.TempDir()),
		Health:      handlers.NewHealthHandler(nil),
	}, middleware.Auth(tokens))

	return &env{app: app, tokens: tokens, users: users, teams: teams, tasks: tasks, atts: atts}
}

func (e *env) bearer(t *testing.T) string {
	t.Helper()
	signed, err := e.tokens.Issue(1, "admin", "Administrator")
	require.NoError(t, err)
	return "Bearer " + signed
}

// do runs a JSON request against the app and decodes the envelope into a
// loose map so tests can assert on key presence.
func (e *env) do(t *testing.T, method, path, auth string, payload any) (int, map[string]json.RawMessage) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	envelope := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	return resp.StatusCode, envelope
}

func decodeData[T any](t *testing.T, envelope map[string]json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(envelope["data"], &out))
	return out
}

func message(envelope map[string]json.RawMessage) string {
	var s string
	_ = json.Unmarshal(envelope["message"], &s)
	return s
}
