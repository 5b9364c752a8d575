package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"studio_backend/internal/events"
	"studio_backend/internal/pipeline/repository"
	"studio_backend/internal/pipeline/service"
	"studio_backend/platform/apperr"
	"studio_backend/platform/httpkit"
	"studio_backend/platform/logger"
	"studio_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var tenantID = uuid.MustParse("11111111-1111-1111-1111-111111111111")

type stubStore struct {
	lead    repository.Lead
	applied []repository.StageChangeParams
}

func (s *stubStore) GetLead(_ context.Context, id uuid.UUID, org uuid.UUID) (repository.Lead, error) {
	if id != s.lead.ID || org != s.lead.OrganizationID {
		return repository.Lead{}, repository.ErrNotFound
	}
	return s.lead, nil
}

func (s *stubStore) GetProperty(context.Context, uuid.UUID, uuid.UUID) (repository.Property, error) {
	return repository.Property{}, repository.ErrPropertyNotFound
}

func (s *stubStore) ApplyStageChange(_ context.Context, p repository.StageChangeParams) (repository.Lead, error) {
	s.applied = append(s.applied, p)
	lead := s.lead
	lead.Stage = p.ToStage
	lead.LostReason = p.LostReason
	lead.LostNotes = p.LostNotes
	lead.LostAt = p.LostAt
	return lead, nil
}

func (s *stubStore) AddActivity(context.Context, repository.ActivityParams) error { return nil }

func (s *stubStore) RevertStage(context.Context, uuid.UUID, uuid.UUID, string, string) error {
	return nil
}

func (s *stubStore) CreateProperty(context.Context, uuid.UUID, string, repository.PropertyParams) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (s *stubStore) UpdateProperty(context.Context, uuid.UUID, uuid.UUID, repository.PropertyParams) error {
	return nil
}

func newRouter(store *stubStore) *gin.Engine {
	log := logger.Nop()
	svc := service.New(store, events.NewInMemoryBus(log), log)
	h := New(svc, validator.New())

	engine := gin.New()
	leads := engine.Group("/leads")
	leads.Use(func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, uuid.New())
		c.Set(httpkit.ContextTenantIDKey, tenantID)
		c.Set(httpkit.ContextRolesKey, []string{"sales"})
		c.Next()
	})
	h.RegisterRoutes(leads, func(c *gin.Context) { c.Next() })
	return engine
}

func newLeadStore() *stubStore {
	return &stubStore{lead: repository.Lead{
		ID:             uuid.New(),
		OrganizationID: tenantID,
		Stage:          "new",
		ClientName:     "A. Client",
	}}
}

func doJSON(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestTransitionToLost(t *testing.T) {
	store := newLeadStore()
	engine := newRouter(store)

	rec := doJSON(engine, http.MethodPost, "/leads/"+store.lead.ID.String()+"/transition",
		`{"to_stage":"lost","lost_reason":"<b>Price</b>","lost_notes":"Chose a competitor"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Lead struct {
			Stage string `json:"stage"`
		} `json:"lead"`
		ProjectCreated bool `json:"project_created"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Lead.Stage != "lost" || body.ProjectCreated {
		t.Fatalf("unexpected response %s", rec.Body.String())
	}
	if len(store.applied) != 1 || store.applied[0].LostReason == nil || *store.applied[0].LostReason != "Price" {
		t.Fatalf("expected sanitized lost reason, got %+v", store.applied)
	}
}

func TestTransitionMissingFields(t *testing.T) {
	store := newLeadStore()
	engine := newRouter(store)

	rec := doJSON(engine, http.MethodPost, "/leads/"+store.lead.ID.String()+"/transition", `{"to_stage":"lost"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body httpkit.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != apperr.CodeMissingFields || len(body.MissingFields) != 2 {
		t.Fatalf("unexpected error body %+v", body)
	}
	if len(store.applied) != 0 {
		t.Fatal("lead must not be written")
	}
}

func TestTransitionRejectsUnknownStage(t *testing.T) {
	store := newLeadStore()
	engine := newRouter(store)

	rec := doJSON(engine, http.MethodPost, "/leads/"+store.lead.ID.String()+"/transition", `{"to_stage":"archived"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransitionRejectsInvalidLeadID(t *testing.T) {
	engine := newRouter(newLeadStore())

	rec := doJSON(engine, http.MethodPost, "/leads/not-a-uuid/transition", `{"to_stage":"lost"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestStageRequirementsPreview(t *testing.T) {
	store := newLeadStore()
	engine := newRouter(store)

	rec := doJSON(engine, http.MethodGet, "/leads/"+store.lead.ID.String()+"/stage-requirements?to=qualified", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Allowed       bool     `json:"allowed"`
		MissingFields []string `json:"missingFields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Allowed || len(body.MissingFields) != 7 {
		t.Fatalf("unexpected preview %s", rec.Body.String())
	}
}

func TestGetLeadNotFound(t *testing.T) {
	engine := newRouter(newLeadStore())

	rec := doJSON(engine, http.MethodGet, "/leads/"+uuid.NewString(), "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
