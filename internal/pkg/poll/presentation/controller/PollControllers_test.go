package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	cacheadapter "github.com/ShahiCrafts/civicpulse/internal/infrastructure/cache/adapter"
	poll "github.com/ShahiCrafts/civicpulse/internal/pkg/poll/domain"
	repository "github.com/ShahiCrafts/civicpulse/internal/pkg/poll/repository/port"
)

// fakePollRepo is an in-memory PollRepository counting List calls.
type fakePollRepo struct {
	mu        sync.Mutex
	polls     map[string]poll.Poll
	nextID    int
	listCalls int
}

func newFakePollRepo() *fakePollRepo {
	return &fakePollRepo{polls: make(map[string]poll.Poll)}
}

func (r *fakePollRepo) List(ctx context.Context, q repository.ListQuery) (*repository.ListResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	out := make([]poll.Poll, 0, len(r.polls))
	for _, p := range r.polls {
		out = append(out, p)
	}
	return &repository.ListResult{Polls: out, TotalPolls: len(out), TotalPages: 1}, nil
}

func (r *fakePollRepo) Get(ctx context.Context, id string) (*poll.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.polls[id]
	if !ok {
		return nil, poll.ErrNotFound
	}
	return &p, nil
}

func (r *fakePollRepo) Create(ctx context.Context, p poll.Poll) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := fmt.Sprintf("p%d", r.nextID)
	p.ID = id
	r.polls[id] = p
	return id, nil
}

func (r *fakePollRepo) Update(ctx context.Context, p poll.Poll) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.polls[p.ID]; !ok {
		return poll.ErrNotFound
	}
	r.polls[p.ID] = p
	return nil
}

func (r *fakePollRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.polls[id]; !ok {
		return poll.ErrNotFound
	}
	delete(r.polls, id)
	return nil
}

func (r *fakePollRepo) listCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listCalls
}

var _ repository.PollRepository = (*fakePollRepo)(nil)

// newPollRouter wires the poll controllers over a fake repo and the
// in-memory cache. A nil queue client makes invalidation run inline.
func newPollRouter(repo *fakePollRepo, cache *cacheadapter.MemoryCache) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.GET("/admin/polls", NewListPollsController(repo, cache, nil).Handle())
	r.GET("/admin/polls/:id", NewGetPollController(repo, cache, nil).Handle())
	r.POST("/admin/polls", NewCreatePollController(repo, nil, cache, nil).Handle())
	r.PUT("/admin/polls/:id", NewUpdatePollController(repo, nil, cache, nil).Handle())
	r.DELETE("/admin/polls/:id", NewDeletePollController(repo, nil, cache, nil).Handle())
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListPollsServedFromCacheOnRepeat(t *testing.T) {
	repo := newFakePollRepo()
	repo.polls["p1"] = poll.Poll{ID: "p1", Title: "Park renewal", Status: poll.StatusActive}
	router := newPollRouter(repo, cacheadapter.NewMemoryCache())

	for i := 0; i < 3; i++ {
		w := doRequest(router, http.MethodGet, "/admin/polls?page=1&limit=10", "")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
	}
	if n := repo.listCount(); n != 1 {
		t.Fatalf("repo List called %d times, want 1", n)
	}
}

func TestListResponseShape(t *testing.T) {
	repo := newFakePollRepo()
	repo.polls["p1"] = poll.Poll{ID: "p1", Title: "Park renewal", Status: poll.StatusActive}
	router := newPollRouter(repo, cacheadapter.NewMemoryCache())

	w := doRequest(router, http.MethodGet, "/admin/polls", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body struct {
		Data struct {
			Polls      []map[string]any `json:"polls"`
			TotalPolls int              `json:"totalPolls"`
			TotalPages int              `json:"totalPages"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.TotalPolls != 1 || len(body.Data.Polls) != 1 {
		t.Fatalf("body = %s", w.Body.String())
	}
	if body.Data.Polls[0]["id"] != "p1" {
		t.Fatalf("poll = %+v", body.Data.Polls[0])
	}
}

func TestCreateInvalidatesListCache(t *testing.T) {
	repo := newFakePollRepo()
	router := newPollRouter(repo, cacheadapter.NewMemoryCache())

	// Prime the list cache.
	doRequest(router, http.MethodGet, "/admin/polls", "")
	doRequest(router, http.MethodGet, "/admin/polls", "")
	if n := repo.listCount(); n != 1 {
		t.Fatalf("repo List called %d times before mutation, want 1", n)
	}

	w := doRequest(router, http.MethodPost, "/admin/polls", `{"title":"Park renewal","status":"draft"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}

	// The versioned key family rolled over, so the next list misses.
	doRequest(router, http.MethodGet, "/admin/polls", "")
	if n := repo.listCount(); n != 2 {
		t.Fatalf("repo List called %d times after mutation, want 2", n)
	}
}

func TestDeleteDropsDetailCache(t *testing.T) {
	repo := newFakePollRepo()
	repo.polls["p1"] = poll.Poll{ID: "p1", Title: "Park renewal", Status: poll.StatusDraft}
	router := newPollRouter(repo, cacheadapter.NewMemoryCache())

	if w := doRequest(router, http.MethodGet, "/admin/polls/p1", ""); w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	if w := doRequest(router, http.MethodDelete, "/admin/polls/p1", ""); w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}

	// A cached detail response must not outlive the poll.
	w := doRequest(router, http.MethodGet, "/admin/polls/p1", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d after delete, want 404; body %s", w.Code, w.Body.String())
	}
}

func TestGetPollNotFound(t *testing.T) {
	router := newPollRouter(newFakePollRepo(), cacheadapter.NewMemoryCache())
	w := doRequest(router, http.MethodGet, "/admin/polls/missing", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message == "" {
		t.Fatal("error responses carry a message field")
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	router := newPollRouter(newFakePollRepo(), cacheadapter.NewMemoryCache())
	w := doRequest(router, http.MethodPost, "/admin/polls", `{"description":"no title"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestListRejectsUnknownStatusFilter(t *testing.T) {
	router := newPollRouter(newFakePollRepo(), cacheadapter.NewMemoryCache())
	w := doRequest(router, http.MethodGet, "/admin/polls?status=archived", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestUpdateRefreshesDetailCache(t *testing.T) {
	repo := newFakePollRepo()
	repo.polls["p1"] = poll.Poll{ID: "p1", Title: "Old title", Status: poll.StatusDraft}
	router := newPollRouter(repo, cacheadapter.NewMemoryCache())

	doRequest(router, http.MethodGet, "/admin/polls/p1", "")

	w := doRequest(router, http.MethodPut, "/admin/polls/p1", `{"title":"New title","status":"active"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", w.Code, w.Body.String())
	}

	w = doRequest(router, http.MethodGet, "/admin/polls/p1", "")
	var body struct {
		Data struct {
			Poll struct {
				Title string `json:"title"`
			} `json:"poll"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Poll.Title != "New title" {
		t.Fatalf("title = %q, want New title (stale detail cache?)", body.Data.Poll.Title)
	}
}
