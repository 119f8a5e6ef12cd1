package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/msomdec/devconnector/internal/domain"
	"github.com/msomdec/devconnector/internal/handler"
	"github.com/msomdec/devconnector/internal/service"
)

func newTestServer(t *testing.T, env *testEnv) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	metrics := handler.NewMetrics()
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, env.auth, env.profiles, env.posts, env.db,
		service.NewTokenBucket(ctx, 100, 100), metrics, discardLogger())

	srv := httptest.NewServer(metrics.Middleware(handler.SecurityHeaders(mux)))
	t.Cleanup(srv.Close)
	return srv
}

type apiClient struct {
	t     *testing.T
	base  string
	token string
}

// do sends body as JSON and decodes the response into out when out is
// non-nil. It returns the status code.
func (c *apiClient) do(method, path string, body, out any) int {
	c.t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, rdr)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("x-auth-token", c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (c *apiClient) register(name, email string) *apiClient {
	c.t.Helper()
	var tok struct {
		Token string `json:"token"`
	}
	status := c.do(http.MethodPost, "/api/users", map[string]string{
		"name": name, "email": email, "password": "password123",
	}, &tok)
	if status != http.StatusOK || tok.Token == "" {
		c.t.Fatalf("register %s: status %d, token %q", email, status, tok.Token)
	}
	return &apiClient{t: c.t, base: c.base, token: tok.Token}
}

func TestIntegration_Accounts(t *testing.T) {
	env := newTestServices(t)
	srv := newTestServer(t, env)
	anon := &apiClient{t: t, base: srv.URL}

	alice := anon.register("Alice", "Alice@Example.com")

	// Duplicate email, case-insensitively.
	if status := anon.do(http.MethodPost, "/api/users", map[string]string{
		"name": "Other", "email": "alice@example.com", "password": "password123",
	}, nil); status != http.StatusBadRequest {
		t.Fatalf("duplicate register: expected 400, got %d", status)
	}

	// Weak password.
	if status := anon.do(http.MethodPost, "/api/users", map[string]string{
		"name": "Weak", "email": "weak@example.com", "password": "123",
	}, nil); status != http.StatusBadRequest {
		t.Fatalf("weak password: expected 400, got %d", status)
	}

	if status := anon.do(http.MethodPost, "/api/auth", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	}, nil); status != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401, got %d", status)
	}

	var tok struct {
		Token string `json:"token"`
	}
	if status := anon.do(http.MethodPost, "/api/auth", map[string]string{
		"email": "alice@example.com", "password": "password123",
	}, &tok); status != http.StatusOK || tok.Token == "" {
		t.Fatalf("login: status %d", status)
	}

	var me map[string]any
	if status := alice.do(http.MethodGet, "/api/auth", nil, &me); status != http.StatusOK {
		t.Fatalf("GET /api/auth: expected 200, got %d", status)
	}
	if me["name"] != "Alice" || me["email"] != "alice@example.com" {
		t.Fatalf("unexpected user %v", me)
	}
	if _, ok := me["password"]; ok {
		t.Fatal("password hash must not be returned")
	}

	if status := anon.do(http.MethodGet, "/api/auth", nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("anonymous GET /api/auth: expected 401, got %d", status)
	}
}

func TestIntegration_Profile(t *testing.T) {
	env := newTestServices(t)
	srv := newTestServer(t, env)
	anon := &apiClient{t: t, base: srv.URL}
	dev := anon.register("Dev", "dev@example.com")

	if status := dev.do(http.MethodGet, "/api/profile/me", nil, nil); status != http.StatusNotFound {
		t.Fatalf("profile before creation: expected 404, got %d", status)
	}
	if status := dev.do(http.MethodPost, "/api/profile", map[string]string{"company": "Acme"}, nil); status != http.StatusBadRequest {
		t.Fatalf("missing status and skills: expected 400, got %d", status)
	}

	var p handler.ProfileDTO
	status := dev.do(http.MethodPost, "/api/profile", map[string]string{
		"status": "Developer", "skills": "go, sql ,docker", "company": "Acme", "twitter": "tw",
	}, &p)
	if status != http.StatusOK {
		t.Fatalf("create profile: expected 200, got %d", status)
	}
	if p.User.Name != "Dev" || len(p.Skills) != 3 || p.Skills[1] != "sql" {
		t.Fatalf("unexpected profile %+v", p)
	}
	userID := p.User.ID

	status = dev.do(http.MethodPost, "/api/profile", map[string]string{
		"status": "Senior Developer", "skills": "go", "location": "Berlin",
	}, &p)
	if status != http.StatusOK {
		t.Fatalf("update profile: expected 200, got %d", status)
	}
	if p.Company != "Acme" || p.Location != "Berlin" || p.Status != "Senior Developer" {
		t.Fatalf("update did not merge: %+v", p.Profile)
	}
	if p.Social == nil || p.Social.Twitter != "tw" {
		t.Fatalf("social lost on update: %+v", p.Social)
	}

	// Experience
	if status := dev.do(http.MethodPut, "/api/profile/experience", map[string]any{
		"title": "Engineer", "company": "Acme", "from": "not-a-date",
	}, nil); status != http.StatusBadRequest {
		t.Fatalf("bad date: expected 400, got %d", status)
	}
	if status := dev.do(http.MethodPut, "/api/profile/experience", map[string]any{
		"company": "Acme", "from": "2020-01-01",
	}, nil); status != http.StatusBadRequest {
		t.Fatalf("missing title: expected 400, got %d", status)
	}
	status = dev.do(http.MethodPut, "/api/profile/experience", map[string]any{
		"title": "Engineer", "company": "Acme", "from": "2020-01-01", "to": "2022-06-30",
	}, &p)
	if status != http.StatusOK || len(p.Experience) != 1 {
		t.Fatalf("add experience: status %d, %d entries", status, len(p.Experience))
	}
	expID := p.Experience[0].ID

	if status := dev.do(http.MethodDelete, "/api/profile/experience/nope", nil, nil); status != http.StatusNotFound {
		t.Fatalf("remove unknown experience: expected 404, got %d", status)
	}
	status = dev.do(http.MethodDelete, "/api/profile/experience/"+expID, nil, &p)
	if status != http.StatusOK || len(p.Experience) != 0 {
		t.Fatalf("remove experience: status %d, %d entries left", status, len(p.Experience))
	}

	// Education
	status = dev.do(http.MethodPut, "/api/profile/education", map[string]any{
		"school": "Uni", "degree": "BSc", "fieldofstudy": "CS", "from": "2010-09-01", "current": true,
	}, &p)
	if status != http.StatusOK || len(p.Education) != 1 || !p.Education[0].Current {
		t.Fatalf("add education: status %d, %+v", status, p.Education)
	}
	status = dev.do(http.MethodDelete, "/api/profile/education/"+p.Education[0].ID, nil, &p)
	if status != http.StatusOK || len(p.Education) != 0 {
		t.Fatalf("remove education: status %d", status)
	}

	// Public reads
	var all []handler.ProfileDTO
	if status := anon.do(http.MethodGet, "/api/profile", nil, &all); status != http.StatusOK || len(all) != 1 {
		t.Fatalf("list profiles: status %d, %d profiles", status, len(all))
	}
	if status := anon.do(http.MethodGet, "/api/profile/user/"+userID, nil, &p); status != http.StatusOK || p.User.ID != userID {
		t.Fatalf("profile by user: status %d", status)
	}
	if status := anon.do(http.MethodGet, "/api/profile/user/missing", nil, nil); status != http.StatusNotFound {
		t.Fatalf("profile by unknown user: expected 404, got %d", status)
	}

	// Account deletion
	if status := dev.do(http.MethodDelete, "/api/profile", nil, nil); status != http.StatusOK {
		t.Fatalf("delete account: expected 200, got %d", status)
	}
	if status := dev.do(http.MethodGet, "/api/auth", nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("after deletion: expected 401, got %d", status)
	}
	if status := anon.do(http.MethodGet, "/api/profile/user/"+userID, nil, nil); status != http.StatusNotFound {
		t.Fatalf("deleted profile: expected 404, got %d", status)
	}
}

func TestIntegration_GitHubRepos(t *testing.T) {
	env := newTestServices(t)
	srv := newTestServer(t, env)
	anon := &apiClient{t: t, base: srv.URL}

	env.repos.repos = []domain.Repo{{Name: "hello", FullName: "octocat/hello"}}
	var repos []domain.Repo
	if status := anon.do(http.MethodGet, "/api/profile/github/octocat", nil, &repos); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(repos) != 1 || repos[0].FullName != "octocat/hello" {
		t.Fatalf("unexpected repos %+v", repos)
	}

	env.repos.repos, env.repos.err = nil, domain.ErrUpstream
	var body map[string]string
	if status := anon.do(http.MethodGet, "/api/profile/github/ghost", nil, &body); status != http.StatusNotFound {
		t.Fatalf("upstream failure: expected 404, got %d", status)
	}
	if !strings.Contains(body["error"], "no github profile found") {
		t.Fatalf("unexpected error body %v", body)
	}
}

func TestIntegration_Posts(t *testing.T) {
	env := newTestServices(t)
	srv := newTestServer(t, env)
	anon := &apiClient{t: t, base: srv.URL}
	alice := anon.register("Alice", "alice@example.com")
	bob := anon.register("Bob", "bob@example.com")

	if status := anon.do(http.MethodGet, "/api/posts", nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("anonymous list: expected 401, got %d", status)
	}
	if status := alice.do(http.MethodPost, "/api/posts", map[string]string{"text": ""}, nil); status != http.StatusBadRequest {
		t.Fatalf("empty text: expected 400, got %d", status)
	}

	var post domain.Post
	if status := alice.do(http.MethodPost, "/api/posts", map[string]string{"text": "first post"}, &post); status != http.StatusOK {
		t.Fatalf("create post: expected 200, got %d", status)
	}
	if post.Name != "Alice" || post.Likes == nil || post.Comments == nil {
		t.Fatalf("unexpected post %+v", post)
	}
	base := "/api/posts/"

	// Likes
	var likes []domain.Like
	if status := bob.do(http.MethodPut, base+"like/"+post.ID, nil, &likes); status != http.StatusOK || len(likes) != 1 {
		t.Fatalf("like: status %d, %d likes", status, len(likes))
	}
	if status := bob.do(http.MethodPut, base+"like/"+post.ID, nil, nil); status != http.StatusBadRequest {
		t.Fatalf("double like: expected 400, got %d", status)
	}
	if status := alice.do(http.MethodPut, base+"unlike/"+post.ID, nil, nil); status != http.StatusBadRequest {
		t.Fatalf("unlike without like: expected 400, got %d", status)
	}
	if status := bob.do(http.MethodPut, base+"unlike/"+post.ID, nil, &likes); status != http.StatusOK || len(likes) != 0 {
		t.Fatalf("unlike: status %d, %d likes", status, len(likes))
	}
	if status := bob.do(http.MethodPut, base+"like/missing", nil, nil); status != http.StatusNotFound {
		t.Fatalf("like missing post: expected 404, got %d", status)
	}

	// Comments
	var comments []domain.Comment
	if status := bob.do(http.MethodPost, base+"comment/"+post.ID, map[string]string{"text": "nice"}, &comments); status != http.StatusOK {
		t.Fatalf("add comment: expected 200, got %d", status)
	}
	if status := alice.do(http.MethodPost, base+"comment/"+post.ID, map[string]string{"text": "thanks"}, &comments); status != http.StatusOK {
		t.Fatalf("add comment: expected 200, got %d", status)
	}
	if len(comments) != 2 || comments[0].Text != "thanks" || comments[1].Text != "nice" {
		t.Fatalf("unexpected comments %+v", comments)
	}
	bobComment := comments[1].ID

	if status := alice.do(http.MethodDelete, base+"comment/"+post.ID+"/"+bobComment, nil, nil); status != http.StatusForbidden {
		t.Fatalf("post author removing another's comment: expected 403, got %d", status)
	}
	if status := bob.do(http.MethodDelete, base+"comment/"+post.ID+"/nope", nil, nil); status != http.StatusNotFound {
		t.Fatalf("remove unknown comment: expected 404, got %d", status)
	}
	if status := bob.do(http.MethodDelete, base+"comment/"+post.ID+"/"+bobComment, nil, &comments); status != http.StatusOK {
		t.Fatalf("remove own comment: expected 200, got %d", status)
	}
	if len(comments) != 1 || comments[0].Text != "thanks" {
		t.Fatalf("unexpected comments after removal %+v", comments)
	}

	// Reads
	var posts []domain.Post
	if status := bob.do(http.MethodGet, "/api/posts", nil, &posts); status != http.StatusOK || len(posts) != 1 {
		t.Fatalf("list: status %d, %d posts", status, len(posts))
	}
	if status := bob.do(http.MethodGet, base+post.ID, nil, &post); status != http.StatusOK || len(post.Comments) != 1 {
		t.Fatalf("get: status %d", status)
	}

	// Deletion
	if status := bob.do(http.MethodDelete, base+post.ID, nil, nil); status != http.StatusForbidden {
		t.Fatalf("non-author delete: expected 403, got %d", status)
	}
	if status := alice.do(http.MethodDelete, base+post.ID, nil, nil); status != http.StatusOK {
		t.Fatalf("author delete: expected 200, got %d", status)
	}
	if status := alice.do(http.MethodGet, base+post.ID, nil, nil); status != http.StatusNotFound {
		t.Fatalf("deleted post: expected 404, got %d", status)
	}
}

func TestIntegration_Metrics(t *testing.T) {
	env := newTestServices(t)
	srv := newTestServer(t, env)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	want := `http_requests_total{code="200",method="GET",route="GET /healthz"} 1`
	if !strings.Contains(string(body), want) {
		t.Fatalf("metrics output missing %q", want)
	}
}
