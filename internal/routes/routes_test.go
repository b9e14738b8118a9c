package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/auth"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/config"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/services"
	"github.com/gofiber/fiber/v2"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   middleware.RouteClass
	}{
		{"GET", "/", middleware.RoutePublic},
		{"GET", "/login", middleware.RoutePublic},
		{"GET", "/login/", middleware.RoutePublic},
		{"HEAD", "/onboarding", middleware.RoutePublic},
		{"POST", "/api/auth/login", middleware.RoutePublic},
		{"GET", "/api/health", middleware.RoutePublic},
		{"GET", "/dashboard", middleware.RouteAuthenticated},
		{"GET", "/api/projects/8d7c1d1e-0000-4000-8000-000000000000", middleware.RouteAuthenticated},
		{"POST", "/api/projects/abc/comments", middleware.RouteAuthenticated},
		{"PATCH", "/api/projects/abc/status", middleware.RouteAdminOnly},
		{"DELETE", "/api/projects/abc", middleware.RouteAdminOnly},
		{"POST", "/api/projects", middleware.RouteAdminOnly},
		{"POST", "/api/invoices", middleware.RouteAdminOnly},
		{"GET", "/api/invoices", middleware.RouteAuthenticated},
		{"GET", "/admin", middleware.RouteAdminOnly},
		{"GET", "/admin/clients", middleware.RouteAdminOnly},
		{"DELETE", "/api/admin/users/x", middleware.RouteAdminOnly},
		{"GET", "/administrator", middleware.RouteAuthenticated},
		{"GET", "/api/unknown", middleware.RouteAuthenticated},
		{"POST", "/login", middleware.RouteAuthenticated},
		{"GET", "/ADMIN", middleware.RouteAdminOnly},
		{"GET", "/Admin/Clients", middleware.RouteAdminOnly},
		{"GET", "/API/ADMIN/USERS", middleware.RouteAdminOnly},
		{"get", "/Api/Admin/Users", middleware.RouteAdminOnly},
		{"PATCH", "/api/Projects/abc/STATUS", middleware.RouteAdminOnly},
		{"GET", "/LOGIN", middleware.RoutePublic},
	}
	for _, tt := range tests {
		if got := Classify(tt.method, tt.path); got != tt.want {
			t.Errorf("Classify(%s %s) = %v, want %v", tt.method, tt.path, got, tt.want)
		}
	}
}

type testServer struct {
	app   *fiber.App
	users *services.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := dbtest.Open(t)
	cfg := &config.Config{
		SessionSecret:  "test-secret",
		SessionTTL:     time.Hour,
		SessionCookie:  "portal_session",
		RequestTimeout: 5 * time.Second,
		LoginRateLimit: 100,
	}

	issuer := auth.NewSessionIssuer(cfg.SessionSecret, cfg.SessionTTL)
	authService := services.NewAuthService(auth.NewCredentialVerifier(db), issuer)
	userService := services.NewUserService(db)
	projectService := services.NewProjectService(db)
	commentService := services.NewCommentService(db)
	invoiceService := services.NewInvoiceService(db)

	app := fiber.New()
	Setup(app, cfg, issuer,
		handlers.NewAuthHandler(authService, handlers.CookieConfig{Name: cfg.SessionCookie}),
		handlers.NewHealthHandler(db),
		handlers.NewUserHandler(userService),
		handlers.NewProjectHandler(projectService),
		handlers.NewCommentHandler(commentService),
		handlers.NewInvoiceHandler(invoiceService),
		handlers.NewPageHandler(projectService, userService),
	)

	if _, err := userService.EnsureAdmin(context.Background(), "root", "root-password"); err != nil {
		t.Fatalf("EnsureAdmin failed: %v", err)
	}
	return &testServer{app: app, users: userService}
}

// do sends a request and decodes a JSON response into out when non-nil.
func (s *testServer) do(t *testing.T, method, path, session string, body any, out any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.AddCookie(&http.Cookie{Name: "portal_session", Value: session})
	}

	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	if out != nil {
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode failed: %v", method, path, err)
		}
	}
	return resp
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	resp := s.do(t, "POST", "/api/auth/login", "", map[string]string{"username": username, "password": password}, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("login %s: status %d", username, resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == "portal_session" {
			if !c.HttpOnly {
				t.Error("session cookie must be HttpOnly")
			}
			return c.Value
		}
	}
	t.Fatalf("login %s: no session cookie", username)
	return ""
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Errorf("%s %s: status = %d, want %d", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want)
	}
}

type commentList struct {
	Comments []struct {
		Message    string `json:"message"`
		IsInternal bool   `json:"isInternal"`
	} `json:"comments"`
}

func TestClientPortalScenario(t *testing.T) {
	s := newTestServer(t)
	adminSession := s.login(t, "root", "root-password")

	var created struct {
		User struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"user"`
	}
	resp := s.do(t, "POST", "/api/admin/users", adminSession,
		map[string]string{"username": "alice", "password": "alice-password"}, &created)
	expectStatus(t, resp, fiber.StatusCreated)
	if created.User.Role != "client" {
		t.Fatalf("alice role = %q, want client", created.User.Role)
	}

	var project struct {
		Project struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"project"`
	}
	resp = s.do(t, "POST", "/api/projects", adminSession,
		map[string]any{"userId": created.User.ID, "service": "brand", "colors": []string{"#d1fa1a"}}, &project)
	expectStatus(t, resp, fiber.StatusCreated)
	if project.Project.Status != "brief" {
		t.Fatalf("initial status = %q, want brief", project.Project.Status)
	}
	projectPath := "/api/projects/" + project.Project.ID

	resp = s.do(t, "PATCH", projectPath+"/status", adminSession, map[string]string{"status": "concept"}, &project)
	expectStatus(t, resp, fiber.StatusOK)
	if project.Project.Status != "concept" {
		t.Fatalf("status = %q, want concept", project.Project.Status)
	}

	aliceSession := s.login(t, "alice", "alice-password")

	var list commentList
	resp = s.do(t, "GET", projectPath+"/comments", aliceSession, nil, &list)
	expectStatus(t, resp, fiber.StatusOK)
	if len(list.Comments) != 0 {
		t.Fatalf("alice sees %d comments, want 0", len(list.Comments))
	}

	resp = s.do(t, "POST", projectPath+"/comments", adminSession,
		map[string]any{"message": "kerning needs work", "isInternal": true}, nil)
	expectStatus(t, resp, fiber.StatusCreated)
	resp = s.do(t, "POST", projectPath+"/comments", aliceSession,
		map[string]any{"message": "love the palette", "isInternal": true}, nil)
	expectStatus(t, resp, fiber.StatusCreated)

	list = commentList{}
	s.do(t, "GET", projectPath+"/comments", aliceSession, nil, &list)
	if len(list.Comments) != 1 || list.Comments[0].IsInternal {
		t.Errorf("alice comments = %+v, want one client-visible", list.Comments)
	}

	list = commentList{}
	s.do(t, "GET", projectPath+"/comments", adminSession, nil, &list)
	if len(list.Comments) != 2 {
		t.Errorf("admin sees %d comments, want 2", len(list.Comments))
	}

	var history struct {
		History []struct {
			FromStatus *string `json:"fromStatus"`
			ToStatus   string  `json:"toStatus"`
		} `json:"history"`
	}
	resp = s.do(t, "GET", projectPath+"/history", aliceSession, nil, &history)
	expectStatus(t, resp, fiber.StatusOK)
	if len(history.History) != 2 || history.History[0].FromStatus != nil ||
		history.History[1].FromStatus == nil || *history.History[1].FromStatus != "brief" {
		t.Errorf("history = %+v", history.History)
	}

	// Alice can read but never mutate.
	expectStatus(t, s.do(t, "PATCH", projectPath+"/status", aliceSession, map[string]string{"status": "archived"}, nil), fiber.StatusForbidden)
	expectStatus(t, s.do(t, "DELETE", projectPath, aliceSession, nil, nil), fiber.StatusForbidden)
	expectStatus(t, s.do(t, "POST", "/api/invoices", aliceSession, map[string]any{"projectId": project.Project.ID, "amount": 10}, nil), fiber.StatusForbidden)
	expectStatus(t, s.do(t, "GET", "/api/admin/users", aliceSession, nil, nil), fiber.StatusForbidden)

	var invoice struct {
		Invoice struct {
			Amount float64 `json:"amount"`
			Status string  `json:"status"`
		} `json:"invoice"`
	}
	resp = s.do(t, "POST", "/api/invoices", adminSession, map[string]any{"projectId": project.Project.ID, "amount": 1500.5}, &invoice)
	expectStatus(t, resp, fiber.StatusCreated)
	if invoice.Invoice.Amount != 1500.5 || invoice.Invoice.Status != "draft" {
		t.Errorf("invoice = %+v", invoice.Invoice)
	}

	var invoices struct {
		Invoices []json.RawMessage `json:"invoices"`
	}
	s.do(t, "GET", "/api/invoices", aliceSession, nil, &invoices)
	if len(invoices.Invoices) != 1 {
		t.Errorf("alice sees %d invoices, want 1", len(invoices.Invoices))
	}

	expectStatus(t, s.do(t, "DELETE", projectPath, adminSession, nil, nil), fiber.StatusOK)
	expectStatus(t, s.do(t, "GET", projectPath, adminSession, nil, nil), fiber.StatusNotFound)
}

func TestAPIErrors(t *testing.T) {
	s := newTestServer(t)
	adminSession := s.login(t, "root", "root-password")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
		field  string
	}{
		{"wrong password", "POST", "/api/auth/login", map[string]string{"username": "root", "password": "nope"}, 401, "invalid_credentials", ""},
		{"missing user fields", "POST", "/api/admin/users", map[string]string{"username": "x"}, 400, "validation_error", "username"},
		{"duplicate username", "POST", "/api/admin/users", map[string]string{"username": "root", "password": "password123"}, 409, "conflict", ""},
		{"invalid role", "POST", "/api/admin/users", map[string]string{"username": "dave", "password": "password123", "role": "owner"}, 400, "validation_error", "role"},
		{"unknown project", "PATCH", "/api/projects/8d7c1d1e-0000-4000-8000-000000000000/status", map[string]string{"status": "concept"}, 404, "not_found", ""},
		{"malformed project id", "GET", "/api/projects/not-a-uuid", nil, 404, "not_found", ""},
		{"invalid amount", "POST", "/api/invoices", map[string]any{"projectId": "8d7c1d1e-0000-4000-8000-000000000000", "amount": -3}, 400, "invalid_amount", "amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := adminSession
			if tt.path == "/api/auth/login" {
				session = ""
			}
			var body struct {
				Error bool   `json:"error"`
				Code  string `json:"code"`
				Field string `json:"field"`
			}
			resp := s.do(t, tt.method, tt.path, session, tt.body, &body)
			expectStatus(t, resp, tt.status)
			if !body.Error || body.Code != tt.code || body.Field != tt.field {
				t.Errorf("body = %+v, want code %q field %q", body, tt.code, tt.field)
			}
		})
	}
}

func TestGateOnRegisteredRoutes(t *testing.T) {
	s := newTestServer(t)

	expectStatus(t, s.do(t, "GET", "/api/projects", "", nil, nil), fiber.StatusUnauthorized)
	expectStatus(t, s.do(t, "GET", "/api/health", "", nil, nil), fiber.StatusOK)

	resp := s.do(t, "GET", "/dashboard", "", nil, nil)
	expectStatus(t, resp, fiber.StatusSeeOther)
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}

	adminSession := s.login(t, "root", "root-password")
	resp = s.do(t, "GET", "/login", adminSession, nil, nil)
	expectStatus(t, resp, fiber.StatusSeeOther)
	if loc := resp.Header.Get("Location"); loc != "/dashboard" {
		t.Errorf("Location = %q, want /dashboard", loc)
	}

	resp = s.do(t, "POST", "/api/auth/logout", adminSession, nil, nil)
	expectStatus(t, resp, fiber.StatusOK)
	for _, c := range resp.Cookies() {
		if c.Name == "portal_session" && c.Value != "" {
			t.Error("logout must clear the session cookie")
		}
	}
}

// Every registered route needs an explicit entry in Table.
func TestEveryRouteIsClassified(t *testing.T) {
	s := newTestServer(t)

	known := make(map[string]bool, len(Table))
	for _, r := range Table {
		known[r.Method+" "+r.Pattern] = true
	}
	for _, r := range s.app.GetRoutes(true) {
		if r.Method == "HEAD" || r.Method == "USE" {
			continue
		}
		path := r.Path
		if len(path) > 1 {
			path = strings.TrimRight(path, "/")
		}
		if !known[r.Method+" "+path] {
			t.Errorf("route %s %s has no classification", r.Method, path)
		}
	}
}

func TestAdminPathsIgnoreCase(t *testing.T) {
	s := newTestServer(t)
	adminSession := s.login(t, "root", "root-password")
	resp := s.do(t, "POST", "/api/admin/users", adminSession,
		map[string]string{"username": "alice", "password": "alice-password"}, nil)
	expectStatus(t, resp, fiber.StatusCreated)
	aliceSession := s.login(t, "alice", "alice-password")

	for _, path := range []string{"/ADMIN", "/Admin", "/LOGIN"} {
		resp := s.do(t, "GET", path, aliceSession, nil, nil)
		expectStatus(t, resp, fiber.StatusSeeOther)
		if loc := resp.Header.Get("Location"); loc != "/dashboard" {
			t.Errorf("GET %s: Location = %q, want /dashboard", path, loc)
		}
	}

	for _, path := range []string{"/API/ADMIN/USERS", "/Api/Admin/Users"} {
		var body struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		resp := s.do(t, "GET", path, aliceSession, nil, &body)
		expectStatus(t, resp, fiber.StatusForbidden)
		if body.Message != "Admin access required" {
			t.Errorf("GET %s: message = %q, want the gate's refusal", path, body.Message)
		}
	}
}
