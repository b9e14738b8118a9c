package routes

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/middleware"
)

// Route classifies one method and pattern. Patterns use lowercase literal
// segments and ":name" parameters.
type Route struct {
	Method  string
	Pattern string
	Class   middleware.RouteClass
}

const (
	public = middleware.RoutePublic
	authed = middleware.RouteAuthenticated
	admin  = middleware.RouteAdminOnly
)

// Table is the fixed access classification of every registered route.
var Table = []Route{
	{"GET", "/", public},
	{"GET", "/login", public},
	{"GET", "/onboarding", public},
	{"GET", "/dashboard", authed},
	{"GET", "/admin", admin},

	{"GET", "/metrics", public},
	{"GET", "/api/health", public},

	{"POST", "/api/auth/login", public},
	{"POST", "/api/auth/logout", public},
	{"GET", "/api/auth/me", authed},

	{"GET", "/api/admin/users", admin},
	{"POST", "/api/admin/users", admin},

	{"GET", "/api/projects", authed},
	{"POST", "/api/projects", admin},
	{"GET", "/api/projects/:id", authed},
	{"DELETE", "/api/projects/:id", admin},
	{"PATCH", "/api/projects/:id/status", admin},
	{"GET", "/api/projects/:id/history", authed},
	{"GET", "/api/projects/:id/comments", authed},
	{"POST", "/api/projects/:id/comments", authed},

	{"GET", "/api/invoices", authed},
	{"POST", "/api/invoices", admin},
	{"PATCH", "/api/invoices/:id/status", admin},
}

// Classify looks the request up in Table. Unlisted routes require a session,
// and anything under the admin areas requires the admin role. Matching is
// case-insensitive like the router.
func Classify(method, path string) middleware.RouteClass {
	method = strings.ToUpper(method)
	if method == "HEAD" {
		method = "GET"
	}
	path = strings.ToLower(path)
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	segs := splitPath(path)

	for _, r := range Table {
		if r.Method == method && matchSegments(splitPath(r.Pattern), segs) {
			return r.Class
		}
	}
	if underPrefix(path, "/admin") || underPrefix(path, "/api/admin") {
		return admin
	}
	return authed
}

func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchSegments(pattern, segs []string) bool {
	if len(pattern) != len(segs) {
		return false
	}
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			if segs[i] == "" {
				return false
			}
			continue
		}
		if p != segs[i] {
			return false
		}
	}
	return true
}
