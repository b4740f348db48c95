// Package router maps paths to screens and keeps anonymous users out of protected ones.
package router

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Paths of the known routes
const (
	LoginPath    = "/login"
	ProjectsPath = "/projects"
)

// Name identifies a screen
type Name int

const (
	Login Name = iota
	Projects
	ProjectDetail
)

func (n Name) String() string {
	switch n {
	case Login:
		return "login"
	case Projects:
		return "projects"
	case ProjectDetail:
		return "project-detail"
	}
	return "unknown"
}

// Route is a resolved navigation target
type Route struct {
	Name      Name
	Path      string
	ProjectID int64 // set for ProjectDetail
}

// Protected reports whether the route requires authentication
func (r Route) Protected() bool {
	return r.Name != Login
}

// ProjectPath returns the path of a project's detail screen
func ProjectPath(id int64) string {
	return fmt.Sprintf("%s/%d", ProjectsPath, id)
}

// Match resolves path to a route. The empty path and anything unknown go to the project list.
func Match(path string) Route {
	path = "/" + strings.Trim(strings.TrimSpace(path), "/")

	switch path {
	case LoginPath:
		return Route{Name: Login, Path: LoginPath}
	case ProjectsPath:
		return Route{Name: Projects, Path: ProjectsPath}
	}

	if rest, ok := strings.CutPrefix(path, ProjectsPath+"/"); ok && !strings.Contains(rest, "/") {
		if id, err := strconv.ParseInt(rest, 10, 64); err == nil && id > 0 {
			return Route{Name: ProjectDetail, Path: ProjectPath(id), ProjectID: id}
		}
	}

	return Route{Name: Projects, Path: ProjectsPath}
}

// Router applies the guard to every navigation
type Router struct {
	guard GuardFunc
}

// New creates a router that consults guard before entering protected routes
func New(guard GuardFunc) *Router {
	return &Router{guard: guard}
}

// Navigate returns the route that must be shown for path. A denied protected route
// yields the guard's redirect target instead; it is never returned itself.
func (r *Router) Navigate(path string) Route {
	route := Match(path)
	if !route.Protected() {
		return route
	}

	decision := r.guard(route)
	if decision.Allow {
		return route
	}

	target := Match(decision.Redirect)
	if target.Protected() {
		// a redirect into another protected route would loop; the login screen is the only safe target
		target = Route{Name: Login, Path: LoginPath}
	}
	slog.Debug("navigation denied", "path", route.Path, "redirect", target.Path)
	return target
}
