// Package router maps hash-style routes (#/list, #/new, #/edit/<id>) to view
// activations.
package router

import (
	"context"
	"strings"
)

// Name identifies a view.
type Name string

const (
	List Name = "list"
	New  Name = "new"
	Edit Name = "edit"
)

// Route is a parsed navigation target. ID is only set for Edit.
type Route struct {
	Name Name
	ID   string
}

// ListRoute is the fallback for anything unrecognized.
var ListRoute = Route{Name: List}

// Parse accepts "#/edit/42", "/edit/42" or "edit/42". Unknown, empty and
// id-less edit routes resolve to ListRoute. The id segment is kept verbatim.
func Parse(raw string) Route {
	path := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	parts := make([]string, 0, 2)
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return ListRoute
	}

	switch Name(parts[0]) {
	case Edit:
		if len(parts) < 2 {
			return ListRoute
		}
		return Route{Name: Edit, ID: parts[1]}
	case New:
		return Route{Name: New}
	default:
		return ListRoute
	}
}

// String renders the route without the leading "#".
func (r Route) String() string {
	if r.Name == Edit {
		return "/edit/" + r.ID
	}
	if r.Name == "" {
		return "/" + string(List)
	}
	return "/" + string(r.Name)
}

// Hash renders the route with the leading "#".
func (r Route) Hash() string {
	return "#" + r.String()
}

// Activation brings a view up for a route.
type Activation func(ctx context.Context, r Route) error

// Router is the route table.
type Router struct {
	table map[Name]Activation
}

// NewRouter returns an empty route table.
func NewRouter() *Router {
	return &Router{table: make(map[Name]Activation)}
}

// Handle registers the activation for name.
func (r *Router) Handle(name Name, fn Activation) {
	r.table[name] = fn
}

// Dispatch parses raw and runs its activation, falling back to the list
// activation when the parsed name has none. It returns the route that ran.
func (r *Router) Dispatch(ctx context.Context, raw string) (Route, error) {
	route := Parse(raw)
	fn, ok := r.table[route.Name]
	if !ok {
		route = ListRoute
		fn, ok = r.table[List]
		if !ok {
			return route, nil
		}
	}
	return route, fn(ctx, route)
}
