package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want Route
	}{
		{raw: "#/list", want: Route{Name: List}},
		{raw: "/list", want: Route{Name: List}},
		{raw: "list", want: Route{Name: List}},
		{raw: "#/new", want: Route{Name: New}},
		{raw: "#/edit/ab12cd", want: Route{Name: Edit, ID: "ab12cd"}},
		{raw: "#//edit//x-1/", want: Route{Name: Edit, ID: "x-1"}},
		{raw: "#/edit/ID with Case", want: Route{Name: Edit, ID: "ID with Case"}},
		{raw: "#/edit", want: ListRoute},
		{raw: "#/edit/", want: ListRoute},
		{raw: "", want: ListRoute},
		{raw: "#", want: ListRoute},
		{raw: "#/settings", want: ListRoute},
		{raw: "#/NEW", want: ListRoute},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.raw))
		})
	}
}

func TestRouteString(t *testing.T) {
	assert.Equal(t, "/list", ListRoute.String())
	assert.Equal(t, "/new", Route{Name: New}.String())
	assert.Equal(t, "/edit/42", Route{Name: Edit, ID: "42"}.String())
	assert.Equal(t, "#/edit/42", Route{Name: Edit, ID: "42"}.Hash())
	assert.Equal(t, "/list", Route{}.String())
	assert.Equal(t, Route{Name: Edit, ID: "42"}, Parse(Route{Name: Edit, ID: "42"}.Hash()))
}

func TestDispatch(t *testing.T) {
	var got []Route
	record := func(_ context.Context, r Route) error {
		got = append(got, r)
		return nil
	}

	r := NewRouter()
	r.Handle(List, record)
	r.Handle(New, record)
	r.Handle(Edit, record)

	for _, raw := range []string{"#/new", "#/edit/7", "#/bogus"} {
		_, err := r.Dispatch(context.Background(), raw)
		require.NoError(t, err)
	}

	assert.Equal(t, []Route{{Name: New}, {Name: Edit, ID: "7"}, ListRoute}, got)
}

func TestDispatchFallsBackWhenUnregistered(t *testing.T) {
	var listed int
	r := NewRouter()
	r.Handle(List, func(context.Context, Route) error {
		listed++
		return nil
	})

	route, err := r.Dispatch(context.Background(), "#/new")
	require.NoError(t, err)
	assert.Equal(t, ListRoute, route)
	assert.Equal(t, 1, listed)
}

func TestDispatchPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	r := NewRouter()
	r.Handle(List, func(context.Context, Route) error { return boom })

	_, err := r.Dispatch(context.Background(), "")
	assert.ErrorIs(t, err, boom)
}

func TestDispatchEmptyTable(t *testing.T) {
	route, err := NewRouter().Dispatch(context.Background(), "#/new")
	assert.NoError(t, err)
	assert.Equal(t, ListRoute, route)
}
