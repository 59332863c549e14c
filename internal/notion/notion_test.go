package notion

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qualrole/internal/goal"
)

type fakeDB struct {
	pages    [][]notionapi.Page
	err      error
	requests []*notionapi.DatabaseQueryRequest
	ids      []notionapi.DatabaseID
	deadline bool
}

func (f *fakeDB) Query(ctx context.Context, id notionapi.DatabaseID, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	f.ids = append(f.ids, id)
	f.requests = append(f.requests, req)
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	i := len(f.requests) - 1
	resp := &notionapi.DatabaseQueryResponse{Results: f.pages[i]}
	if i < len(f.pages)-1 {
		resp.HasMore = true
		resp.NextCursor = notionapi.Cursor("cursor-" + string(rune('a'+i)))
	}
	return resp, nil
}

func quietLogger() *log.Logger { return log.New(io.Discard) }

func page(id, name string, status string, types ...notionapi.Option) notionapi.Page {
	props := notionapi.Properties{
		"Type":   &notionapi.MultiSelectProperty{MultiSelect: types},
		"Status": &notionapi.SelectProperty{Select: notionapi.Option{Name: status}},
	}
	if name != "" {
		props["Name"] = &notionapi.TitleProperty{Title: []notionapi.RichText{{PlainText: name}, {PlainText: " (ignored)"}}}
	} else {
		props["Name"] = &notionapi.TitleProperty{Title: []notionapi.RichText{}}
	}
	return notionapi.Page{ID: notionapi.ObjectID(id), Properties: props}
}

func TestFetch_MapsSchemaFieldForField(t *testing.T) {
	db := &fakeDB{pages: [][]notionapi.Page{{
		page("a", "Pizza", "pending", notionapi.Option{ID: "t1", Name: "food"}),
		page("b", "", "done", notionapi.Option{ID: "t2", Name: "place"}, notionapi.Option{ID: "t3", Name: "experience"}),
	}}}
	f := NewFetcher(db, Config{DatabaseID: "db-1"}, quietLogger())

	goals, err := f.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []goal.Goal{
		{ID: "a", Name: "Pizza", Types: []goal.Category{{ID: "t1", Name: "food"}}, Status: goal.StatusPending},
		{ID: "b", Name: "", Types: []goal.Category{{ID: "t2", Name: "place"}, {ID: "t3", Name: "experience"}}, Status: goal.StatusDone},
	}, goals)
	assert.Equal(t, []notionapi.DatabaseID{"db-1"}, db.ids)
	assert.False(t, db.deadline, "no timeout configured")
}

func TestFetch_MissingDatabaseIDReturnsNothing(t *testing.T) {
	db := &fakeDB{}
	goals, err := NewFetcher(db, Config{}, quietLogger()).Fetch(context.Background())

	require.NoError(t, err)
	assert.Empty(t, goals)
	assert.Empty(t, db.requests, "no API call without a database id")
}

func TestFetch_FollowsCursor(t *testing.T) {
	db := &fakeDB{pages: [][]notionapi.Page{
		{page("a", "Pizza", "pending")},
		{page("b", "Museum", "pending")},
		{page("c", "Movie", "done")},
	}}
	f := NewFetcher(db, Config{DatabaseID: "db-1", PageSize: 1, Timeout: time.Minute}, quietLogger())

	goals, err := f.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, goals, 3)
	assert.Equal(t, "c", goals[2].ID)
	require.Len(t, db.requests, 3)
	assert.Equal(t, notionapi.Cursor(""), db.requests[0].StartCursor)
	assert.Equal(t, notionapi.Cursor("cursor-a"), db.requests[1].StartCursor)
	assert.Equal(t, notionapi.Cursor("cursor-b"), db.requests[2].StartCursor)
	assert.Equal(t, 1, db.requests[0].PageSize)
	assert.True(t, db.deadline)
}

func TestFetch_WrapsQueryError(t *testing.T) {
	db := &fakeDB{err: assert.AnError}
	_, err := NewFetcher(db, Config{DatabaseID: "db-1"}, quietLogger()).Fetch(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "db-1")
}

func TestFetch_StatusPropertyAndCustomNames(t *testing.T) {
	var props notionapi.Properties
	require.NoError(t, json.Unmarshal([]byte(`{
		"Rolê": {"id": "title", "type": "title", "title": [{"type": "text", "plain_text": "Karaoke"}]},
		"Tipo": {"id": "tp", "type": "multi_select", "multi_select": [{"id": "t9", "name": "experience"}]},
		"Estado": {"id": "st", "type": "status", "status": {"id": "s1", "name": "pending", "color": "default"}}
	}`), &props))
	db := &fakeDB{pages: [][]notionapi.Page{{{ID: "a", Properties: props}}}}
	cfg := Config{DatabaseID: "db-1", NameProperty: "Rolê", TypeProperty: "Tipo", StatusProperty: "Estado"}

	goals, err := NewFetcher(db, cfg, quietLogger()).Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "Karaoke", goals[0].Name)
	assert.Equal(t, goal.StatusPending, goals[0].Status)
	assert.True(t, goals[0].HasCategory("experience"))
}

func TestFetch_MissingPropertiesAreTolerated(t *testing.T) {
	db := &fakeDB{pages: [][]notionapi.Page{{{ID: "bare", Properties: notionapi.Properties{}}}}}

	goals, err := NewFetcher(db, Config{DatabaseID: "db-1"}, quietLogger()).Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "", goals[0].Name)
	assert.Empty(t, goals[0].Types)
	assert.False(t, goals[0].Eligible())
}

// rewriteTransport sends every request to the test server.
type rewriteTransport struct {
	target *url.URL
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = rt.target.Scheme
	req.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func TestNewClient_QueriesDatabaseEndpoint(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"results": []any{map[string]any{
				"object": "page",
				"id":     "page-1",
				"properties": map[string]any{
					"Name": map[string]any{"id": "title", "type": "title", "title": []any{
						map[string]any{"type": "text", "text": map[string]any{"content": "Pizza"}, "plain_text": "Pizza"},
					}},
					"Type": map[string]any{"id": "tp", "type": "multi_select", "multi_select": []any{
						map[string]any{"id": "t1", "name": "food", "color": "red"},
					}},
					"Status": map[string]any{"id": "st", "type": "select", "select": map[string]any{"id": "s1", "name": "pending", "color": "gray"}},
				},
			}},
			"has_more":    false,
			"next_cursor": nil,
		})
	}))
	defer srv.Close()
	target, err := url.Parse(srv.URL)
	require.NoError(t, err)

	client := NewClient("secret-token", &http.Client{Transport: rewriteTransport{target: target}})
	goals, err := NewFetcher(client.Database, Config{DatabaseID: "db-1"}, quietLogger()).Fetch(context.Background())

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(gotPath, "/databases/db-1/query"), gotPath)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, []goal.Goal{{
		ID:     "page-1",
		Name:   "Pizza",
		Types:  []goal.Category{{ID: "t1", Name: "food"}},
		Status: goal.StatusPending,
	}}, goals)
}

func TestLoadStatic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goals.yml")
	require.NoError(t, os.WriteFile(path, []byte(`goals:
  - id: a
    name: Pizza
    types: [{id: t1, name: food}]
    status: pending
  - id: b
    status: done
`), 0o644))

	src, err := LoadStatic(path)
	require.NoError(t, err)
	goals, err := src.Fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, goals, 2)
	assert.Equal(t, "Pizza", goals[0].Name)
	assert.True(t, goals[0].HasCategory("food"))
	assert.Equal(t, goal.StatusDone, goals[1].Status)

	_, err = LoadStatic(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
