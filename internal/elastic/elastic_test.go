package elastic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

// fakeCluster impersonates just enough of Elasticsearch for the client.
func fakeCluster(t *testing.T, handler http.HandlerFunc) *es.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := es.NewClient(es.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func TestBuildProjectDoc(t *testing.T) {
	mentor := uuid.New()
	p := models.Project{
		Name:      "Chess engine",
		LearnerID: uuid.New(),
		MentorID:  &mentor,
		TechStack: datatypes.JSON(`["go","wasm"]`),
		Status:    models.ProjectInProgress,
		UpdatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	raw, err := BuildProjectDoc(p, 4.5)
	require.NoError(t, err)

	var doc ProjectDoc
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, []string{"go", "wasm"}, doc.TechStack)
	assert.Equal(t, "In Progress", doc.Status)
	assert.Equal(t, mentor.String(), doc.MentorID)
	assert.Equal(t, 4.5, doc.MentorRating)
}

func TestEnsureIndexesCreatesMissingIndex(t *testing.T) {
	var created bool
	client := fakeCluster(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			assert.Equal(t, "/"+IdxProjects, r.URL.Path)
			body, _ := io.ReadAll(r.Body)
			assert.Contains(t, string(body), `"tech_stack":{"type":"keyword"}`)
			created = true
			_, _ = w.Write([]byte(`{"acknowledged":true}`))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	require.NoError(t, EnsureIndexes(context.Background(), client))
	assert.True(t, created)
}

func TestEnsureIndexesKeepsExistingIndex(t *testing.T) {
	client := fakeCluster(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, EnsureIndexes(context.Background(), client))
}

func TestSearchOpenProjects(t *testing.T) {
	var query map[string]any
	client := fakeCluster(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/"+IdxProjects+"/_search", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("size"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&query))
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"p1","_score":2.5,"_source":{"name":"Chess engine","status":"Open","tech_stack":["go"]}}]}}`))
	})

	hits, err := NewSearcher(client).SearchOpenProjects(context.Background(), SearchQuery{Text: "chess", TechStack: []string{"go"}, Limit: 5})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "p1", hits[0].ID)
	assert.Equal(t, "Chess engine", hits[0].Doc.Name)

	boolQuery := query["query"].(map[string]any)["bool"].(map[string]any)
	assert.Len(t, boolQuery["filter"], 2)
	assert.Len(t, boolQuery["must"], 1)
}

func TestSearchOpenProjectsSurfacesErrors(t *testing.T) {
	client := fakeCluster(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	})
	_, err := NewSearcher(client).SearchOpenProjects(context.Background(), SearchQuery{})
	assert.Error(t, err)
}
