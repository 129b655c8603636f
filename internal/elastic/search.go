package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
)

type SearchQuery struct {
	Text      string
	TechStack []string
	Limit     int
}

type SearchHit struct {
	ID    string     `json:"id"`
	Score float64    `json:"score"`
	Doc   ProjectDoc `json:"project"`
}

type Searcher struct {
	client *es.Client
}

func NewSearcher(c *es.Client) *Searcher {
	return &Searcher{client: c}
}

func buildSearchBody(q SearchQuery) map[string]any {
	filter := []any{
		map[string]any{"term": map[string]any{"status": string(models.ProjectOpen)}},
	}
	if len(q.TechStack) > 0 {
		filter = append(filter, map[string]any{"terms": map[string]any{"tech_stack": q.TechStack}})
	}
	must := []any{}
	if text := strings.TrimSpace(q.Text); text != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":  text,
				"fields": []string{"name^3", "short_description^2", "description"},
			},
		})
	}
	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{"must": must, "filter": filter},
		},
		"sort": []any{"_score", map[string]any{"updated_at": "desc"}},
	}
}

// SearchOpenProjects runs a full-text search over Open projects, optionally
// narrowed to a tech stack.
func (s *Searcher) SearchOpenProjects(ctx context.Context, q SearchQuery) ([]SearchHit, error) {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(buildSearchBody(q)); err != nil {
		return nil, fmt.Errorf("encode search: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(IdxProjects),
		s.client.Search.WithBody(&buf),
		s.client.Search.WithSize(q.Limit),
	)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", IdxProjects, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", IdxProjects, res.Status())
	}

	var body struct {
		Hits struct {
			Hits []struct {
				ID     string     `json:"_id"`
				Score  float64    `json:"_score"`
				Source ProjectDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	hits := make([]SearchHit, 0, len(body.Hits.Hits))
	for _, h := range body.Hits.Hits {
		hits = append(hits, SearchHit{ID: h.ID, Score: h.Score, Doc: h.Source})
	}
	return hits, nil
}
