package elastic

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	es "github.com/elastic/go-elasticsearch/v8"
)

const IdxProjects = "projects_v1"

const projectsMapping = `{"settings":{"number_of_shards":1},"mappings":{"dynamic":"strict","properties":{
	"name":{"type":"text"},"short_description":{"type":"text"},"description":{"type":"text"},
	"category":{"type":"keyword"},"tech_stack":{"type":"keyword"},"status":{"type":"keyword"},
	"learner_id":{"type":"keyword"},"mentor_id":{"type":"keyword"},"mentor_rating":{"type":"float"},
	"opening_price":{"type":"float"},"applications_count":{"type":"integer"},
	"created_at":{"type":"date"},"updated_at":{"type":"date"}
}}}`

func EnsureIndexes(ctx context.Context, c *es.Client) error {
	return ensure(ctx, c, IdxProjects, projectsMapping)
}

func ensure(ctx context.Context, c *es.Client, index, body string) error {
	exists, err := c.Indices.Exists([]string{index}, c.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", index, err)
	}
	exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		return nil
	}

	res, err := c.Indices.Create(index, c.Indices.Create.WithBody(strings.NewReader(body)), c.Indices.Create.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", index, res.Status())
	}
	return nil
}
