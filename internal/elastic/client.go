package elastic

import (
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"
)

func Connect(url string, logger *zap.Logger) (*es.Client, error) {
	cfg := es.Config{
		Addresses: []string{url},
	}
	client, err := es.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}
	logger.Info("connected to Elasticsearch", zap.String("url", url))
	return client, nil
}
