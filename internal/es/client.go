package es

import (
	"context"
	"fmt"
	"io"

	"github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/elastic/go-elasticsearch/v9"
)

// NewClient connects to the cluster in cfg and checks that it answers.
func NewClient(ctx context.Context, cfg config.Config) (*elasticsearch.Client, error) {
	l := logging.FromContext(ctx).With("component", "elasticsearch")

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ESURL},
		Username:  cfg.ESUser,
		Password:  cfg.ESPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("create es client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("es info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("es info: %s: %s", res.Status(), body)
	}

	l.Info("es_connected", "url", cfg.ESURL)
	return client, nil
}
