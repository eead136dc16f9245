package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/roomdir-dev/roomdir/internal/api"
	"github.com/roomdir-dev/roomdir/internal/config"
)

const clientTimeout = 5 * time.Second

// Client provides methods to communicate with the roomdird daemon
type Client struct {
	http *resty.Client
}

// NewClient creates a new daemon client
func NewClient(cfg *config.Config) *Client {
	return NewClientWithURL(cfg.Daemon.URL())
}

// NewClientWithURL creates a client for a daemon listening at baseURL.
func NewClientWithURL(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(clientTimeout).
			SetHeader("Accept", "application/json"),
	}
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	var apiErr api.APIError
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(result).
		SetError(&apiErr).
		Get(path)
	if err != nil {
		return fmt.Errorf("daemon not reachable: %w", err)
	}
	if resp.IsError() {
		if apiErr.Code != "" {
			return apiErr
		}
		return fmt.Errorf("request %s failed: status %d", path, resp.StatusCode())
	}
	return nil
}

// Health checks if the daemon is healthy
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var health api.HealthResponse
	if err := c.get(ctx, "/health", &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// Status retrieves the daemon and directory status
func (c *Client) Status(ctx context.Context) (*api.StatusResponse, error) {
	var status api.StatusResponse
	if err := c.get(ctx, "/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// WaitHealthy polls /health until it answers or timeout elapses.
func (c *Client) WaitHealthy(ctx context.Context, timeout, interval time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := c.Health(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
