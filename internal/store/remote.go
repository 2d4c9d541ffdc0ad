package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/platinummonkey/inkpad/internal/ink"
	"github.com/platinummonkey/inkpad/internal/logger"
)

// RemoteConfig holds configuration for a remote syncer
type RemoteConfig struct {
	// Endpoint is the base URL; surfaces live under {Endpoint}/surfaces/{id}
	Endpoint string

	// Timeout bounds each request
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that opens
	// the breaker
	FailureThreshold uint32

	// CooldownPeriod is how long the breaker stays open before probing
	CooldownPeriod time.Duration

	HTTPClient *http.Client
	Logger     *logger.Logger
}

// RemoteSyncer mirrors surfaces to an HTTP endpoint. A breaker stops
// hammering an endpoint that keeps failing.
type RemoteSyncer struct {
	endpoint string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker
	logger   *logger.Logger
}

// NewRemoteSyncer creates a syncer for cfg.Endpoint
func NewRemoteSyncer(cfg *RemoteConfig) (*RemoteSyncer, error) {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid remote endpoint %q", cfg.Endpoint)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Get()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 3
	}
	cooldown := cfg.CooldownPeriod
	if cooldown <= 0 {
		cooldown = 60 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "remote-sync",
		MaxRequests: 1,
		Interval:    0,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.WithFields("breaker", name, "from", from.String(), "to", to.String()).Info("Remote sync breaker state changed")
		},
	})

	return &RemoteSyncer{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		client:   client,
		breaker:  breaker,
		logger:   log,
	}, nil
}

// State reports the breaker state
func (r *RemoteSyncer) State() gobreaker.State {
	return r.breaker.State()
}

// Push uploads the full surface value
func (r *RemoteSyncer) Push(ctx context.Context, s ink.Surface) error {
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal surface: %w", err)
	}
	return r.do(ctx, http.MethodPut, s.ID, body)
}

// Remove deletes the remote copy. A remote 404 counts as success.
func (r *RemoteSyncer) Remove(ctx context.Context, id string) error {
	return r.do(ctx, http.MethodDelete, id, nil)
}

func (r *RemoteSyncer) do(ctx context.Context, method, id string, body []byte) error {
	_, err := r.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, method, r.surfaceURL(id), bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := r.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		if method == http.MethodDelete && resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("remote returned status %d", resp.StatusCode)
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, id, err)
	}

	r.logger.WithSurfaceID(id).WithFields("method", method).Debug("Remote sync succeeded")
	return nil
}

func (r *RemoteSyncer) surfaceURL(id string) string {
	return r.endpoint + "/surfaces/" + url.PathEscape(id)
}
