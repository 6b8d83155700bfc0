package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"engageops-sim/internal/engine"
	"engageops-sim/internal/registry"
)

// Client talks to the admin HTTP API of a running simulator.
type Client struct {
	base string
	hc   *http.Client
}

// NewClient builds a client for the admin API at base, e.g.
// "http://localhost:8080".
func NewClient(base string) *Client {
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: 5 * time.Second},
	}
}

// ListSimulations fetches the status of every active simulation.
func (c *Client) ListSimulations(ctx context.Context) ([]registry.Status, error) {
	var out []registry.Status
	if err := c.getJSON(ctx, "/simulations", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LastPass fetches the results of the most recent update pass.
func (c *Client) LastPass(ctx context.Context) ([]engine.UpdateResult, error) {
	var out []engine.UpdateResult
	if err := c.getJSON(ctx, "/last-pass", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RunPass triggers an immediate update pass and returns its results.
func (c *Client) RunPass(ctx context.Context) ([]engine.UpdateResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/run-pass", nil)
	if err != nil {
		return nil, err
	}
	var out []engine.UpdateResult
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StopSimulation stops the simulation for target.
func (c *Client) StopSimulation(ctx context.Context, target string) error {
	u := c.base + "/stop-simulation?target=" + url.QueryEscape(target)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: %s: %s", req.Method, req.URL.Path, resp.Status, body)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
