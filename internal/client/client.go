// Package client talks to a running sensorgraph gateway over HTTP.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lazypower/sensorgraph/internal/rdf"
)

const (
	defaultServerURL = "http://127.0.0.1:80"
	httpTimeout      = 5 * time.Second
)

// EnvServerURL overrides the gateway address used by the CLI.
const EnvServerURL = "SENSORGRAPH_URL"

// Client talks to the gateway.
type Client struct {
	http      *http.Client
	serverURL string
}

// New creates a client for serverURL. An empty serverURL falls back to
// $SENSORGRAPH_URL and then http://127.0.0.1:80.
func New(serverURL string) *Client {
	if serverURL == "" {
		serverURL = os.Getenv(EnvServerURL)
	}
	if serverURL == "" {
		serverURL = defaultServerURL
	}
	return &Client{
		http:      &http.Client{Timeout: httpTimeout},
		serverURL: strings.TrimRight(serverURL, "/"),
	}
}

// Health is the body of /api/health.
type Health struct {
	Status  string  `json:"status"`
	Version string  `json:"version"`
	Uptime  float64 `json:"uptime"`
	Present bool    `json:"present"`
	Tracked int     `json:"tracked"`
	LEDs    int     `json:"leds"`
	Journal bool    `json:"journal"`
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, header http.Header) ([]byte, *http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, body)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp, fmt.Errorf("read response %s: %w", path, err)
	}
	if resp.StatusCode >= 400 {
		return data, resp, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, resp, nil
}

// Health fetches the gateway health summary.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	data, _, err := c.do(ctx, http.MethodGet, "/api/health", nil, nil)
	if err != nil {
		return h, err
	}
	if err := json.Unmarshal(data, &h); err != nil {
		return h, fmt.Errorf("decode health: %w", err)
	}
	return h, nil
}

// Document fetches the RDF document at path in mediaType. An empty mediaType
// leaves the choice to the gateway.
func (c *Client) Document(ctx context.Context, path, mediaType string) ([]byte, error) {
	h := http.Header{}
	if mediaType != "" {
		h.Set("Accept", mediaType)
	}
	data, _, err := c.do(ctx, http.MethodGet, path, nil, h)
	return data, err
}

// SetLED switches LED index on or off.
func (c *Client) SetLED(ctx context.Context, index int, on bool) error {
	state := rdf.SAREFOff
	if on {
		state = rdf.SAREFOn
	}
	g := rdf.NewGraph(rdf.T("#led", rdf.SAREFHasState, rdf.IRI(state)))

	var body strings.Builder
	if err := rdf.EncodeTurtle(&body, g); err != nil {
		return err
	}

	h := http.Header{}
	h.Set("Content-Type", rdf.MediaTurtle)
	_, _, err := c.do(ctx, http.MethodPut, "/leds/"+strconv.Itoa(index), strings.NewReader(body.String()), h)
	return err
}

// ClearLEDs switches every LED off.
func (c *Client) ClearLEDs(ctx context.Context) error {
	_, _, err := c.do(ctx, http.MethodDelete, "/leds/", nil, nil)
	return err
}
