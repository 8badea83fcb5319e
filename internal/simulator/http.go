package simulator

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client and tags every request with the session id so
// the service logs can be correlated with a run.
type HTTPClient struct {
	client  *http.Client
	stream  *http.Client
	baseURL string
	session string
	seq     atomic.Int64
}

func newHTTPClient(baseURL, session string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		stream:  &http.Client{}, // streams are open-ended
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
	}
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-Id", fmt.Sprintf("%s-%d", c.session, c.seq.Add(1)))
	return req, nil
}

// do sends a request and decodes the JSON response into out. Failure
// envelopes are returned as errors carrying the service message.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrEnvelope, method, path, err)
	}
	if !env.Success {
		return fmt.Errorf("%w: %s %s: status %d: %s", ErrEnvelope, method, path, resp.StatusCode, env.Error)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%w: %s %s: %w", ErrEnvelope, method, path, err)
		}
	}
	return nil
}

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type directionBody struct {
	Direction string `json:"direction"`
}

type difficultyBody struct {
	Difficulty float64 `json:"difficulty"`
}

// Health checks /healthz.
func (c *HTTPClient) Health(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// SetDirection posts a controller command.
func (c *HTTPClient) SetDirection(ctx context.Context, direction string) (string, error) {
	var out directionBody
	if err := c.do(ctx, http.MethodPost, "/controller", directionBody{Direction: direction}, &out); err != nil {
		return "", err
	}
	return out.Direction, nil
}

// Poll consumes the pending command.
func (c *HTTPClient) Poll(ctx context.Context) (string, error) {
	var out directionBody
	if err := c.do(ctx, http.MethodGet, "/controller", nil, &out); err != nil {
		return "", err
	}
	return out.Direction, nil
}

// Predict posts gameplay stats and returns the raw difficulty.
func (c *HTTPClient) Predict(ctx context.Context, stats GameStats) (float64, error) {
	var out difficultyBody
	if err := c.do(ctx, http.MethodPost, "/predict", stats, &out); err != nil {
		return 0, err
	}
	return out.Difficulty, nil
}

// Stream opens /controller-stream and sends each received direction to fn
// until ctx is done or the server closes the stream.
func (c *HTTPClient) Stream(ctx context.Context, ready chan<- struct{}, fn func(direction string)) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/controller-stream", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := c.stream.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("open stream: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("open stream: status %d", resp.StatusCode)
	}
	close(ready)

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		var frame directionBody
		if err := json.Unmarshal([]byte(strings.TrimSpace(data)), &frame); err != nil {
			return fmt.Errorf("%w: stream frame %q: %w", ErrEnvelope, line, err)
		}
		fn(frame.Direction)
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return nil
}
