package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/okian/techmentor/pkg/logger"
)

// sessionHeader matches the server's API session header.
const sessionHeader = "X-Session-ID"

// apiError is returned for non-2xx responses.
type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// client wraps http.Client with the API calls the run needs.
type client struct {
	http    *http.Client
	baseURL string
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (c *client) health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	_, err = c.do(req, nil)
	return err
}

// analyze posts the analyse form for session.
func (c *client) analyze(ctx context.Context, session, organizer, message string, offline bool, poster []byte, posterName string) (map[string]any, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("organizer", organizer)
	_ = mw.WriteField("message", message)
	_ = mw.WriteField("offline", strconv.FormatBool(offline))
	if len(poster) > 0 {
		fw, err := mw.CreateFormFile("poster", filepath.Base(posterName))
		if err != nil {
			return nil, fmt.Errorf("failed to attach poster: %w", err)
		}
		if _, err := fw.Write(poster); err != nil {
			return nil, fmt.Errorf("failed to attach poster: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/analyze", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(sessionHeader, session)

	var out map[string]any
	if _, err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) latest(ctx context.Context, session string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/analysis", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(sessionHeader, session)

	var out map[string]any
	if _, err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) post(ctx context.Context, session, reflection string, offline bool) (string, error) {
	payload, err := json.Marshal(map[string]any{"reflection": reflection, "offline": offline})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/post", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(sessionHeader, session)

	var out struct {
		Post string `json:"post"`
	}
	if _, err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.Post, nil
}

// do sends req and decodes a JSON body into v when v is non-nil.
func (c *client) do(req *http.Request, v any) (int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, &apiError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	}
	if v != nil {
		if err := json.Unmarshal(data, v); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
