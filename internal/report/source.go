package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/gradpulse/internal/pages"
)

// Source renders pages for the report.
type Source interface {
	Pages(ctx context.Context) ([]pages.Page, error)
	Render(ctx context.Context, id string, req pages.Request) (pages.Output, error)
}

// Renderer is the in-process service surface a LocalSource wraps.
type Renderer interface {
	Pages() []pages.Page
	Render(ctx context.Context, id string, req pages.Request) (pages.Output, error)
}

// LocalSource renders pages in process.
type LocalSource struct {
	R Renderer
}

// Pages implements Source.
func (s LocalSource) Pages(context.Context) ([]pages.Page, error) { return s.R.Pages(), nil }

// Render implements Source.
func (s LocalSource) Render(ctx context.Context, id string, req pages.Request) (pages.Output, error) {
	return s.R.Render(ctx, id, req)
}

// RemoteSource reads pages from a running server's JSON API.
type RemoteSource struct {
	baseURL string
	client  *http.Client
}

// NewRemoteSource returns a source for the server at baseURL.
func NewRemoteSource(baseURL string, timeout time.Duration) *RemoteSource {
	return &RemoteSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Pages implements Source.
func (s *RemoteSource) Pages(ctx context.Context) ([]pages.Page, error) {
	var list []pages.Page
	if err := s.get(ctx, s.baseURL+"/pages", &list); err != nil {
		return nil, fmt.Errorf("report.RemoteSource.Pages: %w", err)
	}
	return list, nil
}

// Render implements Source.
func (s *RemoteSource) Render(ctx context.Context, id string, req pages.Request) (pages.Output, error) {
	var out pages.Output
	u := s.baseURL + "/pages/" + url.PathEscape(id)
	if q := req.Query().Encode(); q != "" {
		u += "?" + q
	}
	if err := s.get(ctx, u, &out); err != nil {
		return pages.Output{}, fmt.Errorf("report.RemoteSource.Render: %s: %w", id, err)
	}
	return out, nil
}

func (s *RemoteSource) get(ctx context.Context, u string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var e apiError
		if json.Unmarshal(body, &e) == nil && e.Code != "" {
			return fmt.Errorf("status %d: %s: %s", resp.StatusCode, e.Code, e.Message)
		}
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.Unmarshal(body, v)
}
