package diagnostics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
	"github.com/goccy/go-json"
)

const maxErrorBody = 4 << 10

// Client calls the matching API.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a Client for baseURL. Timeouts come from the request
// context.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{base: baseURL, http: hc}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Status int
	Code   string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("status %d: %s", e.Status, e.Code)
	}
	return fmt.Sprintf("status %d", e.Status)
}

// RecommendationList is the body of a recommendations response.
type RecommendationList struct {
	UserID          string                 `json:"userId"`
	Count           int                    `json:"count"`
	Recommendations []model.Recommendation `json:"recommendations"`
}

// Health checks GET /health.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/health", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readStatusError(resp)
	}
	return nil
}

// Recommendations fetches one user's recommendation list.
func (c *Client) Recommendations(ctx context.Context, userID string, limit int, diversify bool) (*RecommendationList, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	q.Set("diversify", strconv.FormatBool(diversify))
	u := fmt.Sprintf("%s/api/v1/users/%s/recommendations?%s", c.base, url.PathEscape(userID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, readStatusError(resp)
	}

	var out RecommendationList
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode recommendations: %w", err)
	}
	return &out, nil
}

func readStatusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	se := &StatusError{Status: resp.StatusCode, Body: string(body)}
	var payload struct {
		Code string `json:"code"`
	}
	if json.Unmarshal(body, &payload) == nil {
		se.Code = payload.Code
	}
	return se
}
