package zonal

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
)

// APIError is the backend-specific error the zonal client raises. The
// adapter catches and translates it; it never escapes to adapter callers.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("zonal api error (http %d): %s", e.StatusCode, e.Message)
}

type Campaign struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Active    bool      `json:"active"`
}

type Advertisement struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Active bool   `json:"active"`
}

type Placement struct {
	ID              string `json:"id"`
	CampaignID      string `json:"campaign_id"`
	ZoneID          string `json:"zone_id"`
	AdvertisementID string `json:"advertisement_id"`
}

type Zone struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type CreateCampaignInput struct {
	AdvertiserID string    `json:"advertiser_id"`
	Name         string    `json:"name"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Active       bool      `json:"active"`
}

type CreateAdvertisementInput struct {
	AdvertiserID string `json:"advertiser_id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	MediaURL     string `json:"media_url,omitempty"`
	ClickURL     string `json:"click_url,omitempty"`
	Snippet      string `json:"snippet,omitempty"`
}

type CreatePlacementInput struct {
	CampaignID      string `json:"campaign_id"`
	ZoneID          string `json:"zone_id"`
	AdvertisementID string `json:"advertisement_id"`
}

// Client exposes the narrow backend verbs the adapter translates the
// uniform contract onto. The client owns HTTP, auth and timeouts.
type Client interface {
	CreateCampaign(ctx context.Context, input CreateCampaignInput) (Campaign, error)
	SetCampaignActive(ctx context.Context, campaignID string, active bool) error
	CreateAdvertisement(ctx context.Context, input CreateAdvertisementInput) (Advertisement, error)
	SetAdvertisementActive(ctx context.Context, advertiserID string, advertisementID string, active bool) error
	CreatePlacement(ctx context.Context, input CreatePlacementInput) (Placement, error)
	ListZones(ctx context.Context) ([]Zone, error)
}

const (
	defaultBaseURL = "https://api.zonal.example/api/0"
	defaultTimeout = 30 * time.Second
)

// HTTPClient implements Client against the zonal REST API. Auth is an
// access token query parameter.
type HTTPClient struct {
	accessToken string
	networkID   string
	baseURL     string
	httpClient  *http.Client
}

func NewHTTPClient(cfg ConnectionConfig) *HTTPClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &HTTPClient{
		accessToken: cfg.APIKey,
		networkID:   cfg.NetworkID,
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: defaultTimeout},
	}
}

func (c *HTTPClient) CreateCampaign(ctx context.Context, input CreateCampaignInput) (Campaign, error) {
	var out struct {
		Campaign Campaign `json:"campaign"`
	}
	path := fmt.Sprintf("/advertisers/%s/campaigns", url.PathEscape(input.AdvertiserID))
	if err := c.do(ctx, http.MethodPost, path, input, &out); err != nil {
		return Campaign{}, err
	}
	return out.Campaign, nil
}

func (c *HTTPClient) SetCampaignActive(ctx context.Context, campaignID string, active bool) error {
	path := fmt.Sprintf("/campaigns/%s", url.PathEscape(campaignID))
	return c.do(ctx, http.MethodPut, path, map[string]any{"active": active}, nil)
}

func (c *HTTPClient) CreateAdvertisement(ctx context.Context, input CreateAdvertisementInput) (Advertisement, error) {
	var out struct {
		Advertisement Advertisement `json:"advertisement"`
	}
	path := fmt.Sprintf("/advertisers/%s/advertisements", url.PathEscape(input.AdvertiserID))
	if err := c.do(ctx, http.MethodPost, path, input, &out); err != nil {
		return Advertisement{}, err
	}
	return out.Advertisement, nil
}

func (c *HTTPClient) SetAdvertisementActive(ctx context.Context, advertiserID string, advertisementID string, active bool) error {
	path := fmt.Sprintf("/advertisers/%s/advertisements/%s",
		url.PathEscape(advertiserID), url.PathEscape(advertisementID))
	return c.do(ctx, http.MethodPut, path, map[string]any{"active": active}, nil)
}

func (c *HTTPClient) CreatePlacement(ctx context.Context, input CreatePlacementInput) (Placement, error) {
	var out struct {
		Placement Placement `json:"placement"`
	}
	path := fmt.Sprintf("/campaigns/%s/placements", url.PathEscape(input.CampaignID))
	if err := c.do(ctx, http.MethodPost, path, input, &out); err != nil {
		return Placement{}, err
	}
	return out.Placement, nil
}

func (c *HTTPClient) ListZones(ctx context.Context) ([]Zone, error) {
	var out struct {
		Zones []Zone `json:"zones"`
	}
	path := fmt.Sprintf("/networks/%s/zones", url.PathEscape(c.networkID))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Zones, nil
}

func (c *HTTPClient) do(ctx context.Context, method string, path string, body any, out any) error {
	endpoint := c.baseURL + path + "?access_token=" + url.QueryEscape(c.accessToken)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode zonal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build zonal request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{StatusCode: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return &APIError{StatusCode: resp.StatusCode, Message: "auth denied"}
	case resp.StatusCode == http.StatusNotFound:
		return &APIError{StatusCode: resp.StatusCode, Message: "resource not found"}
	case resp.StatusCode >= 500:
		return &APIError{StatusCode: resp.StatusCode, Message: "server error"}
	case resp.StatusCode >= 400:
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode zonal response: %w", err)
		}
	}
	return nil
}

var _ Client = (*HTTPClient)(nil)
