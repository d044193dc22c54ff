// Package twitter is the X API v2 client used to resolve display names and
// fetch a user's recent posts mentioning a ticker.
package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/engagemint-io/engagemint-indexer/models"
)

const (
	defaultBaseURL  = "https://api.twitter.com"
	defaultTokenURL = "https://api.twitter.com/oauth2/token"

	// App-only search allows 450 requests per 15 minutes; stay inside it.
	requestsPerSecond = 0.5
	requestBurst      = 3
)

// Client talks to the X API v2 with app-only authentication and client-side
// rate limiting.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// NewClient builds an app-authenticated client. Token acquisition and refresh
// are handled by the underlying oauth2 transport.
func NewClient(ctx context.Context, appKey, appSecret string) *Client {
	conf := &clientcredentials.Config{
		ClientID:     appKey,
		ClientSecret: appSecret,
		TokenURL:     defaultTokenURL,
	}
	return &Client{
		httpClient: conf.Client(ctx),
		baseURL:    defaultBaseURL,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
	}
}

type apiError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

type userResponse struct {
	Data struct {
		Username string `json:"username"`
	} `json:"data"`
	Errors []apiError `json:"errors"`
}

type searchResponse struct {
	Data     []models.Post `json:"data"`
	Includes struct {
		Media []models.MediaAttachment `json:"media"`
	} `json:"includes"`
}

// ResolveDisplayName looks up the username for a numeric account id. An
// account the API cannot resolve yields an empty name, not an error.
func (c *Client) ResolveDisplayName(ctx context.Context, accountID string) (string, error) {
	endpoint := fmt.Sprintf("%s/2/users/%s", c.baseURL, url.PathEscape(accountID))

	var resp userResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return "", err
	}
	if len(resp.Errors) > 0 {
		log.Warn().Str("account_id", accountID).Str("detail", resp.Errors[0].Detail).Msg("user lookup returned an API error")
		return "", nil
	}
	return resp.Data.Username, nil
}

// FetchPostsByUser searches the user's recent posts mentioning the ticker
// within [windowStart, windowEnd], expanding attached media metrics.
func (c *Client) FetchPostsByUser(ctx context.Context, accountID, ticker string, windowStart, windowEnd time.Time) (models.PostBatch, error) {
	query := url.Values{}
	query.Set("query", fmt.Sprintf("from:%s %s", accountID, ticker))
	query.Set("start_time", windowStart.UTC().Format(time.RFC3339))
	query.Set("end_time", windowEnd.UTC().Format(time.RFC3339))
	query.Set("expansions", "attachments.media_keys")
	query.Set("media.fields", "public_metrics")
	query.Set("tweet.fields", "public_metrics")
	endpoint := fmt.Sprintf("%s/2/tweets/search/recent?%s", c.baseURL, query.Encode())

	var resp searchResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return models.PostBatch{}, err
	}
	return models.PostBatch{Posts: resp.Data, Media: resp.Includes.Media}, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter interrupted: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from X API: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode X API response: %w", err)
	}
	return nil
}
