package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/liteapi-travel/room-matcher-async/internal/model"
)

type matchRequest struct {
	Text string `json:"text"`
}

type apiError struct {
	Error string `json:"error"`
}

// Client calls the /match endpoint of a running server.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{http: c}
}

// Match posts text and decodes the result. Transport errors wrap
// ErrConnection.
func (c *Client) Match(ctx context.Context, text string) (model.Result, error) {
	var (
		result model.Result
		failed apiError
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(matchRequest{Text: text}).
		SetResult(&result).
		SetError(&failed).
		Post("/match")
	if err != nil {
		return model.Result{}, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	if resp.IsError() {
		return model.Result{}, fmt.Errorf("match failed (status: %d): %s", resp.StatusCode(), failed.Error)
	}
	return result, nil
}
