package httpx

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// Client is a thin resty wrapper shared by the bars, fills and RPC transports.
// Retries happen only at this layer; callers never retry.
type Client struct {
	client *resty.Client
}

// NewClient builds a client rooted at host. resty picks up HTTP(S)_PROXY from
// the environment on its own.
func NewClient(host string) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(host, "/")).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		SetRetryAfter(func(client *resty.Client, resp *resty.Response) (time.Duration, error) {
			if resp.StatusCode() == 429 {
				if ra := resp.Header().Get("Retry-After"); ra != "" {
					if wait, err := time.ParseDuration(ra + "s"); err == nil {
						return wait, nil
					}
				}
				return 10 * time.Second, nil
			}
			return 0, nil
		})
	return &Client{client: client}
}

// BaseURL reports the configured host.
func (c *Client) BaseURL() string {
	return c.client.BaseURL
}

// GetJSON issues a GET and decodes the 2xx body into out.
func (c *Client) GetJSON(ctx context.Context, path string, query map[string]string, out any) error {
	req := c.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json")
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Get(path)
	if err != nil {
		return errors.Wrapf(err, "GET %s", path)
	}
	if !resp.IsSuccess() {
		return errors.Errorf("GET %s: %s: %s", path, resp.Status(), strings.TrimSpace(string(resp.Body())))
	}
	return nil
}

// PostJSON issues a POST with a JSON body and decodes the 2xx body into out.
func (c *Client) PostJSON(ctx context.Context, path string, body any, out any) error {
	req := c.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetBody(body)
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Post(path)
	if err != nil {
		return errors.Wrapf(err, "POST %s", path)
	}
	if !resp.IsSuccess() {
		return errors.Errorf("POST %s: %s: %s", path, resp.Status(), strings.TrimSpace(string(resp.Body())))
	}
	return nil
}
