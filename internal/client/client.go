// Package client is a small HTTP client for the iconshard API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dreamware/iconshard/internal/iconset"
	"github.com/dreamware/iconshard/internal/lookup"
	"github.com/dreamware/iconshard/internal/registry"
)

// ErrNotFound is returned when the server answers 404.
var ErrNotFound = errors.New("not found")

// Client talks to one iconshard server.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a client for the server at baseURL, e.g. "http://localhost:3000".
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	u := c.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", u, ErrNotFound)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %s: %d", u, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// GetIcons fetches a batch of icons from an icon set.
func (c *Client) GetIcons(ctx context.Context, prefix string, names []string) (*lookup.IconsResult, error) {
	q := url.Values{"icons": {strings.Join(names, ",")}}
	var result lookup.IconsResult
	if err := c.getJSON(ctx, "/"+url.PathEscape(prefix)+".json?"+q.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetIcon fetches a single resolved icon.
func (c *Client) GetIcon(ctx context.Context, prefix, name string) (*iconset.Icon, error) {
	var icon iconset.Icon
	if err := c.getJSON(ctx, "/"+url.PathEscape(prefix)+"/"+url.PathEscape(name)+".json", &icon); err != nil {
		return nil, err
	}
	return &icon, nil
}

// Collections lists the icon sets served.
func (c *Client) Collections(ctx context.Context) ([]registry.Collection, error) {
	var out []registry.Collection
	if err := c.getJSON(ctx, "/collections", &out); err != nil {
		return nil, err
	}
	return out, nil
}
