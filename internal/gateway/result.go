package gateway

import (
	"context"
	"net/http"
	"net/url"

	"bizconsole/internal/model"
)

// Result is a successful call: typed data plus where it came from.
type Result[T any] struct {
	Data   T
	Source model.DataSource
}

// Get issues a GET and decodes the body into T.
func Get[T any](ctx context.Context, c *Client, path string, query url.Values) (Result[T], error) {
	return Call[T](ctx, c, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Call issues req and decodes the body into T.
func Call[T any](ctx context.Context, c *Client, req Request) (Result[T], error) {
	var out T
	src, err := c.Do(ctx, req, &out)
	if err != nil {
		return Result[T]{}, err
	}
	return Result[T]{Data: out, Source: src}, nil
}
