package apiclient

import (
	"context"
	"fmt"
	"net/url"
)

// ============================================================================
// Generic API Client Helpers
// ============================================================================
//
// Type-safe wrappers around get/post/delete shared by the resource files.

// getResource performs a GET request and decodes the body into a T.
//
//	session, err := getResource[Session](ctx, c, "/session/ses_1")
func getResource[T any](ctx context.Context, c *Client, path string) (*T, error) {
	var result T
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// listResources performs a GET request and decodes the body into a []T.
// A null body yields an empty, non-nil slice.
//
//	sessions, err := listResources[Session](ctx, c, "/session")
func listResources[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var results []T
	if err := c.get(ctx, path, &results); err != nil {
		return nil, err
	}
	if results == nil {
		results = []T{}
	}
	return results, nil
}

// createResource performs a POST request and decodes the body into a T.
//
//	session, err := createResource[Session](ctx, c, "/session", req)
func createResource[T any](ctx context.Context, c *Client, path string, body any) (*T, error) {
	var result T
	if err := c.post(ctx, path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// deleteResource performs a DELETE request.
func deleteResource(ctx context.Context, c *Client, path string) error {
	return c.delete(ctx, path, nil)
}

// resourcePath formats a path template, escaping every argument as a single
// path segment.
//
//	path := resourcePath("/session/%s/chat", "ses_1")
func resourcePath(format string, args ...string) string {
	escaped := make([]any, len(args))
	for i, a := range args {
		escaped[i] = url.PathEscape(a)
	}
	return fmt.Sprintf(format, escaped...)
}

// withQuery appends non-empty query parameters to path.
func withQuery(path string, params map[string]string) string {
	q := url.Values{}
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
