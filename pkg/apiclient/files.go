package apiclient

import (
	"context"
	"net/http"
)

// SearchResult is a text match in a file.
type SearchResult struct {
	Path    string `json:"path" yaml:"path"`
	Line    int    `json:"line,omitempty" yaml:"line,omitempty"`
	Content string `json:"content,omitempty" yaml:"content,omitempty"`
}

// Symbol is a code symbol known to the server.
type Symbol struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// SearchFiles searches file contents for query, optionally below path.
func (c *Client) SearchFiles(ctx context.Context, query, path string) ([]SearchResult, error) {
	return listResources[SearchResult](ctx, c, withQuery("/files/search", map[string]string{
		"query": query,
		"path":  path,
	}))
}

// FindFiles returns the paths matching a glob pattern.
func (c *Client) FindFiles(ctx context.Context, pattern string) ([]string, error) {
	return listResources[string](ctx, c, withQuery("/files/find", map[string]string{"pattern": pattern}))
}

// ReadFile returns the content of a file as text.
func (c *Client) ReadFile(ctx context.Context, path string) (string, error) {
	body, err := c.send(ctx, http.MethodGet, withQuery("/files/read", map[string]string{"path": path}), nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FindSymbols returns the symbols matching query.
func (c *Client) FindSymbols(ctx context.Context, query string) ([]Symbol, error) {
	return listResources[Symbol](ctx, c, withQuery("/files/symbols", map[string]string{"query": query}))
}
