package apiclient

import (
	"context"
	"fmt"
)

// Session is a conversation with the assistant.
type Session struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	Agent string `json:"agent,omitempty" yaml:"agent,omitempty"`
}

// Role values of a Message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a session.
type Message struct {
	ID      string `json:"id" yaml:"id"`
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// CreateSessionRequest is the request to create a session.
type CreateSessionRequest struct {
	Agent string `json:"agent,omitempty"`
}

// ChatRequest sends a message to a session.
type ChatRequest struct {
	Content string   `json:"content"`
	Files   []string `json:"files,omitempty"`
}

// CreateSession creates a new session.
func (c *Client) CreateSession(ctx context.Context, req CreateSessionRequest) (*Session, error) {
	return createResource[Session](ctx, c, "/session", req)
}

// ListSessions returns all sessions.
func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	return listResources[Session](ctx, c, "/session")
}

// Chat sends a message to a session. The reply is read with Messages.
func (c *Client) Chat(ctx context.Context, sessionID string, req ChatRequest) error {
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}
	return c.post(ctx, resourcePath("/session/%s/chat", sessionID), req, nil)
}

// Messages returns the messages of a session in order.
func (c *Client) Messages(ctx context.Context, sessionID string) ([]Message, error) {
	return listResources[Message](ctx, c, resourcePath("/session/%s/messages", sessionID))
}

// LastMessage returns the most recent message of a session, or nil.
func (c *Client) LastMessage(ctx context.Context, sessionID string) (*Message, error) {
	msgs, err := c.Messages(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, nil
	}
	return &msgs[len(msgs)-1], nil
}

// DeleteSession deletes a session.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return deleteResource(ctx, c, resourcePath("/session/%s", sessionID))
}

// AbortSession stops an in-flight operation in a session.
func (c *Client) AbortSession(ctx context.Context, sessionID string) error {
	return c.post(ctx, resourcePath("/session/%s/abort", sessionID), nil, nil)
}
