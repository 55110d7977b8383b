package apiclient

import (
	"context"
	"net/http"
	"testing"

	"github.com/marmos91/opencode-sdk/internal/testutil/fakeserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	srv := fakeserver.New(t)
	client := New(srv.URL)
	ctx := context.Background()

	sess, err := client.CreateSession(ctx, CreateSessionRequest{Agent: "build"})
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, "build", sess.Agent)

	list, err := client.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, sess.ID, list[0].ID)

	require.NoError(t, client.Chat(ctx, sess.ID, ChatRequest{Content: "hello", Files: []string{"main.go"}}))

	msgs, err := client.Messages(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, RoleAssistant, msgs[1].Role)

	last, err := client.LastMessage(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "echo: hello (1 files: main.go)", last.Content)

	require.NoError(t, client.AbortSession(ctx, sess.ID))
	assert.True(t, srv.Aborted(sess.ID))

	require.NoError(t, client.DeleteSession(ctx, sess.ID))
	assert.False(t, srv.HasSession(sess.ID))
}

func TestListSessionsEmpty(t *testing.T) {
	srv := fakeserver.New(t)

	list, err := New(srv.URL).ListSessions(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestLastMessageEmptySession(t *testing.T) {
	srv := fakeserver.New(t)
	id := srv.AddSession("empty", "")

	last, err := New(srv.URL).LastMessage(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestChatRequiresSessionID(t *testing.T) {
	err := New("http://127.0.0.1:1").Chat(context.Background(), "", ChatRequest{Content: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session id is required")
}

func TestDeleteUnknownSession(t *testing.T) {
	srv := fakeserver.New(t)

	err := New(srv.URL).DeleteSession(context.Background(), "ses_missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
}

func TestSessionsRequirePassword(t *testing.T) {
	srv := fakeserver.New(t, fakeserver.WithPassword("hunter2"))
	ctx := context.Background()

	_, err := New(srv.URL).ListSessions(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsAuthError())

	_, err = New(srv.URL).WithBasicAuth("hunter2").ListSessions(ctx)
	require.NoError(t, err)
}

func TestCreateSessionServerError(t *testing.T) {
	srv := fakeserver.New(t, fakeserver.WithFailure("POST /session", http.StatusInternalServerError))

	_, err := New(srv.URL).CreateSession(context.Background(), CreateSessionRequest{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "INJECTED", apiErr.Code)
}

func TestRequestIDsAreUnique(t *testing.T) {
	srv := fakeserver.New(t)
	client := New(srv.URL)
	ctx := context.Background()

	for range 3 {
		_, err := client.ListSessions(ctx)
		require.NoError(t, err)
	}

	ids := srv.RequestIDs()
	require.Len(t, ids, 3)
	seen := map[string]bool{}
	for _, id := range ids {
		assert.NotEmpty(t, id)
		assert.False(t, seen[id], "duplicate request id %s", id)
		seen[id] = true
	}
}
