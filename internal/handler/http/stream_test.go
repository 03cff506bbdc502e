package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEvent(t *testing.T, reader *bufio.Reader) (string, string) {
	t.Helper()
	var event, data string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && event != "":
			return event, data
		}
	}
}

func openStream(t *testing.T, ts *testServer, role jwt.Role, employeeID string) (*bufio.Reader, context.CancelFunc) {
	t.Helper()
	server := httptest.NewServer(ts.router)
	t.Cleanup(server.Close)

	token, _, err := ts.jwt.GenerateSSEToken(employeeID, role)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/attendance/stream?token="+token, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	event, _ := readEvent(t, reader)
	require.Equal(t, "connected", event)
	return reader, cancel
}

func TestStreamHandler_DeliversOwnEvents(t *testing.T) {
	ts := newTestServer(t)
	reader, cancel := openStream(t, ts, jwt.RoleEmployee, handlerTestEmployee)
	defer cancel()

	ts.hub.Publish(sse.Event{EmployeeID: "someone-else", Event: sse.EventSessionChanged, Data: map[string]string{"session_id": "other"}})
	ts.hub.Publish(sse.Event{EmployeeID: handlerTestEmployee, Event: sse.EventSessionChanged, Data: map[string]string{"session_id": "mine"}})

	event, data := readEvent(t, reader)
	assert.Equal(t, sse.EventSessionChanged, event)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(data), &payload))
	assert.Equal(t, "mine", payload["session_id"])
}

func TestStreamHandler_AdminSeesEveryone(t *testing.T) {
	ts := newTestServer(t)
	reader, cancel := openStream(t, ts, jwt.RoleAdmin, handlerTestEmployee)
	defer cancel()

	ts.hub.Publish(sse.Event{EmployeeID: "someone-else", Event: sse.EventSessionChanged, Data: map[string]string{"session_id": "other"}})

	event, data := readEvent(t, reader)
	assert.Equal(t, sse.EventSessionChanged, event)
	assert.Contains(t, data, "other")
}

func TestStreamHandler_RejectsBadTokens(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/attendance/stream", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Access tokens are not accepted as stream tokens
	rec = ts.do(t, http.MethodGet, "/api/v1/attendance/stream?token="+ts.token(t, jwt.RoleEmployee), "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStreamHandler_IssuesToken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/attendance/stream/token", ts.token(t, jwt.RoleEmployee), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body SSETokenResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &body))
	assert.Equal(t, 300, body.ExpiresIn)

	employeeID, role, err := ts.jwt.ValidateSSEToken(body.Token)
	require.NoError(t, err)
	assert.Equal(t, handlerTestEmployee, employeeID)
	assert.Equal(t, jwt.RoleEmployee, role)
}
