package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() domain.ScenarioConfig {
	return domain.ScenarioConfig{
		InitialNode: "greeting",
		Nodes: map[string]domain.NodeConfig{
			"greeting": {
				RoleMessages: []domain.Message{domain.SystemMessage("You are helpful.")},
				TaskMessages: []domain.Message{domain.SystemMessage("Say hello.")},
				Functions: []domain.ToolDef{
					domain.TransitionTool{Name: "go_next", TransitionTo: "farewell"},
				},
			},
			"farewell": {
				TaskMessages: []domain.Message{domain.SystemMessage("Say goodbye.")},
				Functions:    []domain.ToolDef{},
			},
		},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	handler, err := NewHandler(testConfig(), "http")
	require.NoError(t, err)

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

func createTestSession(t *testing.T, ts *httptest.Server) sessionView {
	t.Helper()

	resp, err := http.Post(ts.URL+"/sessions", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var view sessionView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	return view
}

func TestNewHandlerRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.InitialNode = "Z"

	_, err := NewHandler(cfg, "http")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Z" is not defined in nodes`)
}

func TestCreateSession(t *testing.T) {
	ts := newTestServer(t)
	view := createTestSession(t, ts)

	assert.NotEmpty(t, view.ID)
	assert.Equal(t, "greeting", view.CurrentNode)
	require.Len(t, view.Messages, 2)
	assert.Equal(t, "Say hello.", view.Messages[1].Content)
	require.Len(t, view.Tools, 1)
	assert.Equal(t, "go_next", view.Tools[0].Name)
	assert.True(t, view.Tools[0].Transition)
}

func TestExecuteTransitionTool(t *testing.T) {
	ts := newTestServer(t)
	view := createTestSession(t, ts)

	url := fmt.Sprintf("%s/sessions/%s/tools/go_next", ts.URL, view.ID)
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(`{"args":{}}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var exec executeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&exec))
	assert.Equal(t, "farewell", exec.CurrentNode)

	// The session view reflects the transition.
	getResp, err := http.Get(ts.URL + "/sessions/" + view.ID)
	require.NoError(t, err)
	defer getResp.Body.Close()

	var after sessionView
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&after))
	assert.Equal(t, "farewell", after.CurrentNode)
	assert.Empty(t, after.Tools)
	assert.Len(t, after.Messages, 3)
}

// Tools are gated to the active node: a tool from another node is 404, and
// the session does not move.
func TestExecuteInactiveTool(t *testing.T) {
	ts := newTestServer(t)
	view := createTestSession(t, ts)

	// Move to farewell, which registers no tools.
	url := fmt.Sprintf("%s/sessions/%s/tools/go_next", ts.URL, view.ID)
	resp, err := http.Post(url, "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(url, "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExecuteUnknownSession(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/sessions/nope/tools/go_next", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListAndDeleteSession(t *testing.T) {
	ts := newTestServer(t)
	view := createTestSession(t, ts)

	resp, err := http.Get(ts.URL + "/sessions")
	require.NoError(t, err)
	defer resp.Body.Close()

	var listing map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	assert.Contains(t, listing["sessions"], view.ID)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/sessions/"+view.ID, nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	delResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)

	getResp, err := http.Get(ts.URL + "/sessions/" + view.ID)
	require.NoError(t, err)
	getResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestHealthAndInfo(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	infoResp, err := http.Get(ts.URL + "/info")
	require.NoError(t, err)
	defer infoResp.Body.Close()

	var info map[string]string
	require.NoError(t, json.NewDecoder(infoResp.Body).Decode(&info))
	assert.Equal(t, "greeting", info["initial_node"])
}

func TestGraphEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/graph")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "graph TD")
	assert.Contains(t, buf.String(), `greeting -- "go_next" --> farewell`)
}

func TestStreamManagerDropsSlowSubscribers(t *testing.T) {
	sm := NewStreamManager()

	ch, cancel := sm.Subscribe("s1")
	defer cancel()

	// Fill the buffer past capacity; Broadcast must never block.
	for i := 0; i < 20; i++ {
		sm.Broadcast("s1", "msg")
	}

	assert.Len(t, ch, 10, "overflow messages are dropped, not queued")
}

func TestStreamManagerUnsubscribeClosesChannel(t *testing.T) {
	sm := NewStreamManager()

	ch, cancel := sm.Subscribe("s1")
	cancel()

	_, open := <-ch
	assert.False(t, open)

	// Broadcasting after the last unsubscribe is a no-op.
	sm.Broadcast("s1", "msg")
}
