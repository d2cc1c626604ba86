package server_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/wfm/internal/assert/helpers"
	"github.com/kode4food/wfm/internal/server"
	"github.com/kode4food/wfm/internal/store"
	"github.com/kode4food/wfm/pkg/api"
	"github.com/kode4food/wfm/pkg/bus"
	"github.com/kode4food/wfm/pkg/client"
)

type testServerEnv struct {
	Server *server.Server
	Store  *store.Store
	Router *gin.Engine
	bus    *bus.Local
}

func init() {
	gin.SetMode(gin.TestMode)
}

func testServer(t *testing.T) *testServerEnv {
	t.Helper()
	b := bus.NewLocal()
	st := store.New()
	require.NoError(t, st.Register(b))

	srv := server.NewServer(client.New(b))
	env := &testServerEnv{
		Server: srv,
		Store:  st,
		Router: srv.SetupRoutes(),
		bus:    b,
	}
	t.Cleanup(env.Cleanup)
	return env
}

func (e *testServerEnv) Cleanup() {
	e.Server.Close()
	_ = e.bus.Close()
}

func (e *testServerEnv) seed(t *testing.T) {
	t.Helper()
	require.NoError(t, e.Store.Apply(&store.Seed{
		Profile: &api.UserProfile{ID: "u1", Username: "trever"},
		Workflows: []*api.Workflow{
			helpers.NewTestWorkflow("wf-1", "a", "b"),
		},
		Workorders: []*api.Workorder{
			helpers.NewTestWorkorder("wo-1", "wf-1", "u1"),
			helpers.NewTestWorkorder("wo-2", "wf-1", ""),
		},
		Results: []*api.Result{
			helpers.NewTestResult("r-1", "wo-1", "a"),
		},
	}))
}

func (e *testServerEnv) do(
	method, path string, body any,
) *httptest.ResponseRecorder {
	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case []byte:
		rdr = bytes.NewReader(b)
	default:
		data, _ := json.Marshal(b)
		rdr = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var res T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestHealthEndpoint(t *testing.T) {
	env := testServer(t)

	w := env.do("GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	res := decodeBody[api.HealthResponse](t, w)
	assert.Equal(t, "wfm", res.Service)
	assert.Equal(t, "healthy", res.Status)
}

func TestCORSPreflight(t *testing.T) {
	env := testServer(t)

	w := env.do("OPTIONS", "/wfm/workflows", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestWorkflowEndpoints(t *testing.T) {
	env := testServer(t)

	w := env.do("POST", "/wfm/workflows",
		helpers.NewTestWorkflow("wf-1", "a"),
	)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do("GET", "/wfm/workflows", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[api.WorkflowsListResponse](t, w)
	assert.Equal(t, 1, list.Count)

	w = env.do("PUT", "/wfm/workflows/wf-1",
		helpers.NewTestWorkflow("ignored", "a", "b"),
	)
	require.Equal(t, http.StatusOK, w.Code)
	upd := decodeBody[api.Workflow](t, w)
	assert.Equal(t, api.WorkflowID("wf-1"), upd.ID)
	assert.Len(t, upd.Steps, 2)

	w = env.do("GET", "/wfm/workflows/wf-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do("DELETE", "/wfm/workflows/wf-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do("GET", "/wfm/workflows/wf-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	errRes := decodeBody[api.ErrorResponse](t, w)
	assert.Equal(t, http.StatusNotFound, errRes.Status)
	assert.Contains(t, errRes.Error, server.ErrGetWorkflow.Error())
}

func TestCreateWorkflowInvalid(t *testing.T) {
	env := testServer(t)

	w := env.do("POST", "/wfm/workflows", []byte("not-json"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do("POST", "/wfm/workflows",
		helpers.NewTestWorkflow("wf-1", "a", "a"),
	)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do("PUT", "/wfm/workflows/missing",
		helpers.NewTestWorkflow("missing", "a"),
	)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateWorkflowConflict(t *testing.T) {
	env := testServer(t)
	env.seed(t)

	w := env.do("POST", "/wfm/workflows",
		helpers.NewTestWorkflow("wf-1", "a"),
	)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkorderEndpoints(t *testing.T) {
	env := testServer(t)
	env.seed(t)

	w := env.do("GET", "/wfm/workorders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[api.WorkordersListResponse](t, w)
	assert.Equal(t, 2, list.Count)

	w = env.do("GET", "/wfm/workorders/wo-2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	wo := decodeBody[api.Workorder](t, w)
	assert.False(t, wo.IsAssigned())

	w = env.do("GET", "/wfm/workorders/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWorkorderSummary(t *testing.T) {
	env := testServer(t)
	env.seed(t)

	w := env.do("GET", "/wfm/workorders/wo-1/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)

	res := decodeBody[api.WorkorderStatusResponse](t, w)
	assert.Equal(t, api.StatusPending, res.Status)
	require.NotNil(t, res.Review)
	assert.Equal(t, 1, res.Review.NextStepIndex)
	assert.False(t, res.Review.Complete)
	require.NotNil(t, res.WorkorderSummary)
	assert.Equal(t, api.ResultID("r-1"), res.Result.ID)

	w = env.do("GET", "/wfm/workorders/wo-2/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	res = decodeBody[api.WorkorderStatusResponse](t, w)
	assert.Equal(t, api.StatusUnassigned, res.Status)
	assert.Nil(t, res.Result)

	w = env.do("GET", "/wfm/workorders/missing/summary", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWorkorderReassignment(t *testing.T) {
	env := testServer(t)
	env.seed(t)

	for i, who := range []api.UserID{"u2", "", "u1", ""} {
		w := env.do("PUT", "/wfm/workorders/wo-2",
			helpers.NewTestWorkorder("ignored", "wf-1", who),
		)
		require.Equal(t, http.StatusOK, w.Code, "iteration %d", i)

		w = env.do("GET", "/wfm/workorders/wo-2/summary", nil)
		require.Equal(t, http.StatusOK, w.Code)
		res := decodeBody[api.WorkorderStatusResponse](t, w)
		assert.Equal(t, who, res.Workorder.Assignee, "iteration %d", i)

		want := api.StatusPending
		if who == "" {
			want = api.StatusUnassigned
		}
		assert.Equal(t, want, res.Status, "iteration %d", i)
	}

	w := env.do("PUT", "/wfm/workorders/missing",
		helpers.NewTestWorkorder("missing", "wf-1", "u1"),
	)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do("PUT", "/wfm/workorders/wo-2", []byte("nope"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkorderResult(t *testing.T) {
	env := testServer(t)
	env.seed(t)

	w := env.do("GET", "/wfm/workorders/wo-1/result", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do("GET", "/wfm/workorders/wo-2/result", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do("POST", "/wfm/workorders/wo-2/result", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeBody[api.Result](t, w)
	assert.Equal(t, api.StatusNew, created.Status)
	assert.Equal(t, api.WorkorderID("wo-2"), created.WorkorderID)

	w = env.do("GET", "/wfm/workorders/wo-2/result", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResultEndpoints(t *testing.T) {
	env := testServer(t)
	env.seed(t)

	w := env.do("POST", "/wfm/results", &api.Result{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do("POST", "/wfm/results",
		helpers.NewTestResult("r-2", "wo-2"),
	)
	require.Equal(t, http.StatusCreated, w.Code)

	upd := helpers.NewTestResult("", "wo-2", "a", "b")
	w = env.do("PUT", "/wfm/results/r-2", upd)
	require.Equal(t, http.StatusOK, w.Code)
	res := decodeBody[api.Result](t, w)
	assert.Equal(t, api.ResultID("r-2"), res.ID)

	w = env.do("GET", "/wfm/results", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[api.ResultsListResponse](t, w)
	assert.Equal(t, 2, list.Count)

	w = env.do("PUT", "/wfm/results/missing", upd)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do("PUT", "/wfm/results/r-2", []byte("{"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileEndpoint(t *testing.T) {
	env := testServer(t)

	w := env.do("GET", "/wfm/profile", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	env.seed(t)
	w = env.do("GET", "/wfm/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	p := decodeBody[api.UserProfile](t, w)
	assert.Equal(t, "trever", p.Username)
}

func TestBusFailures(t *testing.T) {
	mb := helpers.NewMockBus()
	mb.SetError(api.TopicListWorkflows, bus.ErrNoResponder)
	mb.SetError(api.TopicListWorkorders, bus.ErrRequestTimeout)
	mb.SetError(api.TopicListResults, errors.New("boom"))

	srv := server.NewServer(client.New(mb))
	defer srv.Close()
	router := srv.SetupRoutes()

	tests := []struct {
		path string
		code int
	}{
		{"/wfm/workflows", http.StatusServiceUnavailable},
		{"/wfm/workorders", http.StatusGatewayTimeout},
		{"/wfm/results", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestCloseWebSocketsWithoutClients(t *testing.T) {
	env := testServer(t)

	done := make(chan struct{})
	go func() {
		env.Server.CloseWebSockets()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("CloseWebSockets blocked")
	}
}
