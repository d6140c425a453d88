package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/interphost/backend/internal/interp"
	"github.com/interphost/backend/internal/logging"
	"github.com/interphost/backend/internal/monitoring"
)

// Prometheus collectors register globally, so the test binary shares one
// metrics instance.
var testMetrics = monitoring.NewMetrics()

func setupAPI(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	host, err := interp.NewHost(interp.Options{
		Logger: &logging.Logger{Logger: zap.NewNop()},
	})
	require.NoError(t, err)
	t.Cleanup(func() { host.Close() })

	handlers := NewHandlers(host, &logging.Logger{Logger: zap.NewNop()}, testMetrics)

	router := gin.New()
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	contexts := router.Group("/contexts")
	{
		contexts.POST("", handlers.CreateContext)
		contexts.GET("", handlers.ListContexts)
		contexts.GET("/current", handlers.CurrentContext)
		contexts.GET("/main", handlers.MainContext)
		contexts.DELETE("/:id", handlers.DestroyContext)
		contexts.GET("/:id/running", handlers.IsRunning)
		contexts.POST("/:id/run", handlers.RunString)
	}
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	out := map[string]interface{}{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func createContext(t *testing.T, router *gin.Engine) int64 {
	t.Helper()
	w, body := doJSON(t, router, "POST", "/contexts", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	return int64(body["context_id"].(float64))
}

func TestRootAndHealth(t *testing.T) {
	router := setupAPI(t)

	w, body := doJSON(t, router, "GET", "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "online", body["status"])

	w, body = doJSON(t, router, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestCreateAndListContexts(t *testing.T) {
	router := setupAPI(t)

	a := createContext(t, router)
	b := createContext(t, router)
	assert.NotEqual(t, a, b)

	w, body := doJSON(t, router, "GET", "/contexts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	ids := body["contexts"].([]interface{})
	require.Len(t, ids, 3) // main plus two

	// Newest first.
	assert.Equal(t, float64(b), ids[0])
	assert.Equal(t, float64(a), ids[1])
}

func TestCreateLegacyContext(t *testing.T) {
	router := setupAPI(t)

	w, body := doJSON(t, router, "POST", "/contexts", map[string]interface{}{"isolated": false})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, false, body["isolated"])
}

func TestCurrentAndMain(t *testing.T) {
	router := setupAPI(t)

	w, body := doJSON(t, router, "GET", "/contexts/current", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), body["context_id"])

	w, body = doJSON(t, router, "GET", "/contexts/main", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), body["context_id"])
}

func TestDestroyContext(t *testing.T) {
	router := setupAPI(t)
	id := createContext(t, router)

	w, _ := doJSON(t, router, "DELETE", fmt.Sprintf("/contexts/%d", id), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// A second destroy finds nothing.
	w, _ = doJSON(t, router, "DELETE", fmt.Sprintf("/contexts/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDestroyMainConflicts(t *testing.T) {
	router := setupAPI(t)

	w, _ := doJSON(t, router, "DELETE", "/contexts/0", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDestroyBadID(t *testing.T) {
	router := setupAPI(t)

	w, _ := doJSON(t, router, "DELETE", "/contexts/notanumber", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIsRunningFreshContext(t *testing.T) {
	router := setupAPI(t)
	id := createContext(t, router)

	w, body := doJSON(t, router, "GET", fmt.Sprintf("/contexts/%d/running", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["running"])
}

func TestRunString(t *testing.T) {
	router := setupAPI(t)
	id := createContext(t, router)

	w, body := doJSON(t, router, "POST", fmt.Sprintf("/contexts/%d/run", id), map[string]interface{}{
		"script": "x = 1 + 1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["ok"])

	// The binding persists across requests.
	w, _ = doJSON(t, router, "POST", fmt.Sprintf("/contexts/%d/run", id), map[string]interface{}{
		"script": "if (x !== 2) throw { name: 'AssertionError', message: 'x is ' + x }",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRunStringWithShared(t *testing.T) {
	router := setupAPI(t)
	id := createContext(t, router)

	w, _ := doJSON(t, router, "POST", fmt.Sprintf("/contexts/%d/run", id), map[string]interface{}{
		"script": "if (v !== 42) throw { name: 'AssertionError', message: 'v is ' + v }",
		"shared": map[string]interface{}{"v": 42},
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRunStringFailure(t *testing.T) {
	router := setupAPI(t)
	id := createContext(t, router)

	w, body := doJSON(t, router, "POST", fmt.Sprintf("/contexts/%d/run", id), map[string]interface{}{
		"script": "throw { name: 'Boom', message: 'boom' }",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Boom", body["kind"])
	assert.Equal(t, "boom", body["message"])
	assert.Contains(t, body["error"], "Boom: boom")
}

func TestRunStringNotShareable(t *testing.T) {
	router := setupAPI(t)
	id := createContext(t, router)

	// A nested object is outside the shareable set.
	w, _ := doJSON(t, router, "POST", fmt.Sprintf("/contexts/%d/run", id), map[string]interface{}{
		"script": "hit = true",
		"shared": map[string]interface{}{"bad": map[string]interface{}{"a": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The script never executed.
	w, _ = doJSON(t, router, "POST", fmt.Sprintf("/contexts/%d/run", id), map[string]interface{}{
		"script": "if (typeof hit !== 'undefined') throw { name: 'Leak', message: 'ran' }",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRunStringMissingScript(t *testing.T) {
	router := setupAPI(t)
	id := createContext(t, router)

	w, _ := doJSON(t, router, "POST", fmt.Sprintf("/contexts/%d/run", id), map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunStringUnknownContext(t *testing.T) {
	router := setupAPI(t)

	w, _ := doJSON(t, router, "POST", "/contexts/9999/run", map[string]interface{}{
		"script": "1",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
