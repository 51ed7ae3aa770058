package lambda

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ammiranda/idtree/cache"
	"github.com/ammiranda/idtree/service"
	"github.com/ammiranda/idtree/tree"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandler(t *testing.T) *Handler {
	require.NoError(t, cache.SetProvider(cache.NewMemoryCache()))
	t.Cleanup(cache.ResetProvider)
	svc, err := service.New(tree.NewMapStorage(), nil)
	require.NoError(t, err)
	return NewHandler(svc)
}

func call(t *testing.T, h *Handler, method, path, body string) events.APIGatewayProxyResponse {
	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: method,
		Path:       path,
		Body:       body,
	})
	require.NoError(t, err)
	return resp
}

func TestHandleRoutes(t *testing.T) {
	h := setupHandler(t)

	testCases := []struct {
		name     string
		method   string
		path     string
		body     string
		expected int
	}{
		{name: "Create a", method: "POST", path: "/api/nodes", body: `{"id":"a"}`, expected: http.StatusCreated},
		{name: "Create b under a", method: "POST", path: "/api/nodes", body: `{"id":"b","parentId":"a","data":42}`, expected: http.StatusCreated},
		{name: "Duplicate", method: "POST", path: "/api/nodes", body: `{"id":"a"}`, expected: http.StatusConflict},
		{name: "Invalid body", method: "POST", path: "/api/nodes", body: `{`, expected: http.StatusBadRequest},
		{name: "Missing id", method: "POST", path: "/api/nodes", body: `{}`, expected: http.StatusBadRequest},
		{name: "Get node", method: "GET", path: "/api/nodes/b", expected: http.StatusOK},
		{name: "Head node", method: "HEAD", path: "/api/nodes/b", expected: http.StatusOK},
		{name: "Head missing", method: "HEAD", path: "/api/nodes/zzz", expected: http.StatusNotFound},
		{name: "Cyclic move", method: "PUT", path: "/api/nodes/a/parent", body: `{"parentId":"b"}`, expected: http.StatusConflict},
		{name: "Update data", method: "PUT", path: "/api/nodes/a/data", body: `{"data":"x"}`, expected: http.StatusOK},
		{name: "Delete root", method: "DELETE", path: "/api/nodes/root", expected: http.StatusForbidden},
		{name: "Unknown route", method: "PATCH", path: "/api/nodes/a", expected: http.StatusNotFound},
		{name: "Unknown path", method: "GET", path: "/api/other", expected: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := call(t, h, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.expected, resp.StatusCode, resp.Body)
		})
	}
}

func TestHandleGetTree(t *testing.T) {
	h := setupHandler(t)
	call(t, h, "POST", "/api/nodes", `{"id":"a"}`)

	resp := call(t, h, "GET", "/api/tree", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snapshot map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &snapshot))
	assert.Equal(t, tree.RootNodeID, snapshot["id"])
	assert.Len(t, snapshot["children"], 1)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:            "GET",
		Path:                  "/api/tree",
		QueryStringParameters: map[string]string{"format": "text"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Body, "a")

	resp, err = h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:            "GET",
		Path:                  "/api/tree",
		QueryStringParameters: map[string]string{"root": "missing"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleRemoveAndMove(t *testing.T) {
	h := setupHandler(t)
	call(t, h, "POST", "/api/nodes", `{"id":"a"}`)
	call(t, h, "POST", "/api/nodes", `{"id":"b"}`)
	call(t, h, "POST", "/api/nodes", `{"id":"c","parentId":"a"}`)

	resp := call(t, h, "PUT", "/api/nodes/a/parent", `{"parentId":"b"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, h, "DELETE", "/api/nodes/b", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Removed []string `json:"removed"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.Equal(t, []string{"c", "a", "b"}, body.Removed)

	resp = call(t, h, "GET", "/api/nodes/c", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
