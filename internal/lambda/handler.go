package lambda

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ammiranda/idtree/handlers"
	"github.com/ammiranda/idtree/internal/render"
	"github.com/ammiranda/idtree/models"
	"github.com/ammiranda/idtree/service"
	"github.com/ammiranda/idtree/tree"

	"github.com/aws/aws-lambda-go/events"
)

// Handler represents the Lambda handler with its dependencies
type Handler struct {
	svc *service.TreeService
}

// NewHandler creates a new Handler with the given tree service
func NewHandler(svc *service.TreeService) *Handler {
	return &Handler{
		svc: svc,
	}
}

// Handle processes API Gateway events
func (h *Handler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	segments := strings.Split(strings.Trim(strings.TrimPrefix(request.Path, "/api"), "/"), "/")

	// Route the request based on HTTP method and path
	switch {
	case request.HTTPMethod == http.MethodGet && request.Path == "/api/tree":
		return h.handleGetTree(ctx, request)
	case request.HTTPMethod == http.MethodPost && request.Path == "/api/nodes":
		return h.handleCreateNode(ctx, request)
	case len(segments) == 2 && segments[0] == "nodes":
		switch request.HTTPMethod {
		case http.MethodGet:
			return h.handleGetNode(ctx, segments[1])
		case http.MethodHead:
			if h.svc.NodeExists(ctx, segments[1]) {
				return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
			}
			return events.APIGatewayProxyResponse{StatusCode: http.StatusNotFound}, nil
		case http.MethodDelete:
			return h.handleRemoveNode(ctx, segments[1])
		}
	case len(segments) == 3 && segments[0] == "nodes" && request.HTTPMethod == http.MethodPut:
		switch segments[2] {
		case "parent":
			return h.handleMoveNode(ctx, segments[1], request)
		case "data":
			return h.handleUpdateData(ctx, segments[1], request)
		}
	}

	return errorResponse(http.StatusNotFound, "Not found"), nil
}

func errorResponse(status int, msg string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func treeErrorResponse(err error) events.APIGatewayProxyResponse {
	return errorResponse(handlers.StatusFor(err), err.Error())
}

func jsonResponse(status int, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		return errorResponse(http.StatusInternalServerError, fmt.Sprintf("Failed to marshal response: %v", err))
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func (h *Handler) handleGetTree(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	format, err := render.ParseFormat(request.QueryStringParameters["format"])
	if err != nil {
		return errorResponse(http.StatusBadRequest, err.Error()), nil
	}

	rootID := request.QueryStringParameters["root"]
	if rootID == "" {
		rootID = tree.RootNodeID
	}

	snapshot, err := h.svc.Snapshot(ctx, rootID)
	if err != nil {
		return treeErrorResponse(err), nil
	}

	switch format {
	case render.FormatText:
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    map[string]string{"Content-Type": "text/plain; charset=utf-8"},
			Body:       render.Text(snapshot),
		}, nil
	case render.FormatYAML:
		out, err := render.YAML(snapshot)
		if err != nil {
			return errorResponse(http.StatusInternalServerError, err.Error()), nil
		}
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    map[string]string{"Content-Type": "application/yaml"},
			Body:       string(out),
		}, nil
	default:
		return jsonResponse(http.StatusOK, snapshot), nil
	}
}

func (h *Handler) handleCreateNode(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req models.CreateNodeRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return errorResponse(http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err)), nil
	}

	// Validate the request
	if err := req.Validate(); err != nil {
		return errorResponse(http.StatusBadRequest, err.Error()), nil
	}

	node, err := h.svc.CreateNode(ctx, req)
	if err != nil {
		return treeErrorResponse(err), nil
	}

	return jsonResponse(http.StatusCreated, node), nil
}

func (h *Handler) handleGetNode(ctx context.Context, id string) (events.APIGatewayProxyResponse, error) {
	node, err := h.svc.GetNode(ctx, id)
	if err != nil {
		return treeErrorResponse(err), nil
	}
	return jsonResponse(http.StatusOK, node), nil
}

func (h *Handler) handleRemoveNode(ctx context.Context, id string) (events.APIGatewayProxyResponse, error) {
	removed, err := h.svc.RemoveNode(ctx, id)
	if err != nil {
		return treeErrorResponse(err), nil
	}
	return jsonResponse(http.StatusOK, map[string]interface{}{"removed": removed}), nil
}

func (h *Handler) handleMoveNode(ctx context.Context, id string, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req models.MoveNodeRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return errorResponse(http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err)), nil
	}
	if err := req.Validate(); err != nil {
		return errorResponse(http.StatusBadRequest, err.Error()), nil
	}

	if err := h.svc.MoveNode(ctx, id, req.ParentID); err != nil {
		return treeErrorResponse(err), nil
	}
	return h.handleGetNode(ctx, id)
}

func (h *Handler) handleUpdateData(ctx context.Context, id string, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req models.UpdateDataRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return errorResponse(http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err)), nil
	}

	if err := h.svc.SetData(ctx, id, req.Data); err != nil {
		return treeErrorResponse(err), nil
	}
	return h.handleGetNode(ctx, id)
}
