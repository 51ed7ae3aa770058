package handlers

import (
	"errors"
	"net/http"

	"github.com/ammiranda/idtree/internal/render"
	"github.com/ammiranda/idtree/models"
	"github.com/ammiranda/idtree/service"
	"github.com/ammiranda/idtree/tree"

	"github.com/gin-gonic/gin"
)

// TreeHandler handles tree-related HTTP requests
type TreeHandler struct {
	svc *service.TreeService
}

// NewTreeHandler creates a new TreeHandler instance
func NewTreeHandler(svc *service.TreeService) *TreeHandler {
	return &TreeHandler{
		svc: svc,
	}
}

// Register mounts the tree routes on the given router group
func (h *TreeHandler) Register(api *gin.RouterGroup) {
	api.GET("/tree", h.GetTree)
	api.POST("/nodes", h.CreateNode)
	api.GET("/nodes/:id", h.GetNode)
	api.HEAD("/nodes/:id", h.NodeExists)
	api.DELETE("/nodes/:id", h.RemoveNode)
	api.PUT("/nodes/:id/parent", h.MoveNode)
	api.PUT("/nodes/:id/data", h.UpdateData)
}

// StatusFor maps tree errors onto HTTP status codes
func StatusFor(err error) int {
	switch {
	case errors.Is(err, tree.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, tree.ErrDuplicateNode), errors.Is(err, tree.ErrCyclicMove):
		return http.StatusConflict
	case errors.Is(err, tree.ErrOperationNotAllowed):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(StatusFor(err), gin.H{"error": err.Error()})
}

// GetTree returns the tree, or the subtree given by ?root=, as JSON, text or YAML
func (h *TreeHandler) GetTree(c *gin.Context) {
	format, err := render.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := h.svc.Snapshot(c.Request.Context(), c.DefaultQuery("root", tree.RootNodeID))
	if err != nil {
		writeError(c, err)
		return
	}

	switch format {
	case render.FormatText:
		c.String(http.StatusOK, render.Text(snapshot))
	case render.FormatYAML:
		out, err := render.YAML(snapshot)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/yaml", out)
	default:
		c.JSON(http.StatusOK, snapshot)
	}
}

// CreateNode creates a new node in the tree
func (h *TreeHandler) CreateNode(c *gin.Context) {
	var req models.CreateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Validate the request
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	node, err := h.svc.CreateNode(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, node)
}

// GetNode returns a node with its direct children
func (h *TreeHandler) GetNode(c *gin.Context) {
	node, err := h.svc.GetNode(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

// NodeExists answers 200 if the node exists and 404 otherwise
func (h *TreeHandler) NodeExists(c *gin.Context) {
	if h.svc.NodeExists(c.Request.Context(), c.Param("id")) {
		c.Status(http.StatusOK)
		return
	}
	c.Status(http.StatusNotFound)
}

// RemoveNode removes a node and its subtree
func (h *TreeHandler) RemoveNode(c *gin.Context) {
	removed, err := h.svc.RemoveNode(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// MoveNode re-parents a node
func (h *TreeHandler) MoveNode(c *gin.Context) {
	var req models.MoveNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	if err := h.svc.MoveNode(c.Request.Context(), id, req.ParentID); err != nil {
		writeError(c, err)
		return
	}

	h.GetNode(c)
}

// UpdateData replaces a node's payload
func (h *TreeHandler) UpdateData(c *gin.Context) {
	var req models.UpdateDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.SetData(c.Request.Context(), c.Param("id"), req.Data); err != nil {
		writeError(c, err)
		return
	}

	h.GetNode(c)
}
