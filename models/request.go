package models

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// CreateNodeRequest represents the request body for creating a node
type CreateNodeRequest struct {
	ID       string  `json:"id" validate:"required,min=1,max=100"`
	ParentID *string `json:"parentId,omitempty" validate:"omitempty,min=1,max=100"`
	Data     any     `json:"data,omitempty"`
	Position *int    `json:"position,omitempty" validate:"omitempty,gte=0"`
}

// MoveNodeRequest represents the request body for moving a node
type MoveNodeRequest struct {
	ParentID string `json:"parentId" validate:"required,min=1,max=100"`
}

// UpdateDataRequest represents the request body for replacing a node's data
type UpdateDataRequest struct {
	Data any `json:"data"`
}

// Validate validates the create node request
func (r *CreateNodeRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the move node request
func (r *MoveNodeRequest) Validate() error {
	return validate.Struct(r)
}
