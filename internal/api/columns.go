package api

import (
	"context"
	"fmt"

	"github.com/jonatankoch/kanbanboard/internal/model"
)

type CreateColumnRequest struct {
	Title    string `json:"title"`
	BoardID  int    `json:"board_id"`
	Position int    `json:"position"`
	Color    string `json:"color,omitempty"`
}

// ColumnPatch is a partial column update; nil fields stay untouched.
// Reorder persistence sends position-only patches, one per column.
type ColumnPatch struct {
	Title    *string `json:"title,omitempty"`
	Color    *string `json:"color,omitempty"`
	Position *int    `json:"position,omitempty"`
}

func (c *Client) ListColumns(ctx context.Context, boardID int) ([]model.Column, error) {
	var columns []model.Column
	if err := c.get(ctx, fmt.Sprintf("/boards/%d/columns", boardID), &columns); err != nil {
		return nil, err
	}
	return columns, nil
}

func (c *Client) CreateColumn(ctx context.Context, req CreateColumnRequest) (*model.Column, error) {
	var column model.Column
	if err := c.post(ctx, "/columns/", req, &column); err != nil {
		return nil, err
	}
	return &column, nil
}

func (c *Client) UpdateColumn(ctx context.Context, id int, patch ColumnPatch) (*model.Column, error) {
	var column model.Column
	if err := c.patch(ctx, fmt.Sprintf("/columns/%d", id), patch, &column); err != nil {
		return nil, err
	}
	return &column, nil
}

// DeleteColumn removes the column; the authority cascades to its cards.
func (c *Client) DeleteColumn(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("/columns/%d", id))
}
