package api

import (
	"context"
	"fmt"

	"github.com/jonatankoch/kanbanboard/internal/model"
)

type CreateBoardRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type BoardPatch struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

func (c *Client) ListBoards(ctx context.Context) ([]model.Board, error) {
	var boards []model.Board
	if err := c.get(ctx, "/boards/", &boards); err != nil {
		return nil, err
	}
	return boards, nil
}

func (c *Client) CreateBoard(ctx context.Context, req CreateBoardRequest) (*model.Board, error) {
	var board model.Board
	if err := c.post(ctx, "/boards/", req, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

func (c *Client) UpdateBoard(ctx context.Context, id int, patch BoardPatch) (*model.Board, error) {
	var board model.Board
	if err := c.patch(ctx, fmt.Sprintf("/boards/%d", id), patch, &board); err != nil {
		return nil, err
	}
	return &board, nil
}
