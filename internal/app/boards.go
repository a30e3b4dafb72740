package app

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jonatankoch/kanbanboard/internal/api"
	"github.com/jonatankoch/kanbanboard/internal/model"
)

// CreateBoard creates a board and switches to it. Structural: admin with
// edit rights in build mode.
func (a *App) CreateBoard(ctx context.Context, name, color string) (*model.Board, error) {
	if !a.structural("createBoard") {
		return nil, nil
	}
	if strings.TrimSpace(name) == "" {
		return nil, errEmptyName
	}

	board, err := a.client.CreateBoard(ctx, api.CreateBoardRequest{Name: name, Color: color})
	if err != nil {
		a.log.Error("board create failed", zap.Error(err))
		return nil, err
	}
	a.store.UpsertBoard(*board)

	a.currentBoardID = board.ID
	if err := a.store.Load(ctx, board.ID); err != nil {
		a.log.Error("board load failed", zap.Int("board_id", board.ID), zap.Error(err))
	}
	return board, nil
}

// UpdateBoard renames or recolors a board. Structural.
func (a *App) UpdateBoard(ctx context.Context, boardID int, name, color string) (*model.Board, error) {
	if !a.structural("updateBoard") {
		return nil, nil
	}
	if strings.TrimSpace(name) == "" {
		return nil, errEmptyName
	}

	board, err := a.client.UpdateBoard(ctx, boardID, api.BoardPatch{Name: &name, Color: &color})
	if err != nil {
		a.log.Error("board update failed", zap.Int("board_id", boardID), zap.Error(err))
		return nil, err
	}
	a.store.UpsertBoard(*board)
	return board, nil
}
