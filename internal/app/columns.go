package app

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jonatankoch/kanbanboard/internal/api"
	"github.com/jonatankoch/kanbanboard/internal/model"
	"github.com/jonatankoch/kanbanboard/internal/ordering"
)

// CreateColumn appends a column at the end of the current board.
// Structural: admin with edit rights in build mode.
func (a *App) CreateColumn(ctx context.Context, title, color string) (*model.Column, error) {
	if !a.structural("createColumn") {
		return nil, nil
	}
	if a.currentBoardID == 0 {
		return nil, errNoBoardSelected
	}
	if strings.TrimSpace(title) == "" {
		return nil, errEmptyTitle
	}

	column, err := a.client.CreateColumn(ctx, api.CreateColumnRequest{
		Title:    title,
		BoardID:  a.currentBoardID,
		Position: len(a.store.Columns(a.currentBoardID)) + 1,
		Color:    color,
	})
	if err != nil {
		a.log.Error("column create failed", zap.Error(err))
		return nil, err
	}
	a.store.UpsertColumn(*column)
	return column, nil
}

// UpdateColumn retitles or recolors a column. Structural.
func (a *App) UpdateColumn(ctx context.Context, columnID int, title, color string) (*model.Column, error) {
	if !a.structural("updateColumn") {
		return nil, nil
	}
	if strings.TrimSpace(title) == "" {
		return nil, errEmptyTitle
	}

	column, err := a.client.UpdateColumn(ctx, columnID, api.ColumnPatch{Title: &title, Color: &color})
	if err != nil {
		a.log.Error("column update failed", zap.Int("column_id", columnID), zap.Error(err))
		return nil, err
	}
	a.store.UpsertColumn(*column)
	return column, nil
}

// DeleteColumn removes a column and, locally, every card it held. The
// caller is responsible for confirming the destructive action first.
// Structural, and additionally requires delete rights.
func (a *App) DeleteColumn(ctx context.Context, columnID int) error {
	if !a.structural("deleteColumn") {
		return nil
	}
	if !a.session.Capabilities().CanDelete {
		a.deny("deleteColumn", "requires delete rights")
		return nil
	}

	if err := a.client.DeleteColumn(ctx, columnID); err != nil {
		a.log.Error("column delete failed", zap.Int("column_id", columnID), zap.Error(err))
		return err
	}
	a.store.RemoveColumn(columnID)
	return nil
}

// ReorderColumn drops the dragged column onto the target column. The new
// sequence is applied to the cache immediately, then every column's
// position is persisted one call at a time in ascending order. A failed
// persist is logged and does not roll back the cache or stop the
// remaining calls; the cache may run ahead of the authority until the
// next reload.
func (a *App) ReorderColumn(ctx context.Context, draggedID, targetID int) {
	if !a.structural("reorderColumn") {
		return
	}

	reordered, ok := ordering.Reorder(a.store.Columns(a.currentBoardID), draggedID, targetID)
	if !ok {
		return
	}

	p := a.begin("reorderColumn", draggedID)
	for _, column := range reordered {
		a.store.UpsertColumn(column)
	}

	failed := false
	for _, column := range reordered {
		pos := column.Position
		updated, err := a.client.UpdateColumn(ctx, column.ID, api.ColumnPatch{Position: &pos})
		if err != nil {
			failed = true
			a.fail(p, err)
			continue
		}
		a.store.UpsertColumn(*updated)
	}
	if !failed {
		a.commit(p)
	}
}
