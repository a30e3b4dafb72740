// Package app sequences every mutation of the board state: permission
// check, client-side validation, remote persist, then reconciling the local
// cache with the authoritative response.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonatankoch/kanbanboard/internal/api"
	"github.com/jonatankoch/kanbanboard/internal/model"
	"github.com/jonatankoch/kanbanboard/internal/session"
	"github.com/jonatankoch/kanbanboard/internal/store"
)

type App struct {
	client  *api.Client
	store   *store.Store
	session *session.Session
	log     *zap.Logger

	currentBoardID int
}

func New(client *api.Client, st *store.Store, sess *session.Session, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		client:  client,
		store:   st,
		session: sess,
		log:     logger,
	}
	if user := sess.Current(); user != nil {
		client.SetIdentity(user.ID)
	}
	return a
}

// Init fetches the directory data and opens the first board, matching the
// startup sequence of the board UI. A failed read leaves an empty view; it
// is logged and surfaced but nothing is retried.
func (a *App) Init(ctx context.Context) error {
	if err := a.store.Bootstrap(ctx); err != nil {
		a.log.Error("initial load failed", zap.Error(err))
		return err
	}

	boards := a.store.Boards()
	if len(boards) == 0 {
		return nil
	}
	a.currentBoardID = boards[0].ID
	if err := a.store.Load(ctx, a.currentBoardID); err != nil {
		a.log.Error("board load failed", zap.Int("board_id", a.currentBoardID), zap.Error(err))
		return err
	}
	return nil
}

func (a *App) Store() *store.Store       { return a.store }
func (a *App) Session() *session.Session { return a.session }

// CurrentBoard returns the board whose content is loaded, if any.
func (a *App) CurrentBoard() (model.Board, bool) {
	if a.currentBoardID == 0 {
		return model.Board{}, false
	}
	return a.store.Board(a.currentBoardID)
}

// SelectBoard switches the loaded board context. The local column and card
// caches are discarded and reloaded wholesale. Selecting the current board
// again is a no-op.
func (a *App) SelectBoard(ctx context.Context, boardID int) error {
	if boardID == a.currentBoardID {
		return nil
	}
	if _, ok := a.store.Board(boardID); !ok {
		return fmt.Errorf("unknown board %d", boardID)
	}
	a.currentBoardID = boardID
	if err := a.store.Load(ctx, boardID); err != nil {
		a.log.Error("board load failed", zap.Int("board_id", boardID), zap.Error(err))
		return err
	}
	return nil
}

// Reload refetches the current board, the recovery path after a detected
// divergence between cache and authority.
func (a *App) Reload(ctx context.Context) error {
	if a.currentBoardID == 0 {
		return nil
	}
	return a.store.Load(ctx, a.currentBoardID)
}

// deny logs a refused mutation. Denied permission checks are silent no-ops
// for the caller, not errors.
func (a *App) deny(op, reason string) {
	a.log.Debug("mutation denied", zap.String("op", op), zap.String("reason", reason))
}

// mutable reports whether plain (non-structural) edits are currently
// allowed: the initial load must have completed and a pending forced
// password change blocks editing until resolved.
func (a *App) mutable(op string) bool {
	if a.store.Loading() {
		a.deny(op, "initial load not complete")
		return false
	}
	if a.session.State() == session.StatePasswordChangeRequired {
		a.deny(op, "password change required")
		return false
	}
	return true
}

// structural reports whether board/column structure edits are allowed:
// admin with edit rights, in build mode.
func (a *App) structural(op string) bool {
	if !a.mutable(op) {
		return false
	}
	caps := a.session.Capabilities()
	if !caps.IsAdmin || !caps.CanEdit {
		a.deny(op, "requires admin with edit rights")
		return false
	}
	if !a.session.BuildMode() {
		a.deny(op, "requires build mode")
		return false
	}
	return true
}
