package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonatankoch/kanbanboard/internal/api"
	"github.com/jonatankoch/kanbanboard/internal/history"
	"github.com/jonatankoch/kanbanboard/internal/model"
)

// CardInput is the editable card field set as the card form collects it.
type CardInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Color       string
	AssigneeID  *int
	Link        string
}

// ParseDueDate interprets a date-only value as midnight UTC, the form the
// card editor submits.
func ParseDueDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, value, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q: %w", value, err)
	}
	return &t, nil
}

// FormatDueDate renders a due date the way the card editor displays it:
// date-only, regardless of any time-of-day the authority attached.
func FormatDueDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

// CreateCard adds a card to a column. Requires edit rights; not gated by
// build mode. The color defaults to the neutral priority and the assignee
// to the current user when unset.
func (a *App) CreateCard(ctx context.Context, columnID int, input CardInput) (*model.Card, error) {
	if !a.mutable("createCard") {
		return nil, nil
	}
	if !a.session.Capabilities().CanEdit {
		a.deny("createCard", "requires edit rights")
		return nil, nil
	}
	if isBlank(input.Title) {
		return nil, errEmptyTitle
	}
	if _, ok := a.store.Column(columnID); !ok {
		return nil, errUnknownColumn
	}

	color := input.Color
	if color == "" {
		color = model.PriorityNone
	}
	assignee := input.AssigneeID
	if assignee == nil {
		if current := a.session.Current(); current != nil {
			id := current.ID
			assignee = &id
		}
	}

	card, err := a.client.CreateCard(ctx, api.CreateCardRequest{
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		ColumnID:    columnID,
		Color:       color,
		AssigneeID:  assignee,
		Link:        input.Link,
	})
	if err != nil {
		a.log.Error("card create failed", zap.Error(err))
		return nil, err
	}
	a.store.UpsertCard(*card)
	return card, nil
}

// UpdateCard saves the full editable field set of an existing card. The
// owning column stays whatever it was; moves go through MoveCard.
func (a *App) UpdateCard(ctx context.Context, cardID int, input CardInput) (*model.Card, error) {
	if !a.mutable("updateCard") {
		return nil, nil
	}
	if !a.session.Capabilities().CanEdit {
		a.deny("updateCard", "requires edit rights")
		return nil, nil
	}
	existing, ok := a.store.Card(cardID)
	if !ok {
		return nil, errUnknownCard
	}
	if isBlank(input.Title) {
		return nil, errEmptyTitle
	}

	card, err := a.client.UpdateCard(ctx, cardID, api.UpdateCardRequest{
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		ColumnID:    existing.ColumnID,
		Color:       input.Color,
		AssigneeID:  input.AssigneeID,
		Link:        input.Link,
	})
	if err != nil {
		a.log.Error("card update failed", zap.Int("card_id", cardID), zap.Error(err))
		return nil, err
	}
	a.store.UpsertCard(*card)
	return card, nil
}

// MoveCard drags a card onto another column: the cache is updated
// optimistically, then a single persist call reassigns column_id. Dropping
// a card onto its current column is a no-op. A failed persist keeps the
// optimistic state; it is only logged.
func (a *App) MoveCard(ctx context.Context, cardID, targetColumnID int) {
	if !a.mutable("moveCard") {
		return
	}
	caps := a.session.Capabilities()
	if !caps.CanEdit || a.session.BuildMode() {
		a.deny("moveCard", "requires edit rights outside build mode")
		return
	}
	card, ok := a.store.Card(cardID)
	if !ok {
		a.deny("moveCard", "unknown card")
		return
	}
	if _, ok := a.store.Column(targetColumnID); !ok {
		a.deny("moveCard", "unknown target column")
		return
	}
	if card.ColumnID == targetColumnID {
		return
	}

	p := a.begin("moveCard", cardID)
	card.ColumnID = targetColumnID
	a.store.UpsertCard(card)

	updated, err := a.client.MoveCard(ctx, cardID, targetColumnID)
	if err != nil {
		a.fail(p, err)
		return
	}
	a.store.UpsertCard(*updated)
	a.commit(p)
}

// DeleteCard removes a card. The caller is responsible for confirming the
// destructive action before calling; once issued, a failure is only
// logged.
func (a *App) DeleteCard(ctx context.Context, cardID int) error {
	if !a.mutable("deleteCard") {
		return nil
	}
	if !a.session.Capabilities().CanDelete {
		a.deny("deleteCard", "requires delete rights")
		return nil
	}

	if err := a.client.DeleteCard(ctx, cardID); err != nil {
		a.log.Error("card delete failed", zap.Int("card_id", cardID), zap.Error(err))
		return err
	}
	a.store.RemoveCard(cardID)
	return nil
}

// CardHistory fetches and renders the change log shown when a card is
// opened for editing. The log is only reachable through the editor, so it
// takes the same edit rights. A failed fetch renders as an empty log.
func (a *App) CardHistory(ctx context.Context, cardID int) []history.Line {
	if !a.session.Capabilities().CanEdit {
		a.deny("cardHistory", "requires edit rights")
		return nil
	}
	entries, err := a.client.CardHistory(ctx, cardID)
	if err != nil {
		a.log.Error("history fetch failed", zap.Int("card_id", cardID), zap.Error(err))
		return nil
	}
	return history.Render(entries, a.store.UsersByID(), a.store.ColumnsByID())
}
