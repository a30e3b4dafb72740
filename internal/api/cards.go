package api

import (
	"context"
	"fmt"
	"time"

	"github.com/jonatankoch/kanbanboard/internal/model"
)

type CreateCardRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date"`
	ColumnID    int        `json:"column_id"`
	Color       string     `json:"color,omitempty"`
	AssigneeID  *int       `json:"assignee_id"`
	Link        string     `json:"link,omitempty"`
}

// UpdateCardRequest carries the full editable field set. The card editor
// always saves every field, so absent-vs-null never comes up here; moves go
// through the narrower moveCardRequest instead.
type UpdateCardRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	ColumnID    int        `json:"column_id"`
	Color       string     `json:"color"`
	AssigneeID  *int       `json:"assignee_id"`
	Link        string     `json:"link"`
}

type moveCardRequest struct {
	ColumnID int `json:"column_id"`
}

func (c *Client) ListCards(ctx context.Context) ([]model.Card, error) {
	var cards []model.Card
	if err := c.get(ctx, "/cards/", &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func (c *Client) CreateCard(ctx context.Context, req CreateCardRequest) (*model.Card, error) {
	var card model.Card
	if err := c.post(ctx, "/cards/", req, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

func (c *Client) UpdateCard(ctx context.Context, id int, req UpdateCardRequest) (*model.Card, error) {
	var card model.Card
	if err := c.patch(ctx, fmt.Sprintf("/cards/%d", id), req, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// MoveCard reassigns the card's column and nothing else.
func (c *Client) MoveCard(ctx context.Context, id, columnID int) (*model.Card, error) {
	var card model.Card
	if err := c.patch(ctx, fmt.Sprintf("/cards/%d", id), moveCardRequest{ColumnID: columnID}, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

func (c *Client) DeleteCard(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("/cards/%d", id))
}

// CardHistory returns the card's change log in authority order,
// oldest first.
func (c *Client) CardHistory(ctx context.Context, id int) ([]model.HistoryEntry, error) {
	var entries []model.HistoryEntry
	if err := c.get(ctx, fmt.Sprintf("/cards/%d/history", id), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
