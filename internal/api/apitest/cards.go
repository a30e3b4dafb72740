package apitest

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonatankoch/kanbanboard/internal/model"
)

func (a *Authority) listCards(c *gin.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]model.Card, 0, len(a.cards))
	for _, card := range a.cards {
		out = append(out, *card)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	c.JSON(http.StatusOK, out)
}

func (a *Authority) createCard(c *gin.Context) {
	var req struct {
		Title       string     `json:"title" binding:"required"`
		Description string     `json:"description"`
		DueDate     *time.Time `json:"due_date"`
		ColumnID    int        `json:"column_id" binding:"required"`
		Color       string     `json:"color"`
		AssigneeID  *int       `json:"assignee_id"`
		Link        string     `json:"link"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.columns[req.ColumnID]; !ok {
		detail(c, http.StatusNotFound, "Column not found")
		return
	}
	card := model.Card{
		ID:          a.id(),
		ColumnID:    req.ColumnID,
		Title:       req.Title,
		Description: req.Description,
		Link:        req.Link,
		DueDate:     req.DueDate,
		Color:       req.Color,
		AssigneeID:  req.AssigneeID,
		CreatedAt:   a.now(),
	}
	a.cards[card.ID] = &card
	a.appendHistory(card.ID, identity(c), model.ActionCreate, "", nil, strPtr(card.Title))
	c.JSON(http.StatusOK, card)
}

func (a *Authority) updateCard(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		detail(c, http.StatusBadRequest, "invalid card id")
		return
	}

	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		detail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	card, ok := a.cards[id]
	if !ok {
		detail(c, http.StatusNotFound, "Card not found")
		return
	}

	before := snapshot(*card)

	if v, ok := patch["title"]; ok {
		card.Title, _ = v.(string)
	}
	if v, ok := patch["description"]; ok {
		card.Description, _ = v.(string)
	}
	if v, ok := patch["link"]; ok {
		card.Link, _ = v.(string)
	}
	if v, ok := patch["color"]; ok {
		card.Color, _ = v.(string)
	}
	if v, ok := patch["column_id"]; ok {
		n, isNum := v.(float64)
		if !isNum {
			detail(c, http.StatusBadRequest, "invalid column_id")
			return
		}
		if _, ok := a.columns[int(n)]; !ok {
			detail(c, http.StatusNotFound, "Column not found")
			return
		}
		card.ColumnID = int(n)
	}
	if v, ok := patch["assignee_id"]; ok {
		if v == nil {
			card.AssigneeID = nil
		} else if n, isNum := v.(float64); isNum {
			uid := int(n)
			card.AssigneeID = &uid
		}
	}
	if v, ok := patch["due_date"]; ok {
		if v == nil {
			card.DueDate = nil
		} else if s, isStr := v.(string); isStr {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				detail(c, http.StatusBadRequest, "invalid due_date")
				return
			}
			card.DueDate = &t
		}
	}

	after := snapshot(*card)
	for _, field := range historyFields {
		if !strEq(before[field], after[field]) {
			a.appendHistory(id, identity(c), model.ActionUpdate, field, before[field], after[field])
		}
	}
	c.JSON(http.StatusOK, card)
}

func (a *Authority) deleteCard(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		detail(c, http.StatusBadRequest, "invalid card id")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	card, ok := a.cards[id]
	if !ok {
		detail(c, http.StatusNotFound, "Card not found")
		return
	}
	a.appendHistory(id, identity(c), model.ActionDelete, "", strPtr(card.Title), nil)
	delete(a.cards, id)
	c.Status(http.StatusNoContent)
}

func (a *Authority) cardHistory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		detail(c, http.StatusBadRequest, "invalid card id")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	entries := a.history[id]
	out := make([]model.HistoryEntry, len(entries))
	copy(out, entries)
	c.JSON(http.StatusOK, out)
}

// historyFields is the set of card fields the authority diffs on update,
// in the order entries are written.
var historyFields = []string{"title", "description", "due_date", "column_id", "color", "assignee_id", "link"}

// snapshot renders a card's tracked fields as the stringified values that
// go into history rows. Empty optional values are stored as null.
func snapshot(card model.Card) map[string]*string {
	s := map[string]*string{
		"title":       strPtr(card.Title),
		"description": optStr(card.Description),
		"column_id":   strPtr(strconv.Itoa(card.ColumnID)),
		"color":       optStr(card.Color),
		"link":        optStr(card.Link),
	}
	if card.DueDate != nil {
		s["due_date"] = strPtr(card.DueDate.Format(time.RFC3339))
	}
	if card.AssigneeID != nil {
		s["assignee_id"] = strPtr(strconv.Itoa(*card.AssigneeID))
	}
	return s
}

// appendHistory records one entry. Callers hold the lock.
func (a *Authority) appendHistory(cardID int, userID *int, action, field string, oldValue, newValue *string) {
	a.histID++
	a.history[cardID] = append(a.history[cardID], model.HistoryEntry{
		ID:        a.histID,
		CardID:    cardID,
		UserID:    userID,
		Action:    action,
		Field:     field,
		OldValue:  oldValue,
		NewValue:  newValue,
		CreatedAt: a.now(),
	})
}

func strPtr(s string) *string { return &s }

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strEq(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
