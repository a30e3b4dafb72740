package apitest

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonatankoch/kanbanboard/internal/model"
)

func (a *Authority) listBoards(c *gin.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]model.Board, 0, len(a.boards))
	for _, b := range a.boards {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	c.JSON(http.StatusOK, out)
}

func (a *Authority) createBoard(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Color string `json:"color"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	b := model.Board{ID: a.id(), Name: req.Name, Color: req.Color, CreatedAt: a.now()}
	a.boards[b.ID] = &b
	c.JSON(http.StatusOK, b)
}

func (a *Authority) updateBoard(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		detail(c, http.StatusBadRequest, "invalid board id")
		return
	}

	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		detail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	b, ok := a.boards[id]
	if !ok {
		detail(c, http.StatusNotFound, "Board not found")
		return
	}
	if v, ok := patch["name"]; ok {
		b.Name, _ = v.(string)
	}
	if v, ok := patch["color"]; ok {
		b.Color, _ = v.(string)
	}
	c.JSON(http.StatusOK, b)
}

func (a *Authority) listColumns(c *gin.Context) {
	boardID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		detail(c, http.StatusBadRequest, "invalid board id")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]model.Column, 0)
	for _, col := range a.columns {
		if col.BoardID == boardID {
			out = append(out, *col)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	c.JSON(http.StatusOK, out)
}

func (a *Authority) createColumn(c *gin.Context) {
	var req struct {
		Title    string `json:"title" binding:"required"`
		BoardID  int    `json:"board_id" binding:"required"`
		Position int    `json:"position"`
		Color    string `json:"color"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.boards[req.BoardID]; !ok {
		detail(c, http.StatusNotFound, "Board not found")
		return
	}
	col := model.Column{
		ID:        a.id(),
		BoardID:   req.BoardID,
		Title:     req.Title,
		Color:     req.Color,
		Position:  req.Position,
		CreatedAt: a.now(),
	}
	a.columns[col.ID] = &col
	c.JSON(http.StatusOK, col)
}

func (a *Authority) updateColumn(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		detail(c, http.StatusBadRequest, "invalid column id")
		return
	}

	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		detail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	col, ok := a.columns[id]
	if !ok {
		detail(c, http.StatusNotFound, "Column not found")
		return
	}
	if v, ok := patch["title"]; ok {
		col.Title, _ = v.(string)
	}
	if v, ok := patch["color"]; ok {
		col.Color, _ = v.(string)
	}
	if v, ok := patch["position"]; ok {
		if n, ok := v.(float64); ok {
			col.Position = int(n)
		}
	}
	c.JSON(http.StatusOK, col)
}

func (a *Authority) deleteColumn(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		detail(c, http.StatusBadRequest, "invalid column id")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.columns[id]; !ok {
		detail(c, http.StatusNotFound, "Column not found")
		return
	}
	delete(a.columns, id)
	for cardID, card := range a.cards {
		if card.ColumnID == id {
			delete(a.cards, cardID)
			delete(a.history, cardID)
		}
	}
	c.Status(http.StatusNoContent)
}
