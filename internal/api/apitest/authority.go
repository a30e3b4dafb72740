// Package apitest provides an in-memory stand-in for the remote kanban
// authority, for exercising the client against real HTTP round trips. It
// implements the full wire contract including the parts the client only
// observes: history diffing, login status codes and the first-user
// bootstrap rule.
package apitest

import (
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/jonatankoch/kanbanboard/internal/model"
)

type userRecord struct {
	model.User
	passwordHash []byte
}

// Authority is one in-memory authority instance backed by an httptest
// server.
type Authority struct {
	srv *httptest.Server

	mu       sync.Mutex
	nextID   int
	histID   int
	clock    time.Time
	users    map[int]*userRecord
	boards   map[int]*model.Board
	columns  map[int]*model.Column
	cards    map[int]*model.Card
	history  map[int][]model.HistoryEntry
	requests int
}

func New() *Authority {
	a := &Authority{
		clock:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		users:   make(map[int]*userRecord),
		boards:  make(map[int]*model.Board),
		columns: make(map[int]*model.Column),
		cards:   make(map[int]*model.Card),
		history: make(map[int][]model.HistoryEntry),
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		a.mu.Lock()
		a.requests++
		a.mu.Unlock()
		c.Next()
	})

	r.GET("/users/", a.listUsers)
	r.POST("/users/", a.createUser)
	r.POST("/login", a.login)
	r.PATCH("/users/:id", a.updateUser)
	r.POST("/users/:id/change_password", a.changePassword)
	r.POST("/users/:id/reset_password", a.resetPassword)

	r.GET("/boards/", a.listBoards)
	r.POST("/boards/", a.createBoard)
	r.PATCH("/boards/:id", a.updateBoard)
	r.GET("/boards/:id/columns", a.listColumns)

	r.POST("/columns/", a.createColumn)
	r.PATCH("/columns/:id", a.updateColumn)
	r.DELETE("/columns/:id", a.deleteColumn)

	r.GET("/cards/", a.listCards)
	r.POST("/cards/", a.createCard)
	r.PATCH("/cards/:id", a.updateCard)
	r.DELETE("/cards/:id", a.deleteCard)
	r.GET("/cards/:id/history", a.cardHistory)

	a.srv = httptest.NewServer(r)
	return a
}

func (a *Authority) URL() string { return a.srv.URL }

func (a *Authority) Close() { a.srv.Close() }

// Requests returns how many calls the authority has served, for asserting
// that a denied mutation issued no remote call.
func (a *Authority) Requests() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.requests
}

// id hands out the next entity identifier. Callers hold the lock.
func (a *Authority) id() int {
	a.nextID++
	return a.nextID
}

// now advances the fake clock one second per call so creation order is
// always strict.
func (a *Authority) now() time.Time {
	a.clock = a.clock.Add(time.Second)
	return a.clock
}

// identity reads the acting user id from the identity header, nil when the
// call is anonymous.
func identity(c *gin.Context) *int {
	raw := c.GetHeader("X-User-Id")
	if raw == "" {
		return nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &id
}

func detail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}

// SeedUser inserts a user directly, bypassing the first-user rule.
func (a *Authority) SeedUser(u model.User, password string) model.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u.ID = a.id()
	u.CreatedAt = a.now()
	a.users[u.ID] = &userRecord{User: u, passwordHash: hash}
	return u
}

// SeedBoard inserts a board directly.
func (a *Authority) SeedBoard(name, color string) model.Board {
	a.mu.Lock()
	defer a.mu.Unlock()
	b := model.Board{ID: a.id(), Name: name, Color: color, CreatedAt: a.now()}
	a.boards[b.ID] = &b
	return b
}

// SeedColumn inserts a column directly.
func (a *Authority) SeedColumn(boardID int, title string, position int) model.Column {
	a.mu.Lock()
	defer a.mu.Unlock()
	col := model.Column{ID: a.id(), BoardID: boardID, Title: title, Position: position, CreatedAt: a.now()}
	a.columns[col.ID] = &col
	return col
}

// SeedCard inserts a card directly, without a history entry.
func (a *Authority) SeedCard(columnID int, title string) model.Card {
	a.mu.Lock()
	defer a.mu.Unlock()
	card := model.Card{ID: a.id(), ColumnID: columnID, Title: title, Color: model.PriorityNone, CreatedAt: a.now()}
	a.cards[card.ID] = &card
	return card
}

// Board returns the authoritative copy of a board.
func (a *Authority) Board(id int) (model.Board, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.boards[id]
	if !ok {
		return model.Board{}, false
	}
	return *b, true
}

// Column returns the authoritative copy of a column.
func (a *Authority) Column(id int) (model.Column, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	col, ok := a.columns[id]
	if !ok {
		return model.Column{}, false
	}
	return *col, true
}

// Card returns the authoritative copy of a card.
func (a *Authority) Card(id int) (model.Card, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	card, ok := a.cards[id]
	if !ok {
		return model.Card{}, false
	}
	return *card, true
}
