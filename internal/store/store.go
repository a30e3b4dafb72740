// Package store caches the four entity kinds for the currently loaded board
// context. The remote authority stays the source of truth; the cache only
// ever holds what the last load or reconciled mutation put there.
package store

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/jonatankoch/kanbanboard/internal/api"
	"github.com/jonatankoch/kanbanboard/internal/model"
)

// Store is exclusively owned by the single active session. Not safe for
// concurrent use.
type Store struct {
	client *api.Client
	log    *zap.Logger

	loading bool

	boards  map[int]model.Board
	columns map[int]model.Column
	cards   map[int]model.Card
	users   map[int]model.User
}

func New(client *api.Client, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		client:  client,
		log:     logger,
		loading: true,
		boards:  make(map[int]model.Board),
		columns: make(map[int]model.Column),
		cards:   make(map[int]model.Card),
		users:   make(map[int]model.User),
	}
}

// Loading reports whether the initial snapshot is still outstanding. No
// mutation is permitted while it is.
func (s *Store) Loading() bool { return s.loading }

// Bootstrap fetches the directory data (users and boards) that is needed
// before any board can be opened. It clears the loading state even when no
// board exists yet, so an empty system can accept its first board.
func (s *Store) Bootstrap(ctx context.Context) error {
	users, err := s.client.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	boards, err := s.client.ListBoards(ctx)
	if err != nil {
		return fmt.Errorf("load boards: %w", err)
	}

	s.users = make(map[int]model.User, len(users))
	for _, u := range users {
		s.users[u.ID] = u
	}
	s.boards = make(map[int]model.Board, len(boards))
	for _, b := range boards {
		s.boards[b.ID] = b
	}

	s.loading = false
	return nil
}

// Load replaces the column and card caches with the authoritative snapshot
// for one board. Cards are fetched globally and filtered by column
// membership at read time. On failure the previous caches stay as they
// were and the error is returned.
func (s *Store) Load(ctx context.Context, boardID int) error {
	s.loading = true

	columns, err := s.client.ListColumns(ctx, boardID)
	if err != nil {
		s.loading = false
		return fmt.Errorf("load columns: %w", err)
	}
	cards, err := s.client.ListCards(ctx)
	if err != nil {
		s.loading = false
		return fmt.Errorf("load cards: %w", err)
	}

	s.columns = make(map[int]model.Column, len(columns))
	for _, c := range columns {
		s.columns[c.ID] = c
	}
	s.cards = make(map[int]model.Card, len(cards))
	for _, c := range cards {
		s.cards[c.ID] = c
	}

	s.loading = false
	return nil
}

func (s *Store) UpsertBoard(b model.Board)   { s.boards[b.ID] = b }
func (s *Store) UpsertColumn(c model.Column) { s.columns[c.ID] = c }
func (s *Store) UpsertCard(c model.Card)     { s.cards[c.ID] = c }
func (s *Store) UpsertUser(u model.User)     { s.users[u.ID] = u }

func (s *Store) RemoveCard(id int) {
	delete(s.cards, id)
}

// RemoveColumn drops the column and cascades to every card that referenced
// it, keeping the membership invariant intact.
func (s *Store) RemoveColumn(id int) {
	delete(s.columns, id)
	for cardID, card := range s.cards {
		if card.ColumnID == id {
			delete(s.cards, cardID)
		}
	}
}

func (s *Store) Board(id int) (model.Board, bool) {
	b, ok := s.boards[id]
	return b, ok
}

func (s *Store) Column(id int) (model.Column, bool) {
	c, ok := s.columns[id]
	return c, ok
}

func (s *Store) Card(id int) (model.Card, bool) {
	c, ok := s.cards[id]
	return c, ok
}

func (s *Store) User(id int) (model.User, bool) {
	u, ok := s.users[id]
	return u, ok
}

// Boards returns all boards in creation order.
func (s *Store) Boards() []model.Board {
	boards := make([]model.Board, 0, len(s.boards))
	for _, b := range s.boards {
		boards = append(boards, b)
	}
	sort.Slice(boards, func(i, j int) bool {
		if !boards[i].CreatedAt.Equal(boards[j].CreatedAt) {
			return boards[i].CreatedAt.Before(boards[j].CreatedAt)
		}
		return boards[i].ID < boards[j].ID
	})
	return boards
}

// Columns returns the board's columns in ascending position order. A
// missing position sorts as 0.
func (s *Store) Columns(boardID int) []model.Column {
	columns := make([]model.Column, 0, len(s.columns))
	for _, c := range s.columns {
		if c.BoardID == boardID {
			columns = append(columns, c)
		}
	}
	sort.Slice(columns, func(i, j int) bool {
		if columns[i].Position != columns[j].Position {
			return columns[i].Position < columns[j].Position
		}
		return columns[i].ID < columns[j].ID
	})
	return columns
}

// CardsInColumn returns the cards belonging to one cached column, oldest
// first. Cards whose column is not in the cache are never returned.
func (s *Store) CardsInColumn(columnID int) []model.Card {
	if _, ok := s.columns[columnID]; !ok {
		return nil
	}
	cards := make([]model.Card, 0)
	for _, c := range s.cards {
		if c.ColumnID == columnID {
			cards = append(cards, c)
		}
	}
	sort.Slice(cards, func(i, j int) bool {
		if !cards[i].CreatedAt.Equal(cards[j].CreatedAt) {
			return cards[i].CreatedAt.Before(cards[j].CreatedAt)
		}
		return cards[i].ID < cards[j].ID
	})
	return cards
}

// Users returns all known users sorted by name.
func (s *Store) Users() []model.User {
	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Name != users[j].Name {
			return users[i].Name < users[j].Name
		}
		return users[i].ID < users[j].ID
	})
	return users
}

// UsersByID returns the user map keyed by identifier, as the history
// renderer consumes it.
func (s *Store) UsersByID() map[int]model.User {
	out := make(map[int]model.User, len(s.users))
	for id, u := range s.users {
		out[id] = u
	}
	return out
}

// ColumnsByID returns the column map keyed by identifier.
func (s *Store) ColumnsByID() map[int]model.Column {
	out := make(map[int]model.Column, len(s.columns))
	for id, c := range s.columns {
		out[id] = c
	}
	return out
}
