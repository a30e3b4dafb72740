package app_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonatankoch/kanbanboard/internal/api"
	"github.com/jonatankoch/kanbanboard/internal/api/apitest"
	"github.com/jonatankoch/kanbanboard/internal/app"
	"github.com/jonatankoch/kanbanboard/internal/model"
	"github.com/jonatankoch/kanbanboard/internal/session"
	"github.com/jonatankoch/kanbanboard/internal/store"
)

type fixture struct {
	authority *apitest.Authority
	client    *api.Client
	app       *app.App
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	authority := apitest.New()
	t.Cleanup(authority.Close)

	client := api.New(authority.URL(), 5*time.Second, nil)
	storage, err := session.NewFileStorage(filepath.Join(t.TempDir(), "currentUser.json"))
	require.NoError(t, err)
	sess, err := session.New(storage, nil)
	require.NoError(t, err)

	return &fixture{
		authority: authority,
		client:    client,
		app:       app.New(client, store.New(client, nil), sess, nil),
	}
}

// seedBoard gives the authority one board with two columns and refreshes
// the app onto it.
func (f *fixture) seedBoard(t *testing.T) (model.Board, model.Column, model.Column) {
	t.Helper()
	board := f.authority.SeedBoard("Sprint", "")
	todo := f.authority.SeedColumn(board.ID, "Todo", 1)
	done := f.authority.SeedColumn(board.ID, "Done", 2)
	require.NoError(t, f.app.Init(context.Background()))
	return board, todo, done
}

func (f *fixture) loginAdmin(t *testing.T) *model.User {
	t.Helper()
	f.authority.SeedUser(model.User{
		Name: "admin", IsAdmin: true, IsActive: true,
		CanView: true, CanEdit: true, CanDelete: true,
	}, "secret")
	user, err := f.app.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	return user
}

func (f *fixture) loginEditor(t *testing.T) *model.User {
	t.Helper()
	f.authority.SeedUser(model.User{
		Name: "editor", IsActive: true, CanView: true, CanEdit: true,
	}, "secret")
	user, err := f.app.Login(context.Background(), "editor", "secret")
	require.NoError(t, err)
	return user
}

func TestInit_OpensFirstBoard(t *testing.T) {
	f := newFixture(t)
	board, todo, _ := f.seedBoard(t)

	current, ok := f.app.CurrentBoard()
	require.True(t, ok)
	assert.Equal(t, board.ID, current.ID)
	assert.Len(t, f.app.Store().Columns(board.ID), 2)
	assert.False(t, f.app.Store().Loading())
	_, ok = f.app.Store().Column(todo.ID)
	assert.True(t, ok)
}

func TestInit_NoBoards(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.app.Init(context.Background()))

	_, ok := f.app.CurrentBoard()
	assert.False(t, ok)
}

func TestSelectBoard_SwitchesContext(t *testing.T) {
	f := newFixture(t)
	_, todo, _ := f.seedBoard(t)
	other := f.authority.SeedBoard("Other", "")
	otherCol := f.authority.SeedColumn(other.ID, "Elsewhere", 1)
	// Pick up the new board in the directory cache.
	require.NoError(t, f.app.Init(context.Background()))

	require.NoError(t, f.app.SelectBoard(context.Background(), other.ID))

	_, ok := f.app.Store().Column(todo.ID)
	assert.False(t, ok)
	_, ok = f.app.Store().Column(otherCol.ID)
	assert.True(t, ok)

	assert.Error(t, f.app.SelectBoard(context.Background(), 999))
}

func TestCreateCard_AnonymousIsSilentNoop(t *testing.T) {
	f := newFixture(t)
	_, todo, _ := f.seedBoard(t)

	before := f.authority.Requests()
	card, err := f.app.CreateCard(context.Background(), todo.ID, app.CardInput{Title: "Ship it"})

	assert.NoError(t, err)
	assert.Nil(t, card)
	assert.Equal(t, before, f.authority.Requests())
	assert.Empty(t, f.app.Store().CardsInColumn(todo.ID))
}

func TestCreateCard_DefaultsColorAndAssignee(t *testing.T) {
	f := newFixture(t)
	_, todo, _ := f.seedBoard(t)
	editor := f.loginEditor(t)

	card, err := f.app.CreateCard(context.Background(), todo.ID, app.CardInput{Title: "Ship it"})
	require.NoError(t, err)
	require.NotNil(t, card)

	assert.Equal(t, model.PriorityNone, card.Color)
	require.NotNil(t, card.AssigneeID)
	assert.Equal(t, editor.ID, *card.AssigneeID)
	assert.Len(t, f.app.Store().CardsInColumn(todo.ID), 1)
}

func TestCreateCard_Validation(t *testing.T) {
	f := newFixture(t)
	_, todo, _ := f.seedBoard(t)
	f.loginEditor(t)

	_, err := f.app.CreateCard(context.Background(), todo.ID, app.CardInput{Title: "   "})
	assert.ErrorAs(t, err, new(app.ValidationError))

	_, err = f.app.CreateCard(context.Background(), 999, app.CardInput{Title: "Ship it"})
	assert.ErrorAs(t, err, new(app.ValidationError))
}

func TestUpdateCard_KeepsColumn(t *testing.T) {
	f := newFixture(t)
	_, todo, _ := f.seedBoard(t)
	f.loginEditor(t)

	card, err := f.app.CreateCard(context.Background(), todo.ID, app.CardInput{Title: "Draft"})
	require.NoError(t, err)

	due, err := app.ParseDueDate("2024-05-01")
	require.NoError(t, err)
	updated, err := f.app.UpdateCard(context.Background(), card.ID, app.CardInput{
		Title:   "Ship it",
		DueDate: due,
		Color:   model.PriorityHigh,
	})
	require.NoError(t, err)

	assert.Equal(t, todo.ID, updated.ColumnID)
	assert.Equal(t, "Ship it", updated.Title)
	assert.Equal(t, "2024-05-01", app.FormatDueDate(updated.DueDate))
}

func TestDueDate_RoundTrip(t *testing.T) {
	due, err := app.ParseDueDate("2024-05-01")
	require.NoError(t, err)
	require.NotNil(t, due)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *due)
	assert.Equal(t, "2024-05-01", app.FormatDueDate(due))

	// Whatever time of day the authority attaches, the display stays
	// date-only.
	attached := time.Date(2024, 5, 1, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "2024-05-01", app.FormatDueDate(&attached))

	assert.Empty(t, app.FormatDueDate(nil))
	none, err := app.ParseDueDate("")
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = app.ParseDueDate("05/01/2024")
	assert.Error(t, err)
}

func TestMoveCard_PersistsAndReconciles(t *testing.T) {
	f := newFixture(t)
	_, todo, done := f.seedBoard(t)
	f.loginEditor(t)

	card, err := f.app.CreateCard(context.Background(), todo.ID, app.CardInput{Title: "Ship it"})
	require.NoError(t, err)

	f.app.MoveCard(context.Background(), card.ID, done.ID)

	cached, ok := f.app.Store().Card(card.ID)
	require.True(t, ok)
	assert.Equal(t, done.ID, cached.ColumnID)
	remote, ok := f.authority.Card(card.ID)
	require.True(t, ok)
	assert.Equal(t, done.ID, remote.ColumnID)
}

func TestMoveCard_SameColumnNoop(t *testing.T) {
	f := newFixture(t)
	_, todo, _ := f.seedBoard(t)
	f.loginEditor(t)

	card, err := f.app.CreateCard(context.Background(), todo.ID, app.CardInput{Title: "Ship it"})
	require.NoError(t, err)

	before := f.authority.Requests()
	f.app.MoveCard(context.Background(), card.ID, todo.ID)
	assert.Equal(t, before, f.authority.Requests())
}

func TestMoveCard_BlockedInBuildMode(t *testing.T) {
	f := newFixture(t)
	_, todo, done := f.seedBoard(t)
	f.loginAdmin(t)

	card, err := f.app.CreateCard(context.Background(), todo.ID, app.CardInput{Title: "Ship it"})
	require.NoError(t, err)

	f.app.Session().SetBuildMode(true)
	before := f.authority.Requests()
	f.app.MoveCard(context.Background(), card.ID, done.ID)

	assert.Equal(t, before, f.authority.Requests())
	cached, _ := f.app.Store().Card(card.ID)
	assert.Equal(t, todo.ID, cached.ColumnID)
}

func TestMoveCard_FailureKeepsOptimisticState(t *testing.T) {
	f := newFixture(t)
	_, todo, done := f.seedBoard(t)
	f.loginEditor(t)

	card, err := f.app.CreateCard(context.Background(), todo.ID, app.CardInput{Title: "Ship it"})
	require.NoError(t, err)

	f.authority.Close()
	f.app.MoveCard(context.Background(), card.ID, done.ID)

	cached, ok := f.app.Store().Card(card.ID)
	require.True(t, ok)
	assert.Equal(t, done.ID, cached.ColumnID)
}

func TestDeleteCard_RequiresDeleteRights(t *testing.T) {
	f := newFixture(t)
	_, todo, _ := f.seedBoard(t)
	f.loginEditor(t)

	card, err := f.app.CreateCard(context.Background(), todo.ID, app.CardInput{Title: "Ship it"})
	require.NoError(t, err)

	before := f.authority.Requests()
	require.NoError(t, f.app.DeleteCard(context.Background(), card.ID))
	assert.Equal(t, before, f.authority.Requests())
	_, ok := f.app.Store().Card(card.ID)
	assert.True(t, ok)
}

func TestDeleteCard_Admin(t *testing.T) {
	f := newFixture(t)
	_, todo, _ := f.seedBoard(t)
	f.loginAdmin(t)

	card, err := f.app.CreateCard(context.Background(), todo.ID, app.CardInput{Title: "Ship it"})
	require.NoError(t, err)

	require.NoError(t, f.app.DeleteCard(context.Background(), card.ID))
	_, ok := f.app.Store().Card(card.ID)
	assert.False(t, ok)
}

func TestCreateColumn_RequiresBuildMode(t *testing.T) {
	f := newFixture(t)
	board, _, _ := f.seedBoard(t)
	f.loginAdmin(t)

	before := f.authority.Requests()
	column, err := f.app.CreateColumn(context.Background(), "Blocked", "")
	assert.NoError(t, err)
	assert.Nil(t, column)
	assert.Equal(t, before, f.authority.Requests())

	f.app.Session().SetBuildMode(true)
	column, err = f.app.CreateColumn(context.Background(), "Review", "")
	require.NoError(t, err)
	require.NotNil(t, column)
	assert.Equal(t, 3, column.Position)
	assert.Len(t, f.app.Store().Columns(board.ID), 3)
}

func TestCreateBoard_SwitchesToIt(t *testing.T) {
	f := newFixture(t)
	f.seedBoard(t)
	f.loginAdmin(t)
	f.app.Session().SetBuildMode(true)

	board, err := f.app.CreateBoard(context.Background(), "Fresh", "#eab308")
	require.NoError(t, err)
	require.NotNil(t, board)

	current, ok := f.app.CurrentBoard()
	require.True(t, ok)
	assert.Equal(t, board.ID, current.ID)
	assert.Empty(t, f.app.Store().Columns(board.ID))
}

func TestCreateBoard_OnEmptySystem(t *testing.T) {
	// A fresh authority has no boards; the first admin must still be able
	// to create one.
	f := newFixture(t)
	f.loginAdmin(t)
	require.NoError(t, f.app.Init(context.Background()))
	f.app.Session().SetBuildMode(true)

	board, err := f.app.CreateBoard(context.Background(), "First board", "")
	require.NoError(t, err)
	require.NotNil(t, board)

	current, ok := f.app.CurrentBoard()
	require.True(t, ok)
	assert.Equal(t, board.ID, current.ID)
	assert.False(t, f.app.Store().Loading())
}

func TestUpdateBoard_StructuralGate(t *testing.T) {
	f := newFixture(t)
	board, _, _ := f.seedBoard(t)
	f.loginAdmin(t)

	before := f.authority.Requests()
	updated, err := f.app.UpdateBoard(context.Background(), board.ID, "Renamed", "")
	assert.NoError(t, err)
	assert.Nil(t, updated)
	assert.Equal(t, before, f.authority.Requests())

	f.app.Session().SetBuildMode(true)
	updated, err = f.app.UpdateBoard(context.Background(), board.ID, "Renamed", "#eab308")
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "#eab308", updated.Color)
	cached, _ := f.app.Store().Board(board.ID)
	assert.Equal(t, "Renamed", cached.Name)

	_, err = f.app.UpdateBoard(context.Background(), board.ID, "   ", "")
	assert.ErrorAs(t, err, new(app.ValidationError))
}

func TestUpdateColumn_StructuralGate(t *testing.T) {
	f := newFixture(t)
	_, todo, _ := f.seedBoard(t)
	f.loginAdmin(t)

	before := f.authority.Requests()
	updated, err := f.app.UpdateColumn(context.Background(), todo.ID, "Doing", "")
	assert.NoError(t, err)
	assert.Nil(t, updated)
	assert.Equal(t, before, f.authority.Requests())
	remote, _ := f.authority.Column(todo.ID)
	assert.Equal(t, "Todo", remote.Title)

	f.app.Session().SetBuildMode(true)
	updated, err = f.app.UpdateColumn(context.Background(), todo.ID, "Doing", "#eab308")
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Doing", updated.Title)
	cached, _ := f.app.Store().Column(todo.ID)
	assert.Equal(t, "Doing", cached.Title)

	_, err = f.app.UpdateColumn(context.Background(), todo.ID, "", "")
	assert.ErrorAs(t, err, new(app.ValidationError))
}

func TestReorderColumn_PersistsDensePositions(t *testing.T) {
	f := newFixture(t)
	board, todo, done := f.seedBoard(t)
	review := f.authority.SeedColumn(board.ID, "Review", 3)
	f.loginAdmin(t)
	f.app.Session().SetBuildMode(true)
	require.NoError(t, f.app.Reload(context.Background()))

	// Drag Review onto Todo: [Todo Done Review] -> [Review Todo Done].
	f.app.ReorderColumn(context.Background(), review.ID, todo.ID)

	columns := f.app.Store().Columns(board.ID)
	require.Len(t, columns, 3)
	assert.Equal(t, []int{review.ID, todo.ID, done.ID},
		[]int{columns[0].ID, columns[1].ID, columns[2].ID})
	for i, c := range columns {
		assert.Equal(t, i+1, c.Position)
	}

	// The authority saw every position write.
	for i, id := range []int{review.ID, todo.ID, done.ID} {
		remote, ok := f.authority.Column(id)
		require.True(t, ok)
		assert.Equal(t, i+1, remote.Position)
	}
}

func TestReorderColumn_DeniedWithoutBuildMode(t *testing.T) {
	f := newFixture(t)
	_, todo, done := f.seedBoard(t)
	f.loginAdmin(t)

	before := f.authority.Requests()
	f.app.ReorderColumn(context.Background(), done.ID, todo.ID)

	assert.Equal(t, before, f.authority.Requests())
	remote, _ := f.authority.Column(todo.ID)
	assert.Equal(t, 1, remote.Position)
}

func TestDeleteColumn_CascadesLocally(t *testing.T) {
	f := newFixture(t)
	_, todo, done := f.seedBoard(t)
	f.loginAdmin(t)

	card, err := f.app.CreateCard(context.Background(), todo.ID, app.CardInput{Title: "Doomed"})
	require.NoError(t, err)

	f.app.Session().SetBuildMode(true)
	require.NoError(t, f.app.DeleteColumn(context.Background(), todo.ID))

	_, ok := f.app.Store().Column(todo.ID)
	assert.False(t, ok)
	_, ok = f.app.Store().Card(card.ID)
	assert.False(t, ok)
	_, ok = f.app.Store().Column(done.ID)
	assert.True(t, ok)
}

func TestRegister_FirstUserSignsInAsAdmin(t *testing.T) {
	f := newFixture(t)
	f.seedBoard(t)

	user, err := f.app.Register(context.Background(), "alice", "", "secret")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
	assert.Equal(t, session.StateAuthenticated, f.app.Session().State())

	f.app.Logout()
	second, err := f.app.Register(context.Background(), "bob", "bob@example.com", "secret")
	require.NoError(t, err)
	assert.False(t, second.IsActive)
	assert.Equal(t, session.StateAnonymous, f.app.Session().State())
}

func TestForcedPasswordChange_BlocksEditingUntilResolved(t *testing.T) {
	f := newFixture(t)
	_, todo, _ := f.seedBoard(t)
	f.loginAdmin(t)

	victim := f.authority.SeedUser(model.User{
		Name: "bob", IsActive: true, CanView: true, CanEdit: true,
	}, "old")
	require.NoError(t, f.app.ResetPassword(context.Background(), victim.ID, "temporary"))

	f.app.Logout()
	_, err := f.app.Login(context.Background(), "bob", "temporary")
	require.NoError(t, err)
	assert.Equal(t, session.StatePasswordChangeRequired, f.app.Session().State())

	before := f.authority.Requests()
	card, err := f.app.CreateCard(context.Background(), todo.ID, app.CardInput{Title: "Ship it"})
	assert.NoError(t, err)
	assert.Nil(t, card)
	assert.Equal(t, before, f.authority.Requests())

	assert.ErrorAs(t,
		f.app.ChangePassword(context.Background(), "short", "short"),
		new(app.ValidationError))
	assert.ErrorAs(t,
		f.app.ChangePassword(context.Background(), "chosen-1", "chosen-2"),
		new(app.ValidationError))
	require.NoError(t, f.app.ChangePassword(context.Background(), "chosen", "chosen"))
	assert.Equal(t, session.StateAuthenticated, f.app.Session().State())

	card, err = f.app.CreateCard(context.Background(), todo.ID, app.CardInput{Title: "Ship it"})
	require.NoError(t, err)
	assert.NotNil(t, card)
}

func TestUpdateUser_SelfAdminToggleDenied(t *testing.T) {
	f := newFixture(t)
	f.seedBoard(t)
	admin := f.loginAdmin(t)

	off := false
	before := f.authority.Requests()
	require.NoError(t, f.app.UpdateUser(context.Background(), admin.ID, api.UserPatch{IsAdmin: &off}))

	assert.Equal(t, before, f.authority.Requests())
	current := f.app.Session().Current()
	require.NotNil(t, current)
	assert.True(t, current.IsAdmin)
}

func TestUpdateUser_AdminActivatesOther(t *testing.T) {
	f := newFixture(t)
	f.seedBoard(t)
	f.loginAdmin(t)
	bob := f.authority.SeedUser(model.User{Name: "bob"}, "secret")

	on := true
	require.NoError(t, f.app.UpdateUser(context.Background(), bob.ID, api.UserPatch{
		IsActive: &on, CanView: &on, CanEdit: &on,
	}))

	stored, ok := f.app.Store().User(bob.ID)
	require.True(t, ok)
	assert.True(t, stored.IsActive)
	assert.True(t, stored.CanEdit)
	assert.False(t, stored.IsAdmin)

	// Promoting someone else is allowed, only the self-toggle is not.
	require.NoError(t, f.app.UpdateUser(context.Background(), bob.ID, api.UserPatch{IsAdmin: &on}))
	stored, _ = f.app.Store().User(bob.ID)
	assert.True(t, stored.IsAdmin)
}

func TestUpdateUser_NonAdminCannotTouchCapabilities(t *testing.T) {
	f := newFixture(t)
	f.seedBoard(t)
	editor := f.loginEditor(t)

	on := true
	before := f.authority.Requests()
	require.NoError(t, f.app.UpdateUser(context.Background(), editor.ID, api.UserPatch{CanDelete: &on}))
	assert.Equal(t, before, f.authority.Requests())

	// Renaming themselves is still allowed.
	name := "editor-in-chief"
	require.NoError(t, f.app.UpdateUser(context.Background(), editor.ID, api.UserPatch{Name: &name}))
	assert.Equal(t, name, f.app.Session().Current().Name)
}

func TestLogin_FailureClearsIdentity(t *testing.T) {
	f := newFixture(t)
	f.seedBoard(t)
	f.loginEditor(t)

	_, err := f.app.Login(context.Background(), "editor", "wrong")
	assert.ErrorIs(t, err, api.ErrBadCredentials)
	assert.Equal(t, session.StateAnonymous, f.app.Session().State())
	assert.Nil(t, f.app.Session().Current())
}

func TestCardHistory_RequiresEditRights(t *testing.T) {
	f := newFixture(t)
	_, todo, _ := f.seedBoard(t)
	card := f.authority.SeedCard(todo.ID, "Ship it")

	before := f.authority.Requests()
	lines := f.app.CardHistory(context.Background(), card.ID)

	assert.Nil(t, lines)
	assert.Equal(t, before, f.authority.Requests())
}

func TestCardHistory_RendersLines(t *testing.T) {
	f := newFixture(t)
	_, todo, done := f.seedBoard(t)
	editor := f.loginEditor(t)
	require.NoError(t, f.app.Reload(context.Background()))

	card, err := f.app.CreateCard(context.Background(), todo.ID, app.CardInput{Title: "Ship it"})
	require.NoError(t, err)
	f.app.MoveCard(context.Background(), card.ID, done.ID)

	lines := f.app.CardHistory(context.Background(), card.ID)
	require.Len(t, lines, 2)
	assert.Equal(t, editor.Name+" created the card", lines[0].Message)
	assert.Equal(t, editor.Name+" moved the card from Todo to Done", lines[1].Message)
}
