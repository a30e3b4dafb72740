package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/jonatankoch/kanbanboard/internal/api"
	"github.com/jonatankoch/kanbanboard/internal/app"
	"github.com/jonatankoch/kanbanboard/internal/config"
	"github.com/jonatankoch/kanbanboard/internal/model"
	"github.com/jonatankoch/kanbanboard/internal/session"
	"github.com/jonatankoch/kanbanboard/internal/store"
)

const usage = `usage: kanban <command> [flags]

commands:
  show                    print the current board
  boards                  list boards
  select    -board        switch the current board
  login     -name         sign in (password read from stdin)
  logout                  sign out
  register  -name -email  create an account
  passwd                  change your password
  card-add  -column -title [-desc] [-due YYYY-MM-DD] [-priority] [-link]
  card-edit -id [-title] [-desc] [-due] [-priority] [-link] [-assignee]
            flags left unset keep the card's current values
  card-move -id -to
  card-rm   -id
  history   -id           print a card's change log
  board-add  -name [-color]             (build mode)
  board-edit -id [-name] [-color]       (build mode)
  col-add    -title [-color]            (build mode)
  col-edit   -id [-title] [-color]      (build mode)
  col-move   -id -onto                  (build mode)
  col-rm     -id                        (build mode)
  users                   list accounts
  activate  -user         activate an account (admin)
  reset-pw  -user         set a temporary password (admin)
`

func main() {
	cfg := config.Load()

	logger := zap.NewNop()
	if cfg.Debug {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			fmt.Fprintln(os.Stderr, "logger:", err)
			os.Exit(1)
		}
	}
	defer logger.Sync()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	storage, err := session.NewFileStorage(cfg.SessionFile)
	if err != nil {
		fatal(err)
	}
	sess, err := session.New(storage, logger)
	if err != nil {
		fatal(err)
	}

	client := api.New(cfg.APIBaseURL, cfg.HTTPTimeout, logger)
	a := app.New(client, store.New(client, logger), sess, logger)

	ctx := context.Background()
	if err := run(ctx, a, os.Args[1], os.Args[2:]); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "kanban:", err)
	os.Exit(1)
}

func run(ctx context.Context, a *app.App, command string, args []string) error {
	// Structural commands implicitly unlock build mode; the session still
	// refuses it for non-admins.
	switch command {
	case "board-add", "board-edit", "col-add", "col-edit", "col-move", "col-rm":
		a.Session().SetBuildMode(true)
	}

	switch command {
	case "show":
		if err := a.Init(ctx); err != nil {
			return err
		}
		return show(a)

	case "boards":
		if err := a.Init(ctx); err != nil {
			return err
		}
		for _, b := range a.Store().Boards() {
			fmt.Printf("%4d  %s\n", b.ID, b.Name)
		}
		return nil

	case "select":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		boardID := fs.Int("board", 0, "board id")
		fs.Parse(args)
		if err := a.Init(ctx); err != nil {
			return err
		}
		if err := a.SelectBoard(ctx, *boardID); err != nil {
			return err
		}
		return show(a)

	case "login":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		name := fs.String("name", "", "user name")
		fs.Parse(args)
		password := prompt("password: ")
		user, err := a.Login(ctx, *name, password)
		if err != nil {
			return err
		}
		fmt.Printf("signed in as %s\n", user.Name)
		if user.MustChangePassword {
			fmt.Println("a password change is required before the board becomes editable; run: kanban passwd")
		}
		return nil

	case "logout":
		a.Logout()
		fmt.Println("signed out")
		return nil

	case "register":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		name := fs.String("name", "", "user name")
		email := fs.String("email", "", "email address")
		fs.Parse(args)
		password := prompt("password: ")
		user, err := a.Register(ctx, *name, *email, password)
		if err != nil {
			return err
		}
		if user.IsActive {
			fmt.Printf("account %s created and signed in\n", user.Name)
		} else {
			fmt.Printf("account %s created, waiting for admin activation\n", user.Name)
		}
		return nil

	case "passwd":
		newPassword := prompt("new password: ")
		confirmation := prompt("repeat new password: ")
		if err := a.ChangePassword(ctx, newPassword, confirmation); err != nil {
			return err
		}
		fmt.Println("password changed")
		return nil

	case "card-add":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		columnID := fs.Int("column", 0, "column id")
		cf := newCardFlags(fs)
		fs.Parse(args)
		if err := a.Init(ctx); err != nil {
			return err
		}
		input, err := cf.apply(fs, app.CardInput{})
		if err != nil {
			return err
		}
		card, err := a.CreateCard(ctx, *columnID, input)
		if err != nil {
			return err
		}
		if card != nil {
			fmt.Printf("card %d created\n", card.ID)
		}
		return nil

	case "card-edit":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		cardID := fs.Int("id", 0, "card id")
		cf := newCardFlags(fs)
		fs.Parse(args)
		if err := a.Init(ctx); err != nil {
			return err
		}
		existing, ok := a.Store().Card(*cardID)
		if !ok {
			return fmt.Errorf("unknown card %d", *cardID)
		}
		// The save sends the full field set, so unset flags must carry the
		// card's current values rather than zeroes.
		input, err := cf.apply(fs, app.CardInput{
			Title:       existing.Title,
			Description: existing.Description,
			DueDate:     existing.DueDate,
			Color:       existing.Color,
			AssigneeID:  existing.AssigneeID,
			Link:        existing.Link,
		})
		if err != nil {
			return err
		}
		card, err := a.UpdateCard(ctx, *cardID, input)
		if err != nil {
			return err
		}
		if card != nil {
			fmt.Printf("card %d saved\n", card.ID)
		}
		return nil

	case "card-move":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		cardID := fs.Int("id", 0, "card id")
		columnID := fs.Int("to", 0, "target column id")
		fs.Parse(args)
		if err := a.Init(ctx); err != nil {
			return err
		}
		a.MoveCard(ctx, *cardID, *columnID)
		return nil

	case "card-rm":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		cardID := fs.Int("id", 0, "card id")
		fs.Parse(args)
		if err := a.Init(ctx); err != nil {
			return err
		}
		if !confirm(fmt.Sprintf("delete card %d?", *cardID)) {
			return nil
		}
		return a.DeleteCard(ctx, *cardID)

	case "history":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		cardID := fs.Int("id", 0, "card id")
		fs.Parse(args)
		if err := a.Init(ctx); err != nil {
			return err
		}
		for _, line := range a.CardHistory(ctx, *cardID) {
			fmt.Printf("%s  %s\n", line.When, line.Message)
			if line.Detail != "" {
				fmt.Printf("%21s%s\n", "", line.Detail)
			}
		}
		return nil

	case "board-add":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		name := fs.String("name", "", "board name")
		color := fs.String("color", "", "board color")
		fs.Parse(args)
		if err := a.Init(ctx); err != nil {
			return err
		}
		board, err := a.CreateBoard(ctx, *name, *color)
		if err != nil {
			return err
		}
		if board != nil {
			fmt.Printf("board %d created\n", board.ID)
		}
		return nil

	case "board-edit":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		boardID := fs.Int("id", 0, "board id")
		name := fs.String("name", "", "board name")
		color := fs.String("color", "", "board color")
		fs.Parse(args)
		if err := a.Init(ctx); err != nil {
			return err
		}
		existing, ok := a.Store().Board(*boardID)
		if !ok {
			return fmt.Errorf("unknown board %d", *boardID)
		}
		newName, newColor := existing.Name, existing.Color
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "name":
				newName = *name
			case "color":
				newColor = *color
			}
		})
		board, err := a.UpdateBoard(ctx, *boardID, newName, newColor)
		if err != nil {
			return err
		}
		if board != nil {
			fmt.Printf("board %d saved\n", board.ID)
		}
		return nil

	case "col-add":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		title := fs.String("title", "", "column title")
		color := fs.String("color", "", "column color")
		fs.Parse(args)
		if err := a.Init(ctx); err != nil {
			return err
		}
		column, err := a.CreateColumn(ctx, *title, *color)
		if err != nil {
			return err
		}
		if column != nil {
			fmt.Printf("column %d created at position %d\n", column.ID, column.Position)
		}
		return nil

	case "col-edit":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		columnID := fs.Int("id", 0, "column id")
		title := fs.String("title", "", "column title")
		color := fs.String("color", "", "column color")
		fs.Parse(args)
		if err := a.Init(ctx); err != nil {
			return err
		}
		existing, ok := a.Store().Column(*columnID)
		if !ok {
			return fmt.Errorf("unknown column %d", *columnID)
		}
		newTitle, newColor := existing.Title, existing.Color
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "title":
				newTitle = *title
			case "color":
				newColor = *color
			}
		})
		column, err := a.UpdateColumn(ctx, *columnID, newTitle, newColor)
		if err != nil {
			return err
		}
		if column != nil {
			fmt.Printf("column %d saved\n", column.ID)
		}
		return nil

	case "col-move":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		draggedID := fs.Int("id", 0, "column to move")
		targetID := fs.Int("onto", 0, "column whose slot it takes")
		fs.Parse(args)
		if err := a.Init(ctx); err != nil {
			return err
		}
		a.ReorderColumn(ctx, *draggedID, *targetID)
		return show(a)

	case "col-rm":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		columnID := fs.Int("id", 0, "column id")
		fs.Parse(args)
		if err := a.Init(ctx); err != nil {
			return err
		}
		if !confirm(fmt.Sprintf("delete column %d and all of its cards?", *columnID)) {
			return nil
		}
		return a.DeleteColumn(ctx, *columnID)

	case "users":
		if err := a.Init(ctx); err != nil {
			return err
		}
		for _, u := range a.Store().Users() {
			flags := make([]string, 0, 4)
			if u.IsAdmin {
				flags = append(flags, "admin")
			}
			if !u.IsActive {
				flags = append(flags, "inactive")
			}
			if u.CanEdit {
				flags = append(flags, "edit")
			}
			if u.CanDelete {
				flags = append(flags, "delete")
			}
			fmt.Printf("%4d  %-20s %s\n", u.ID, u.Name, strings.Join(flags, ","))
		}
		return nil

	case "activate":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		userID := fs.Int("user", 0, "user id")
		fs.Parse(args)
		if err := a.Init(ctx); err != nil {
			return err
		}
		active := true
		canView := true
		return a.UpdateUser(ctx, *userID, api.UserPatch{IsActive: &active, CanView: &canView})

	case "reset-pw":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		userID := fs.Int("user", 0, "user id")
		fs.Parse(args)
		password := prompt("temporary password: ")
		return a.ResetPassword(ctx, *userID, password)

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// cardFlags holds the shared card field flags.
type cardFlags struct {
	title    *string
	desc     *string
	due      *string
	priority *string
	link     *string
	assignee *int
}

func newCardFlags(fs *flag.FlagSet) *cardFlags {
	return &cardFlags{
		title:    fs.String("title", "", "card title"),
		desc:     fs.String("desc", "", "description"),
		due:      fs.String("due", "", "due date (YYYY-MM-DD)"),
		priority: fs.String("priority", "", "priority: high, medium, low or none"),
		link:     fs.String("link", "", "external link"),
		assignee: fs.Int("assignee", 0, "assignee user id, 0 clears"),
	}
}

// apply overwrites base with the flags the user actually set and leaves
// everything else untouched.
func (cf *cardFlags) apply(fs *flag.FlagSet, base app.CardInput) (app.CardInput, error) {
	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			base.Title = *cf.title
		case "desc":
			base.Description = *cf.desc
		case "due":
			due, parseErr := app.ParseDueDate(*cf.due)
			if parseErr != nil {
				err = parseErr
				return
			}
			base.DueDate = due
		case "priority":
			color, colorErr := priorityColor(*cf.priority)
			if colorErr != nil {
				err = colorErr
				return
			}
			base.Color = color
		case "link":
			base.Link = *cf.link
		case "assignee":
			if *cf.assignee == 0 {
				base.AssigneeID = nil
			} else {
				base.AssigneeID = cf.assignee
			}
		}
	})
	return base, err
}

func priorityColor(name string) (string, error) {
	switch strings.ToLower(name) {
	case "high":
		return model.PriorityHigh, nil
	case "medium":
		return model.PriorityMedium, nil
	case "low":
		return model.PriorityLow, nil
	case "none":
		return model.PriorityNone, nil
	case "":
		return "", nil
	default:
		return "", fmt.Errorf("unknown priority %q", name)
	}
}

func show(a *app.App) error {
	board, ok := a.CurrentBoard()
	if !ok {
		fmt.Println("no boards yet")
		return nil
	}
	fmt.Printf("== %s ==\n", board.Name)

	users := a.Store().UsersByID()
	for _, column := range a.Store().Columns(board.ID) {
		fmt.Printf("\n[%d] %s\n", column.ID, column.Title)
		for _, card := range a.Store().CardsInColumn(column.ID) {
			line := fmt.Sprintf("  %4d  %-30s %s", card.ID, card.Title, model.PriorityLabel(card.Color))
			if card.DueDate != nil {
				line += "  due " + app.FormatDueDate(card.DueDate)
			}
			if card.AssigneeID != nil {
				if u, ok := users[*card.AssigneeID]; ok {
					line += "  @" + u.Name
				}
			}
			fmt.Println(line)
		}
	}
	return nil
}

func prompt(label string) string {
	fmt.Fprint(os.Stderr, label)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

func confirm(question string) bool {
	answer := prompt(question + " [y/N] ")
	return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
}
