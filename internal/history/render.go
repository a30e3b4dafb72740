// Package history turns raw card change-log entries into display lines.
package history

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jonatankoch/kanbanboard/internal/model"
)

// Line is one rendered history row. Detail carries the old/new value diff
// when there is one to show.
type Line struct {
	Message string
	Detail  string
	When    string
}

// The closed set of card fields with their own formatting rules. Anything
// else goes through the generic fallback.
type fieldKind int

const (
	fieldTitle fieldKind = iota
	fieldDescription
	fieldDueDate
	fieldColumn
	fieldColor
	fieldAssignee
	fieldLink
	fieldOther
)

func kindOf(field string) fieldKind {
	switch field {
	case "title":
		return fieldTitle
	case "description":
		return fieldDescription
	case "due_date":
		return fieldDueDate
	case "column_id":
		return fieldColumn
	case "color":
		return fieldColor
	case "assignee_id":
		return fieldAssignee
	case "link":
		return fieldLink
	default:
		return fieldOther
	}
}

func fieldLabel(kind fieldKind, field string) string {
	switch kind {
	case fieldTitle:
		return "the title"
	case fieldDescription:
		return "the description"
	case fieldDueDate:
		return "the due date"
	case fieldColumn:
		return "the column"
	case fieldColor:
		return "the priority"
	case fieldAssignee:
		return "the assignee"
	case fieldLink:
		return "the link"
	default:
		return fmt.Sprintf("the field %q", field)
	}
}

// change is one update entry broken out into its typed variant.
type change struct {
	kind     fieldKind
	field    string
	oldValue *string
	newValue *string
}

// Render produces display lines for the entries in the order the authority
// returned them, most recent last. It never mutates its inputs and yields
// identical output for identical input.
func Render(entries []model.HistoryEntry, users map[int]model.User, columns map[int]model.Column) []Line {
	lines := make([]Line, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, renderEntry(entry, users, columns))
	}
	return lines
}

func renderEntry(entry model.HistoryEntry, users map[int]model.User, columns map[int]model.Column) Line {
	actor := "Unknown"
	if entry.UserID != nil {
		if u, ok := users[*entry.UserID]; ok {
			actor = u.Name
		}
	}
	when := ""
	if !entry.CreatedAt.IsZero() {
		when = entry.CreatedAt.Format("2006-01-02 15:04:05")
	}

	switch entry.Action {
	case model.ActionCreate:
		return Line{Message: actor + " created the card", When: when}
	case model.ActionDelete:
		return Line{Message: actor + " deleted the card", When: when}
	case model.ActionUpdate:
		ch := change{
			kind:     kindOf(entry.Field),
			field:    entry.Field,
			oldValue: entry.OldValue,
			newValue: entry.NewValue,
		}
		return renderChange(actor, when, ch, users, columns)
	default:
		return Line{
			Message: fmt.Sprintf("%s – %s (%s)", actor, entry.Action, entry.Field),
			When:    when,
		}
	}
}

func renderChange(actor, when string, ch change, users map[int]model.User, columns map[int]model.Column) Line {
	switch ch.kind {
	case fieldColumn:
		oldName := columnName(ch.oldValue, columns)
		newName := columnName(ch.newValue, columns)
		return Line{
			Message: fmt.Sprintf("%s moved the card from %s to %s", actor, oldName, newName),
			When:    when,
		}
	case fieldAssignee:
		oldName := userName(ch.oldValue, users)
		newName := userName(ch.newValue, users)
		return Line{
			Message: fmt.Sprintf("%s changed the assignee from %s to %s", actor, oldName, newName),
			When:    when,
		}
	case fieldDueDate:
		return Line{
			Message: actor + " changed the due date",
			Detail:  fmt.Sprintf("Old: %s · New: %s", dateOnly(ch.oldValue), dateOnly(ch.newValue)),
			When:    when,
		}
	case fieldColor:
		return Line{
			Message: actor + " changed the priority",
			Detail:  fmt.Sprintf("Old: %s · New: %s", colorLabel(ch.oldValue), colorLabel(ch.newValue)),
			When:    when,
		}
	default:
		line := Line{
			Message: fmt.Sprintf("%s changed %s", actor, fieldLabel(ch.kind, ch.field)),
			When:    when,
		}
		if !equalValues(ch.oldValue, ch.newValue) {
			line.Detail = fmt.Sprintf("Old: %s · New: %s", valueOrDash(ch.oldValue), valueOrDash(ch.newValue))
		}
		return line
	}
}

// columnName resolves a stored column id against the cache. An identifier
// that no longer resolves renders as the literal stored value; an absent
// value renders as Unknown.
func columnName(value *string, columns map[int]model.Column) string {
	if value == nil || *value == "" {
		return "Unknown"
	}
	if id, err := strconv.Atoi(*value); err == nil {
		if col, ok := columns[id]; ok {
			return col.Title
		}
	}
	return *value
}

func userName(value *string, users map[int]model.User) string {
	if value == nil || *value == "" {
		return "nobody"
	}
	if id, err := strconv.Atoi(*value); err == nil {
		if u, ok := users[id]; ok {
			return u.Name
		}
	}
	return *value
}

// dateOnly truncates an ISO-8601 timestamp to its date part.
func dateOnly(value *string) string {
	if value == nil || *value == "" {
		return "—"
	}
	if len(*value) > len(time.DateOnly) {
		return (*value)[:len(time.DateOnly)]
	}
	return *value
}

func colorLabel(value *string) string {
	if value == nil {
		return "None"
	}
	return model.PriorityLabel(*value)
}

func valueOrDash(value *string) string {
	if value == nil || *value == "" {
		return "—"
	}
	return *value
}

func equalValues(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
