// Package ordering computes the column sequence for drag-and-drop reorders.
package ordering

import (
	"sort"

	"github.com/jonatankoch/kanbanboard/internal/model"
)

// Reorder moves the dragged column to the target column's slot using
// insertion semantics: the dragged column is removed from the
// position-sorted sequence and reinserted at the index the target held,
// shifting everything in between by one. Positions are then reassigned
// densely starting at 1.
//
// Dropping a column onto itself, or naming an id that is not in the
// sequence, returns ok=false and leaves the input untouched.
func Reorder(columns []model.Column, draggedID, targetID int) ([]model.Column, bool) {
	if draggedID == targetID {
		return nil, false
	}

	sorted := make([]model.Column, len(columns))
	copy(sorted, columns)
	// Missing positions carry the zero value and sort first.
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})

	draggedIdx, targetIdx := -1, -1
	for i, c := range sorted {
		switch c.ID {
		case draggedID:
			draggedIdx = i
		case targetID:
			targetIdx = i
		}
	}
	if draggedIdx < 0 || targetIdx < 0 {
		return nil, false
	}

	dragged := sorted[draggedIdx]
	rest := make([]model.Column, 0, len(sorted)-1)
	rest = append(rest, sorted[:draggedIdx]...)
	rest = append(rest, sorted[draggedIdx+1:]...)

	out := make([]model.Column, 0, len(sorted))
	out = append(out, rest[:targetIdx]...)
	out = append(out, dragged)
	out = append(out, rest[targetIdx:]...)

	for i := range out {
		out[i].Position = i + 1
	}
	return out, true
}
