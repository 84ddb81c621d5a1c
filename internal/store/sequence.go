package store

import (
	"fmt"
	"slices"

	"github.com/sakif/workshop/internal/apperror"
)

// OpKind names a theme sequence operation.
type OpKind string

const (
	OpInsertAtEnd  OpKind = "insertAtEnd"
	OpRemoveAt     OpKind = "removeAt"
	OpMoveAdjacent OpKind = "moveAdjacent"
	OpMoveTo       OpKind = "moveTo"
)

// Direction is the direction of a MoveAdjacent operation. Up moves an item
// toward index 0.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// SequenceOp is one edit of a theme sequence. Build it with InsertAtEnd,
// RemoveAt, MoveAdjacent or MoveTo; the JSON form is accepted by the API:
//
//	{"kind":"moveTo","index":3,"to":0}
type SequenceOp struct {
	Kind      OpKind    `json:"kind"`
	ToolID    string    `json:"toolId,omitempty"`
	Index     int       `json:"index"`
	To        int       `json:"to,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

func InsertAtEnd(toolID string) SequenceOp {
	return SequenceOp{Kind: OpInsertAtEnd, ToolID: toolID}
}

func RemoveAt(index int) SequenceOp {
	return SequenceOp{Kind: OpRemoveAt, Index: index}
}

func MoveAdjacent(index int, dir Direction) SequenceOp {
	return SequenceOp{Kind: OpMoveAdjacent, Index: index, Direction: dir}
}

// MoveTo moves the item at from to position to, preserving the relative
// order of every other item.
func MoveTo(from, to int) SequenceOp {
	return SequenceOp{Kind: OpMoveTo, Index: from, To: to}
}

// Apply returns the edited copy of seq; seq itself is never modified.
func (op SequenceOp) Apply(seq []string) ([]string, error) {
	out := slices.Clone(seq)
	if out == nil {
		out = []string{}
	}

	switch op.Kind {
	case OpInsertAtEnd:
		if op.ToolID == "" {
			return nil, apperror.ValidationFailed("toolId", "tool id is required")
		}
		return append(out, op.ToolID), nil

	case OpRemoveAt:
		if err := checkIndex(op.Index, len(out)); err != nil {
			return nil, err
		}
		return slices.Delete(out, op.Index, op.Index+1), nil

	case OpMoveAdjacent:
		if err := checkIndex(op.Index, len(out)); err != nil {
			return nil, err
		}
		var target int
		switch op.Direction {
		case Up:
			target = op.Index - 1
		case Down:
			target = op.Index + 1
		default:
			return nil, apperror.ValidationFailed("direction",
				fmt.Sprintf("direction %q must be %q or %q", op.Direction, Up, Down))
		}
		if target < 0 || target >= len(out) {
			return out, nil
		}
		out[op.Index], out[target] = out[target], out[op.Index]
		return out, nil

	case OpMoveTo:
		if err := checkIndex(op.Index, len(out)); err != nil {
			return nil, err
		}
		if err := checkIndex(op.To, len(out)); err != nil {
			return nil, err
		}
		if op.Index == op.To {
			return out, nil
		}
		item := out[op.Index]
		out = slices.Delete(out, op.Index, op.Index+1)
		return slices.Insert(out, op.To, item), nil
	}

	return nil, apperror.ValidationFailed("kind", fmt.Sprintf("unknown sequence operation %q", op.Kind))
}

func checkIndex(i, length int) error {
	if i < 0 || i >= length {
		return apperror.IndexOutOfRange(i, length)
	}
	return nil
}
