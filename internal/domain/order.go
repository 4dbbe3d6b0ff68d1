package domain

import "fmt"

// IntentAction is the kind of instruction the decision engine emits for a bar.
type IntentAction int

const (
	ActionNone IntentAction = iota
	ActionBuy
	ActionClose
)

// String returns the string representation of the IntentAction.
func (a IntentAction) String() string {
	switch a {
	case ActionNone:
		return "NO_ACTION"
	case ActionBuy:
		return "BUY"
	case ActionClose:
		return "CLOSE"
	default:
		return "UNKNOWN"
	}
}

// OrderIntent is the per-bar output of the decision engine.
// Size and StopPrice are set only for ActionBuy; CloseReason only for ActionClose.
type OrderIntent struct {
	Action      IntentAction
	Size        float64
	StopPrice   float64
	EntryReason EntryReason
	CloseReason CloseReason
}

// NoAction returns the default intent.
func NoAction() OrderIntent {
	return OrderIntent{Action: ActionNone}
}

// Buy returns a long entry intent with an attached stop.
func Buy(size, stopPrice float64, reason EntryReason) OrderIntent {
	return OrderIntent{Action: ActionBuy, Size: size, StopPrice: stopPrice, EntryReason: reason}
}

// Close returns an exit intent for the open position.
func Close(reason CloseReason) OrderIntent {
	return OrderIntent{Action: ActionClose, CloseReason: reason}
}

// IsNoAction reports whether the intent asks for nothing.
func (o OrderIntent) IsNoAction() bool {
	return o.Action == ActionNone
}

func (o OrderIntent) String() string {
	switch o.Action {
	case ActionBuy:
		return fmt.Sprintf("BUY(size=%.6f, stop=%.6f)", o.Size, o.StopPrice)
	case ActionClose:
		return fmt.Sprintf("CLOSE(%s)", o.CloseReason)
	default:
		return o.Action.String()
	}
}
