// internal/models/interaction.go
package models

import (
	"fmt"
	"time"
)

// InteractionKind is the closed set of tracked interaction events.
type InteractionKind string

const (
	InteractionView    InteractionKind = "view"
	InteractionClick   InteractionKind = "click"
	InteractionContact InteractionKind = "contact"
	InteractionOrder   InteractionKind = "order"
)

func ParseInteractionKind(s string) (InteractionKind, error) {
	switch k := InteractionKind(s); k {
	case InteractionView, InteractionClick, InteractionContact, InteractionOrder:
		return k, nil
	default:
		return "", fmt.Errorf("unknown interaction kind %q", s)
	}
}

// InteractionCounts aggregates one listing's interactions over a time window.
type InteractionCounts struct {
	Views    int `json:"views"`
	Clicks   int `json:"clicks"`
	Contacts int `json:"contacts"`
	Orders   int `json:"orders"`
}

// Add folds count events of the given kind into the aggregate.
func (c *InteractionCounts) Add(kind InteractionKind, count int) {
	switch kind {
	case InteractionView:
		c.Views += count
	case InteractionClick:
		c.Clicks += count
	case InteractionContact:
		c.Contacts += count
	case InteractionOrder:
		c.Orders += count
	}
}

// CounterWindow bounds the aggregation period for InteractionCounts.
type CounterWindow struct {
	Since time.Time
	Until time.Time
}

func WindowEndingAt(until time.Time, days int) CounterWindow {
	return CounterWindow{Since: until.AddDate(0, 0, -days), Until: until}
}
