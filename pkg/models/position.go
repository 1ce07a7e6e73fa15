package models

import (
	"encoding/json"
	"fmt"
)

// Position orders lists within a board and cards within a list. On the
// wire it is either the symbolic "top"/"bottom" or a float; the service
// resolves symbols to floats on write, so a Position read back from the
// service is always numeric.
type Position struct {
	symbol string
	value  float64
}

// Top positions an item before all of its siblings.
func Top() Position { return Position{symbol: "top"} }

// Bottom positions an item after all of its siblings.
func Bottom() Position { return Position{symbol: "bottom"} }

// At positions an item at an explicit ordering value.
func At(v float64) Position { return Position{value: v} }

// Between returns the midpoint of two numeric positions, for inserting
// an item between siblings without renumbering them.
func Between(a, b Position) (Position, error) {
	if a.symbol != "" || b.symbol != "" {
		return Position{}, fmt.Errorf("cannot take midpoint of symbolic position")
	}
	return At((a.value + b.value) / 2), nil
}

func (p Position) IsSymbolic() bool { return p.symbol != "" }

// Value returns the numeric ordering value. Zero for symbolic positions.
func (p Position) Value() float64 { return p.value }

func (p Position) String() string {
	if p.symbol != "" {
		return p.symbol
	}
	return fmt.Sprintf("%g", p.value)
}

func (p Position) MarshalJSON() ([]byte, error) {
	if p.symbol != "" {
		return json.Marshal(p.symbol)
	}
	return json.Marshal(p.value)
}

func (p *Position) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*p = At(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid position %s", string(data))
	}
	switch s {
	case "top", "bottom":
		*p = Position{symbol: s}
		return nil
	}
	return fmt.Errorf("invalid position %q", s)
}
