// Package scenario defines market shocks and their application to a
// market state. Shocks are immutable and combinable by concatenation.
package scenario

import (
	"errors"
	"fmt"
	"sort"

	"github.com/quantfold/riskengine/internal/market"
)

// ShockType selects how a shock value is combined with the base level.
type ShockType string

const (
	// ShockAbsolute adds the value to the current level.
	ShockAbsolute ShockType = "absolute"
	// ShockRelative multiplies the current level by (1 + value).
	ShockRelative ShockType = "relative"
)

// ErrUnknownShockType reports a shock whose type is not recognized.
var ErrUnknownShockType = errors.New("unknown shock type")

// Shock is a single delta on one factor key.
type Shock struct {
	Key   string
	Type  ShockType
	Value float64
}

// ShockSet is an ordered, named collection of shocks.
type ShockSet struct {
	Name   string
	Shocks []Shock
}

// Absolute builds a ShockSet of additive shocks from a key->delta map.
// Keys are sorted so construction is deterministic.
func Absolute(name string, deltas map[string]float64) ShockSet {
	return fromMap(name, ShockAbsolute, deltas)
}

// Relative builds a ShockSet of relative shocks from a key->delta map.
func Relative(name string, deltas map[string]float64) ShockSet {
	return fromMap(name, ShockRelative, deltas)
}

func fromMap(name string, typ ShockType, deltas map[string]float64) ShockSet {
	keys := make([]string, 0, len(deltas))
	for k := range deltas {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	shocks := make([]Shock, 0, len(keys))
	for _, k := range keys {
		shocks = append(shocks, Shock{Key: k, Type: typ, Value: deltas[k]})
	}
	return ShockSet{Name: name, Shocks: shocks}
}

// Concat returns a new ShockSet with other's shocks appended. Neither
// input is modified.
func (s ShockSet) Concat(other ShockSet) ShockSet {
	shocks := make([]Shock, 0, len(s.Shocks)+len(other.Shocks))
	shocks = append(shocks, s.Shocks...)
	shocks = append(shocks, other.Shocks...)
	name := s.Name
	if name == "" {
		name = other.Name
	}
	return ShockSet{Name: name, Shocks: shocks}
}

// Apply produces a new market state with the shocked keys overwritten and
// every other key passed through. Shocks may introduce factors absent from
// the base state; such keys start from a base level of zero. Shocks on the
// same key read the base level fresh, so the later one wins. An empty set
// yields a state equal in value to the input (but a distinct object).
func Apply(state *market.State, set ShockSet) (*market.State, error) {
	updates := make(map[string]float64, len(set.Shocks))
	for _, shock := range set.Shocks {
		base, _ := state.Lookup(shock.Key)
		switch shock.Type {
		case ShockAbsolute:
			updates[shock.Key] = base + shock.Value
		case ShockRelative:
			updates[shock.Key] = base * (1.0 + shock.Value)
		default:
			return nil, fmt.Errorf("%w: %q on key %q", ErrUnknownShockType, shock.Type, shock.Key)
		}
	}
	return state.WithFactors(updates), nil
}
