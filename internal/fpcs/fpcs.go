package fpcs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xldenis/prusti-dev/internal/mir"
)

// CapabilityKind is the permission held over a place. Capabilities only
// narrow: Exclusive, then Write, then None.
type CapabilityKind int

const (
	Exclusive CapabilityKind = iota
	Write
	None
)

// String returns the lowercase capability name.
func (c CapabilityKind) String() string {
	switch c {
	case Exclusive:
		return "exclusive"
	case Write:
		return "write"
	case None:
		return "none"
	default:
		return fmt.Sprintf("CapabilityKind(%d)", int(c))
	}
}

// ParseCapability parses a capability name (case-insensitive).
func ParseCapability(s string) (CapabilityKind, error) {
	switch strings.ToLower(s) {
	case "exclusive", "e":
		return Exclusive, nil
	case "write", "w":
		return Write, nil
	case "none", "n":
		return None, nil
	}
	return 0, fmt.Errorf("unknown capability %q", s)
}

// Narrows reports whether moving from c to to gives up permission.
func (c CapabilityKind) Narrows(to CapabilityKind) bool {
	return to > c
}

// RepackKind discriminates repack operations.
type RepackKind int

const (
	Expand RepackKind = iota
	Collapse
	Weaken
)

// String returns the lowercase kind name.
func (k RepackKind) String() string {
	switch k {
	case Expand:
		return "expand"
	case Collapse:
		return "collapse"
	case Weaken:
		return "weaken"
	default:
		return fmt.Sprintf("RepackKind(%d)", int(k))
	}
}

// RepackOp is one repack operation. Expand and Collapse carry Capability;
// Weaken carries From and To.
type RepackOp struct {
	Kind       RepackKind
	Place      mir.Place
	Capability CapabilityKind
	From, To   CapabilityKind
}

// ExpandOp builds Expand(place, cap).
func ExpandOp(place mir.Place, c CapabilityKind) RepackOp {
	return RepackOp{Kind: Expand, Place: place, Capability: c}
}

// CollapseOp builds Collapse(place, cap).
func CollapseOp(place mir.Place, c CapabilityKind) RepackOp {
	return RepackOp{Kind: Collapse, Place: place, Capability: c}
}

// WeakenOp builds Weaken(place, from, to).
func WeakenOp(place mir.Place, from, to CapabilityKind) RepackOp {
	return RepackOp{Kind: Weaken, Place: place, From: from, To: to}
}

// String renders the textual form accepted by package mirtext, e.g.
// "expand _1 exclusive" or "weaken _2.0 exclusive write".
func (op RepackOp) String() string {
	if op.Kind == Weaken {
		return fmt.Sprintf("weaken %s %s %s", op.Place, op.From, op.To)
	}
	return fmt.Sprintf("%s %s %s", op.Kind, op.Place, op.Capability)
}

// Validate checks the capability invariants of a single operation.
func (op RepackOp) Validate() error {
	switch op.Kind {
	case Expand, Collapse:
		if op.Capability < Exclusive || op.Capability > None {
			return fmt.Errorf("%s: invalid capability", op)
		}
	case Weaken:
		if !op.From.Narrows(op.To) {
			return fmt.Errorf("%s: weaken must narrow capability", op)
		}
	default:
		return fmt.Errorf("unknown repack kind %d", int(op.Kind))
	}
	return nil
}

// Phase selects the repacks of a location: those effective at statement
// start or those effective mid-statement.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseMiddle
)

// String returns the phase name.
func (p Phase) String() string {
	if p == PhaseStart {
		return "start"
	}
	return "middle"
}

// Schedule supplies the repack operations for a location and phase.
type Schedule interface {
	Repacks(loc mir.Location, phase Phase) ([]RepackOp, error)
}

// ErrNoSchedule is returned for locations a schedule does not cover.
var ErrNoSchedule = errors.New("no permission schedule for location")

// LocationRepacks holds both phases of one location.
type LocationRepacks struct {
	Start  []RepackOp
	Middle []RepackOp
}

// Table is a Schedule backed by a map. It is not safe for concurrent
// mutation; reads after construction are safe.
type Table struct {
	entries map[mir.Location]*LocationRepacks
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[mir.Location]*LocationRepacks)}
}

// Cover registers every location of body with no repacks, so that the table
// is total over the body. Existing entries are kept.
func (t *Table) Cover(body *mir.Body) {
	for i, bb := range body.Blocks {
		for j := 0; j <= len(bb.Statements); j++ {
			loc := mir.Location{Block: mir.BasicBlock(i), Statement: j}
			if _, ok := t.entries[loc]; !ok {
				t.entries[loc] = &LocationRepacks{}
			}
		}
	}
}

// Append adds ops to the given phase of loc.
func (t *Table) Append(loc mir.Location, phase Phase, ops ...RepackOp) {
	e, ok := t.entries[loc]
	if !ok {
		e = &LocationRepacks{}
		t.entries[loc] = e
	}
	if phase == PhaseStart {
		e.Start = append(e.Start, ops...)
	} else {
		e.Middle = append(e.Middle, ops...)
	}
}

// Repacks implements Schedule.
func (t *Table) Repacks(loc mir.Location, phase Phase) ([]RepackOp, error) {
	e, ok := t.entries[loc]
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrNoSchedule, loc)
	}
	if phase == PhaseStart {
		return e.Start, nil
	}
	return e.Middle, nil
}

// Locations returns every location with an entry.
func (t *Table) Locations() []mir.Location {
	out := make([]mir.Location, 0, len(t.entries))
	for loc := range t.entries {
		out = append(out, loc)
	}
	return out
}

// Len returns the number of operations across all locations and phases.
func (t *Table) Len() int {
	n := 0
	for _, e := range t.entries {
		n += len(e.Start) + len(e.Middle)
	}
	return n
}
