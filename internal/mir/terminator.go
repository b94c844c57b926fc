package mir

import (
	"fmt"
	"strings"
)

// BasicBlock indexes a block of a body.
type BasicBlock int

// String returns the debug name, e.g. "bb2".
func (bb BasicBlock) String() string { return fmt.Sprintf("bb%d", int(bb)) }

// UnwindKind discriminates what happens when a terminator unwinds.
type UnwindKind int

const (
	UnwindContinue UnwindKind = iota
	UnwindUnreachable
	UnwindTerminate
	UnwindCleanup
)

// UnwindAction is the unwind edge of a call, assert, drop or loop head.
type UnwindAction struct {
	Kind UnwindKind

	// Block is the cleanup block of an UnwindCleanup action.
	Block BasicBlock
}

// Cleanup returns an unwind action jumping to bb.
func Cleanup(bb BasicBlock) UnwindAction {
	return UnwindAction{Kind: UnwindCleanup, Block: bb}
}

// String renders the action: "continue", "unreachable", "terminate" or a block.
func (u UnwindAction) String() string {
	switch u.Kind {
	case UnwindContinue:
		return "continue"
	case UnwindUnreachable:
		return "unreachable"
	case UnwindTerminate:
		return "terminate"
	default:
		return u.Block.String()
	}
}

func unwindSuffix(u UnwindAction) string {
	if u.Kind == UnwindContinue {
		return ""
	}
	return " unwind " + u.String()
}

// Terminator ends a basic block.
type Terminator interface {
	terminator()
	String() string
}

// Goto jumps unconditionally.
type Goto struct{ Target BasicBlock }

// SwitchTarget pairs a discriminant value with a target block. Value holds
// the raw bits of the value, truncated to the discriminant's width.
type SwitchTarget struct {
	Value  uint64
	Target BasicBlock
}

// SwitchInt branches on an integer or boolean discriminant.
type SwitchInt struct {
	Discr     Operand
	Targets   []SwitchTarget
	Otherwise BasicBlock
}

// Return returns from the procedure.
type Return struct{}

// Unreachable marks a block that can never be reached.
type Unreachable struct{}

// UnwindResume continues unwinding after cleanup.
type UnwindResume struct{}

// Call calls a procedure and stores the result into Destination. A nil
// Target means the call never returns.
type Call struct {
	Func        Operand
	Args        []Operand
	Destination Place
	Target      *BasicBlock
	Unwind      UnwindAction
}

// Assert checks that Cond equals Expected, continuing at Target on success.
type Assert struct {
	Cond     Operand
	Expected bool
	Target   BasicBlock
	Unwind   UnwindAction
}

// FalseUnwind is a loop head with an imaginary unwind edge.
type FalseUnwind struct {
	RealTarget BasicBlock
	Unwind     UnwindAction
}

// FalseEdge is a branch with an imaginary second edge.
type FalseEdge struct {
	RealTarget      BasicBlock
	ImaginaryTarget BasicBlock
}

// Drop runs the destructor of a place.
type Drop struct {
	Place  Place
	Target BasicBlock
	Unwind UnwindAction
}

func (*Goto) terminator()         {}
func (*SwitchInt) terminator()    {}
func (*Return) terminator()       {}
func (*Unreachable) terminator()  {}
func (*UnwindResume) terminator() {}
func (*Call) terminator()         {}
func (*Assert) terminator()       {}
func (*FalseUnwind) terminator()  {}
func (*FalseEdge) terminator()    {}
func (*Drop) terminator()         {}

func (t *Goto) String() string         { return "goto -> " + t.Target.String() }
func (t *Return) String() string       { return "return" }
func (t *Unreachable) String() string  { return "unreachable" }
func (t *UnwindResume) String() string { return "resume" }

func (t *SwitchInt) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "switchInt(%s) -> [", t.Discr)
	for _, tgt := range t.Targets {
		fmt.Fprintf(&b, "%d: %s, ", tgt.Value, tgt.Target)
	}
	fmt.Fprintf(&b, "otherwise: %s]", t.Otherwise)
	return b.String()
}

func (t *Call) String() string {
	s := fmt.Sprintf("%s = call %s(%s)", t.Destination, t.Func, joinOperands(t.Args))
	if t.Target != nil {
		s += " -> " + t.Target.String()
	}
	return s + unwindSuffix(t.Unwind)
}

func (t *Assert) String() string {
	neg := ""
	if !t.Expected {
		neg = "!"
	}
	return fmt.Sprintf("assert(%s%s) -> %s%s", neg, t.Cond, t.Target, unwindSuffix(t.Unwind))
}

func (t *FalseUnwind) String() string {
	return "falseUnwind -> " + t.RealTarget.String() + unwindSuffix(t.Unwind)
}

func (t *FalseEdge) String() string {
	return fmt.Sprintf("falseEdge -> [real: %s, imaginary: %s]", t.RealTarget, t.ImaginaryTarget)
}

func (t *Drop) String() string {
	return fmt.Sprintf("drop(%s) -> %s%s", t.Place, t.Target, unwindSuffix(t.Unwind))
}

// TerminatorKind returns the kind name of a terminator, used in diagnostics.
func TerminatorKind(t Terminator) string {
	switch t.(type) {
	case *Goto:
		return "Goto"
	case *SwitchInt:
		return "SwitchInt"
	case *Return:
		return "Return"
	case *Unreachable:
		return "Unreachable"
	case *UnwindResume:
		return "UnwindResume"
	case *Call:
		return "Call"
	case *Assert:
		return "Assert"
	case *FalseUnwind:
		return "FalseUnwind"
	case *FalseEdge:
		return "FalseEdge"
	case *Drop:
		return "Drop"
	default:
		return fmt.Sprintf("%T", t)
	}
}

// Successors returns the blocks a terminator may transfer control to,
// including unwind edges.
func Successors(t Terminator) []BasicBlock {
	var out []BasicBlock
	addUnwind := func(u UnwindAction) {
		if u.Kind == UnwindCleanup {
			out = append(out, u.Block)
		}
	}
	switch t := t.(type) {
	case *Goto:
		out = append(out, t.Target)
	case *SwitchInt:
		for _, tgt := range t.Targets {
			out = append(out, tgt.Target)
		}
		out = append(out, t.Otherwise)
	case *Call:
		if t.Target != nil {
			out = append(out, *t.Target)
		}
		addUnwind(t.Unwind)
	case *Assert:
		out = append(out, t.Target)
		addUnwind(t.Unwind)
	case *FalseUnwind:
		out = append(out, t.RealTarget)
		addUnwind(t.Unwind)
	case *FalseEdge:
		out = append(out, t.RealTarget, t.ImaginaryTarget)
	case *Drop:
		out = append(out, t.Target)
		addUnwind(t.Unwind)
	}
	return out
}
