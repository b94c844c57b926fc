package vir

import (
	"fmt"
	"strconv"
	"strings"
)

// LabelKind discriminates block labels.
type LabelKind int

const (
	LabelStart LabelKind = iota
	LabelBasicBlock
	LabelEnd
)

// BlockLabel names a CFG block: the synthetic "start" and "end" blocks or
// "bb<N>" for source block N.
type BlockLabel struct {
	Kind  LabelKind
	Index int
}

// String returns the label name.
func (l BlockLabel) String() string {
	switch l.Kind {
	case LabelStart:
		return "start"
	case LabelEnd:
		return "end"
	default:
		return fmt.Sprintf("bb%d", l.Index)
	}
}

// ParseBlockLabel inverts BlockLabel.String.
func ParseBlockLabel(s string) (BlockLabel, bool) {
	switch s {
	case "start":
		return BlockLabel{Kind: LabelStart}, true
	case "end":
		return BlockLabel{Kind: LabelEnd}, true
	}
	rest, ok := strings.CutPrefix(s, "bb")
	if !ok {
		return BlockLabel{}, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 || strconv.Itoa(n) != rest {
		return BlockLabel{}, false
	}
	return BlockLabel{Kind: LabelBasicBlock, Index: n}, true
}

// Terminator ends a CFG block.
type Terminator interface {
	isTerminator()
}

// Goto jumps unconditionally.
type Goto struct {
	Target *BlockLabel
}

// GotoIfTarget is one guarded edge of a GotoIf.
type GotoIfTarget struct {
	Value  Expr
	Target *BlockLabel
}

// GotoIf compares Value against each target value in order and jumps to the
// first match, or to Otherwise.
type GotoIf struct {
	Value     Expr
	Targets   []GotoIfTarget
	Otherwise *BlockLabel
}

// Exit leaves the method.
type Exit struct{}

// Dummy marks a block end the encoder could not translate. It is printed as
// a failing assertion so that it is treated as unreachable.
type Dummy struct {
	Text string
}

func (*Goto) isTerminator()   {}
func (*GotoIf) isTerminator() {}
func (*Exit) isTerminator()   {}
func (*Dummy) isTerminator()  {}

// CfgBlock is a labelled statement list ending in one terminator.
type CfgBlock struct {
	Label      *BlockLabel
	Stmts      []Stmt
	Terminator Terminator
}

// MkLabel allocates a label.
func (c *Ctx) MkLabel(kind LabelKind, index int) *BlockLabel {
	return alloc(c, &c.labels, BlockLabel{Kind: kind, Index: index})
}

// MkGoto builds goto target.
func (c *Ctx) MkGoto(target *BlockLabel) *Goto {
	return alloc(c, &c.gotos, Goto{Target: target})
}

// MkGotoIf builds a multi-way conditional jump.
func (c *Ctx) MkGotoIf(value Expr, targets []GotoIfTarget, otherwise *BlockLabel) *GotoIf {
	return alloc(c, &c.gotoIfs, GotoIf{Value: value, Targets: targets, Otherwise: otherwise})
}

// MkExit builds the method exit.
func (c *Ctx) MkExit() *Exit {
	return alloc(c, &c.exits, Exit{})
}

// MkDummy builds a placeholder terminator.
func (c *Ctx) MkDummy(text string) *Dummy {
	return alloc(c, &c.dummies, Dummy{Text: text})
}

// MkCfgBlock assembles a block.
func (c *Ctx) MkCfgBlock(label *BlockLabel, stmts []Stmt, term Terminator) *CfgBlock {
	return alloc(c, &c.blocks, CfgBlock{Label: label, Stmts: stmts, Terminator: term})
}
