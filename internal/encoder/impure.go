package encoder

import (
	"fmt"

	"github.com/xldenis/prusti-dev/internal/crate"
	"github.com/xldenis/prusti-dev/internal/fpcs"
	"github.com/xldenis/prusti-dev/internal/mir"
	"github.com/xldenis/prusti-dev/internal/taskenc"
	"github.com/xldenis/prusti-dev/internal/vir"
)

type repackKey struct {
	loc   mir.Location
	phase fpcs.Phase
}

// procEncoder holds the state of encoding one procedure body. It is
// discarded once the body is assembled.
type procEncoder struct {
	s      *Session
	deps   *taskenc.Deps
	proc   *crate.Procedure
	body   *mir.Body
	locals []localDef
	reach  []*vir.Local

	tmpCount int
	stmts    []vir.Stmt
	repacked map[repackKey]bool
}

func (p *procEncoder) emit(st vir.Stmt) { p.stmts = append(p.stmts, st) }

func (p *procEncoder) comment(text string) {
	if p.s.comments {
		p.emit(p.s.vcx.MkComment(text))
	}
}

func reachName(bb int) string { return fmt.Sprintf("_reach_bb%d", bb) }

// encodeBody assembles the start block, one block per source block and the
// end block.
func (p *procEncoder) encodeBody() ([]*vir.CfgBlock, error) {
	vcx := p.s.vcx
	blocks := make([]*vir.CfgBlock, 0, len(p.body.Blocks)+2)

	var start []vir.Stmt
	for i := p.body.ArgCount + 1; i < len(p.locals); i++ {
		start = append(start, vcx.MkLocalDecl(p.locals[i].local, nil))
	}
	if p.s.reachBlocks {
		p.reach = make([]*vir.Local, len(p.body.Blocks))
		for bb := range p.body.Blocks {
			p.reach[bb] = vcx.MkLocal(reachName(bb), vir.TypeBool)
			start = append(start, vcx.MkLocalDecl(p.reach[bb], vcx.MkBool(false)))
		}
	}
	blocks = append(blocks, vcx.MkCfgBlock(
		vcx.MkLabel(vir.LabelStart, 0),
		start,
		vcx.MkGoto(vcx.MkLabel(vir.LabelBasicBlock, 0)),
	))

	for i := range p.body.Blocks {
		b, err := p.encodeBlock(mir.BasicBlock(i), &p.body.Blocks[i])
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}

	blocks = append(blocks, vcx.MkCfgBlock(vcx.MkLabel(vir.LabelEnd, 0), nil, vcx.MkExit()))
	return blocks, nil
}

func (p *procEncoder) encodeBlock(bb mir.BasicBlock, data *mir.BasicBlockData) (*vir.CfgBlock, error) {
	vcx := p.s.vcx
	p.stmts = make([]vir.Stmt, 0, len(data.Statements))
	if p.reach != nil {
		p.emit(vcx.MkPureAssign(vcx.MkLocalEx(p.reach[bb]), vcx.MkBool(true)))
	}

	for j, st := range data.Statements {
		loc := mir.Location{Block: bb, Statement: j}
		if err := p.encodeStatement(loc, st); err != nil {
			return nil, at(err, p.proc.Def, &loc)
		}
	}

	loc := p.body.TerminatorLocation(bb)
	if data.Terminator == nil {
		return nil, at(malformed(CodeMalformedType, "block %s has no terminator", bb), p.proc.Def, &loc)
	}
	term, err := p.encodeTerminator(loc, data.Terminator)
	if err != nil {
		return nil, at(err, p.proc.Def, &loc)
	}

	stmts := p.stmts
	p.stmts = nil
	return vcx.MkCfgBlock(vcx.MkLabel(vir.LabelBasicBlock, int(bb)), stmts, term), nil
}

// label returns the label of source block bb, checking that it exists.
func (p *procEncoder) label(bb mir.BasicBlock) (*vir.BlockLabel, error) {
	if int(bb) < 0 || int(bb) >= len(p.body.Blocks) {
		return nil, malformed(CodeMalformedType, "jump to missing block %s", bb)
	}
	return p.s.vcx.MkLabel(vir.LabelBasicBlock, int(bb)), nil
}

// newTmp declares a fresh temporary in the current block.
func (p *procEncoder) newTmp(ty vir.Type) vir.Expr {
	vcx := p.s.vcx
	l := vcx.MkLocal(fmt.Sprintf("_tmp%d", p.tmpCount), ty)
	p.tmpCount++
	p.emit(vcx.MkLocalDecl(l, nil))
	return vcx.MkLocalEx(l)
}
