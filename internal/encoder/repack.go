package encoder

import (
	"github.com/xldenis/prusti-dev/internal/fpcs"
	"github.com/xldenis/prusti-dev/internal/mir"
	"github.com/xldenis/prusti-dev/internal/vir"
)

// repacks applies both phases of loc, start first.
func (p *procEncoder) repacks(loc mir.Location) error {
	if err := p.applyRepacks(loc, fpcs.PhaseStart); err != nil {
		return err
	}
	return p.applyRepacks(loc, fpcs.PhaseMiddle)
}

// applyRepacks emits the statements of one phase of loc. Each (location,
// phase) is applied at most once per procedure.
func (p *procEncoder) applyRepacks(loc mir.Location, phase fpcs.Phase) error {
	key := repackKey{loc: loc, phase: phase}
	if p.repacked[key] {
		return nil
	}
	p.repacked[key] = true

	if p.proc.Schedule == nil {
		return malformed(CodeMalformedSchedule, "procedure has no permission schedule")
	}
	ops, err := p.proc.Schedule.Repacks(loc, phase)
	if err != nil {
		return &Error{Class: ClassMalformed, Code: CodeMalformedSchedule, Message: phase.String() + " repacks", Err: err}
	}
	for _, op := range ops {
		if err := p.repack(op); err != nil {
			return err
		}
	}
	return nil
}

func (p *procEncoder) repack(op fpcs.RepackOp) error {
	vcx := p.s.vcx
	switch op.Kind {
	case fpcs.Expand, fpcs.Collapse:
		if op.Capability == fpcs.Write {
			// A write place has already been exhaled.
			if op.Kind == fpcs.Expand {
				return malformed(CodeMalformedSchedule, "%s: cannot expand a write place", op)
			}
			return nil
		}
		pred, err := p.placePredicate(op)
		if err != nil {
			return err
		}
		if op.Kind == fpcs.Expand {
			p.emit(vcx.MkUnfold(pred))
		} else {
			p.emit(vcx.MkFold(pred))
		}
		return nil
	case fpcs.Weaken:
		if op.From != fpcs.Exclusive || op.To != fpcs.Write {
			return malformed(CodeMalformedSchedule, "unsupported repack %s", op)
		}
		pred, err := p.placePredicate(op)
		if err != nil {
			return err
		}
		p.emit(vcx.MkExhale(pred))
		return nil
	default:
		return malformed(CodeMalformedSchedule, "unsupported repack %s", op)
	}
}

// placePredicate returns the points-to predicate of the place op acts on.
// Failing to type the place is a schedule defect.
func (p *procEncoder) placePredicate(op fpcs.RepackOp) (*vir.PredicateApp, error) {
	ref, ty, err := p.projectPlace(op.Place)
	if err != nil {
		return nil, &Error{Class: ClassMalformed, Code: CodeMalformedSchedule, Message: op.String(), Err: err}
	}
	return ty.RefToPred.Apply(p.s.vcx, ref), nil
}
