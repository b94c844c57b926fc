package encoder

import (
	"github.com/xldenis/prusti-dev/internal/mir"
	"github.com/xldenis/prusti-dev/internal/typeenc"
	"github.com/xldenis/prusti-dev/internal/vir"
)

// projectPlace returns the reference expression of place and the descriptor
// of its type.
func (p *procEncoder) projectPlace(place mir.Place) (vir.Expr, *typeenc.Descriptor, error) {
	if int(place.Local) < 0 || int(place.Local) >= len(p.locals) {
		return nil, nil, malformed(CodeMalformedType, "place %s: local out of range", place)
	}
	base := p.locals[place.Local]
	return p.project(base.ex, base.ty, place.Projection)
}

// project folds path over base, left to right. Only field projections are
// encodable.
func (p *procEncoder) project(base vir.Expr, ty *typeenc.Descriptor, path []mir.ProjectionElem) (vir.Expr, *typeenc.Descriptor, error) {
	for _, elem := range path {
		if elem.Kind != mir.ProjField {
			return nil, nil, unsupported(CodeUnsupportedProjection, "%s projection of %s", elem.Kind, ty.Ty)
		}
		sd, err := ty.ExpectStructlike()
		if err != nil {
			return nil, nil, &Error{Class: ClassMalformed, Code: CodeMalformedType, Message: "field projection", Err: err}
		}
		if elem.Field < 0 || elem.Field >= len(sd.Fields) {
			return nil, nil, malformed(CodeMalformedType, "%s has no field %d", ty.Ty, elem.Field)
		}
		field := sd.Fields[elem.Field]
		if !elem.Ty.Equal(field.Ty) {
			return nil, nil, malformed(CodeMalformedType, "field %d of %s has type %s, not %s", elem.Field, ty.Ty, field.Ty, elem.Ty)
		}
		fty, err := p.s.types.Require(p.deps, elem.Ty)
		if err != nil {
			return nil, nil, classify(err, "field type")
		}
		base = field.ProjectionP.Apply(p.s.vcx, base)
		ty = fty
	}
	return base, ty, nil
}
