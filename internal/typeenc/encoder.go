package typeenc

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xldenis/prusti-dev/internal/mir"
	"github.com/xldenis/prusti-dev/internal/taskenc"
	"github.com/xldenis/prusti-dev/internal/vir"
)

// ErrUnsupportedType is returned for types with no encoding.
var ErrUnsupportedType = errors.New("unsupported type")

// Name returns the encoding name of ty, e.g. "Int_i32" or "Tuple0".
func Name(ty mir.Ty) (string, error) {
	switch ty.Kind {
	case mir.TyBool:
		return "Bool", nil
	case mir.TyInt, mir.TyUint:
		if ty.BitWidth() > 64 {
			return "", fmt.Errorf("%w: %s wider than 64 bits", ErrUnsupportedType, ty)
		}
		kind := "Int"
		if ty.Kind == mir.TyUint {
			kind = "Uint"
		}
		return kind + "_" + ty.String(), nil
	case mir.TyTuple:
		var b strings.Builder
		fmt.Fprintf(&b, "Tuple%d", len(ty.Fields))
		for _, f := range ty.Fields {
			n, err := Name(f)
			if err != nil {
				return "", err
			}
			b.WriteString("_" + n)
		}
		return b.String(), nil
	case mir.TyAdt:
		return "Adt_" + ty.Name, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ty)
	}
}

// Encoder produces type descriptors through the shared dependency cache.
// Descriptors are keyed by structural type identity.
type Encoder struct {
	vcx   *vir.Ctx
	cache *taskenc.Cache[string, *Descriptor, []vir.Decl]

	mu  sync.Mutex
	tys map[string]mir.Ty
}

// New creates a type encoder registered with reg.
func New(reg *taskenc.Registry, vcx *vir.Ctx) *Encoder {
	e := &Encoder{vcx: vcx, tys: make(map[string]mir.Ty)}
	e.cache = taskenc.NewCache[string, *Descriptor, []vir.Decl](reg, "type", e.encode)
	return e
}

// Require returns the descriptor of ty.
func (e *Encoder) Require(deps *taskenc.Deps, ty mir.Ty) (*Descriptor, error) {
	key := ty.Key()
	e.mu.Lock()
	if _, ok := e.tys[key]; !ok {
		e.tys[key] = ty
	}
	e.mu.Unlock()
	return e.cache.RequireRef(deps, key)
}

// Decls returns the declarations of every successfully encoded type, in
// completion order.
func (e *Encoder) Decls() []vir.Decl {
	var out []vir.Decl
	for _, key := range e.cache.Completed() {
		decls, _ := e.cache.Lookup(key)
		out = append(out, decls...)
	}
	return out
}

func (e *Encoder) encode(deps *taskenc.Deps, key string) ([]vir.Decl, error) {
	e.mu.Lock()
	ty := e.tys[key]
	e.mu.Unlock()

	name, err := Name(ty)
	if err != nil {
		return nil, err
	}
	vcx := e.vcx
	snap := vir.DomainType("s_" + name)
	pred := "p_" + name
	d := &Descriptor{
		Ty:           ty,
		Name:         name,
		Snapshot:     snap,
		RefToPred:    vir.NewPredicateIdent(pred, vir.TypeRef),
		RefToSnap:    vir.NewFunctionIdent(pred+"_snap", snap, vir.TypeRef),
		MethodAssign: vir.NewMethodIdent("assign_"+pred, vir.TypeRef, snap),
	}
	domain := vir.Domain{Name: snap.Name}
	var decls []vir.Decl

	switch ty.Kind {
	case mir.TyBool, mir.TyInt, mir.TyUint:
		prim := vir.TypeInt
		if ty.Kind == mir.TyBool {
			prim = vir.TypeBool
		}
		d.Prim = &PrimDescriptor{
			Prim:       prim,
			SnapToPrim: vir.NewFunctionIdent(snap.Name+"_val", prim, snap),
			PrimToSnap: vir.NewFunctionIdent(snap.Name+"_cons", snap, prim),
		}
		domain.Functions = append(domain.Functions,
			vir.DomainFunction{Name: d.Prim.PrimToSnap.Name, Params: []vir.Type{prim}, Ret: snap},
			vir.DomainFunction{Name: d.Prim.SnapToPrim.Name, Params: []vir.Type{snap}, Ret: prim},
		)
	case mir.TyTuple, mir.TyAdt:
		sd := &StructDescriptor{}
		fieldSnaps := make([]vir.Type, len(ty.Fields))
		for i, fty := range ty.Fields {
			fd, err := e.Require(deps, fty)
			if err != nil {
				return nil, fmt.Errorf("field %d of %s: %w", i, ty, err)
			}
			fieldSnaps[i] = fd.Snapshot
			sd.Fields = append(sd.Fields, FieldDescriptor{
				Ty:          fty,
				ProjectionP: vir.NewFunctionIdent(fmt.Sprintf("%s_field_%d", pred, i), vir.TypeRef, vir.TypeRef),
				Read:        vir.NewFunctionIdent(fmt.Sprintf("%s_field_%d", snap.Name, i), fd.Snapshot, snap),
			})
		}
		sd.FieldSnapsToSnap = vir.NewFunctionIdent(snap.Name+"_cons", snap, fieldSnaps...)
		d.Struct = sd
		domain.Functions = append(domain.Functions,
			vir.DomainFunction{Name: sd.FieldSnapsToSnap.Name, Params: fieldSnaps, Ret: snap})
		for _, f := range sd.Fields {
			domain.Functions = append(domain.Functions,
				vir.DomainFunction{Name: f.Read.Name, Params: []vir.Type{snap}, Ret: f.Read.Result})
			decls = append(decls, vcx.MkFunction(vir.Function{
				Name: f.ProjectionP.Name,
				Args: []*vir.Local{vcx.MkLocal("self_p", vir.TypeRef)},
				Ret:  vir.TypeRef,
			}))
		}
	}

	if err := e.cache.EmitRef(deps, key, d); err != nil {
		return nil, err
	}

	self := vcx.MkLocal("self_p", vir.TypeRef)
	selfNew := vcx.MkLocal("self_new", snap)
	decls = append([]vir.Decl{
		vcx.MkDomain(domain),
		vcx.MkPredicate(vir.Predicate{Name: pred, Args: []*vir.Local{self}}),
		vcx.MkFunction(vir.Function{
			Name: d.RefToSnap.Name,
			Args: []*vir.Local{self},
			Ret:  snap,
			Pres: []vir.Expr{d.RefToPred.Apply(vcx, vcx.MkLocalEx(self))},
		}),
		vcx.MkMethod(vir.Method{
			Name: d.MethodAssign.Name,
			Args: []*vir.Local{self, selfNew},
			Posts: []vir.Expr{
				d.RefToPred.Apply(vcx, vcx.MkLocalEx(self)),
				vcx.MkEq(d.RefToSnap.Apply(vcx, vcx.MkLocalEx(self)), vcx.MkLocalEx(selfNew)),
			},
		}),
	}, decls...)
	return decls, nil
}
