package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/xldenis/prusti-dev/internal/crate"
	"github.com/xldenis/prusti-dev/internal/fpcs"
	"github.com/xldenis/prusti-dev/internal/mir"
	"github.com/xldenis/prusti-dev/internal/mirtext"
)

// CompileCrate builds a crate from the root value of a crate file:
//
//	crate: "demo"
//	types: Point: fields: ["i32", "i32"]
//	procedures: add: {
//		locals: ["i32", "i32", "i32"]
//		args:   2
//		blocks: [{statements: ["_0 = Add(copy _1, copy _2)"], terminator: "return"}]
//	}
//
// The crate is named by the optional "crate" field, falling back to name.
// Procedures keep their declaration order.
func CompileCrate(name string, v cue.Value) (*crate.Crate, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError("cue", err)
	}

	if nameVal := v.LookupPath(cue.ParsePath("crate")); nameVal.Exists() {
		s, err := nameVal.String()
		if err != nil {
			return nil, formatCUEError("crate", err)
		}
		name = s
	}
	c := crate.New(name)

	types, err := compileTypes(v.LookupPath(cue.ParsePath("types")))
	if err != nil {
		return nil, err
	}
	c.Types = types

	procsVal := v.LookupPath(cue.ParsePath("procedures"))
	if !procsVal.Exists() {
		return c, nil
	}
	iter, err := procsVal.Fields()
	if err != nil {
		return nil, formatCUEError("procedures", err)
	}
	for iter.Next() {
		proc, err := CompileProcedure(iter.Selector().Unquoted(), iter.Value(), types)
		if err != nil {
			return nil, err
		}
		if err := c.Add(proc); err != nil {
			return nil, &CompileError{Field: "procedures." + iter.Label(), Message: err.Error(), Pos: iter.Value().Pos()}
		}
	}
	return c, nil
}

// compileTypes resolves the struct declarations. Structs may refer to each
// other in any order; a struct that (transitively) contains itself or an
// unknown type is an error.
func compileTypes(v cue.Value) (map[string]mir.Ty, error) {
	resolved := make(map[string]mir.Ty)
	if !v.Exists() {
		return resolved, nil
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError("types", err)
	}

	type decl struct {
		fields []string
		pos    token.Pos
	}
	decls := make(map[string]decl)
	var pending []string
	for iter.Next() {
		name := iter.Selector().Unquoted()
		field := "types." + name
		if _, ok := mir.ParsePrimitive(name); ok {
			return nil, &CompileError{Field: field, Message: "struct name shadows a primitive type", Pos: iter.Value().Pos()}
		}
		fields, err := stringList(iter.Value(), "fields", field)
		if err != nil {
			return nil, err
		}
		decls[name] = decl{fields: fields, pos: iter.Value().Pos()}
		pending = append(pending, name)
	}

	ctx := &mirtext.Context{Types: resolved}
	for len(pending) > 0 {
		var next []string
		var firstErr error
		for _, name := range pending {
			fields := make([]mir.Ty, len(decls[name].fields))
			ok := true
			for i, src := range decls[name].fields {
				ty, err := ctx.ParseType(src)
				if err != nil {
					if firstErr == nil {
						firstErr = &CompileError{
							Field:   fmt.Sprintf("types.%s.fields[%d]", name, i),
							Message: err.Error(),
							Pos:     decls[name].pos,
							Err:     err,
						}
					}
					ok = false
					break
				}
				fields[i] = ty
			}
			if ok {
				resolved[name] = mir.Adt(name, fields...)
			} else {
				next = append(next, name)
			}
		}
		if len(next) == len(pending) {
			return nil, firstErr
		}
		pending = next
	}
	return resolved, nil
}

// CompileProcedure builds one procedure from its CUE value.
func CompileProcedure(name string, v cue.Value, types map[string]mir.Ty) (*crate.Procedure, error) {
	field := "procedures." + name
	if err := v.Err(); err != nil {
		return nil, formatCUEError(field, err)
	}

	localSrcs, err := stringList(v, "locals", field)
	if err != nil {
		return nil, err
	}
	if len(localSrcs) == 0 {
		return nil, &CompileError{Field: field + ".locals", Message: "at least the return place is required", Pos: v.Pos()}
	}
	ctx := &mirtext.Context{Types: types}
	body := &mir.Body{Def: mir.DefID(name), Name: name}
	for i, src := range localSrcs {
		ty, err := ctx.ParseType(src)
		if err != nil {
			return nil, &CompileError{Field: fmt.Sprintf("%s.locals[%d]", field, i), Message: err.Error(), Pos: v.Pos(), Err: err}
		}
		body.Locals = append(body.Locals, mir.LocalDecl{Ty: ty})
		ctx.Locals = append(ctx.Locals, ty)
	}

	args, err := optionalInt(v, "args", field)
	if err != nil {
		return nil, err
	}
	body.ArgCount = int(args)

	proc := &crate.Procedure{Def: body.Def, Body: body}
	if proc.Spec.Trusted, err = optionalBool(v, "trusted", field); err != nil {
		return nil, err
	}
	if proc.External, err = optionalBool(v, "extern", field); err != nil {
		return nil, err
	}
	if proc.Spec.Pres, err = stringList(v, "requires", field); err != nil {
		return nil, err
	}
	if proc.Spec.Posts, err = stringList(v, "ensures", field); err != nil {
		return nil, err
	}

	if err := compileBlocks(ctx, body, v.LookupPath(cue.ParsePath("blocks")), field+".blocks"); err != nil {
		return nil, err
	}
	if proc.External && body.HasBlocks() {
		return nil, &CompileError{Field: field + ".blocks", Message: "extern procedure cannot have blocks", Pos: v.Pos()}
	}

	table := fpcs.NewTable()
	table.Cover(body)
	if err := compileRepacks(ctx, table, v.LookupPath(cue.ParsePath("repacks")), field+".repacks"); err != nil {
		return nil, err
	}
	proc.Schedule = table
	return proc, nil
}

func compileBlocks(ctx *mirtext.Context, body *mir.Body, v cue.Value, field string) error {
	if !v.Exists() {
		return nil
	}
	iter, err := v.List()
	if err != nil {
		return formatCUEError(field, err)
	}
	for i := 0; iter.Next(); i++ {
		bv := iter.Value()
		bfield := fmt.Sprintf("%s[%d]", field, i)
		var bb mir.BasicBlockData

		err := eachString(bv, "statements", bfield, func(j int, src string, pos token.Pos) error {
			stmt, err := ctx.ParseStatement(src)
			if err != nil {
				return &CompileError{Field: fmt.Sprintf("%s.statements[%d]", bfield, j), Message: err.Error(), Pos: pos, Err: err}
			}
			bb.Statements = append(bb.Statements, stmt)
			return nil
		})
		if err != nil {
			return err
		}

		termVal := bv.LookupPath(cue.ParsePath("terminator"))
		if !termVal.Exists() {
			return &CompileError{Field: bfield + ".terminator", Message: "terminator is required", Pos: bv.Pos()}
		}
		src, err := termVal.String()
		if err != nil {
			return formatCUEError(bfield+".terminator", err)
		}
		if bb.Terminator, err = ctx.ParseTerminator(src); err != nil {
			return &CompileError{Field: bfield + ".terminator", Message: err.Error(), Pos: termVal.Pos(), Err: err}
		}
		if bb.IsCleanup, err = optionalBool(bv, "cleanup", bfield); err != nil {
			return err
		}
		body.Blocks = append(body.Blocks, bb)
	}
	return nil
}

func compileRepacks(ctx *mirtext.Context, table *fpcs.Table, v cue.Value, field string) error {
	if !v.Exists() {
		return nil
	}
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(field, err)
	}
	for iter.Next() {
		label := iter.Selector().Unquoted()
		lfield := fmt.Sprintf("%s.%q", field, label)
		loc, err := mir.ParseLocation(label)
		if err != nil {
			return &CompileError{Field: lfield, Message: err.Error(), Pos: iter.Value().Pos()}
		}
		// Register loc even when both lists are empty.
		table.Append(loc, fpcs.PhaseStart)
		for _, phase := range []fpcs.Phase{fpcs.PhaseStart, fpcs.PhaseMiddle} {
			err := eachString(iter.Value(), phase.String(), lfield, func(i int, src string, pos token.Pos) error {
				op, err := ctx.ParseRepack(src)
				if err != nil {
					return &CompileError{Field: fmt.Sprintf("%s.%s[%d]", lfield, phase, i), Message: err.Error(), Pos: pos, Err: err}
				}
				table.Append(loc, phase, op)
				return nil
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// eachString calls fn for every element of the optional string list at
// v.name.
func eachString(v cue.Value, name, field string, fn func(i int, s string, pos token.Pos) error) error {
	lv := v.LookupPath(cue.ParsePath(name))
	if !lv.Exists() {
		return nil
	}
	iter, err := lv.List()
	if err != nil {
		return formatCUEError(field+"."+name, err)
	}
	for i := 0; iter.Next(); i++ {
		s, err := iter.Value().String()
		if err != nil {
			return formatCUEError(fmt.Sprintf("%s.%s[%d]", field, name, i), err)
		}
		if err := fn(i, s, iter.Value().Pos()); err != nil {
			return err
		}
	}
	return nil
}

func stringList(v cue.Value, name, field string) ([]string, error) {
	var out []string
	err := eachString(v, name, field, func(_ int, s string, _ token.Pos) error {
		out = append(out, s)
		return nil
	})
	return out, err
}

func optionalBool(v cue.Value, name, field string) (bool, error) {
	bv := v.LookupPath(cue.ParsePath(name))
	if !bv.Exists() {
		return false, nil
	}
	b, err := bv.Bool()
	if err != nil {
		return false, formatCUEError(field+"."+name, err)
	}
	return b, nil
}

func optionalInt(v cue.Value, name, field string) (int64, error) {
	iv := v.LookupPath(cue.ParsePath(name))
	if !iv.Exists() {
		return 0, nil
	}
	n, err := iv.Int64()
	if err != nil {
		return 0, formatCUEError(field+"."+name, err)
	}
	return n, nil
}
