package encoder

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xldenis/prusti-dev/internal/builtin"
	"github.com/xldenis/prusti-dev/internal/crate"
	"github.com/xldenis/prusti-dev/internal/mir"
	"github.com/xldenis/prusti-dev/internal/taskenc"
	"github.com/xldenis/prusti-dev/internal/typeenc"
	"github.com/xldenis/prusti-dev/internal/vir"
)

// Source supplies procedures by identity.
type Source interface {
	Procedure(def mir.DefID) (*crate.Procedure, bool)

	// Defs lists every procedure in declaration order.
	Defs() []mir.DefID
}

// MethodRef is the reference output of a procedure: enough to call it.
type MethodRef struct {
	Def    mir.DefID
	Method vir.MethodIdent

	// ArgCount excludes the return place.
	ArgCount int
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) { s.log = l }
}

// WithComments controls the debug comment emitted before each statement and
// terminator. Enabled by default.
func WithComments(on bool) SessionOption {
	return func(s *Session) { s.comments = on }
}

// WithReachBlocks declares a reachability flag per block and sets it on
// block entry.
func WithReachBlocks(on bool) SessionOption {
	return func(s *Session) { s.reachBlocks = on }
}

// WithTotalRvalues makes unsupported rvalues fatal instead of encoding them
// as placeholders.
func WithTotalRvalues(on bool) SessionOption {
	return func(s *Session) { s.totalRvalues = on }
}

// Session encodes the procedures of one source. It is safe for concurrent
// use; each goroutine must use its own dependency path (see EncodeWith).
type Session struct {
	vcx     *vir.Ctx
	reg     *taskenc.Registry
	src     Source
	types   *typeenc.Encoder
	ops     *builtin.Resolver
	methods *taskenc.Cache[mir.DefID, MethodRef, *vir.Method]

	log          *slog.Logger
	comments     bool
	reachBlocks  bool
	totalRvalues bool
}

// NewSession creates a session over src.
func NewSession(src Source, opts ...SessionOption) *Session {
	reg := taskenc.NewRegistry()
	vcx := vir.NewCtx()
	types := typeenc.New(reg, vcx)
	s := &Session{
		vcx:      vcx,
		reg:      reg,
		src:      src,
		types:    types,
		ops:      builtin.New(reg, vcx, types),
		log:      slog.Default(),
		comments: true,
	}
	s.methods = taskenc.NewCache[mir.DefID, MethodRef, *vir.Method](reg, "mir_impure", s.encodeMethod)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ctx returns the session arena.
func (s *Session) Ctx() *vir.Ctx { return s.vcx }

// NewDeps starts a dependency path for one worker goroutine.
func (s *Session) NewDeps() *taskenc.Deps { return s.reg.NewDeps() }

// EncodeProcedure returns the method of def, encoding it on a fresh
// dependency path if needed.
func (s *Session) EncodeProcedure(def mir.DefID) (*vir.Method, error) {
	return s.EncodeWith(s.reg.NewDeps(), def)
}

// EncodeWith returns the method of def using the caller's dependency path.
func (s *Session) EncodeWith(deps *taskenc.Deps, def mir.DefID) (*vir.Method, error) {
	m, err := s.methods.RequireFull(deps, def)
	if err != nil {
		return nil, at(classify(err, "encode "+string(def)), def, nil)
	}
	return m, nil
}

// Reference returns the signature of def without requiring its body.
func (s *Session) Reference(deps *taskenc.Deps, def mir.DefID) (MethodRef, error) {
	ref, err := s.methods.RequireRef(deps, def)
	if err != nil {
		return MethodRef{}, at(classify(err, "signature of "+string(def)), def, nil)
	}
	return ref, nil
}

// Program assembles the support declarations and every successfully encoded
// method. Methods follow the declaration order of the source.
func (s *Session) Program() *vir.Program {
	p := &vir.Program{}
	p.Add(s.types.Decls()...)
	p.Add(s.ops.Decls()...)
	p.SortSupport()
	for _, def := range s.src.Defs() {
		if m, ok := s.methods.Lookup(def); ok {
			p.Add(m)
		}
	}
	return p
}

// MethodName returns the method name of a procedure named name.
func MethodName(name string) string { return "m_" + name }

// LocalName returns the reference name of source local l.
func LocalName(l mir.Local) string { return fmt.Sprintf("_%dp", int(l)) }

// SourceLocal inverts LocalName.
func SourceLocal(name string) (mir.Local, bool) {
	rest, ok := strings.CutPrefix(name, "_")
	if !ok {
		return 0, false
	}
	rest, ok = strings.CutSuffix(rest, "p")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 || strconv.Itoa(n) != rest {
		return 0, false
	}
	return mir.Local(n), true
}

// encodeMethod is the task computing the full output of one procedure.
func (s *Session) encodeMethod(deps *taskenc.Deps, def mir.DefID) (*vir.Method, error) {
	proc, ok := s.src.Procedure(def)
	if !ok {
		return nil, &Error{Class: ClassMalformed, Code: CodeUnknownProcedure, Message: "unknown procedure", Def: def}
	}
	body := proc.Body
	if body == nil {
		return nil, &Error{Class: ClassMalformed, Code: CodeMalformedType, Message: "procedure has no local declarations", Def: def}
	}
	if body.ArgCount+1 > len(body.Locals) {
		return nil, &Error{
			Class:   ClassMalformed,
			Code:    CodeMalformedType,
			Message: fmt.Sprintf("%d arguments but only %d locals", body.ArgCount, len(body.Locals)),
			Def:     def,
		}
	}

	locals, err := s.localDefs(deps, body)
	if err != nil {
		return nil, at(err, def, nil)
	}

	vcx := s.vcx
	formals := body.ArgCount + 1
	params := make([]vir.Type, formals)
	for i := range params {
		params[i] = vir.TypeRef
	}
	ref := MethodRef{
		Def:      def,
		Method:   vir.NewMethodIdent(MethodName(body.Name), params...),
		ArgCount: body.ArgCount,
	}
	if err := s.methods.EmitRef(deps, def, ref); err != nil {
		return nil, at(classify(err, "publish signature"), def, nil)
	}

	var blocks []*vir.CfgBlock
	if !proc.Spec.Trusted && !proc.External && body.HasBlocks() {
		p := &procEncoder{
			s:        s,
			deps:     deps,
			proc:     proc,
			body:     body,
			locals:   locals,
			repacked: make(map[repackKey]bool),
		}
		blocks, err = p.encodeBody()
		if err != nil {
			return nil, at(err, def, nil)
		}
	}

	args := make([]*vir.Local, formals)
	pres := make([]vir.Expr, 0, body.ArgCount+len(proc.Spec.Pres))
	for i := range args {
		args[i] = locals[i].local
		if i != int(mir.ReturnPlace) {
			pres = append(pres, locals[i].pred())
		}
	}
	for _, pre := range proc.Spec.Pres {
		pres = append(pres, vcx.MkRaw(pre))
	}
	posts := make([]vir.Expr, 0, 1+len(proc.Spec.Posts))
	posts = append(posts, locals[mir.ReturnPlace].pred())
	for _, post := range proc.Spec.Posts {
		posts = append(posts, vcx.MkRaw(post))
	}

	m := vcx.MkMethod(vir.Method{
		Name:   ref.Method.Name,
		Args:   args,
		Pres:   pres,
		Posts:  posts,
		Blocks: blocks,
	})
	s.log.Debug("encoded procedure",
		"def", def,
		"blocks", len(blocks),
		"trusted", proc.Spec.Trusted,
		"external", proc.External,
	)
	return m, nil
}

// localDef is the encoding of one source local.
type localDef struct {
	local *vir.Local
	ex    vir.Expr
	ty    *typeenc.Descriptor
	vcx   *vir.Ctx
}

func (l localDef) pred() vir.Expr {
	return l.ty.RefToPred.Apply(l.vcx, l.ex)
}

func (s *Session) localDefs(deps *taskenc.Deps, body *mir.Body) ([]localDef, error) {
	out := make([]localDef, len(body.Locals))
	for i, decl := range body.Locals {
		d, err := s.types.Require(deps, decl.Ty)
		if err != nil {
			return nil, classify(err, fmt.Sprintf("type of local %s", mir.Local(i)))
		}
		l := s.vcx.MkLocal(LocalName(mir.Local(i)), vir.TypeRef)
		out[i] = localDef{local: l, ex: s.vcx.MkLocalEx(l), ty: d, vcx: s.vcx}
	}
	return out, nil
}
