package vir

import "sync"

const slabChunk = 256

// slab hands out pointers into fixed-capacity chunks. A chunk is never
// reallocated after creation, so returned pointers stay valid.
type slab[T any] struct {
	chunks [][]T
}

func (s *slab[T]) alloc(v T) *T {
	n := len(s.chunks)
	if n == 0 || len(s.chunks[n-1]) == cap(s.chunks[n-1]) {
		s.chunks = append(s.chunks, make([]T, 0, slabChunk))
		n++
	}
	chunk := &s.chunks[n-1]
	*chunk = append(*chunk, v)
	return &(*chunk)[len(*chunk)-1]
}

// Ctx is the arena owning every IVL node of one encoding session.
type Ctx struct {
	mu    sync.Mutex
	nodes int

	locals      slab[Local]
	localExs    slab[LocalEx]
	consts      slab[Const]
	funcApps    slab[FuncApp]
	predApps    slab[PredicateApp]
	binOps      slab[BinOp]
	todos       slab[Todo]
	raws        slab[Raw]
	localDecls  slab[LocalDecl]
	pureAssigns slab[PureAssign]
	exhales     slab[Exhale]
	inhales     slab[Inhale]
	unfolds     slab[Unfold]
	folds       slab[Fold]
	calls       slab[MethodCall]
	comments    slab[Comment]
	gotos       slab[Goto]
	gotoIfs     slab[GotoIf]
	exits       slab[Exit]
	dummies     slab[Dummy]
	labels      slab[BlockLabel]
	blocks      slab[CfgBlock]
	methods     slab[Method]
	predicates  slab[Predicate]
	functions   slab[Function]
	domains     slab[Domain]
}

// NewCtx returns an empty arena.
func NewCtx() *Ctx {
	return &Ctx{}
}

// NodeCount returns the number of nodes allocated so far.
func (c *Ctx) NodeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nodes
}

func alloc[T any](c *Ctx, s *slab[T], v T) *T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodes++
	return s.alloc(v)
}
