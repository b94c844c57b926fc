package mir

import "fmt"

// Statement is one non-terminating step of a basic block.
type Statement interface {
	statement()
	String() string
}

// Assign stores the value of an rvalue into a place.
type Assign struct {
	Place  Place
	Rvalue Rvalue
}

// StorageLive marks the start of a local's lifetime.
type StorageLive struct{ Local Local }

// StorageDead marks the end of a local's lifetime.
type StorageDead struct{ Local Local }

// FakeRead is a borrow-checker-only read.
type FakeRead struct{ Place Place }

// Retag is a memory-model annotation.
type Retag struct{ Place Place }

// PlaceMention records that a place expression was evaluated.
type PlaceMention struct{ Place Place }

// AscribeUserType is a user type annotation hint.
type AscribeUserType struct{ Place Place }

// Coverage is an instrumentation marker.
type Coverage struct{}

// Nop does nothing.
type Nop struct{}

// SetDiscriminant writes an enum discriminant.
type SetDiscriminant struct {
	Place   Place
	Variant int
}

// Deinit marks a place as uninitialized.
type Deinit struct{ Place Place }

// Intrinsic is a call to a non-diverging compiler intrinsic.
type Intrinsic struct{ Name string }

// ConstEvalCounter counts steps of constant evaluation.
type ConstEvalCounter struct{}

func (*Assign) statement()           {}
func (*StorageLive) statement()      {}
func (*StorageDead) statement()      {}
func (*FakeRead) statement()         {}
func (*Retag) statement()            {}
func (*PlaceMention) statement()     {}
func (*AscribeUserType) statement()  {}
func (*Coverage) statement()         {}
func (*Nop) statement()              {}
func (*SetDiscriminant) statement()  {}
func (*Deinit) statement()           {}
func (*Intrinsic) statement()        {}
func (*ConstEvalCounter) statement() {}

func (s *Assign) String() string          { return fmt.Sprintf("%s = %s", s.Place, s.Rvalue) }
func (s *StorageLive) String() string     { return fmt.Sprintf("StorageLive(%s)", s.Local) }
func (s *StorageDead) String() string     { return fmt.Sprintf("StorageDead(%s)", s.Local) }
func (s *FakeRead) String() string        { return fmt.Sprintf("FakeRead(%s)", s.Place) }
func (s *Retag) String() string           { return fmt.Sprintf("Retag(%s)", s.Place) }
func (s *PlaceMention) String() string    { return fmt.Sprintf("PlaceMention(%s)", s.Place) }
func (s *AscribeUserType) String() string { return fmt.Sprintf("AscribeUserType(%s)", s.Place) }
func (s *Coverage) String() string        { return "Coverage" }
func (s *Nop) String() string             { return "nop" }
func (s *Deinit) String() string          { return fmt.Sprintf("Deinit(%s)", s.Place) }
func (s *Intrinsic) String() string       { return fmt.Sprintf("Intrinsic(%s)", s.Name) }
func (s *ConstEvalCounter) String() string {
	return "ConstEvalCounter"
}

func (s *SetDiscriminant) String() string {
	return fmt.Sprintf("SetDiscriminant(%s, %d)", s.Place, s.Variant)
}

// StatementKind returns the kind name of a statement, used in diagnostics.
func StatementKind(s Statement) string {
	switch s.(type) {
	case *Assign:
		return "Assign"
	case *StorageLive:
		return "StorageLive"
	case *StorageDead:
		return "StorageDead"
	case *FakeRead:
		return "FakeRead"
	case *Retag:
		return "Retag"
	case *PlaceMention:
		return "PlaceMention"
	case *AscribeUserType:
		return "AscribeUserType"
	case *Coverage:
		return "Coverage"
	case *Nop:
		return "Nop"
	case *SetDiscriminant:
		return "SetDiscriminant"
	case *Deinit:
		return "Deinit"
	case *Intrinsic:
		return "Intrinsic"
	case *ConstEvalCounter:
		return "ConstEvalCounter"
	default:
		return fmt.Sprintf("%T", s)
	}
}
