package vir

import (
	"fmt"
	"strconv"
	"strings"
)

// Printer renders IVL in Viper syntax.
type Printer struct {
	indent int
	output strings.Builder
}

// NewPrinter creates a printer.
func NewPrinter() *Printer {
	return &Printer{}
}

// Print renders a whole program.
func Print(program *Program) string {
	p := NewPrinter()
	p.printProgram(program)
	return p.output.String()
}

// PrintMethod renders one method.
func PrintMethod(m *Method) string {
	p := NewPrinter()
	p.printMethod(m)
	return p.output.String()
}

// PrintExpr renders an expression.
func PrintExpr(e Expr) string {
	return exprString(e, false)
}

// PrintStmt renders a statement on one line.
func PrintStmt(s Stmt) string {
	return stmtString(s)
}

// PrintTerminator renders a terminator. GotoIf spans several lines.
func PrintTerminator(t Terminator) string {
	return strings.Join(terminatorLines(t), "\n")
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...any) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printProgram(program *Program) {
	first := true
	sep := func() {
		if !first {
			p.writeLine("")
		}
		first = false
	}
	for _, d := range program.Domains {
		sep()
		p.printDomain(d)
	}
	for _, pred := range program.Predicates {
		sep()
		p.printPredicate(pred)
	}
	for _, f := range program.Functions {
		sep()
		p.printFunction(f)
	}
	for _, m := range program.Methods {
		sep()
		p.printMethod(m)
	}
}

func (p *Printer) printDomain(d *Domain) {
	p.writeLine("domain %s {", d.Name)
	p.indent++
	for _, f := range d.Functions {
		params := make([]string, len(f.Params))
		for i, t := range f.Params {
			params[i] = t.String()
		}
		p.writeLine("function %s(%s): %s", f.Name, strings.Join(params, ", "), f.Ret)
	}
	p.indent--
	p.writeLine("}")
}

func (p *Printer) printPredicate(pred *Predicate) {
	if pred.Body == nil {
		p.writeLine("predicate %s(%s)", pred.Name, formals(pred.Args))
		return
	}
	p.writeLine("predicate %s(%s) {", pred.Name, formals(pred.Args))
	p.indent++
	p.writeLine("%s", exprString(pred.Body, false))
	p.indent--
	p.writeLine("}")
}

func (p *Printer) printFunction(f *Function) {
	p.writeLine("function %s(%s): %s", f.Name, formals(f.Args), f.Ret)
	p.indent++
	for _, pre := range f.Pres {
		p.writeLine("requires %s", exprString(pre, false))
	}
	for _, post := range f.Posts {
		p.writeLine("ensures %s", exprString(post, false))
	}
	p.indent--
	if f.Body != nil {
		p.writeLine("{")
		p.indent++
		p.writeLine("%s", exprString(f.Body, false))
		p.indent--
		p.writeLine("}")
	}
}

func (p *Printer) printMethod(m *Method) {
	sig := fmt.Sprintf("method %s(%s)", m.Name, formals(m.Args))
	if len(m.Rets) > 0 {
		sig += fmt.Sprintf(" returns (%s)", formals(m.Rets))
	}
	p.writeLine("%s", sig)
	p.indent++
	for _, pre := range m.Pres {
		p.writeLine("requires %s", exprString(pre, false))
	}
	for _, post := range m.Posts {
		p.writeLine("ensures %s", exprString(post, false))
	}
	p.indent--
	if m.Blocks == nil {
		return
	}
	p.writeLine("{")
	p.indent++
	for _, b := range m.Blocks {
		p.writeLine("label %s", b.Label)
		for _, s := range b.Stmts {
			p.writeLine("%s", stmtString(s))
		}
		for _, line := range terminatorLines(b.Terminator) {
			p.writeLine("%s", line)
		}
	}
	p.indent--
	p.writeLine("}")
}

func formals(locals []*Local) string {
	parts := make([]string, len(locals))
	for i, l := range locals {
		parts[i] = fmt.Sprintf("%s: %s", l.Name, l.Ty)
	}
	return strings.Join(parts, ", ")
}

func exprList(args []Expr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = exprString(a, false)
	}
	return strings.Join(parts, ", ")
}

func exprString(e Expr, nested bool) string {
	switch e := e.(type) {
	case *LocalEx:
		return e.Local.Name
	case *Const:
		switch e.Kind {
		case ConstBool:
			return strconv.FormatBool(e.Bool)
		case ConstNull:
			return "null"
		default:
			return e.Int.String()
		}
	case *FuncApp:
		return fmt.Sprintf("%s(%s)", e.Target, exprList(e.Args))
	case *PredicateApp:
		return fmt.Sprintf("%s(%s)", e.Target, exprList(e.Args))
	case *BinOp:
		s := fmt.Sprintf("%s %s %s", exprString(e.LHS, true), e.Kind, exprString(e.RHS, true))
		if nested {
			return "(" + s + ")"
		}
		return s
	case *Todo:
		return "todo(" + strconv.Quote(e.Text) + ")"
	case *Raw:
		if nested {
			return "(" + e.Text + ")"
		}
		return e.Text
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("<%T>", e)
	}
}

func stmtString(s Stmt) string {
	switch s := s.(type) {
	case *LocalDecl:
		if s.Init != nil {
			return fmt.Sprintf("var %s: %s := %s", s.Local.Name, s.Local.Ty, exprString(s.Init, false))
		}
		return fmt.Sprintf("var %s: %s", s.Local.Name, s.Local.Ty)
	case *PureAssign:
		return fmt.Sprintf("%s := %s", exprString(s.LHS, false), exprString(s.RHS, false))
	case *Exhale:
		return "exhale " + exprString(s.Expr, false)
	case *Inhale:
		return "inhale " + exprString(s.Expr, false)
	case *Unfold:
		return "unfold " + exprString(s.Predicate, false)
	case *Fold:
		return "fold " + exprString(s.Predicate, false)
	case *MethodCall:
		return fmt.Sprintf("%s(%s)", s.Target, exprList(s.Args))
	case *Comment:
		return "// " + s.Text
	default:
		return fmt.Sprintf("<%T>", s)
	}
}

func terminatorLines(t Terminator) []string {
	switch t := t.(type) {
	case *Goto:
		return []string{"goto " + t.Target.String()}
	case *GotoIf:
		lines := make([]string, 0, len(t.Targets)+1)
		value := exprString(t.Value, true)
		for _, tgt := range t.Targets {
			lines = append(lines, fmt.Sprintf("if (%s == %s) { goto %s }", value, exprString(tgt.Value, true), tgt.Target))
		}
		return append(lines, "goto "+t.Otherwise.String())
	case *Exit:
		return nil
	case *Dummy:
		return []string{"assert false // " + t.Text}
	default:
		return []string{fmt.Sprintf("<%T>", t)}
	}
}
