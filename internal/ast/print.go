package ast

import (
	"fmt"
	"io"
	"strings"
)

// Dump returns a human-readable representation of a statement chain or
// expression tree, following Next() links until they run out, indented
// by indent levels. Used by -verbose diagnostics, never by the core
// semantics.
func Dump(node Node, indent int) string {
	var sb strings.Builder
	fprintNode(&sb, node, indent)
	return sb.String()
}

// DumpClass renders a class's method bodies, one statement chain per
// method, for -verbose class-database dumps.
func DumpClass(c *ClassDef) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "class %s extends %s\n", c.Name, c.ParentName)
	for _, name := range methodNames(c) {
		m, _ := c.methods[name]
		fmt.Fprintf(&sb, "  def %s(%s):\n", m.Name, strings.Join(m.Formals, ", "))
		sb.WriteString(Dump(m.Body, 2))
	}
	return sb.String()
}

func methodNames(c *ClassDef) []string {
	names := make([]string, 0, len(c.methods))
	for name := range c.methods {
		names = append(names, name)
	}
	return names
}

func fprintNode(w io.Writer, n Node, indent int) {
	if n == nil {
		return
	}

	ind := strings.Repeat("  ", indent)

	switch n := n.(type) {
	case Stmt:
		fprintStmt(w, n, indent)

	case *ThisExpr:
		fmt.Fprintf(w, "%sThis\n", ind)

	case *RegisterExpr:
		fmt.Fprintf(w, "%sRegister %s\n", ind, n.Name)

	case *IntExpr:
		fmt.Fprintf(w, "%sInt %d\n", ind, n.Value)

	case *BoolExpr:
		fmt.Fprintf(w, "%sBool %v\n", ind, n.Value)

	case *NullExpr:
		fmt.Fprintf(w, "%sNull\n", ind)

	case *VoidExpr:
		fmt.Fprintf(w, "%sVoid\n", ind)

	case *FieldExpr:
		fmt.Fprintf(w, "%sField .%s\n", ind, n.Field)
		fprintNode(w, n.Obj, indent+1)

	case *InstanceOfExpr:
		fmt.Fprintf(w, "%sInstanceOf %s\n", ind, n.Class)
		fprintNode(w, n.Obj, indent+1)

	case *AtomicOpExpr:
		fmt.Fprintf(w, "%sAtomicOp %s\n", ind, n.Op)
		for _, a := range n.Args {
			fprintNode(w, a, indent+1)
		}

	default:
		fmt.Fprintf(w, "%s<unknown node %T>\n", ind, n)
	}
}

func fprintStmt(w io.Writer, s Stmt, indent int) {
	if s == nil {
		return
	}

	ind := strings.Repeat("  ", indent)

	switch n := s.(type) {
	case *SkipStmt:
		fmt.Fprintf(w, "%sskip\n", ind)

	case *LabelStmt:
		fmt.Fprintf(w, "%slabel %s:\n", ind, n.Name)

	case *GotoStmt:
		fmt.Fprintf(w, "%sgoto %s\n", ind, n.Label)

	case *IfStmt:
		fmt.Fprintf(w, "%sif goto %s\n", ind, n.Label)
		fprintNode(w, n.Cond, indent+1)

	case *AssignStmt:
		fmt.Fprintf(w, "%s%s := \n", ind, n.Reg)
		fprintNode(w, n.Rhs, indent+1)

	case *FieldAssignStmt:
		fmt.Fprintf(w, "%s.%s := \n", ind, n.Field)
		fprintNode(w, n.Obj, indent+1)
		fprintNode(w, n.Rhs, indent+1)

	case *NewStmt:
		fmt.Fprintf(w, "%s%s := new %s\n", ind, n.Reg, n.Class)

	case *InvokeStmt:
		fmt.Fprintf(w, "%s%s := invoke .%s(%d args)\n", ind, n.Reg, n.Method, len(n.Args))
		fprintNode(w, n.Obj, indent+1)

	case *InvokeSuperStmt:
		fmt.Fprintf(w, "%s%s := invoke super.%s(%d args)\n", ind, n.Reg, n.Method, len(n.Args))

	case *ReturnStmt:
		fmt.Fprintf(w, "%sreturn\n", ind)
		fprintNode(w, n.Result, indent+1)

	case *PushHandlerStmt:
		fmt.Fprintf(w, "%spushHandler %s %s\n", ind, n.CatchClass, n.Label)

	case *PopHandlerStmt:
		fmt.Fprintf(w, "%spopHandler\n", ind)

	case *ThrowStmt:
		fmt.Fprintf(w, "%sthrow\n", ind)
		fprintNode(w, n.Exc, indent+1)

	case *MoveExceptionStmt:
		fmt.Fprintf(w, "%smoveException %s\n", ind, n.Reg)

	case *PrintStmt:
		fmt.Fprintf(w, "%sprint(%d args)\n", ind, len(n.Args))
		for _, a := range n.Args {
			fprintNode(w, a, indent+1)
		}

	default:
		fmt.Fprintf(w, "%s<unknown stmt %T>\n", ind, n)
	}

	fprintStmt(w, s.Next(), indent)
}
