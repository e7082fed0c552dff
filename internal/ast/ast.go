package ast

import (
	"fmt"

	"golang.org/x/exp/slices"

	"avenir/internal/token"
)

// Node is the common interface for every AST element: classes, statements,
// and expressions all carry a source position.
type Node interface {
	Pos() token.Position
}

// Stmt is a statement node. Every statement (spec.md §3) carries a
// reference to its syntactic successor, set once the enclosing method
// body is fully parsed; Goto/If/Return may ignore it.
type Stmt interface {
	Node
	Next() Stmt
	SetNext(Stmt)
	stmtNode()
}

// Expr is a pure, side-effect-free, terminating atomic expression.
type Expr interface {
	Node
	exprNode()
}

type stmtBase struct {
	pos  token.Position
	next Stmt
}

func (s *stmtBase) Pos() token.Position { return s.pos }
func (s *stmtBase) Next() Stmt          { return s.next }
func (s *stmtBase) SetNext(n Stmt)      { s.next = n }

// ---------- Registry ----------

// Registry is the explicit machine context for class and label lookup
// (spec.md §9: "bundled into an explicit machine context ... rather than
// true globals"). A fresh Registry gives every loaded program, and every
// test, its own isolated class/label namespace.
type Registry struct {
	classes map[string]*ClassDef
	labels  map[string]Stmt
}

func NewRegistry() *Registry {
	return &Registry{
		classes: make(map[string]*ClassDef),
		labels:  make(map[string]Stmt),
	}
}

// RegisterClass installs (or overwrites) a class definition by name.
// spec.md §4.1: "duplicate registration overwrites (the runtime assumes
// unique names)".
func (r *Registry) RegisterClass(c *ClassDef) {
	r.classes[c.Name] = c
}

func (r *Registry) Class(name string) (*ClassDef, bool) {
	c, ok := r.classes[name]
	return c, ok
}

// ClassNames returns every registered class name in sorted order, for
// deterministic -verbose dumps (map iteration order is not stable).
func (r *Registry) ClassNames() []string {
	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// RegisterLabel installs a label target. Called once, at LabelStmt
// construction (spec.md §4.2).
func (r *Registry) RegisterLabel(name string, s Stmt) {
	r.labels[name] = s
}

// Label resolves a label name to the statement it was declared on.
func (r *Registry) Label(name string) (Stmt, error) {
	s, ok := r.labels[name]
	if !ok {
		return nil, fmt.Errorf("unresolved label: %s", name)
	}
	return s, nil
}

// ---------- Classes, methods, fields ----------

// ClassDef holds a class definition: its name, its parent's name (looked
// up through the Registry rather than held as a direct pointer, so that
// construction order never matters and no cyclic object graph is built —
// spec.md §9 "Cyclic class references"), and its field/method tables.
type ClassDef struct {
	Name       string
	ParentName string // "" at the root of a chain
	NamePos    token.Position

	fields  map[string]*FieldDef
	methods map[string]*MethodDef
}

// NewClassDef creates a class definition and registers it in reg.
func NewClassDef(reg *Registry, name, parentName string, pos token.Position) *ClassDef {
	c := &ClassDef{
		Name:       name,
		ParentName: parentName,
		NamePos:    pos,
		fields:     make(map[string]*FieldDef),
		methods:    make(map[string]*MethodDef),
	}
	reg.RegisterClass(c)
	return c
}

func (c *ClassDef) Pos() token.Position { return c.NamePos }

// AddField declares a field on this class.
func (c *ClassDef) AddField(name string) {
	c.fields[name] = &FieldDef{Name: name}
}

// AddMethod declares a method on this class.
func (c *ClassDef) AddMethod(name string, formals []string, body Stmt) {
	c.methods[name] = &MethodDef{Name: name, Formals: formals, Body: body}
}

func (c *ClassDef) parent(reg *Registry) *ClassDef {
	if c.ParentName == "" {
		return nil
	}
	p, ok := reg.Class(c.ParentName)
	if !ok {
		return nil
	}
	return p
}

// IsInstanceOf returns true iff otherClassName names this class or any
// ancestor, walking the parent chain to the root (spec.md §4.1).
func (c *ClassDef) IsInstanceOf(reg *Registry, otherClassName string) bool {
	if c.Name == otherClassName {
		return true
	}
	p := c.parent(reg)
	if p == nil {
		return false
	}
	return p.IsInstanceOf(reg, otherClassName)
}

// LookupMethod walks from c toward the root, returning the shallowest
// match (spec.md §4.1).
func (c *ClassDef) LookupMethod(reg *Registry, name string) (*MethodDef, error) {
	if m, ok := c.methods[name]; ok {
		return m, nil
	}
	p := c.parent(reg)
	if p == nil {
		return nil, fmt.Errorf("no such method: %s.%s", c.Name, name)
	}
	return p.LookupMethod(reg, name)
}

// LookupField walks from c toward the root, returning the shallowest
// match (spec.md §4.1).
func (c *ClassDef) LookupField(reg *Registry, name string) (*FieldDef, error) {
	if f, ok := c.fields[name]; ok {
		return f, nil
	}
	p := c.parent(reg)
	if p == nil {
		return nil, fmt.Errorf("no such field: %s.%s", c.Name, name)
	}
	return p.LookupField(reg, name)
}

// HasMethod reports whether a method is declared directly on c (used by
// the driver's main-class selection rule, spec.md §6.3 — it does not walk
// the parent chain, matching "whose method table contains main").
func (c *ClassDef) HasMethod(name string) bool {
	_, ok := c.methods[name]
	return ok
}

type MethodDef struct {
	Name    string
	Formals []string
	Body    Stmt
}

type FieldDef struct {
	Name string
}

// ---------- Statements ----------

type SkipStmt struct{ stmtBase }

func (s *SkipStmt) stmtNode() {}

func NewSkipStmt(pos token.Position) *SkipStmt {
	return &SkipStmt{stmtBase{pos: pos}}
}

// LabelStmt registers itself into reg's label index on construction
// (spec.md §3, §4.2); Goto/If resolve their target to this node.
type LabelStmt struct {
	stmtBase
	Name string
}

func (s *LabelStmt) stmtNode() {}

func NewLabelStmt(reg *Registry, name string, pos token.Position) *LabelStmt {
	s := &LabelStmt{stmtBase: stmtBase{pos: pos}, Name: name}
	reg.RegisterLabel(name, s)
	return s
}

type GotoStmt struct {
	stmtBase
	Label string
}

func (s *GotoStmt) stmtNode() {}

func NewGotoStmt(label string, pos token.Position) *GotoStmt {
	return &GotoStmt{stmtBase: stmtBase{pos: pos}, Label: label}
}

type IfStmt struct {
	stmtBase
	Cond  Expr
	Label string
}

func (s *IfStmt) stmtNode() {}

func NewIfStmt(cond Expr, label string, pos token.Position) *IfStmt {
	return &IfStmt{stmtBase: stmtBase{pos: pos}, Cond: cond, Label: label}
}

// AssignStmt is "$reg := aexp;" (spec.md AssignAExp).
type AssignStmt struct {
	stmtBase
	Reg string
	Rhs Expr
}

func (s *AssignStmt) stmtNode() {}

func NewAssignStmt(reg string, rhs Expr, pos token.Position) *AssignStmt {
	return &AssignStmt{stmtBase: stmtBase{pos: pos}, Reg: reg, Rhs: rhs}
}

// FieldAssignStmt is "objExpr.field := aexp;". spec.md §9: the bundled
// parser never produced this historically, but the interpreter supports
// it fully; this repo's parser does produce it (SPEC_FULL.md "SUPPLEMENTED
// FEATURES").
type FieldAssignStmt struct {
	stmtBase
	Obj   Expr
	Field string
	Rhs   Expr
}

func (s *FieldAssignStmt) stmtNode() {}

func NewFieldAssignStmt(obj Expr, field string, rhs Expr, pos token.Position) *FieldAssignStmt {
	return &FieldAssignStmt{stmtBase: stmtBase{pos: pos}, Obj: obj, Field: field, Rhs: rhs}
}

// NewStmt is "$reg := new ClassName;".
type NewStmt struct {
	stmtBase
	Reg   string
	Class string
}

func (s *NewStmt) stmtNode() {}

func NewNewStmt(reg, class string, pos token.Position) *NewStmt {
	return &NewStmt{stmtBase: stmtBase{pos: pos}, Reg: reg, Class: class}
}

// InvokeStmt is "$reg := invoke objExpr.method(args);".
type InvokeStmt struct {
	stmtBase
	Reg    string
	Obj    Expr
	Method string
	Args   []Expr
}

func (s *InvokeStmt) stmtNode() {}

func NewInvokeStmt(reg string, obj Expr, method string, args []Expr, pos token.Position) *InvokeStmt {
	return &InvokeStmt{stmtBase: stmtBase{pos: pos}, Reg: reg, Obj: obj, Method: method, Args: args}
}

// InvokeSuperStmt is "$reg := invoke super.method(args);". The receiver is
// the current $this; method lookup starts at the parent of $this's class.
type InvokeSuperStmt struct {
	stmtBase
	Reg    string
	Method string
	Args   []Expr
}

func (s *InvokeSuperStmt) stmtNode() {}

func NewInvokeSuperStmt(reg, method string, args []Expr, pos token.Position) *InvokeSuperStmt {
	return &InvokeSuperStmt{stmtBase: stmtBase{pos: pos}, Reg: reg, Method: method, Args: args}
}

type ReturnStmt struct {
	stmtBase
	Result Expr
}

func (s *ReturnStmt) stmtNode() {}

func NewReturnStmt(result Expr, pos token.Position) *ReturnStmt {
	return &ReturnStmt{stmtBase: stmtBase{pos: pos}, Result: result}
}

type PushHandlerStmt struct {
	stmtBase
	CatchClass string
	Label      string
}

func (s *PushHandlerStmt) stmtNode() {}

func NewPushHandlerStmt(catchClass, label string, pos token.Position) *PushHandlerStmt {
	return &PushHandlerStmt{stmtBase: stmtBase{pos: pos}, CatchClass: catchClass, Label: label}
}

type PopHandlerStmt struct{ stmtBase }

func (s *PopHandlerStmt) stmtNode() {}

func NewPopHandlerStmt(pos token.Position) *PopHandlerStmt {
	return &PopHandlerStmt{stmtBase: stmtBase{pos: pos}}
}

type ThrowStmt struct {
	stmtBase
	Exc Expr
}

func (s *ThrowStmt) stmtNode() {}

func NewThrowStmt(exc Expr, pos token.Position) *ThrowStmt {
	return &ThrowStmt{stmtBase: stmtBase{pos: pos}, Exc: exc}
}

type MoveExceptionStmt struct {
	stmtBase
	Reg string
}

func (s *MoveExceptionStmt) stmtNode() {}

func NewMoveExceptionStmt(reg string, pos token.Position) *MoveExceptionStmt {
	return &MoveExceptionStmt{stmtBase: stmtBase{pos: pos}, Reg: reg}
}

type PrintStmt struct {
	stmtBase
	Args []Expr
}

func (s *PrintStmt) stmtNode() {}

func NewPrintStmt(args []Expr, pos token.Position) *PrintStmt {
	return &PrintStmt{stmtBase: stmtBase{pos: pos}, Args: args}
}

// ---------- Atomic expressions ----------

type exprBase struct {
	pos token.Position
}

func (e *exprBase) Pos() token.Position { return e.pos }

type ThisExpr struct{ exprBase }

func (e *ThisExpr) exprNode() {}

func NewThisExpr(pos token.Position) *ThisExpr { return &ThisExpr{exprBase{pos}} }

type RegisterExpr struct {
	exprBase
	Name string
}

func (e *RegisterExpr) exprNode() {}

func NewRegisterExpr(name string, pos token.Position) *RegisterExpr {
	return &RegisterExpr{exprBase{pos}, name}
}

type IntExpr struct {
	exprBase
	Value int32
}

func (e *IntExpr) exprNode() {}

func NewIntExpr(v int32, pos token.Position) *IntExpr { return &IntExpr{exprBase{pos}, v} }

type BoolExpr struct {
	exprBase
	Value bool
}

func (e *BoolExpr) exprNode() {}

func NewBoolExpr(v bool, pos token.Position) *BoolExpr { return &BoolExpr{exprBase{pos}, v} }

type NullExpr struct{ exprBase }

func (e *NullExpr) exprNode() {}

func NewNullExpr(pos token.Position) *NullExpr { return &NullExpr{exprBase{pos}} }

type VoidExpr struct{ exprBase }

func (e *VoidExpr) exprNode() {}

func NewVoidExpr(pos token.Position) *VoidExpr { return &VoidExpr{exprBase{pos}} }

// FieldExpr dereferences a heap offset: objExpr.field.
type FieldExpr struct {
	exprBase
	Obj   Expr
	Field string
}

func (e *FieldExpr) exprNode() {}

func NewFieldExpr(obj Expr, field string, pos token.Position) *FieldExpr {
	return &FieldExpr{exprBase{pos}, obj, field}
}

// InstanceOfExpr walks the class's parent chain: instanceof(objExpr, C).
type InstanceOfExpr struct {
	exprBase
	Obj   Expr
	Class string
}

func (e *InstanceOfExpr) exprNode() {}

func NewInstanceOfExpr(obj Expr, class string, pos token.Position) *InstanceOfExpr {
	return &InstanceOfExpr{exprBase{pos}, obj, class}
}

// Op identifies an AtomicOp's operator.
type Op int

const (
	ADD Op = iota
	SUB
	MUL
	EQ
)

func (o Op) String() string {
	switch o {
	case ADD:
		return "+"
	case SUB:
		return "-"
	case MUL:
		return "*"
	case EQ:
		return "="
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// AtomicOpExpr is op(args...). ADD/MUL are n-ary with identity 0/1; SUB is
// strictly binary; EQ is binary integer equality.
type AtomicOpExpr struct {
	exprBase
	Op   Op
	Args []Expr
}

func (e *AtomicOpExpr) exprNode() {}

func NewAtomicOpExpr(op Op, args []Expr, pos token.Position) *AtomicOpExpr {
	return &AtomicOpExpr{exprBase{pos}, op, args}
}
