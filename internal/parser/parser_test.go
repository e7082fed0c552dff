package parser_test

import (
	"testing"

	"avenir/internal/ast"
	"avenir/internal/lexer"
	"avenir/internal/parser"
)

func parseClasses(t *testing.T, reg *ast.Registry, input string) []string {
	t.Helper()
	l := lexer.New(input)
	p := parser.New(l, reg)
	names := p.ParseClasses()
	if errs := p.Errors(); len(errs) > 0 {
		for _, e := range errs {
			t.Logf("parser error: %s", e)
		}
		t.Fatalf("expected no parser errors, got %d", len(errs))
	}
	return names
}

func TestParseClassWithFieldsAndMethods(t *testing.T) {
	input := `
class Counter {
    var value;

    def init() {
        $this.value := 0;
        return void;
    }

    def bump($amount) {
        $v := $this.value;
        $next := +($v, $amount);
        $this.value := $next;
        return $next;
    }
}
`
	reg := ast.NewRegistry()
	names := parseClasses(t, reg, input)

	if len(names) != 1 || names[0] != "Counter" {
		t.Fatalf("expected [Counter], got %v", names)
	}

	class, ok := reg.Class("Counter")
	if !ok {
		t.Fatal("expected Counter to be registered")
	}
	if !class.HasMethod("init") || !class.HasMethod("bump") {
		t.Fatal("expected init and bump methods")
	}

	bump, err := class.LookupMethod(reg, "bump")
	if err != nil {
		t.Fatal(err)
	}
	if len(bump.Formals) != 1 || bump.Formals[0] != "$amount" {
		t.Fatalf("expected formal [$amount], got %v", bump.Formals)
	}

	var count int
	for s := bump.Body; s != nil; s = s.Next() {
		count++
	}
	if count != 4 {
		t.Fatalf("expected 4 chained statements in bump, got %d", count)
	}
}

func TestParseExtends(t *testing.T) {
	input := `
class Animal {
    def speak() {
        return null;
    }
}

class Dog extends Animal {
    def speak() {
        return true;
    }
}
`
	reg := ast.NewRegistry()
	parseClasses(t, reg, input)

	dog, ok := reg.Class("Dog")
	if !ok {
		t.Fatal("expected Dog to be registered")
	}
	if dog.ParentName != "Animal" {
		t.Fatalf("expected parent Animal, got %q", dog.ParentName)
	}
	if !dog.IsInstanceOf(reg, "Animal") {
		t.Fatal("expected Dog to be an instance of Animal")
	}
}

func TestParseControlFlowAndLabels(t *testing.T) {
	input := `
class Loop {
    def run($n) {
        label top:
        if =($n, 0) goto done;
        $n := -($n, 1);
        goto top;
        label done:
        return $n;
    }
}
`
	reg := ast.NewRegistry()
	parseClasses(t, reg, input)

	class, _ := reg.Class("Loop")
	method, err := class.LookupMethod(reg, "run")
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := method.Body.(*ast.LabelStmt); !ok {
		t.Fatalf("expected method body to start with a label, got %T", method.Body)
	}

	top, err := reg.Label("top")
	if err != nil {
		t.Fatal(err)
	}
	if top != method.Body {
		t.Fatal("expected label 'top' to resolve to the first statement")
	}

	if _, err := reg.Label("done"); err != nil {
		t.Fatalf("expected label 'done' to resolve: %s", err)
	}
}

func TestParseExceptionHandling(t *testing.T) {
	input := `
class Oops extends Exception {
}

class Risky {
    def tryIt() {
        pushHandler Oops recover;
        $e := new Oops;
        throw $e;
        label recover:
        moveException $e;
        popHandler;
        print($e);
        return void;
    }
}
`
	reg := ast.NewRegistry()
	parseClasses(t, reg, input)

	class, _ := reg.Class("Risky")
	method, err := class.LookupMethod(reg, "tryIt")
	if err != nil {
		t.Fatal(err)
	}

	s := method.Body
	if _, ok := s.(*ast.PushHandlerStmt); !ok {
		t.Fatalf("expected PushHandlerStmt first, got %T", s)
	}
	s = s.Next()
	if _, ok := s.(*ast.NewStmt); !ok {
		t.Fatalf("expected NewStmt second, got %T", s)
	}
	s = s.Next()
	if th, ok := s.(*ast.ThrowStmt); !ok {
		t.Fatalf("expected ThrowStmt third, got %T", s)
	} else if reg_, ok := th.Exc.(*ast.RegisterExpr); !ok || reg_.Name != "$e" {
		t.Fatalf("expected throw $e, got %+v", th.Exc)
	}
}

func TestParseThrowNewObject(t *testing.T) {
	// "throw" takes an aexp, so throwing a freshly constructed object
	// must go through an intermediate register: spec.md's grammar has no
	// "new" production inside aexp.
	input := `
class Bang {
    def go() {
        $e := new Bang;
        throw $e;
    }
}
`
	reg := ast.NewRegistry()
	parseClasses(t, reg, input)

	class, _ := reg.Class("Bang")
	method, _ := class.LookupMethod(reg, "go")

	newStmt, ok := method.Body.(*ast.NewStmt)
	if !ok {
		t.Fatalf("expected NewStmt first, got %T", method.Body)
	}
	if newStmt.Reg != "$e" || newStmt.Class != "Bang" {
		t.Fatalf("unexpected new statement: %+v", newStmt)
	}

	throwStmt, ok := newStmt.Next().(*ast.ThrowStmt)
	if !ok {
		t.Fatalf("expected ThrowStmt second, got %T", newStmt.Next())
	}
	reg_, ok := throwStmt.Exc.(*ast.RegisterExpr)
	if !ok || reg_.Name != "$e" {
		t.Fatalf("expected throw $e, got %+v", throwStmt.Exc)
	}
}

func TestParseInvokeAndInvokeSuper(t *testing.T) {
	input := `
class Base {
    def greet($who) {
        return $who;
    }
}

class Sub extends Base {
    def greet($who) {
        $r := invoke super.greet($who);
        return $r;
    }

    def delegate($other, $who) {
        $r := invoke $other.greet($who);
        return $r;
    }
}
`
	reg := ast.NewRegistry()
	parseClasses(t, reg, input)

	sub, _ := reg.Class("Sub")

	greet, err := sub.LookupMethod(reg, "greet")
	if err != nil {
		t.Fatal(err)
	}
	superCall, ok := greet.Body.(*ast.InvokeSuperStmt)
	if !ok {
		t.Fatalf("expected InvokeSuperStmt, got %T", greet.Body)
	}
	if superCall.Method != "greet" || len(superCall.Args) != 1 {
		t.Fatalf("unexpected super call: %+v", superCall)
	}

	delegate, err := sub.LookupMethod(reg, "delegate")
	if err != nil {
		t.Fatal(err)
	}
	invokeStmt, ok := delegate.Body.(*ast.InvokeStmt)
	if !ok {
		t.Fatalf("expected InvokeStmt, got %T", delegate.Body)
	}
	obj, ok := invokeStmt.Obj.(*ast.RegisterExpr)
	if !ok || obj.Name != "$other" {
		t.Fatalf("expected invoke target $other, got %+v", invokeStmt.Obj)
	}
}

func TestParseFieldDereferenceAndAssignment(t *testing.T) {
	// Exercises both the base grammar's "aexp.field" postfix read and the
	// supplemented "$reg.field := aexp;" write form.
	input := `
class Node {
    var next;
    var val;

    def chase($n) {
        $tail := $n.next;
        $n.val := $tail.val;
        return $tail;
    }
}
`
	reg := ast.NewRegistry()
	parseClasses(t, reg, input)

	class, _ := reg.Class("Node")
	method, _ := class.LookupMethod(reg, "chase")

	assign, ok := method.Body.(*ast.AssignStmt)
	if !ok {
		t.Fatalf("expected AssignStmt first, got %T", method.Body)
	}
	field, ok := assign.Rhs.(*ast.FieldExpr)
	if !ok || field.Field != "next" {
		t.Fatalf("expected rhs $n.next, got %+v", assign.Rhs)
	}

	fieldAssign, ok := assign.Next().(*ast.FieldAssignStmt)
	if !ok {
		t.Fatalf("expected FieldAssignStmt second, got %T", assign.Next())
	}
	if fieldAssign.Field != "val" {
		t.Fatalf("expected field 'val', got %q", fieldAssign.Field)
	}
	rhsField, ok := fieldAssign.Rhs.(*ast.FieldExpr)
	if !ok || rhsField.Field != "val" {
		t.Fatalf("expected rhs $tail.val, got %+v", fieldAssign.Rhs)
	}
}

func TestParseAtomicOpsAndInstanceof(t *testing.T) {
	input := `
class Arith {
    def compute($a, $b, $c) {
        $sum := +($a, $b, $c);
        $prod := *($a, $b);
        $diff := -($a, $b);
        $eq := =($sum, $prod);
        $isArith := instanceof($a, Arith);
        return $isArith;
    }
}
`
	reg := ast.NewRegistry()
	parseClasses(t, reg, input)

	class, _ := reg.Class("Arith")
	method, _ := class.LookupMethod(reg, "compute")

	s := method.Body
	sum := s.(*ast.AssignStmt).Rhs.(*ast.AtomicOpExpr)
	if sum.Op != ast.ADD || len(sum.Args) != 3 {
		t.Fatalf("unexpected sum op: %+v", sum)
	}

	s = s.Next()
	prod := s.(*ast.AssignStmt).Rhs.(*ast.AtomicOpExpr)
	if prod.Op != ast.MUL {
		t.Fatalf("expected MUL, got %s", prod.Op)
	}

	s = s.Next()
	diff := s.(*ast.AssignStmt).Rhs.(*ast.AtomicOpExpr)
	if diff.Op != ast.SUB {
		t.Fatalf("expected SUB, got %s", diff.Op)
	}

	s = s.Next()
	eq := s.(*ast.AssignStmt).Rhs.(*ast.AtomicOpExpr)
	if eq.Op != ast.EQ {
		t.Fatalf("expected EQ, got %s", eq.Op)
	}

	s = s.Next()
	isArith := s.(*ast.AssignStmt).Rhs.(*ast.InstanceOfExpr)
	if isArith.Class != "Arith" {
		t.Fatalf("expected instanceof Arith, got %q", isArith.Class)
	}
}

func TestParseMultipleClassesAcrossOneFile(t *testing.T) {
	input := `
class A {
    def main() {
        return void;
    }
}

class B {
    def helper() {
        return void;
    }
}
`
	reg := ast.NewRegistry()
	names := parseClasses(t, reg, input)

	if len(names) != 2 || names[0] != "A" || names[1] != "B" {
		t.Fatalf("expected [A B] in source order, got %v", names)
	}
}

func TestParseReportsErrorOnMalformedClass(t *testing.T) {
	input := `class { }`

	reg := ast.NewRegistry()
	l := lexer.New(input)
	p := parser.New(l, reg)
	p.ParseClasses()

	if len(p.Errors()) == 0 {
		t.Fatal("expected a parse error for a class with no name")
	}
}
