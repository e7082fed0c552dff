// Package loader reads one or more source files into a single shared
// class registry and applies the main-class selection rule (spec.md
// §6.3). This domain has no import graph — every file given on the
// command line contributes directly to one namespace, unlike the
// teacher's package/import resolution — so loading is just
// parse-each-file-in-order-and-merge.
package loader

import (
	"fmt"
	"os"

	"avenir/internal/ast"
	"avenir/internal/lexer"
	"avenir/internal/parser"
)

// Program is the result of loading a set of source files: one shared
// Registry and the class names declared across all of them, in the
// order they were first seen.
type Program struct {
	Registry   *ast.Registry
	ClassNames []string
}

// Load parses every file in paths, in order, into one Registry. A
// duplicate class name across files overwrites the earlier one (spec.md
// §4.1: "duplicate registration overwrites"). It returns every parse
// error found across every file, not just the first.
func Load(paths []string) (*Program, []error) {
	reg := ast.NewRegistry()
	var classNames []string
	var errs []error

	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}

		l := lexer.New(string(content))
		p := parser.New(l, reg)
		names := p.ParseClasses()

		if perrs := p.Errors(); len(perrs) > 0 {
			for _, e := range perrs {
				errs = append(errs, fmt.Errorf("%s: %s", path, e))
			}
			continue
		}

		classNames = append(classNames, names...)
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &Program{Registry: reg, ClassNames: classNames}, nil
}

// FindMain applies the default main-class selection rule: the first
// class, across files, in argument order, whose method table contains
// main (checked non-recursively — spec.md §6.3, ClassDef.HasMethod).
// override, when non-empty, names a class to use instead regardless of
// whether it declares main directly.
func (p *Program) FindMain(override string) (*ast.ClassDef, error) {
	if override != "" {
		class, ok := p.Registry.Class(override)
		if !ok {
			return nil, fmt.Errorf("no such class: %s", override)
		}
		return class, nil
	}

	for _, name := range p.ClassNames {
		class, ok := p.Registry.Class(name)
		if !ok {
			continue
		}
		if class.HasMethod("main") {
			return class, nil
		}
	}

	return nil, fmt.Errorf("no class with a main method found")
}
