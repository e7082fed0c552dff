// Package parser implements a recursive-descent parser for the concrete
// surface grammar of spec.md §6.2, producing internal/ast nodes directly
// (no separate lowering pass).
package parser

import (
	"fmt"
	"strconv"

	"avenir/internal/ast"
	"avenir/internal/lexer"
	"avenir/internal/token"
)

// Parser turns one source file into a sequence of class definitions,
// registering each into reg as it's parsed.
type Parser struct {
	l   *lexer.Lexer
	reg *ast.Registry

	cur  token.Token
	peek token.Token

	errors []string
}

func New(l *lexer.Lexer, reg *ast.Registry) *Parser {
	p := &Parser{l: l, reg: reg}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) errorf(pos token.Position, format string, args ...interface{}) {
	msg := fmt.Sprintf("%s: ", pos) + fmt.Sprintf(format, args...)
	p.errors = append(p.errors, msg)
}

func (p *Parser) expect(kind token.Kind) token.Token {
	if p.cur.Kind != kind {
		p.errorf(p.cur.Pos, "expected %s, got %s (%q)", kind, p.cur.Kind, p.cur.Lexeme)
	}
	tok := p.cur
	p.nextToken()
	return tok
}

// ---------- Top level ----------

// ParseClasses parses every class-def in the file, in source order,
// returning their names in that order so the driver can apply the
// first-class-with-main rule across multiple files (spec.md §6.3).
func (p *Parser) ParseClasses() []string {
	var names []string
	for p.cur.Kind != token.EOF {
		if p.cur.Kind != token.Class {
			p.errorf(p.cur.Pos, "expected 'class', got %s (%q)", p.cur.Kind, p.cur.Lexeme)
			p.nextToken()
			continue
		}
		names = append(names, p.parseClassDef())
	}
	return names
}

func (p *Parser) parseClassDef() string {
	p.expect(token.Class)
	nameTok := p.expect(token.Ident)

	parentName := ""
	if p.cur.Kind == token.Extends {
		p.nextToken()
		parentName = p.expect(token.Ident).Lexeme
	}

	class := ast.NewClassDef(p.reg, nameTok.Lexeme, parentName, nameTok.Pos)

	p.expect(token.LBrace)
	for p.cur.Kind != token.RBrace && p.cur.Kind != token.EOF {
		switch p.cur.Kind {
		case token.Var:
			p.parseFieldDef(class)
		case token.Def:
			p.parseMethodDef(class)
		default:
			p.errorf(p.cur.Pos, "expected 'var' or 'def', got %s (%q)", p.cur.Kind, p.cur.Lexeme)
			p.nextToken()
		}
	}
	p.expect(token.RBrace)

	return class.Name
}

func (p *Parser) parseFieldDef(c *ast.ClassDef) {
	p.expect(token.Var)
	nameTok := p.expect(token.Ident)
	p.expect(token.Semicolon)
	c.AddField(nameTok.Lexeme)
}

func (p *Parser) parseMethodDef(c *ast.ClassDef) {
	p.expect(token.Def)
	nameTok := p.expect(token.Ident)

	p.expect(token.LParen)
	var formals []string
	if p.cur.Kind == token.Reg {
		formals = append(formals, p.cur.Lexeme)
		p.nextToken()
		for p.cur.Kind == token.Comma {
			p.nextToken()
			formals = append(formals, p.expect(token.Reg).Lexeme)
		}
	}
	p.expect(token.RParen)

	p.expect(token.LBrace)
	body := p.parseStmtSeq()
	p.expect(token.RBrace)

	c.AddMethod(nameTok.Lexeme, formals, body)
}

// ---------- Statements ----------

// parseStmtSeq parses statements until '}' or EOF, chaining each to the
// one before it via SetNext so the whole method body is one linked
// chain (spec.md §3 "Statements (AST)").
func (p *Parser) parseStmtSeq() ast.Stmt {
	var head, tail ast.Stmt
	for p.cur.Kind != token.RBrace && p.cur.Kind != token.EOF {
		s := p.parseStmt()
		if s == nil {
			continue
		}
		if head == nil {
			head = s
		} else {
			tail.SetNext(s)
		}
		tail = s
	}
	return head
}

func (p *Parser) parseStmt() ast.Stmt {
	pos := p.cur.Pos

	switch p.cur.Kind {
	case token.Skip:
		p.nextToken()
		p.expect(token.Semicolon)
		return ast.NewSkipStmt(pos)

	case token.Label:
		p.nextToken()
		nameTok := p.expect(token.Ident)
		p.expect(token.Colon)
		return ast.NewLabelStmt(p.reg, nameTok.Lexeme, pos)

	case token.Goto:
		p.nextToken()
		nameTok := p.expect(token.Ident)
		p.expect(token.Semicolon)
		return ast.NewGotoStmt(nameTok.Lexeme, pos)

	case token.If:
		p.nextToken()
		cond := p.parseAExp()
		p.expect(token.Goto)
		nameTok := p.expect(token.Ident)
		p.expect(token.Semicolon)
		return ast.NewIfStmt(cond, nameTok.Lexeme, pos)

	case token.Return:
		p.nextToken()
		result := p.parseAExp()
		p.expect(token.Semicolon)
		return ast.NewReturnStmt(result, pos)

	case token.PushHandler:
		p.nextToken()
		classTok := p.expect(token.Ident)
		labelTok := p.expect(token.Ident)
		p.expect(token.Semicolon)
		return ast.NewPushHandlerStmt(classTok.Lexeme, labelTok.Lexeme, pos)

	case token.PopHandler:
		p.nextToken()
		p.expect(token.Semicolon)
		return ast.NewPopHandlerStmt(pos)

	case token.Throw:
		p.nextToken()
		exc := p.parseAExp()
		p.expect(token.Semicolon)
		return ast.NewThrowStmt(exc, pos)

	case token.MoveException:
		p.nextToken()
		regTok := p.expect(token.Reg)
		p.expect(token.Semicolon)
		return ast.NewMoveExceptionStmt(regTok.Lexeme, pos)

	case token.Print:
		p.nextToken()
		args := p.parseParenArgs()
		p.expect(token.Semicolon)
		return ast.NewPrintStmt(args, pos)

	case token.Reg:
		return p.parseRegStmt(pos)

	default:
		p.errorf(pos, "unexpected token starting statement: %s (%q)", p.cur.Kind, p.cur.Lexeme)
		p.nextToken()
		return nil
	}
}

// parseRegStmt parses every statement that begins with a register:
// plain assignment, new, invoke, invoke super, and the supplemented
// field-assignment surface form "$reg.field := aexp;".
func (p *Parser) parseRegStmt(pos token.Position) ast.Stmt {
	regTok := p.expect(token.Reg)

	if p.cur.Kind == token.Dot {
		p.nextToken()
		fieldTok := p.expect(token.Ident)
		p.expect(token.Assign)
		rhs := p.parseAExp()
		p.expect(token.Semicolon)
		obj := ast.NewRegisterExpr(regTok.Lexeme, regTok.Pos)
		return ast.NewFieldAssignStmt(obj, fieldTok.Lexeme, rhs, pos)
	}

	p.expect(token.Assign)

	switch p.cur.Kind {
	case token.New:
		p.nextToken()
		classTok := p.expect(token.Ident)
		p.expect(token.Semicolon)
		return ast.NewNewStmt(regTok.Lexeme, classTok.Lexeme, pos)

	case token.Invoke:
		p.nextToken()
		if p.cur.Kind == token.Super {
			p.nextToken()
			p.expect(token.Dot)
			methodTok := p.expect(token.Ident)
			args := p.parseParenArgs()
			p.expect(token.Semicolon)
			return ast.NewInvokeSuperStmt(regTok.Lexeme, methodTok.Lexeme, args, pos)
		}

		// The receiver is parsed as a primary expression, not a full
		// aexp: a full aexp may itself end in a trailing ".Id", which
		// would otherwise be ambiguous with the ".Id" that names the
		// method being invoked.
		obj := p.parseAExpPrimary()
		p.expect(token.Dot)
		methodTok := p.expect(token.Ident)
		args := p.parseParenArgs()
		p.expect(token.Semicolon)
		return ast.NewInvokeStmt(regTok.Lexeme, obj, methodTok.Lexeme, args, pos)

	default:
		rhs := p.parseAExp()
		p.expect(token.Semicolon)
		return ast.NewAssignStmt(regTok.Lexeme, rhs, pos)
	}
}

func (p *Parser) parseParenArgs() []ast.Expr {
	p.expect(token.LParen)
	var args []ast.Expr
	if p.cur.Kind != token.RParen {
		args = append(args, p.parseAExp())
		for p.cur.Kind == token.Comma {
			p.nextToken()
			args = append(args, p.parseAExp())
		}
	}
	p.expect(token.RParen)
	return args
}

// ---------- Expressions ----------

// parseAExp parses a primary expression with an optional trailing field
// dereference: aexp ::= aexp' ('.' Id)?
func (p *Parser) parseAExp() ast.Expr {
	e := p.parseAExpPrimary()
	if p.cur.Kind == token.Dot {
		pos := p.cur.Pos
		p.nextToken()
		fieldTok := p.expect(token.Ident)
		return ast.NewFieldExpr(e, fieldTok.Lexeme, pos)
	}
	return e
}

func (p *Parser) parseAExpPrimary() ast.Expr {
	pos := p.cur.Pos

	switch p.cur.Kind {
	case token.This:
		p.nextToken()
		return ast.NewThisExpr(pos)

	case token.True:
		p.nextToken()
		return ast.NewBoolExpr(true, pos)

	case token.False:
		p.nextToken()
		return ast.NewBoolExpr(false, pos)

	case token.Null:
		p.nextToken()
		return ast.NewNullExpr(pos)

	case token.Void:
		p.nextToken()
		return ast.NewVoidExpr(pos)

	case token.Reg:
		tok := p.cur
		p.nextToken()
		return ast.NewRegisterExpr(tok.Lexeme, pos)

	case token.IntLit:
		tok := p.cur
		p.nextToken()
		n, err := strconv.ParseInt(tok.Lexeme, 10, 32)
		if err != nil {
			p.errorf(pos, "invalid integer literal %q: %s", tok.Lexeme, err)
		}
		return ast.NewIntExpr(int32(n), pos)

	case token.Plus, token.Minus, token.Star, token.EqOp:
		op := opFromToken(p.cur.Kind)
		p.nextToken()
		args := p.parseParenArgs()
		return ast.NewAtomicOpExpr(op, args, pos)

	case token.Instanceof:
		p.nextToken()
		p.expect(token.LParen)
		obj := p.parseAExp()
		p.expect(token.Comma)
		classTok := p.expect(token.Ident)
		p.expect(token.RParen)
		return ast.NewInstanceOfExpr(obj, classTok.Lexeme, pos)

	default:
		p.errorf(pos, "unexpected token in expression: %s (%q)", p.cur.Kind, p.cur.Lexeme)
		p.nextToken()
		return ast.NewNullExpr(pos)
	}
}

func opFromToken(k token.Kind) ast.Op {
	switch k {
	case token.Plus:
		return ast.ADD
	case token.Minus:
		return ast.SUB
	case token.Star:
		return ast.MUL
	case token.EqOp:
		return ast.EQ
	default:
		return ast.ADD
	}
}
