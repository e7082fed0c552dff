package lexer_test

import (
	"testing"

	"avenir/internal/lexer"
	"avenir/internal/token"
)

func TestNextToken_BasicProgram(t *testing.T) {
	input := `class Box extends Object {
  var v;
  def main() {
    $a := new Box;
    $a.v := 42;
    print($a.v);
    return void;
  }
}
`

	tests := []struct {
		kind token.Kind
		lit  string
	}{
		{token.Class, "class"},
		{token.Ident, "Box"},
		{token.Extends, "extends"},
		{token.Ident, "Object"},
		{token.LBrace, "{"},

		{token.Var, "var"},
		{token.Ident, "v"},
		{token.Semicolon, ";"},

		{token.Def, "def"},
		{token.Ident, "main"},
		{token.LParen, "("},
		{token.RParen, ")"},
		{token.LBrace, "{"},

		{token.Reg, "$a"},
		{token.Assign, ":="},
		{token.New, "new"},
		{token.Ident, "Box"},
		{token.Semicolon, ";"},

		{token.Reg, "$a"},
		{token.Dot, "."},
		{token.Ident, "v"},
		{token.Assign, ":="},
		{token.IntLit, "42"},
		{token.Semicolon, ";"},

		{token.Print, "print"},
		{token.LParen, "("},
		{token.Reg, "$a"},
		{token.Dot, "."},
		{token.Ident, "v"},
		{token.RParen, ")"},
		{token.Semicolon, ";"},

		{token.Return, "return"},
		{token.Void, "void"},
		{token.Semicolon, ";"},

		{token.RBrace, "}"},
		{token.RBrace, "}"},
		{token.EOF, ""},
	}

	l := lexer.New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Kind != tt.kind {
			t.Fatalf("test[%d] - wrong kind. expected=%s, got=%s (lexeme %q)", i, tt.kind, tok.Kind, tok.Lexeme)
		}
		if tok.Lexeme != tt.lit {
			t.Fatalf("test[%d] - wrong lexeme. expected=%q, got=%q", i, tt.lit, tok.Lexeme)
		}
	}
}

func TestNextToken_OperatorsAndControl(t *testing.T) {
	input := `if =(1,1) goto T; label T: goto T; pushHandler E L; popHandler; throw null; moveException $e; instanceof($x, C);`

	tests := []struct {
		kind token.Kind
		lit  string
	}{
		{token.If, "if"},
		{token.EqOp, "="},
		{token.LParen, "("},
		{token.IntLit, "1"},
		{token.Comma, ","},
		{token.IntLit, "1"},
		{token.RParen, ")"},
		{token.Goto, "goto"},
		{token.Ident, "T"},
		{token.Semicolon, ";"},

		{token.Label, "label"},
		{token.Ident, "T"},
		{token.Colon, ":"},
		{token.Goto, "goto"},
		{token.Ident, "T"},
		{token.Semicolon, ";"},

		{token.PushHandler, "pushHandler"},
		{token.Ident, "E"},
		{token.Ident, "L"},
		{token.Semicolon, ";"},

		{token.PopHandler, "popHandler"},
		{token.Semicolon, ";"},

		{token.Throw, "throw"},
		{token.Null, "null"},
		{token.Semicolon, ";"},

		{token.MoveException, "moveException"},
		{token.Reg, "$e"},
		{token.Semicolon, ";"},

		{token.Instanceof, "instanceof"},
		{token.LParen, "("},
		{token.Reg, "$x"},
		{token.Comma, ","},
		{token.Ident, "C"},
		{token.RParen, ")"},
		{token.Semicolon, ";"},

		{token.EOF, ""},
	}

	l := lexer.New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Kind != tt.kind || tok.Lexeme != tt.lit {
			t.Fatalf("test[%d] - expected {%s %q}, got {%s %q}", i, tt.kind, tt.lit, tok.Kind, tok.Lexeme)
		}
	}
}

func TestNextToken_SkipsComments(t *testing.T) {
	input := "skip; // trailing comment\n/* block\ncomment */ skip;"

	l := lexer.New(input)
	var kinds []token.Kind
	for {
		tok := l.NextToken()
		if tok.Kind == token.EOF {
			break
		}
		kinds = append(kinds, tok.Kind)
	}

	want := []token.Kind{token.Skip, token.Semicolon, token.Skip, token.Semicolon}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(kinds), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("token[%d] = %s, want %s", i, kinds[i], want[i])
		}
	}
}
