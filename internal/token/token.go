package token

import "fmt"

// Kind identifies the lexical class of a Token.
type Kind int

const (
	Illegal Kind = iota
	EOF

	Ident  // bare identifier: class/method/field/label name
	Reg    // $-prefixed register name
	IntLit // decimal integer literal

	// Keywords
	Class
	Extends
	Var
	Def
	Skip
	Label
	Goto
	If
	Return
	PushHandler
	PopHandler
	Throw
	MoveException
	Print
	New
	Invoke
	Super
	This
	True
	False
	Null
	Void
	Instanceof

	// Operators
	Plus  // +
	Minus // -
	Star  // *
	EqOp  // =

	// Symbols
	Assign    // :=
	Comma     // ,
	Semicolon // ;
	Colon     // :
	Dot       // .
	LParen    // (
	RParen    // )
	LBrace    // {
	RBrace    // }
)

type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Token struct {
	Kind   Kind
	Lexeme string
	Pos    Position
}

func (k Kind) String() string {
	switch k {
	case Illegal:
		return "Illegal"
	case EOF:
		return "EOF"
	case Ident:
		return "Ident"
	case Reg:
		return "Reg"
	case IntLit:
		return "IntLit"
	case Class:
		return "class"
	case Extends:
		return "extends"
	case Var:
		return "var"
	case Def:
		return "def"
	case Skip:
		return "skip"
	case Label:
		return "label"
	case Goto:
		return "goto"
	case If:
		return "if"
	case Return:
		return "return"
	case PushHandler:
		return "pushHandler"
	case PopHandler:
		return "popHandler"
	case Throw:
		return "throw"
	case MoveException:
		return "moveException"
	case Print:
		return "print"
	case New:
		return "new"
	case Invoke:
		return "invoke"
	case Super:
		return "super"
	case This:
		return "this"
	case True:
		return "true"
	case False:
		return "false"
	case Null:
		return "null"
	case Void:
		return "void"
	case Instanceof:
		return "instanceof"
	case Plus:
		return "+"
	case Minus:
		return "-"
	case Star:
		return "*"
	case EqOp:
		return "="
	case Assign:
		return ":="
	case Comma:
		return ","
	case Semicolon:
		return ";"
	case Colon:
		return ":"
	case Dot:
		return "."
	case LParen:
		return "("
	case RParen:
		return ")"
	case LBrace:
		return "{"
	case RBrace:
		return "}"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

var keywords = map[string]Kind{
	"class":         Class,
	"extends":       Extends,
	"var":           Var,
	"def":           Def,
	"skip":          Skip,
	"label":         Label,
	"goto":          Goto,
	"if":            If,
	"return":        Return,
	"pushHandler":   PushHandler,
	"popHandler":    PopHandler,
	"throw":         Throw,
	"moveException": MoveException,
	"print":         Print,
	"new":           New,
	"invoke":        Invoke,
	"super":         Super,
	"this":          This,
	"true":          True,
	"false":         False,
	"null":          Null,
	"void":          Void,
	"instanceof":    Instanceof,
}

// LookupIdent classifies a scanned bare identifier as a keyword or Ident.
func LookupIdent(lit string) Kind {
	if kind, ok := keywords[lit]; ok {
		return kind
	}
	return Ident
}
