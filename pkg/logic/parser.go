package logic

import (
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Grammar, loosest binding first:
//
//	impl  := or ( "->" impl )?
//	or    := and ( "or" and )*
//	and   := unary ( "and" unary )*
//	unary := "not" unary | ("all" | "any") "(" impl,* ")" | "true" | "false"
//	       | "(" impl ")" | atom
//	atom  := name "(" term,* ")" | term "=" term
//	name  := Ident | "@" String
//	term  := "?" name | String | Number | "@" String | Ident

type implExpr struct {
	Left  *orExpr   `@@`
	Right *implExpr `( "->" @@ )?`
}

type orExpr struct {
	Items []*andExpr `@@ ( "or" @@ )*`
}

type andExpr struct {
	Items []*unaryExpr `@@ ( "and" @@ )*`
}

type unaryExpr struct {
	Not      *unaryExpr    `  "not" @@`
	Junction *junctionExpr `| @@`
	True     bool          `| @"true"`
	False    bool          `| @"false"`
	Group    *implExpr     `| "(" @@ ")"`
	Atom     *atomExpr     `| @@`
}

type junctionExpr struct {
	Op    string      `@( "all" | "any" ) "("`
	Items []*implExpr `( @@ ( "," @@ )* )? ")"`
}

type atomExpr struct {
	Fact *factExpr `  @@`
	Eq   *eqExpr   `| @@`
}

type factExpr struct {
	Predicate string      `( @Ident | "@" @String ) "("`
	Args      []*termExpr `( @@ ( "," @@ )* )? ")"`
}

type eqExpr struct {
	Left  *termExpr `@@ "="`
	Right *termExpr `@@`
}

type termExpr struct {
	Variable *string `  "?" ( @Ident | @String )`
	Quoted   *string `| "@" @String`
	String   *string `| @String`
	Number   *string `| @Number`
	Concept  *string `| @Ident`
}

var formulaLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Arrow", Pattern: `->`},
	{Name: "Number", Pattern: `[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Ident", Pattern: `[\p{L}_][\p{L}\p{N}_]*`},
	{Name: "Punct", Pattern: `[(),=?@]`},
})

var formulaParser = participle.MustBuild[implExpr](
	participle.Lexer(formulaLexer),
	participle.Unquote("String"),
	participle.Elide("Whitespace"),
	participle.UseLookahead(3),
)

// Parse reads a formula in the syntax Format produces.
func Parse(text string) (Formula, error) {
	tree, err := formulaParser.ParseString("", text)
	if err != nil {
		return nil, &ParseError{Text: text, Err: err}
	}
	f, err := tree.toFormula()
	if err != nil {
		return nil, &ParseError{Text: text, Err: err}
	}
	return f, nil
}

// MustParse is Parse for formulas known to be well formed.
func MustParse(text string) Formula {
	f, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return f
}

func (e *implExpr) toFormula() (Formula, error) {
	left, err := e.Left.toFormula()
	if err != nil {
		return nil, err
	}
	if e.Right == nil {
		return left, nil
	}
	right, err := e.Right.toFormula()
	if err != nil {
		return nil, err
	}
	return NewImplies(left, right), nil
}

func (e *orExpr) toFormula() (Formula, error) {
	items := make([]Formula, len(e.Items))
	for idx, item := range e.Items {
		f, err := item.toFormula()
		if err != nil {
			return nil, err
		}
		items[idx] = f
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return NewOr(items...), nil
}

func (e *andExpr) toFormula() (Formula, error) {
	items := make([]Formula, len(e.Items))
	for idx, item := range e.Items {
		f, err := item.toFormula()
		if err != nil {
			return nil, err
		}
		items[idx] = f
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return NewAnd(items...), nil
}

func (e *unaryExpr) toFormula() (Formula, error) {
	switch {
	case e.Not != nil:
		inner, err := e.Not.toFormula()
		if err != nil {
			return nil, err
		}
		return NewNot(inner), nil
	case e.Junction != nil:
		items := make([]Formula, len(e.Junction.Items))
		for idx, item := range e.Junction.Items {
			f, err := item.toFormula()
			if err != nil {
				return nil, err
			}
			items[idx] = f
		}
		if e.Junction.Op == "all" {
			return NewAnd(items...), nil
		}
		return NewOr(items...), nil
	case e.True:
		return NewAnd(), nil
	case e.False:
		return NewOr(), nil
	case e.Group != nil:
		return e.Group.toFormula()
	default:
		return e.Atom.toFormula()
	}
}

func (e *atomExpr) toFormula() (Formula, error) {
	if e.Fact != nil {
		args := make([]Term, len(e.Fact.Args))
		for idx, arg := range e.Fact.Args {
			term, err := arg.toTerm()
			if err != nil {
				return nil, err
			}
			args[idx] = term
		}
		return NewFactAtom(e.Fact.Predicate, args...), nil
	}
	left, err := e.Eq.Left.toTerm()
	if err != nil {
		return nil, err
	}
	right, err := e.Eq.Right.toTerm()
	if err != nil {
		return nil, err
	}
	return NewEq(left, right), nil
}

func (e *termExpr) toTerm() (Term, error) {
	switch {
	case e.Variable != nil:
		return NewVariable(*e.Variable), nil
	case e.Quoted != nil:
		return NewConcept(*e.Quoted), nil
	case e.String != nil:
		return NewStringLit(*e.String), nil
	case e.Number != nil:
		f, err := strconv.ParseFloat(*e.Number, 64)
		if err != nil {
			return nil, err
		}
		return NewNumberLit(f), nil
	default:
		return NewConcept(*e.Concept), nil
	}
}
