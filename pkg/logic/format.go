package logic

import (
	"regexp"
	"strconv"

	pp "github.com/vilterp/semnet/pkg/prettyprint"
)

// Binding strength, loosest first.
const (
	precImplies = iota + 1
	precOr
	precAnd
	precNot
	precAtom
)

var plainIdent = regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_]*$`)

var keywords = map[string]bool{
	"not": true, "and": true, "or": true,
	"true": true, "false": true,
	"all": true, "any": true,
}

func isPlainIdent(s string) bool {
	return plainIdent.MatchString(s) && !keywords[s]
}

// quoteName writes keywords and names outside the identifier syntax as
// @"...".
func quoteName(s string) string {
	if isPlainIdent(s) {
		return s
	}
	return "@" + strconv.Quote(s)
}

// Format renders f in the syntax Parse accepts, with only the parentheses
// needed to preserve the tree.
func Format(f Formula) string {
	return FormatDoc(f).String()
}

func FormatDoc(f Formula) pp.Doc {
	return formatAt(f, precImplies)
}

func formatAt(f Formula, min int) pp.Doc {
	doc, prec := formatNode(f)
	if prec < min {
		return pp.Parens(doc)
	}
	return doc
}

func formatNode(f Formula) (pp.Doc, int) {
	switch node := f.(type) {
	case *FactAtom:
		args := make([]pp.Doc, len(node.Args))
		for idx, arg := range node.Args {
			args[idx] = pp.Text(arg.String())
		}
		return pp.Seq([]pp.Doc{
			pp.Text(quoteName(node.Predicate)),
			pp.Parens(pp.Join(args, pp.Text(", "))),
		}), precAtom

	case *EqAtom:
		return pp.Textf("%s = %s", node.Left, node.Right), precAtom

	case *Not:
		return pp.Seq([]pp.Doc{pp.Text("not "), formatAt(node.Inner, precNot)}), precNot

	case *And:
		return formatJunction(node.Items, "true", "all", " and ", precAnd)

	case *Or:
		return formatJunction(node.Items, "false", "any", " or ", precOr)

	case *Implies:
		return pp.Seq([]pp.Doc{
			formatAt(node.Left, precImplies+1),
			pp.Text(" -> "),
			formatAt(node.Right, precImplies),
		}), precImplies

	default:
		panic(unknownNode(f))
	}
}

// Nested junctions are parenthesized so the parsed tree keeps its shape.
func formatJunction(items []Formula, empty string, prefix string, sep string, prec int) (pp.Doc, int) {
	switch len(items) {
	case 0:
		return pp.Text(empty), precAtom
	case 1:
		return pp.Seq([]pp.Doc{pp.Text(prefix), pp.Parens(formatAt(items[0], precImplies))}), precAtom
	}
	docs := make([]pp.Doc, len(items))
	for idx, item := range items {
		docs[idx] = formatAt(item, prec+1)
	}
	return pp.Join(docs, pp.Text(sep)), prec
}
