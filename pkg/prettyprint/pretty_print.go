package prettyprint

import (
	"fmt"
	"strings"
)

// Based on http://homepages.inf.ed.ac.uk/wadler/papers/prettier/prettier.pdf
// TODO: width-aware layout (group/best) so long formulas can break across lines

type Doc interface {
	// String renders the document.
	String() string
	// Debug returns a representation of the doc tree.
	Debug() string
}

// Text

type text struct {
	str string
}

var _ Doc = &text{}

func Text(s string) Doc {
	return &text{str: s}
}

func Textf(format string, args ...interface{}) Doc {
	return Text(fmt.Sprintf(format, args...))
}

func (s *text) String() string {
	return s.str
}

func (s *text) Debug() string {
	return fmt.Sprintf("Text(%q)", s.str)
}

// Indent

type indent struct {
	doc Doc
	by  int
}

// Indent prefixes every line of d with `by` spaces. Empty lines stay empty.
func Indent(by int, d Doc) Doc {
	return &indent{doc: d, by: by}
}

func (n *indent) String() string {
	prefix := strings.Repeat(" ", n.by)
	lines := strings.Split(n.doc.String(), "\n")
	for idx, line := range lines {
		if line != "" {
			lines[idx] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

func (n *indent) Debug() string {
	return fmt.Sprintf("Indent(%d, %s)", n.by, n.doc.Debug())
}

// Empty

type empty struct{}

var Empty Doc = &empty{}

func (*empty) String() string {
	return ""
}

func (*empty) Debug() string {
	return "Empty"
}

// Seq

type concat struct {
	docs []Doc
}

func Seq(docs []Doc) Doc {
	return &concat{docs: docs}
}

func (c *concat) String() string {
	var b strings.Builder
	for _, doc := range c.docs {
		b.WriteString(doc.String())
	}
	return b.String()
}

func (c *concat) Debug() string {
	strs := make([]string, len(c.docs))
	for idx, doc := range c.docs {
		strs[idx] = doc.Debug()
	}
	return fmt.Sprintf("Seq(%s)", strings.Join(strs, ", "))
}

// Newline

type newline struct{}

var Newline Doc = &newline{}

func (*newline) String() string {
	return "\n"
}

func (*newline) Debug() string {
	return "Newline"
}

// Combinators

func Join(docs []Doc, sep Doc) Doc {
	var out []Doc
	for idx, doc := range docs {
		if idx > 0 {
			out = append(out, sep)
		}
		out = append(out, doc)
	}
	return Seq(out)
}

func Lines(docs []Doc) Doc {
	return Join(docs, Newline)
}

func Parens(d Doc) Doc {
	return Seq([]Doc{Text("("), d, Text(")")})
}

var Comma = Text(",")

var CommaNewline = Seq([]Doc{Comma, Newline})
