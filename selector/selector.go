// Package selector defines the normalized parse trees the query core consumes.
//
// A selector is what a caller-supplied predicate, projection, or join key
// becomes once the front end has normalized it: a small tree scoped to one or
// more named parameters, with property-access chains preserved as ordered name
// lists. The front end itself (reflection, macros, code generation) is not
// part of this package; the combinators in combinators.go are the supported
// way to build these trees directly.
package selector

import (
	"fmt"
	"strings"
)

// Node is a node in a normalized selector tree.
type Node interface {
	// String renders diagnostic source text for error messages.
	String() string

	node()
}

// Member is a property-access chain rooted at a named parameter.
// A nil or empty Path means the parameter itself (a bare passthrough).
type Member struct {
	Param string
	Path  []string
}

// Literal is a constant value embedded in the tree.
type Literal struct {
	Value any
}

// Call is a function invocation.
type Call struct {
	Name string
	Args []Node
}

// Binary is a two-operand operation. Op is a front-end operator name
// ("eq", "gt", "and", "add", ...); the query builder maps it to an IR
// operator and rejects names it has no mapping for.
type Binary struct {
	Op    string
	Left  Node
	Right Node
}

// Unary is a one-operand operation ("not", "neg", "isNull", ...).
type Unary struct {
	Op      string
	Operand Node
}

// Field is one produced field of an Object. Spread marks a struct-spread:
// the referenced compound member's sub-fields are flattened into the result.
type Field struct {
	Name   string
	Value  Node
	Spread bool
}

// Object is a result shape: the body of a projection or join shape selector.
type Object struct {
	Fields []Field
}

// Lambda is a parameter-scoped selector tree. Predicates and single-source
// selectors carry one parameter; join shape selectors carry two (outer record
// first, joined record second).
type Lambda struct {
	Params []string
	Body   Node
}

func (*Member) node()  {}
func (*Literal) node() {}
func (*Call) node()    {}
func (*Binary) node()  {}
func (*Unary) node()   {}
func (*Object) node()  {}

func (m *Member) String() string {
	if len(m.Path) == 0 {
		return m.Param
	}
	return m.Param + "." + strings.Join(m.Path, ".")
}

func (l *Literal) String() string {
	if s, ok := l.Value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", l.Value)
}

func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return c.Name + "(" + strings.Join(args, ", ") + ")"
}

func (b *Binary) String() string {
	return "(" + b.Left.String() + " " + b.Op + " " + b.Right.String() + ")"
}

func (u *Unary) String() string {
	return u.Op + "(" + u.Operand.String() + ")"
}

func (o *Object) String() string {
	fields := make([]string, len(o.Fields))
	for i, f := range o.Fields {
		if f.Spread {
			fields[i] = "..." + f.Value.String()
		} else {
			fields[i] = f.Name + ": " + f.Value.String()
		}
	}
	return "{" + strings.Join(fields, ", ") + "}"
}

func (l *Lambda) String() string {
	return "(" + strings.Join(l.Params, ", ") + ") => " + l.Body.String()
}
