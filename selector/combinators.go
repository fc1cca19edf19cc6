package selector

// Ref names a lambda parameter so property chains can be hung off it.
type Ref struct {
	name string
}

// Param returns a reference to the named lambda parameter.
func Param(name string) Ref {
	return Ref{name: name}
}

// Get builds a property-access chain on the parameter.
func (r Ref) Get(path ...string) *Member {
	return &Member{Param: r.name, Path: path}
}

// Self returns the bare parameter itself (a record passthrough).
func (r Ref) Self() *Member {
	return &Member{Param: r.name}
}

// Lit wraps a constant value.
func Lit(v any) *Literal {
	return &Literal{Value: v}
}

// Fn builds a function call node.
func Fn(name string, args ...Node) *Call {
	return &Call{Name: name, Args: args}
}

func binary(op string, l, r Node) *Binary {
	return &Binary{Op: op, Left: l, Right: r}
}

// Comparison and logical combinators. The names are the front-end operator
// vocabulary the builder understands.

func Eq(l, r Node) *Binary   { return binary("eq", l, r) }
func Ne(l, r Node) *Binary   { return binary("ne", l, r) }
func Lt(l, r Node) *Binary   { return binary("lt", l, r) }
func Le(l, r Node) *Binary   { return binary("le", l, r) }
func Gt(l, r Node) *Binary   { return binary("gt", l, r) }
func Ge(l, r Node) *Binary   { return binary("ge", l, r) }
func And(l, r Node) *Binary  { return binary("and", l, r) }
func Or(l, r Node) *Binary   { return binary("or", l, r) }
func Add(l, r Node) *Binary  { return binary("add", l, r) }
func Sub(l, r Node) *Binary  { return binary("sub", l, r) }
func Mul(l, r Node) *Binary  { return binary("mul", l, r) }
func Div(l, r Node) *Binary  { return binary("div", l, r) }
func Mod(l, r Node) *Binary  { return binary("mod", l, r) }
func Like(l, r Node) *Binary { return binary("like", l, r) }

func Not(n Node) *Unary       { return &Unary{Op: "not", Operand: n} }
func Neg(n Node) *Unary       { return &Unary{Op: "neg", Operand: n} }
func IsNull(n Node) *Unary    { return &Unary{Op: "isNull", Operand: n} }
func IsNotNull(n Node) *Unary { return &Unary{Op: "isNotNull", Operand: n} }

// F builds one produced field of an object shape.
func F(name string, v Node) Field {
	return Field{Name: name, Value: v}
}

// Spread builds a struct-spread field: the compound member's known sub-fields
// are flattened into the result shape.
func Spread(v Node) Field {
	return Field{Value: v, Spread: true}
}

// Obj builds a result shape from produced fields.
func Obj(fields ...Field) *Object {
	return &Object{Fields: fields}
}

// NewLambda scopes a body to named parameters.
func NewLambda(body Node, params ...string) *Lambda {
	return &Lambda{Params: params, Body: body}
}
