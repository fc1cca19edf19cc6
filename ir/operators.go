package ir

// BinaryOp identifies a two-operand operator.
type BinaryOp string

const (
	OpEq    BinaryOp = "eq"
	OpNe    BinaryOp = "ne"
	OpLt    BinaryOp = "lt"
	OpLe    BinaryOp = "le"
	OpGt    BinaryOp = "gt"
	OpGe    BinaryOp = "ge"
	OpAnd   BinaryOp = "and"
	OpOr    BinaryOp = "or"
	OpAdd   BinaryOp = "add"
	OpSub   BinaryOp = "sub"
	OpMul   BinaryOp = "mul"
	OpDiv   BinaryOp = "div"
	OpMod   BinaryOp = "mod"
	OpLike  BinaryOp = "like"
	OpIn    BinaryOp = "in"
	OpNotIn BinaryOp = "notIn"
)

// UnaryOp identifies a one-operand operator.
type UnaryOp string

const (
	OpNot       UnaryOp = "not"
	OpNeg       UnaryOp = "neg"
	OpIsNull    UnaryOp = "isNull"
	OpIsNotNull UnaryOp = "isNotNull"
	OpExists    UnaryOp = "exists"
	OpNotExists UnaryOp = "notExists"
)

var binaryOps = map[BinaryOp]bool{
	OpEq: true, OpNe: true, OpLt: true, OpLe: true, OpGt: true, OpGe: true,
	OpAnd: true, OpOr: true,
	OpAdd: true, OpSub: true, OpMul: true, OpDiv: true, OpMod: true,
	OpLike: true, OpIn: true, OpNotIn: true,
}

var unaryOps = map[UnaryOp]bool{
	OpNot: true, OpNeg: true,
	OpIsNull: true, OpIsNotNull: true,
	OpExists: true, OpNotExists: true,
}

// NewBinary builds a binary node, validating that op is a member of the
// two-operand operator set.
func NewBinary(op BinaryOp, left, right Node) (*Binary, error) {
	if !binaryOps[op] {
		return nil, &OperatorError{Op: string(op), Arity: 2}
	}
	return &Binary{Op: op, Left: left, Right: right}, nil
}

// NewUnary builds a unary node, validating that op is a member of the
// one-operand operator set.
func NewUnary(op UnaryOp, operand Node) (*Unary, error) {
	if !unaryOps[op] {
		return nil, &OperatorError{Op: string(op), Arity: 1}
	}
	return &Unary{Op: op, Operand: operand}, nil
}

// AggregateKind names an aggregate function. The values are the SQL function
// names shared by every supported dialect.
type AggregateKind string

const (
	AggCount AggregateKind = "COUNT"
	AggSum   AggregateKind = "SUM"
	AggAvg   AggregateKind = "AVG"
	AggMin   AggregateKind = "MIN"
	AggMax   AggregateKind = "MAX"
)

// ValidAggregate reports whether kind names a supported aggregate.
func ValidAggregate(kind AggregateKind) bool {
	switch kind {
	case AggCount, AggSum, AggAvg, AggMin, AggMax:
		return true
	}
	return false
}
