package ir

// Table is a named, aliased source table.
type Table struct {
	Name  string
	Alias string
}

// JoinKind identifies how a join combines its two sides.
type JoinKind string

const (
	JoinInner JoinKind = "inner"
	JoinLeft  JoinKind = "left"
	JoinRight JoinKind = "right"
	JoinFull  JoinKind = "full"
)

// Join is one join clause of a statement.
type Join struct {
	Target    Table
	Condition Node
	Kind      JoinKind
}

// Statement is the structured, not-yet-rendered representation of one SELECT.
// Nil expression fields mean the clause is absent. Offset requiring a
// non-empty OrderBy is a dialect rule and is enforced at emission, not here.
type Statement struct {
	Projections []Projection
	From        Table
	Joins       []Join
	Filter      Node
	GroupBy     []Node
	Having      Node
	OrderBy     []Ordering
	Limit       Node
	Offset      Node
	Distinct    bool
}

// Clone returns a copy with fresh clause slices. Expression nodes are shared:
// they are never mutated after construction, so sharing keeps forked builders
// cheap while remaining safe.
func (s *Statement) Clone() *Statement {
	if s == nil {
		return nil
	}
	out := *s
	out.Projections = append([]Projection(nil), s.Projections...)
	out.Joins = append([]Join(nil), s.Joins...)
	out.GroupBy = append([]Node(nil), s.GroupBy...)
	out.OrderBy = append([]Ordering(nil), s.OrderBy...)
	return &out
}
