// Package expr parses constraint sizing expressions into a frozen AST.
//
// Grammar (low to high precedence): ternary, comparison, additive,
// multiplicative, unary, primary. See Parse.
package expr

// Kind tags the variant a Node represents.
type Kind int

const (
	KindNumber Kind = iota
	KindRef
	KindUnary
	KindBinary
	KindCompare
	KindTernary
	KindCall
	KindPair
)

// Scope identifies where a Ref reads its value from.
type Scope int

const (
	ScopeNone Scope = iota
	ScopeViewport
	ScopeParent
	ScopeIntrinsic
	ScopeWidget
)

// Prop identifies which sizing property a Ref addresses.
type Prop int

const (
	PropNone Prop = iota
	PropW
	PropH
	PropMinW
	PropMinH
)

func (p Prop) String() string {
	switch p {
	case PropW:
		return "w"
	case PropH:
		return "h"
	case PropMinW:
		return "min_w"
	case PropMinH:
		return "min_h"
	default:
		return ""
	}
}

// GraphProp returns the constraint-graph property name a ref property
// resolves to, per §4.B (w→width, h→height, min_w→minWidth, min_h→minHeight).
func (p Prop) GraphProp() string {
	switch p {
	case PropW:
		return "width"
	case PropH:
		return "height"
	case PropMinW:
		return "minWidth"
	case PropMinH:
		return "minHeight"
	default:
		return ""
	}
}

// Node is a single AST node. Only the fields relevant to Kind are populated;
// this mirrors a tagged-union rather than a class hierarchy per Node.
type Node struct {
	Kind Kind

	// KindNumber
	Value float64

	// KindRef
	Scope    Scope
	WidgetID string
	Prop     Prop

	// KindUnary, KindBinary, KindCompare, KindPair (Threshold=X, Value=Y)
	Op string
	X  *Node
	Y  *Node

	// KindTernary
	Cond *Node
	Then *Node
	Else *Node

	// KindCall
	Name string
	Args []*Node
}

// IsAggregate reports whether name is a sibling-aggregation function.
func IsAggregate(name string) bool {
	return name == "max_sibling" || name == "sum_sibling"
}

// Expression is a frozen, fully-analyzed AST plus the precomputed facts
// §4.A requires consumers to have without re-walking the tree.
type Expression struct {
	Source                string
	Root                   *Node
	Refs                   map[string]struct{}
	HasIntrinsic           bool
	HasSiblingAggregation  bool
}

// Equal reports structural equality between two ASTs, ignoring source text.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNumber:
		return a.Value == b.Value
	case KindRef:
		return a.Scope == b.Scope && a.WidgetID == b.WidgetID && a.Prop == b.Prop
	case KindUnary:
		return a.Op == b.Op && Equal(a.X, b.X)
	case KindBinary, KindCompare, KindPair:
		return a.Op == b.Op && Equal(a.X, b.X) && Equal(a.Y, b.Y)
	case KindTernary:
		return Equal(a.Cond, b.Cond) && Equal(a.Then, b.Then) && Equal(a.Else, b.Else)
	case KindCall:
		if a.Name != b.Name || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !Equal(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	}
	return false
}
