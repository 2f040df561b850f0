package expr

import (
	"strconv"
	"strings"
)

// String renders e back into source form. Parse(e.String()) reproduces a
// structurally equal AST (§8).
func (e *Expression) String() string {
	if e.Root == nil {
		return ""
	}
	return e.Root.String()
}

func (n *Node) String() string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case KindNumber:
		return strconv.FormatFloat(n.Value, 'g', -1, 64)
	case KindRef:
		switch n.Scope {
		case ScopeViewport:
			return "viewport." + n.Prop.String()
		case ScopeParent:
			return "parent." + n.Prop.String()
		case ScopeIntrinsic:
			return "intrinsic." + n.Prop.String()
		case ScopeWidget:
			return "#" + n.WidgetID + "." + n.Prop.String()
		}
		return ""
	case KindUnary:
		return "-" + wrapIfNeeded(n.X)
	case KindBinary, KindCompare:
		return wrapIfNeeded(n.X) + " " + n.Op + " " + wrapIfNeeded(n.Y)
	case KindPair:
		return n.X.String() + ":" + n.Y.String()
	case KindTernary:
		return wrapIfNeeded(n.Cond) + " ? " + n.Then.String() + " : " + n.Else.String()
	case KindCall:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = a.String()
		}
		return n.Name + "(" + strings.Join(args, ", ") + ")"
	}
	return ""
}

func wrapIfNeeded(n *Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case KindBinary, KindCompare, KindTernary:
		return "(" + n.String() + ")"
	default:
		return n.String()
	}
}
