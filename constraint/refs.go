package constraint

import "github.com/RtlZeroMemory/Rezi-sub007/expr"

// directRef is a #id.prop reference used outside an aggregation call.
type directRef struct {
	WidgetID string
	Prop     expr.Prop
}

// aggRef is the #id.prop argument of a max_sibling/sum_sibling call.
type aggRef struct {
	WidgetID string
	Prop     expr.Prop
}

// collectRefs walks an expression AST, separating widget refs used directly
// from those nested inside a sibling-aggregation call (§4.B).
func collectRefs(n *expr.Node) (direct []directRef, agg []aggRef) {
	var walk func(n *expr.Node, insideAgg bool)
	walk = func(n *expr.Node, insideAgg bool) {
		if n == nil {
			return
		}
		switch n.Kind {
		case expr.KindRef:
			if n.Scope == expr.ScopeWidget {
				if insideAgg {
					agg = append(agg, aggRef{WidgetID: n.WidgetID, Prop: n.Prop})
				} else {
					direct = append(direct, directRef{WidgetID: n.WidgetID, Prop: n.Prop})
				}
			}
		case expr.KindUnary:
			walk(n.X, insideAgg)
		case expr.KindBinary, expr.KindCompare, expr.KindPair:
			walk(n.X, insideAgg)
			walk(n.Y, insideAgg)
		case expr.KindTernary:
			walk(n.Cond, insideAgg)
			walk(n.Then, insideAgg)
			walk(n.Else, insideAgg)
		case expr.KindCall:
			isAgg := expr.IsAggregate(n.Name)
			for _, a := range n.Args {
				walk(a, insideAgg || isAgg)
			}
		}
	}
	walk(n, false)
	return direct, agg
}
