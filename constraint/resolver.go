package constraint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"sort"

	lru "github.com/hashicorp/golang-lru"

	"github.com/RtlZeroMemory/Rezi-sub007/expr"
	"github.com/RtlZeroMemory/Rezi-sub007/vdom"
)

// Viewport is the top-level sizing input (§4.C).
type Viewport struct {
	W, H float64
}

// PropValues is a per-property value map, as produced by Resolve.
type PropValues map[Property]float64

// ResolveInput bundles everything Resolve needs beyond the graph itself.
type ResolveInput struct {
	Graph           *Graph
	Viewport        Viewport
	ParentValues    map[vdom.InstanceID]PropValues // keyed by the CHILD instance; gives its parent's dims
	IntrinsicValues map[vdom.InstanceID]PropValues // keyed by the instance's own intrinsic size
	BaseValues      map[NodeKey]float64            // pre-computed values for non-expression targets
	CacheKey        string                          // optional override folded into the cache key
}

// Result is the frozen output of a Resolve call.
type Result struct {
	Values   map[vdom.InstanceID]PropValues
	CacheHit bool
}

// Resolver evaluates constraint graphs with a bounded per-input cache
// (§4.C; default capacity 4).
type Resolver struct {
	cache *lru.Cache
}

// NewResolver returns a Resolver whose cache holds capacity entries (at
// least 1; defaults to 4 when capacity <= 0).
func NewResolver(capacity int) *Resolver {
	if capacity <= 0 {
		capacity = 4
	}
	c, _ := lru.New(capacity)
	return &Resolver{cache: c}
}

// Resolve evaluates every node in in.Graph in topological order. On a cache
// hit the same frozen Result.Values reference is returned.
func (r *Resolver) Resolve(in ResolveInput) *Result {
	key := cacheKeyFor(in)
	if cached, ok := r.cache.Get(key); ok {
		res := cached.(*Result)
		return &Result{Values: res.Values, CacheHit: true}
	}

	values := map[vdom.InstanceID]PropValues{}
	for _, nk := range in.Graph.Order {
		node := in.Graph.Nodes[nk]
		v := sanitize(evalNode(node.Expression.Root, in, nk.InstanceID, values, false))
		pv := values[nk.InstanceID]
		if pv == nil {
			pv = PropValues{}
			values[nk.InstanceID] = pv
		}
		pv[nk.Property] = v
	}

	// An instance whose display resolved to 0 reports 0 for every other
	// resolved property too, not only to the consumers that read it.
	for _, pv := range values {
		if d, ok := pv[PropDisplay]; ok && d == 0 {
			for p := range pv {
				if p != PropDisplay {
					pv[p] = 0
				}
			}
		}
	}

	res := &Result{Values: values, CacheHit: false}
	r.cache.Add(key, res)
	return res
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// resolvedOrBase reads a target's value for targetProp: if the target's
// property is itself expression-driven it must already be in values (the
// graph guarantees this via its producer edges), otherwise it falls back
// to the caller-supplied BaseValues, and finally 0.
func resolvedOrBase(g *Graph, in ResolveInput, values map[vdom.InstanceID]PropValues, target vdom.InstanceID, targetProp Property) float64 {
	if isDisplayZero(g, in, values, target) && targetProp != PropDisplay {
		return 0
	}
	if pv, ok := values[target]; ok {
		if v, ok := pv[targetProp]; ok {
			return v
		}
	}
	if v, ok := in.BaseValues[NodeKey{InstanceID: target, Property: targetProp}]; ok {
		return v
	}
	return 0
}

func isDisplayZero(g *Graph, in ResolveInput, values map[vdom.InstanceID]PropValues, target vdom.InstanceID) bool {
	if pv, ok := values[target]; ok {
		if v, ok := pv[PropDisplay]; ok {
			return v == 0
		}
	}
	if v, ok := in.BaseValues[NodeKey{InstanceID: target, Property: PropDisplay}]; ok {
		return v == 0
	}
	return false
}

func evalNode(n *expr.Node, in ResolveInput, self vdom.InstanceID, values map[vdom.InstanceID]PropValues, insideAgg bool) float64 {
	if n == nil {
		return 0
	}
	g := in.Graph
	switch n.Kind {
	case expr.KindNumber:
		return n.Value

	case expr.KindRef:
		prop, ok := refPropToProperty[n.Prop]
		if !ok {
			return 0
		}
		switch n.Scope {
		case expr.ScopeViewport:
			return viewportDim(in.Viewport, prop)
		case expr.ScopeParent:
			return in.ParentValues[self][prop]
		case expr.ScopeIntrinsic:
			return in.IntrinsicValues[self][prop]
		case expr.ScopeWidget:
			targets := g.siblingsByWidgetID[n.WidgetID]
			if len(targets) == 0 {
				return 0
			}
			return resolvedOrBase(g, in, values, targets[0], prop)
		}
		return 0

	case expr.KindUnary:
		return -evalNode(n.X, in, self, values, insideAgg)

	case expr.KindBinary:
		x := evalNode(n.X, in, self, values, insideAgg)
		y := evalNode(n.Y, in, self, values, insideAgg)
		switch n.Op {
		case "+":
			return x + y
		case "-":
			return x - y
		case "*":
			return x * y
		case "/":
			if y == 0 {
				return 0
			}
			return x / y
		case "%":
			if y == 0 {
				return 0
			}
			return math.Mod(x, y)
		}
		return 0

	case expr.KindCompare:
		x := evalNode(n.X, in, self, values, insideAgg)
		y := evalNode(n.Y, in, self, values, insideAgg)
		result := false
		switch n.Op {
		case "<":
			result = x < y
		case "<=":
			result = x <= y
		case ">":
			result = x > y
		case ">=":
			result = x >= y
		case "==":
			result = x == y
		case "!=":
			result = x != y
		}
		if result {
			return 1
		}
		return 0

	case expr.KindTernary:
		if evalNode(n.Cond, in, self, values, insideAgg) != 0 {
			return evalNode(n.Then, in, self, values, insideAgg)
		}
		return evalNode(n.Else, in, self, values, insideAgg)

	case expr.KindCall:
		return evalCall(n, in, self, values)
	}
	return 0
}

func evalCall(n *expr.Node, in ResolveInput, self vdom.InstanceID, values map[vdom.InstanceID]PropValues) float64 {
	g := in.Graph
	switch n.Name {
	case "clamp":
		if len(n.Args) != 3 {
			return 0
		}
		x := evalNode(n.Args[0], in, self, values, false)
		lo := evalNode(n.Args[1], in, self, values, false)
		hi := evalNode(n.Args[2], in, self, values, false)
		if hi < lo {
			return hi
		}
		if x < lo {
			return lo
		}
		if x > hi {
			return hi
		}
		return x
	case "max":
		if len(n.Args) == 0 {
			return 0
		}
		best := evalNode(n.Args[0], in, self, values, false)
		for _, a := range n.Args[1:] {
			v := evalNode(a, in, self, values, false)
			if v > best {
				best = v
			}
		}
		return best
	case "min":
		if len(n.Args) == 0 {
			return 0
		}
		best := evalNode(n.Args[0], in, self, values, false)
		for _, a := range n.Args[1:] {
			v := evalNode(a, in, self, values, false)
			if v < best {
				best = v
			}
		}
		return best
	case "floor":
		return math.Floor(evalNode(n.Args[0], in, self, values, false))
	case "ceil":
		return math.Ceil(evalNode(n.Args[0], in, self, values, false))
	case "abs":
		return math.Abs(evalNode(n.Args[0], in, self, values, false))
	case "max_sibling", "sum_sibling":
		ref := n.Args[0]
		prop, ok := refPropToProperty[ref.Prop]
		if !ok {
			return 0
		}
		ids := g.siblingsByWidgetID[ref.WidgetID]
		if n.Name == "sum_sibling" {
			total := 0.0
			for _, id := range ids {
				total += resolvedOrBase(g, in, values, id, prop)
			}
			return total
		}
		best := 0.0
		for i, id := range ids {
			v := resolvedOrBase(g, in, values, id, prop)
			if i == 0 || v > best {
				best = v
			}
		}
		return best
	case "steps":
		x := evalNode(n.Args[0], in, self, values, false)
		var last float64
		for _, pair := range n.Args[1:] {
			threshold := evalNode(pair.X, in, self, values, false)
			value := evalNode(pair.Y, in, self, values, false)
			last = value
			if x < threshold {
				return value
			}
		}
		return last
	}
	return 0
}

func viewportDim(vp Viewport, prop Property) float64 {
	switch prop {
	case PropWidth, PropMinWidth:
		return vp.W
	case PropHeight, PropMinHeight:
		return vp.H
	}
	return 0
}

func cacheKeyFor(in ResolveInput) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%g|%g|%s|", in.Graph.Fingerprint, in.Viewport.W, in.Viewport.H, in.CacheKey)
	digestPropValues(h, in.ParentValues)
	h.Write([]byte{'|'})
	digestPropValues(h, in.IntrinsicValues)
	h.Write([]byte{'|'})
	digestBaseValues(h, in.BaseValues)
	return hex.EncodeToString(h.Sum(nil))
}

func digestPropValues(h io.Writer, m map[vdom.InstanceID]PropValues) {
	keys := make([]vdom.InstanceID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, id := range keys {
		props := make([]string, 0, len(m[id]))
		for p := range m[id] {
			props = append(props, string(p))
		}
		sort.Strings(props)
		for _, p := range props {
			fmt.Fprintf(h, "%d:%s=%g;", id, p, m[id][Property(p)])
		}
	}
}

func digestBaseValues(h io.Writer, m map[NodeKey]float64) {
	keys := make([]NodeKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].InstanceID != keys[j].InstanceID {
			return keys[i].InstanceID < keys[j].InstanceID
		}
		return keys[i].Property < keys[j].Property
	})
	for _, k := range keys {
		fmt.Fprintf(h, "%d:%s=%g;", k.InstanceID, k.Property, m[k])
	}
}
