package constraint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/RtlZeroMemory/Rezi-sub007/expr"
	"github.com/RtlZeroMemory/Rezi-sub007/vdom"
)

// Property is one of the eight constrainable node properties (§3).
type Property string

const (
	PropWidth     Property = vdom.PropWidth
	PropHeight    Property = vdom.PropHeight
	PropMinWidth  Property = vdom.PropMinWidth
	PropMaxWidth  Property = vdom.PropMaxWidth
	PropMinHeight Property = vdom.PropMinHeight
	PropMaxHeight Property = vdom.PropMaxHeight
	PropFlexBasis Property = vdom.PropFlexBasis
	PropDisplay   Property = vdom.PropDisplay
)

// propFixedOrder is the deterministic tie-break order used during
// topological evaluation (§4.B).
var propFixedOrder = map[Property]int{
	PropWidth: 0, PropHeight: 1, PropMinWidth: 2, PropMaxWidth: 3,
	PropMinHeight: 4, PropMaxHeight: 5, PropFlexBasis: 6, PropDisplay: 7,
}

var refPropToProperty = map[expr.Prop]Property{
	expr.PropW:    PropWidth,
	expr.PropH:    PropHeight,
	expr.PropMinW: PropMinWidth,
	expr.PropMinH: PropMinHeight,
}

// NodeKey identifies a single constraint-graph node.
type NodeKey struct {
	InstanceID vdom.InstanceID
	Property   Property
}

// GraphNode is one (instance, property) node, plus its producer edges.
type GraphNode struct {
	Key        NodeKey
	Expression *expr.Expression
	Producers  []NodeKey
}

// Graph is the built dependency DAG for one instance tree (§4.B).
type Graph struct {
	Nodes                  map[NodeKey]*GraphNode
	Order                  []NodeKey
	RequiresCommitRelayout bool
	IntrinsicInstanceIDs   map[vdom.InstanceID]bool
	Fingerprint            string

	// siblingsByWidgetID indexes every instance sharing a VNode.ID, used by
	// the resolver to evaluate max_sibling/sum_sibling.
	siblingsByWidgetID map[string][]vdom.InstanceID
	widgetIDByInstance map[vdom.InstanceID]string
	preorder           map[vdom.InstanceID]int
}

// BuildGraph builds the constraint dependency DAG over the instance tree
// rooted at root.
func BuildGraph(root *vdom.Instance) (*Graph, error) {
	g := &Graph{
		Nodes:                map[NodeKey]*GraphNode{},
		IntrinsicInstanceIDs: map[vdom.InstanceID]bool{},
		siblingsByWidgetID:   map[string][]vdom.InstanceID{},
		widgetIDByInstance:   map[vdom.InstanceID]string{},
		preorder:             map[vdom.InstanceID]int{},
	}
	if root == nil {
		g.Fingerprint = fingerprintOf(nil)
		return g, nil
	}

	byWidgetID := map[string][]*vdom.Instance{}
	vdom.WalkPreorder(root, func(n *vdom.Instance) {
		g.preorder[n.ID] = n.Preorder
		if n.Node.ID != "" {
			byWidgetID[n.Node.ID] = append(byWidgetID[n.Node.ID], n)
			g.widgetIDByInstance[n.ID] = n.Node.ID
			ids := g.siblingsByWidgetID[n.Node.ID]
			g.siblingsByWidgetID[n.Node.ID] = append(ids, n.ID)
		}
		for _, prop := range []string{vdom.PropWidth, vdom.PropHeight, vdom.PropMinWidth, vdom.PropMaxWidth, vdom.PropMinHeight, vdom.PropMaxHeight, vdom.PropFlexBasis, vdom.PropDisplay} {
			if e := n.Node.SizeExpr(prop); e != nil {
				key := NodeKey{InstanceID: n.ID, Property: Property(prop)}
				g.Nodes[key] = &GraphNode{Key: key, Expression: e}
			}
		}
	})

	for key, node := range g.Nodes {
		direct, agg := collectRefs(node.Expression.Root)

		for _, d := range direct {
			targets := byWidgetID[d.WidgetID]
			if len(targets) != 1 {
				return nil, &GraphError{Kind: ErrInvalidRef, Message: fmt.Sprintf("ref #%s.%s resolves to %d instances, want exactly 1", d.WidgetID, d.Prop, len(targets))}
			}
			targetProp, ok := refPropToProperty[d.Prop]
			if !ok {
				continue
			}
			producerKey := NodeKey{InstanceID: targets[0].ID, Property: targetProp}
			node.Producers = append(node.Producers, producerKey)

			displayKey := NodeKey{InstanceID: targets[0].ID, Property: PropDisplay}
			if _, hasDisplayExpr := g.Nodes[displayKey]; hasDisplayExpr {
				node.Producers = append(node.Producers, displayKey)
			}
		}

		for _, a := range agg {
			targetProp, ok := refPropToProperty[a.Prop]
			if !ok {
				continue
			}
			for _, sibID := range g.siblingsByWidgetID[a.WidgetID] {
				node.Producers = append(node.Producers, NodeKey{InstanceID: sibID, Property: targetProp})
			}
		}

		if node.Expression.HasIntrinsic {
			g.IntrinsicInstanceIDs[key.InstanceID] = true
		}
	}

	order, err := topoSort(g)
	if err != nil {
		return nil, err
	}
	g.Order = order

	g.RequiresCommitRelayout = computeRequiresCommitRelayout(g)
	g.Fingerprint = fingerprintOf(g)
	return g, nil
}

func computeRequiresCommitRelayout(g *Graph) bool {
	if len(g.IntrinsicInstanceIDs) > 0 {
		return true
	}
	for _, node := range g.Nodes {
		for _, p := range node.Producers {
			if _, ok := g.Nodes[p]; !ok {
				// Producer's property is not itself expression-driven: its
				// value must come from a commit-time probe (baseValues),
				// not the per-frame graph.
				return true
			}
		}
	}
	return false
}

func topoSort(g *Graph) ([]NodeKey, error) {
	indegree := map[NodeKey]int{}
	consumers := map[NodeKey][]NodeKey{}
	for key, node := range g.Nodes {
		indegree[key] = 0
		for _, p := range node.Producers {
			if _, ok := g.Nodes[p]; ok {
				indegree[key]++
				consumers[p] = append(consumers[p], key)
			}
		}
	}

	ready := map[NodeKey]bool{}
	for key, d := range indegree {
		if d == 0 {
			ready[key] = true
		}
	}

	var order []NodeKey
	for len(ready) > 0 {
		next := pickDeterministic(g, ready)
		delete(ready, next)
		order = append(order, next)
		for _, c := range consumers[next] {
			indegree[c]--
			if indegree[c] == 0 {
				ready[c] = true
			}
		}
	}

	if len(order) != len(g.Nodes) {
		remaining := map[NodeKey]bool{}
		for key := range g.Nodes {
			found := false
			for _, o := range order {
				if o == key {
					found = true
					break
				}
			}
			if !found {
				remaining[key] = true
			}
		}
		cycle := findCycle(g, remaining)
		return nil, &GraphError{Kind: ErrCircular, Message: "cycle detected", Cycle: cycle}
	}
	return order, nil
}

func pickDeterministic(g *Graph, ready map[NodeKey]bool) NodeKey {
	keys := make([]NodeKey, 0, len(ready))
	for k := range ready {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		pi, pj := g.preorder[keys[i].InstanceID], g.preorder[keys[j].InstanceID]
		if pi != pj {
			return pi < pj
		}
		return propFixedOrder[keys[i].Property] < propFixedOrder[keys[j].Property]
	})
	return keys[0]
}

func findCycle(g *Graph, remaining map[NodeKey]bool) []string {
	var path []NodeKey
	visited := map[NodeKey]bool{}
	onStack := map[NodeKey]bool{}

	var dfs func(n NodeKey) []NodeKey
	dfs = func(n NodeKey) []NodeKey {
		visited[n] = true
		onStack[n] = true
		path = append(path, n)
		for _, p := range g.Nodes[n].Producers {
			if !remaining[p] {
				continue
			}
			if onStack[p] {
				// Found the back-edge; extract the cycle from path.
				start := 0
				for i, k := range path {
					if k == p {
						start = i
						break
					}
				}
				cyc := append([]NodeKey{}, path[start:]...)
				cyc = append(cyc, p)
				return cyc
			}
			if !visited[p] {
				if r := dfs(p); r != nil {
					return r
				}
			}
		}
		path = path[:len(path)-1]
		onStack[n] = false
		return nil
	}

	startNodes := make([]NodeKey, 0, len(remaining))
	for n := range remaining {
		startNodes = append(startNodes, n)
	}
	sort.Slice(startNodes, func(i, j int) bool {
		pi, pj := g.preorder[startNodes[i].InstanceID], g.preorder[startNodes[j].InstanceID]
		if pi != pj {
			return pi < pj
		}
		return propFixedOrder[startNodes[i].Property] < propFixedOrder[startNodes[j].Property]
	})

	for _, n := range startNodes {
		if !visited[n] {
			if r := dfs(n); r != nil {
				return formatCycle(g, r)
			}
		}
	}
	return nil
}

func formatCycle(g *Graph, cyc []NodeKey) []string {
	out := make([]string, len(cyc))
	for i, k := range cyc {
		label := fmt.Sprintf("instance%d", k.InstanceID)
		if id, ok := g.widgetIDByInstance[k.InstanceID]; ok {
			label = "#" + id
		}
		out[i] = label + "." + string(k.Property)
	}
	return out
}

func fingerprintOf(g *Graph) string {
	if g == nil {
		e := sha256.Sum256(nil)
		return hex.EncodeToString(e[:])
	}
	parts := make([]string, 0, len(g.Nodes))
	for key, node := range g.Nodes {
		parts = append(parts, fmt.Sprintf("%d|%s|%s", key.InstanceID, key.Property, node.Expression.Source))
	}
	sort.Strings(parts)
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
