package layout

import (
	"strconv"
	"strings"

	"github.com/RtlZeroMemory/Rezi-sub007/vdom"
)

// gridTrack is one resolved column track: either a fixed cell width or a
// flex weight sharing the remaining space.
type gridTrack struct {
	fixed int
	flex  float64
}

// parseColumns validates and parses the grid's "columns" prop (§4.E): a
// positive integer (N equal-flex tracks) or a non-empty track-spec string
// (space-separated "N" fixed or "Nfr" flex tokens). An expression value
// (or anything else) is INVALID_PROPS.
func parseColumns(props map[string]interface{}) ([]gridTrack, error) {
	v, ok := props["columns"]
	if !ok {
		return nil, &Error{Kind: ErrInvalidProps, Message: "grid requires a \"columns\" prop"}
	}
	switch t := v.(type) {
	case int:
		if t <= 0 {
			return nil, &Error{Kind: ErrInvalidProps, Message: "grid columns must be a positive integer"}
		}
		tracks := make([]gridTrack, t)
		for i := range tracks {
			tracks[i] = gridTrack{flex: 1}
		}
		return tracks, nil
	case float64:
		n := int(t)
		if n <= 0 || float64(n) != t {
			return nil, &Error{Kind: ErrInvalidProps, Message: "grid columns must be a positive integer"}
		}
		tracks := make([]gridTrack, n)
		for i := range tracks {
			tracks[i] = gridTrack{flex: 1}
		}
		return tracks, nil
	case string:
		fields := strings.Fields(t)
		if len(fields) == 0 {
			return nil, &Error{Kind: ErrInvalidProps, Message: "grid columns track spec must be non-empty"}
		}
		tracks := make([]gridTrack, len(fields))
		for i, f := range fields {
			if strings.HasSuffix(f, "fr") {
				w, err := strconv.ParseFloat(strings.TrimSuffix(f, "fr"), 64)
				if err != nil || w <= 0 {
					return nil, &Error{Kind: ErrInvalidProps, Message: "invalid grid track \"" + f + "\""}
				}
				tracks[i] = gridTrack{flex: w}
				continue
			}
			n, err := strconv.Atoi(f)
			if err != nil || n <= 0 {
				return nil, &Error{Kind: ErrInvalidProps, Message: "invalid grid track \"" + f + "\""}
			}
			tracks[i] = gridTrack{fixed: n}
		}
		return tracks, nil
	default:
		return nil, &Error{Kind: ErrInvalidProps, Message: "grid columns must be an integer or track-spec string, not an expression"}
	}
}

func (b *builder) layoutGrid(inst *vdom.Instance, x, y, maxW, maxH int) (*Node, error) {
	props := b.propsOf(inst)
	tracks, err := parseColumns(props)
	if err != nil {
		return nil, err
	}
	gap, err := floatProp(props, "gap", 0)
	if err != nil {
		return nil, err
	}
	gapCells := int(gap)
	ncols := len(tracks)

	fixedTotal := 0
	flexTotal := 0.0
	for _, t := range tracks {
		fixedTotal += t.fixed
		flexTotal += t.flex
	}
	if ncols > 1 {
		fixedTotal += gapCells * (ncols - 1)
	}
	remaining := maxW - fixedTotal
	if remaining < 0 {
		remaining = 0
	}

	colWidths := make([]int, ncols)
	colX := make([]int, ncols)
	cursor := x
	for i, t := range tracks {
		w := t.fixed
		if t.flex > 0 && flexTotal > 0 {
			w = int(float64(remaining) * t.flex / flexTotal)
		}
		colWidths[i] = w
		colX[i] = cursor
		cursor += w + gapCells
	}

	node := &Node{Instance: inst, Rect: Rect{X: x, Y: y, W: maxW, H: maxH}}
	rowY := y
	for i := 0; i < len(inst.Children); i += ncols {
		rowHeight := 0
		rowNodes := make([]*Node, 0, ncols)
		for col := 0; col < ncols && i+col < len(inst.Children); col++ {
			child := inst.Children[i+col]
			childNode, err := b.layoutNode(child, colX[col], rowY, colWidths[col], maxH)
			if err != nil {
				return nil, err
			}
			if childNode.Rect.H > rowHeight {
				rowHeight = childNode.Rect.H
			}
			rowNodes = append(rowNodes, childNode)
		}
		node.Children = append(node.Children, rowNodes...)
		rowY += rowHeight + gapCells
	}
	return node, nil
}
