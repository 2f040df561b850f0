package term

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	xterm "golang.org/x/term"

	"github.com/RtlZeroMemory/Rezi-sub007/style"
)

// Cell is a single screen cell, generalizing the teacher's tui.Cell from a
// basement.Style (ANSI escape strings) to a packed style.Style so the same
// type can be produced straight from a decoded ZRDL FillRect/DrawText op.
type Cell struct {
	Char  rune
	Style style.Style
}

// Buffer is a 2D grid of cells, unchanged in shape from the teacher's
// tui.Buffer.
type Buffer struct {
	Width, Height int
	Cells         []Cell
}

func newBuffer(w, h int) *Buffer {
	return &Buffer{Width: w, Height: h, Cells: make([]Cell, w*h)}
}

func (b *Buffer) set(x, y int, ch rune, st style.Style) {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return
	}
	b.Cells[y*b.Width+x] = Cell{Char: ch, Style: st}
}

func (b *Buffer) resize(w, h int) {
	next := make([]Cell, w*h)
	minH, minW := h, w
	if b.Height < minH {
		minH = b.Height
	}
	if b.Width < minW {
		minW = b.Width
	}
	for y := 0; y < minH; y++ {
		copy(next[y*w:y*w+minW], b.Cells[y*b.Width:y*b.Width+minW])
	}
	b.Width, b.Height, b.Cells = w, h, next
}

// clipRect is an inclusive-exclusive rectangle used to bound writes inside
// a PushClip/PopClip span (§4.F).
type clipRect struct{ x, y, w, h int }

func (c clipRect) contains(x, y int) bool {
	return x >= c.x && x < c.x+c.w && y >= c.y && y < c.y+c.h
}

// screen manages the terminal display: a double-buffered cell grid plus a
// diffing flush, generalized from the teacher's tui.Screen (which wrote
// Cell/basement.Style directly) into a target for decoded ZRDL v1 ops.
type screen struct {
	front, back *Buffer
	out         *bufio.Writer

	clips []clipRect

	posBuf []byte
}

func newScreen(w, h int) *screen {
	return &screen{
		front:  newBuffer(w, h),
		back:   newBuffer(w, h),
		out:    bufio.NewWriterSize(os.Stdout, 64*1024),
		posBuf: make([]byte, 0, 32),
	}
}

func getTerminalSize() (w, h int) {
	w, h, err := xterm.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80, 24
	}
	return w, h
}

func (s *screen) resize(w, h int) {
	s.front.resize(w, h)
	s.back.resize(w, h)
	for i := range s.front.Cells {
		s.front.Cells[i] = Cell{}
	}
}

func (s *screen) clearBack() {
	for i := range s.back.Cells {
		s.back.Cells[i] = Cell{}
	}
}

func (s *screen) pushClip(x, y, w, h int) {
	if len(s.clips) > 0 {
		p := s.clips[len(s.clips)-1]
		x, y, w, h = intersect(p.x, p.y, p.w, p.h, x, y, w, h)
	}
	s.clips = append(s.clips, clipRect{x, y, w, h})
}

func (s *screen) popClip() {
	if len(s.clips) > 0 {
		s.clips = s.clips[:len(s.clips)-1]
	}
}

func (s *screen) clipped(x, y int) bool {
	if len(s.clips) == 0 {
		return false
	}
	return !s.clips[len(s.clips)-1].contains(x, y)
}

func intersect(ax, ay, aw, ah, bx, by, bw, bh int) (x, y, w, h int) {
	x1 := max(ax, bx)
	y1 := max(ay, by)
	x2 := min(ax+aw, bx+bw)
	y2 := min(ay+ah, by+bh)
	if x2 < x1 {
		x2 = x1
	}
	if y2 < y1 {
		y2 = y1
	}
	return x1, y1, x2 - x1, y2 - y1
}

func (s *screen) fillRect(x, y, w, h int, st style.Style) {
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			if s.clipped(col, row) {
				continue
			}
			s.back.set(col, row, ' ', st)
		}
	}
}

func (s *screen) drawText(x, y int, text string, st style.Style) {
	col := x
	for _, r := range text {
		if r == '\n' {
			y++
			col = x
			continue
		}
		if !s.clipped(col, y) {
			s.back.set(col, y, r, st)
		}
		col++
	}
}

// flush diffs back against front and writes only the changed cells,
// mirroring the teacher's Screen.renderUnlocked.
func (s *screen) flush() {
	w, h := s.back.Width, s.back.Height
	curX, curY := -1, -1
	var lastStyle style.Style
	styleActive := false

	for y := 0; y < h; y++ {
		rowOff := y * w
		for x := 0; x < w; x++ {
			idx := rowOff + x
			bc := s.back.Cells[idx]
			if bc == s.front.Cells[idx] {
				continue
			}
			if curX != x || curY != y {
				s.writeCursorPos(y+1, x+1)
				curX, curY = x, y
			}
			if !styleActive || bc.Style != lastStyle {
				if styleActive {
					s.out.WriteString("\x1b[0m")
				}
				s.writeStyle(bc.Style)
				lastStyle = bc.Style
				styleActive = true
			}
			ch := bc.Char
			if ch == 0 {
				ch = ' '
			}
			s.out.WriteRune(ch)
			curX++
			s.front.Cells[idx] = bc
		}
	}
	if styleActive {
		s.out.WriteString("\x1b[0m")
	}
	s.out.Flush()
}

func (s *screen) writeCursorPos(row, col int) {
	s.posBuf = s.posBuf[:0]
	s.posBuf = append(s.posBuf, '\x1b', '[')
	s.posBuf = strconv.AppendInt(s.posBuf, int64(row), 10)
	s.posBuf = append(s.posBuf, ';')
	s.posBuf = strconv.AppendInt(s.posBuf, int64(col), 10)
	s.posBuf = append(s.posBuf, 'H')
	s.out.Write(s.posBuf)
}

// writeStyle emits truecolor SGR escapes (§4.F style payload is full RGB,
// unlike the teacher's fixed ANSI-16 basement.Style.Color strings).
func (s *screen) writeStyle(st style.Style) {
	var sb strings.Builder
	if st.Attrs&style.AttrBold != 0 {
		sb.WriteString("\x1b[1m")
	}
	if st.Attrs&style.AttrDim != 0 {
		sb.WriteString("\x1b[2m")
	}
	if st.Attrs&style.AttrItalic != 0 {
		sb.WriteString("\x1b[3m")
	}
	if st.Attrs&style.AttrUnderline != 0 {
		sb.WriteString("\x1b[4m")
	}
	if st.Attrs&style.AttrBlink != 0 {
		sb.WriteString("\x1b[5m")
	}
	if st.Attrs&style.AttrInverse != 0 {
		sb.WriteString("\x1b[7m")
	}
	if st.Attrs&style.AttrStrike != 0 {
		sb.WriteString("\x1b[9m")
	}
	if st.Fg != 0 {
		r, g, b := st.Fg.RGB()
		sb.WriteString("\x1b[38;2;")
		sb.WriteString(strconv.Itoa(int(r)))
		sb.WriteByte(';')
		sb.WriteString(strconv.Itoa(int(g)))
		sb.WriteByte(';')
		sb.WriteString(strconv.Itoa(int(b)))
		sb.WriteByte('m')
	}
	if st.Bg != 0 {
		r, g, b := st.Bg.RGB()
		sb.WriteString("\x1b[48;2;")
		sb.WriteString(strconv.Itoa(int(r)))
		sb.WriteByte(';')
		sb.WriteString(strconv.Itoa(int(g)))
		sb.WriteByte(';')
		sb.WriteString(strconv.Itoa(int(b)))
		sb.WriteByte('m')
	}
	s.out.WriteString(sb.String())
}
