// Command rezi previews the inline markup mini-language (§4.G) outside a
// running widget tree: feed it a string argument or pipe text on stdin and
// it prints the resolved styling as truecolor ANSI, the same way the
// teacher's root-level basement CLI let you preview basement.Parse output
// without mounting a tui.Screen.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/RtlZeroMemory/Rezi-sub007/markup"
	"github.com/RtlZeroMemory/Rezi-sub007/style"
)

func main() {
	info, statErr := os.Stdin.Stat()

	switch {
	case len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help"):
		demo()
	case len(os.Args) > 1:
		fmt.Println(renderANSI(strings.Join(os.Args[1:], " ")))
	case statErr == nil && info.Mode()&os.ModeCharDevice == 0:
		reader := bufio.NewReader(os.Stdin)
		var sb strings.Builder
		for {
			line, err := reader.ReadString('\n')
			sb.WriteString(line)
			if err == io.EOF {
				break
			}
		}
		fmt.Print(renderANSI(sb.String()))
	default:
		fmt.Fprintln(os.Stderr, "Usage: rezi <markup text> or pipe input")
	}
}

// renderANSI resolves src's markup segments and concatenates them into a
// single ANSI-escaped string, for terminals that aren't running the full
// reconcile/layout/render pipeline.
func renderANSI(src string) string {
	var sb strings.Builder
	for _, seg := range markup.Parse(src) {
		writeSGR(&sb, seg.Style)
		sb.WriteString(seg.Text)
		if seg.Style != (style.Style{}) {
			sb.WriteString("\x1b[0m")
		}
	}
	return sb.String()
}

func writeSGR(sb *strings.Builder, st style.Style) {
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
	if st.Attrs&style.AttrStrike != 0 {
		sb.WriteString("\x1b[9m")
	}
	if st.Fg != 0 {
		r, g, b := st.Fg.RGB()
		sb.WriteString("\x1b[38;2;" + strconv.Itoa(int(r)) + ";" + strconv.Itoa(int(g)) + ";" + strconv.Itoa(int(b)) + "m")
	}
	if st.Bg != 0 {
		r, g, b := st.Bg.RGB()
		sb.WriteString("\x1b[48;2;" + strconv.Itoa(int(r)) + ";" + strconv.Itoa(int(g)) + ";" + strconv.Itoa(int(b)) + "m")
	}
}

func demo() string {
	out := renderANSI("# **Rezi** markup preview\n")
	out += renderANSI("Write *italic*, **bold**, __underline__, ~~strike~~, --dim--.\n")
	out += renderANSI("Color with #cyan(named) or #ff8800(literal hex) tokens.\n")
	fmt.Print(out)
	return out
}
