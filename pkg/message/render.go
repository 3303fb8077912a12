package message

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

type palette struct {
	header *color.Color
	code   *color.Color
	grey   *color.Color
	span   *color.Color
	label  *color.Color
}

func newPalette(colored bool) palette {
	p := palette{
		header: color.New(color.FgHiRed, color.Bold),
		code:   color.New(color.FgRed, color.Bold),
		grey:   color.New(color.FgHiBlack),
		span:   color.New(color.FgHiRed, color.Bold),
		label:  color.New(color.FgHiRed),
	}
	for _, c := range []*color.Color{p.header, p.code, p.grey, p.span, p.label} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Render writes m as a boxed report with the offending line and an
// underline beneath the span:
//
//	Error ES005E: Missing member type or value assignment
//	   ╭─[main.es:1:5]
//	   │
//	 1 │ let z
//	   ·     ┬
//	   ·     ╰──── Expected ':' to declare variable type or '=' to assign a value
//	───╯
func Render(w io.Writer, m *Message, colored bool) error {
	p := newPalette(colored)
	c := m.Cursor

	lineNo := strconv.Itoa(c.Start.Line)
	pad := strings.Repeat(" ", len(lineNo)+2)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n",
		p.header.Sprintf("%s %s:", m.Kind.Severity(), p.code.Sprint(m.Kind.Code())),
		m.Kind.Name())
	fmt.Fprintf(&b, "%s%s%s%s\n", pad, p.grey.Sprint("╭─["), c, p.grey.Sprint("]"))
	fmt.Fprintf(&b, "%s%s\n", pad, p.grey.Sprint("│"))

	line := []rune(c.Line())
	startCol := c.Start.Column - 1
	if startCol > len(line) {
		startCol = len(line)
	}
	width := c.Width()
	endCol := startCol + width
	if endCol > len(line) {
		endCol = len(line)
	}
	fmt.Fprintf(&b, " %s %s %s%s%s\n",
		p.grey.Sprint(lineNo), p.grey.Sprint("│"),
		string(line[:startCol]), p.span.Sprint(string(line[startCol:endCol])), string(line[endCol:]))

	indent := strings.Repeat(" ", startCol)
	fmt.Fprintf(&b, "%s%s %s%s\n", pad, p.grey.Sprint("·"), indent, p.label.Sprint(underline(width)))
	fmt.Fprintf(&b, "%s%s %s%s%s\n", pad, p.grey.Sprint("·"), indent,
		p.label.Sprint(strings.Repeat(" ", width/2)+"╰────"), " "+m.Details)
	fmt.Fprintf(&b, "%s\n", p.grey.Sprint(strings.Repeat("─", len(pad))+"╯"))

	_, err := io.WriteString(w, b.String())
	return err
}

// underline draws a bar of the given width with a tick at its middle.
func underline(width int) string {
	var b strings.Builder
	for i := 0; i < width; i++ {
		if i == width/2 {
			b.WriteString("┬")
		} else {
			b.WriteString("─")
		}
	}
	return b.String()
}
