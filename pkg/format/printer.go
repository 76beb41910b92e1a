// Package format renders package descriptors: as normalised DRL source, as
// an indented outline tree, and as JSON or YAML views.
package format

import (
	"bytes"
	"strings"
)

const indentSize = 4

// Printer writes indented text line by line.
type Printer struct {
	output      *bytes.Buffer
	depth       int
	indentSize  int
	atLineStart bool
}

func newPrinter(indentSize int) *Printer {
	return &Printer{
		output:      &bytes.Buffer{},
		indentSize:  indentSize,
		atLineStart: true,
	}
}

// String returns the output with exactly one trailing newline.
func (p *Printer) String() string {
	return strings.TrimRight(p.output.String(), "\n") + "\n"
}

func (p *Printer) write(s string) {
	if p.atLineStart && len(s) > 0 && s[0] != '\n' {
		p.writeIndent()
	}
	p.output.WriteString(s)
	p.atLineStart = false
}

func (p *Printer) writeln() {
	p.output.WriteByte('\n')
	p.atLineStart = true
}

// line writes s followed by a newline.
func (p *Printer) line(s string) {
	p.write(s)
	p.writeln()
}

// blank writes an empty line unless the output is empty or already ends
// in one.
func (p *Printer) blank() {
	out := p.output.Bytes()
	if len(out) == 0 || bytes.HasSuffix(out, []byte("\n\n")) {
		return
	}
	p.writeln()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.depth*p.indentSize; i++ {
		p.output.WriteByte(' ')
	}
	p.atLineStart = false
}

func (p *Printer) indent() {
	p.depth++
}

func (p *Printer) dedent() {
	if p.depth > 0 {
		p.depth--
	}
}

func (p *Printer) space() {
	p.output.WriteByte(' ')
}

// block writes multi-line text at the current depth. The common leading
// indentation of the text is removed first.
func (p *Printer) block(text string) {
	for _, l := range dedentLines(text) {
		if l == "" {
			p.writeln()
			continue
		}
		p.line(l)
	}
}

// formatList prints count items with sep between them.
func (p *Printer) formatList(count int, format func(i int), sep string) {
	for i := 0; i < count; i++ {
		format(i)
		if i < count-1 {
			p.write(sep)
		}
	}
}

// dedentLines splits text into lines and strips the indentation shared by
// every non-blank line. The first line is ignored when computing the shared
// indentation because source slices start at the first token.
func dedentLines(text string) []string {
	lines := strings.Split(strings.TrimRight(text, " \t\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t\r")
	}
	common := -1
	for _, l := range lines[1:] {
		if l == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if common < 0 || n < common {
			common = n
		}
	}
	if common > 0 {
		for i := 1; i < len(lines); i++ {
			if len(lines[i]) >= common {
				lines[i] = lines[i][common:]
			}
		}
	}
	return lines
}
