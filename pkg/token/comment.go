package token

import "strings"

// CommentKind tells line comments from block comments.
type CommentKind int

// Comment kinds.
const (
	LineComment  CommentKind = iota // // text
	BlockComment                    // /* text */
)

func (k CommentKind) String() string {
	if k == BlockComment {
		return "block"
	}
	return "line"
}

// Comment is a comment of DRL source. The lexer collects comments beside
// the token stream; they never appear as tokens.
type Comment struct {
	Kind CommentKind
	Text string // verbatim, delimiters included
	Span Span
}

// Body returns the comment text without delimiters. Block comments lose
// the leading "*" of each continuation line.
func (c *Comment) Body() string {
	if c.Kind == LineComment {
		return strings.TrimSpace(strings.TrimPrefix(c.Text, "//"))
	}
	text := strings.TrimPrefix(c.Text, "/*")
	text = strings.TrimPrefix(text, "*")
	text = strings.TrimSuffix(text, "*/")

	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, "*"))
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// DocComment returns the text of the comments directly above line: a
// block comment ending on the previous line, or a run of line comments on
// consecutive lines ending there. comments must be in source order.
func DocComment(comments []*Comment, line int) string {
	var parts []string
	next := line
	for i := len(comments) - 1; i >= 0; i-- {
		c := comments[i]
		if c.Span.Start.Line >= next {
			continue
		}
		if c.Span.End.Line != next-1 {
			break
		}
		parts = append(parts, c.Body())
		if c.Kind == BlockComment {
			break
		}
		next = c.Span.Start.Line
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "\n")
}
