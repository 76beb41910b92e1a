package builder

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/drl/pkg/cst"
	"github.com/leapstack-labs/drl/pkg/token"
)

// reconstruct returns the text of n built from its tokens. Error subtrees
// contribute nothing. Tokens that touch in the source are joined directly,
// tokens separated by whitespace or comments are joined with one space.
// ok is false when n yields no text at all.
func reconstruct(n *cst.Node) (text string, ok bool) {
	if n == nil || n.IsError() {
		return "", false
	}
	if lit, ok := literalText(n); ok {
		return lit, true
	}

	var sb strings.Builder
	var prev *token.Token
	cst.Walk(n, func(c *cst.Node) bool {
		switch {
		case c.IsError():
			return false
		case c.IsTerminal():
			if prev != nil && prev.End().Offset < c.Token.Pos.Offset {
				sb.WriteByte(' ')
			}
			sb.WriteString(c.Token.Literal)
			prev = c.Token
		}
		return true
	})
	if prev == nil {
		return "", false
	}
	return sb.String(), true
}

// literalText follows a chain of single-child nodes down to a terminal and
// returns its exact text.
func literalText(n *cst.Node) (string, bool) {
	for {
		switch {
		case n.IsTerminal():
			return n.Token.Literal, true
		case n.IsError(), len(n.Children) != 1:
			return "", false
		}
		n = n.Children[0]
	}
}

// textOrEmpty is reconstruct with the failure folded into "".
func textOrEmpty(n *cst.Node) string {
	text, _ := reconstruct(n)
	return text
}

// sourceText returns the exact source covered by n, whitespace included.
func (b *builder) sourceText(n *cst.Node) string {
	if n == nil {
		return ""
	}
	return n.Span.Text(b.tree.Source)
}

// significantSpan is the span of n without trailing semicolons.
func significantSpan(n *cst.Node) token.Span {
	toks := n.Tokens()
	for len(toks) > 0 && toks[len(toks)-1].Type == token.SEMI {
		toks = toks[:len(toks)-1]
	}
	if len(toks) == 0 {
		return token.Span{}
	}
	return token.Span{Start: toks[0].Pos, End: toks[len(toks)-1].End()}
}

// firstIdent returns the literal of the first identifier terminal among
// the direct children of n.
func firstIdent(n *cst.Node) string {
	if n == nil {
		return ""
	}
	for _, c := range n.Children {
		if c.IsTerminal() && (c.Token.Type == token.IDENT || token.IsSoftKeyword(c.Token.Type)) {
			return c.Token.Literal
		}
	}
	return ""
}

// stripDelimiters removes one pair of matching surrounding quotes.
func stripDelimiters(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// unescapeJava decodes Java string escapes: \b \t \n \f \r \" \' \\,
// octal escapes and \uXXXX. A backslash before any other character is
// dropped.
func unescapeJava(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '\\' || i+1 == len(s) {
			sb.WriteByte(ch)
			continue
		}
		i++
		switch c := s[i]; c {
		case 'b':
			sb.WriteByte('\b')
		case 't':
			sb.WriteByte('\t')
		case 'n':
			sb.WriteByte('\n')
		case 'f':
			sb.WriteByte('\f')
		case 'r':
			sb.WriteByte('\r')
		case 'u':
			j := i
			for j < len(s) && s[j] == 'u' {
				j++
			}
			if j+4 <= len(s) {
				if r, err := strconv.ParseUint(s[j:j+4], 16, 32); err == nil {
					sb.WriteRune(rune(r))
					i = j + 3
					continue
				}
			}
			sb.WriteByte('u')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			end := i + 1
			maxLen := 2
			if c <= '3' {
				maxLen = 3
			}
			for end < len(s) && end-i < maxLen && s[end] >= '0' && s[end] <= '7' {
				end++
			}
			v, _ := strconv.ParseUint(s[i:end], 8, 32)
			sb.WriteRune(rune(v))
			i = end - 1
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
