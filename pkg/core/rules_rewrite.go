package core

import "strings"

// rewriteExpression replaces $-prefixed JSONPath tokens with safe parameter
// names govaluate can parse, returning the rewritten expression and the
// parameter-to-path map. Bare identifiers are left alone; they resolve
// against the event's flat data map.
func rewriteExpression(expr string) (string, map[string]string) {
	var out strings.Builder
	out.Grow(len(expr))

	varMap := make(map[string]string)
	inString := false
	var stringQuote byte

	for i := 0; i < len(expr); {
		ch := expr[i]

		if inString {
			out.WriteByte(ch)
			if ch == '\\' && i+1 < len(expr) {
				out.WriteByte(expr[i+1])
				i += 2
				continue
			}
			if ch == stringQuote {
				inString = false
			}
			i++
			continue
		}

		if ch == '"' || ch == '\'' {
			inString = true
			stringQuote = ch
			out.WriteByte(ch)
			i++
			continue
		}

		if ch == '$' {
			path, next := parseJSONPathToken(expr, i)
			safe := safeVarName(path)
			varMap[safe] = path
			out.WriteString(safe)
			i = next
			continue
		}

		out.WriteByte(ch)
		i++
	}

	return out.String(), varMap
}

func parseJSONPathToken(expr string, start int) (string, int) {
	i := start
	bracketDepth := 0
	parenDepth := 0
	var quote byte

	for i < len(expr) {
		ch := expr[i]

		if quote != 0 {
			if ch == '\\' && i+1 < len(expr) {
				i += 2
				continue
			}
			if ch == quote {
				quote = 0
			}
			i++
			continue
		}

		switch ch {
		case '\'', '"':
			quote = ch
			i++
			continue
		case '[':
			bracketDepth++
		case ']':
			if bracketDepth > 0 {
				bracketDepth--
			}
		case '(':
			if bracketDepth > 0 {
				parenDepth++
			}
		case ')':
			if parenDepth > 0 {
				parenDepth--
			}
		}

		if bracketDepth == 0 && parenDepth == 0 && isTerminator(ch) {
			break
		}

		i++
	}
	return expr[start:i], i
}

func isTerminator(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', ',', ';':
		return true
	case '+', '-', '*', '/', '%':
		return true
	case '=', '!', '<', '>', '&', '|':
		return true
	case ')':
		return true
	default:
		return false
	}
}

func safeVarName(token string) string {
	var b strings.Builder
	b.Grow(len(token) + 2)
	b.WriteString("v_")
	for i := 0; i < len(token); i++ {
		ch := token[i]
		if isIdentChar(ch) {
			b.WriteByte(ch)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func isIdentChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '_'
}
