package expect

import (
	"fmt"
	"strings"
	"unicode"
)

var keywords = map[string]bool{"and": true, "or": true, "not": true}

// Validate accepts comparisons and boolean logic over plain identifiers and
// literals. A minus sign is allowed only as the sign of a number literal.
func Validate(cond string) error {
	cond = strings.TrimSpace(cond)
	if cond == "" {
		return nil
	}

	illegalChars := []rune{'{', '}', '[', ']', ';', ':', '?', '@', '#', '$', '\\'}
	for _, ch := range illegalChars {
		if strings.ContainsRune(cond, ch) {
			return fmt.Errorf("illegal character %q", ch)
		}
	}

	if strings.Contains(cond, ".") {
		return fmt.Errorf("dot access is not allowed")
	}

	for _, op := range []string{"+", "*", "/", "%"} {
		if strings.Contains(cond, op) {
			return fmt.Errorf("arithmetic operator %q is not allowed", op)
		}
	}
	for i := 0; i < len(cond); i++ {
		if cond[i] == '-' && !isSign(cond, i) {
			return fmt.Errorf("arithmetic operator %q is not allowed", "-")
		}
	}

	for i := 0; i < len(cond)-1; i++ {
		if cond[i] != '(' {
			continue
		}
		j := i - 1
		for j >= 0 && unicode.IsSpace(rune(cond[j])) {
			j--
		}
		if j >= 0 && isIdent(cond[j]) {
			k := j
			for k >= 0 && isIdent(cond[k]) {
				k--
			}
			ident := cond[k+1 : j+1]
			if keywords[ident] {
				continue
			}
			return fmt.Errorf("function calls are not allowed (found %q(...))", ident)
		}
	}

	return nil
}

// isSign reports whether the '-' at i directly precedes a digit and follows
// an operator, an opening parenthesis or the start of the expression.
func isSign(cond string, i int) bool {
	if i+1 >= len(cond) || !unicode.IsDigit(rune(cond[i+1])) {
		return false
	}
	j := i - 1
	for j >= 0 && unicode.IsSpace(rune(cond[j])) {
		j--
	}
	return j < 0 || strings.ContainsRune("=!<>&|(", rune(cond[j]))
}

func isIdent(c byte) bool {
	return c == '_' || unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c))
}
