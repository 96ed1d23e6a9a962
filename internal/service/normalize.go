package service

import (
	"regexp"
	"strings"
)

// expressionPattern matches a tightly written two-operand expression such as
// "12*4". Any Unicode decimal digit counts ("٣+٤", "１+１"). Spaces around
// the operator are not tolerated, so "3 + 2" does not match.
var expressionPattern = regexp.MustCompile(`\p{Nd}+[+\-*/]\p{Nd}+`)

// NormalizeQuery extracts the first arithmetic expression in query, with
// whitespace removed. The expression is a lookup key; it is never evaluated.
func NormalizeQuery(query string) (string, bool) {
	m := expressionPattern.FindString(query)
	if m == "" {
		return "", false
	}
	return strings.Join(strings.Fields(m), ""), true
}
