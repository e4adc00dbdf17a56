// AngelaMos | 2026
// identifier.go

package auth

import (
	"regexp"
	"strings"
)

// Accepts "829.091.170-06" and "82909117006". Dots and the dash are
// optional independently.
var nationalIDPattern = regexp.MustCompile(`^\d{3}\.?\d{3}\.?\d{3}-?\d{2}$`)

func IsNationalID(s string) bool {
	return nationalIDPattern.MatchString(s)
}

type identifierKind int

const (
	identifierEmail identifierKind = iota
	identifierNationalID
)

// classifyIdentifier decides which lookup a login identifier goes to.
// Anything that is not shaped like a CPF is treated as an email.
func classifyIdentifier(raw string) (identifierKind, string) {
	id := strings.TrimSpace(raw)
	if IsNationalID(id) {
		return identifierNationalID, id
	}
	return identifierEmail, id
}
