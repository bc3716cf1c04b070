package i

import (
	"time"
)

// SubjectClaim names the operator a token was issued to.
const SubjectClaim = "sub"

// Claims are the fields carried by an operator token.
type Claims map[string]interface{}

// OperatorClaims returns claims for a token issued to subject.
func OperatorClaims(subject string) Claims {
	return Claims{SubjectClaim: subject}
}

// Subject returns the operator named by the claims, or "" if there is none.
func (c Claims) Subject() string {
	s, _ := c[SubjectClaim].(string)
	return s
}

// Tokenizer issues and checks the bearer tokens guarding the run results
// API.
type Tokenizer interface {
	// Generate signs claims into a token valid for expTime.
	Generate(claims Claims, expTime time.Duration) (string, error)

	// Decode validates a token and returns its claims.
	Decode(token string) (Claims, error)
}
