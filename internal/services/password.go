package services

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost mirrors the cost the original deployment used.
const DefaultBcryptCost = 10

// HashPassword returns a bcrypt hash of plain using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares a bcrypt hash and a plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// isStrongPassword requires length >=8 plus a lowercase letter, an uppercase
// letter, a digit and a symbol, all at once. Underscore does not count as a
// symbol.
func isStrongPassword(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsSpace(r) && r != '_':
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}
