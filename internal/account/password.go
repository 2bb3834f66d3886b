package account

import (
	"math/rand/v2"
	"strings"
)

// PasswordAlphabet is the set of symbols generated passwords are drawn from.
const PasswordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789~-_=+(){}[]^&%$@"

// PasswordLength is the length of generated passwords.
const PasswordLength = 8

// GeneratePassword returns a random password using the package-level
// generator, which is seeded from the operating system on startup.
func GeneratePassword() string {
	return generatePassword(rand.IntN)
}

// NewPasswordGenerator returns a generator drawing from src. Useful for
// reproducible tests.
func NewPasswordGenerator(src rand.Source) func() string {
	r := rand.New(src)
	return func() string {
		return generatePassword(r.IntN)
	}
}

func generatePassword(intN func(int) int) string {
	var b strings.Builder
	b.Grow(PasswordLength)
	for i := 0; i < PasswordLength; i++ {
		b.WriteByte(PasswordAlphabet[intN(len(PasswordAlphabet))])
	}
	return b.String()
}
