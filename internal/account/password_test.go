package account

import (
	"math/rand/v2"
	"strings"
	"testing"
)

func TestPasswordAlphabet(t *testing.T) {
	seen := make(map[rune]bool)
	for _, c := range PasswordAlphabet {
		if seen[c] {
			t.Errorf("duplicate symbol %q in alphabet", c)
		}
		seen[c] = true
	}
}

func TestGeneratePassword(t *testing.T) {
	for i := 0; i < 100; i++ {
		pw := GeneratePassword()
		if len(pw) != PasswordLength {
			t.Fatalf("len(%q) = %d, want %d", pw, len(pw), PasswordLength)
		}
		for _, c := range pw {
			if !strings.ContainsRune(PasswordAlphabet, c) {
				t.Fatalf("%q contains %q outside the alphabet", pw, c)
			}
		}
	}
}

func TestGeneratePassword_Fresh(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		pw := GeneratePassword()
		if seen[pw] {
			t.Fatalf("password %q generated twice", pw)
		}
		seen[pw] = true
	}
}

func TestGeneratePassword_CoversAlphabet(t *testing.T) {
	gen := NewPasswordGenerator(rand.NewPCG(1, 2))
	counts := make(map[byte]int)
	for i := 0; i < 5000; i++ {
		for _, c := range []byte(gen()) {
			counts[c]++
		}
	}
	// 40000 draws over the alphabet; every symbol should appear.
	for i := 0; i < len(PasswordAlphabet); i++ {
		if counts[PasswordAlphabet[i]] == 0 {
			t.Errorf("symbol %q never generated", PasswordAlphabet[i])
		}
	}
}

func TestNewPasswordGenerator_Deterministic(t *testing.T) {
	a := NewPasswordGenerator(rand.NewPCG(7, 7))
	b := NewPasswordGenerator(rand.NewPCG(7, 7))
	for i := 0; i < 10; i++ {
		if x, y := a(), b(); x != y {
			t.Fatalf("same seed produced %q and %q", x, y)
		}
	}
}
