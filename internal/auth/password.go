package auth

import (
	"bufio"
	"bytes"
	_ "embed"
	"regexp"
	"strings"
	"sync"
	"unicode"
)

const (
	MinPasswordLength = 8
	// MaxSimilarity is the character-overlap ratio at which a password
	// counts as too close to one of the user's attributes.
	MaxSimilarity = 0.7
)

//go:embed common-passwords.txt
var commonPasswordList []byte

var commonPasswords = sync.OnceValue(func() map[string]struct{} {
	set := make(map[string]struct{}, 1024)
	sc := bufio.NewScanner(bytes.NewReader(commonPasswordList))
	for sc.Scan() {
		if w := strings.ToLower(strings.TrimSpace(sc.Text())); w != "" {
			set[w] = struct{}{}
		}
	}
	return set
})

// IsCommonPassword reports whether password is on the embedded list of
// frequently used passwords. Case and surrounding space are ignored.
func IsCommonPassword(password string) bool {
	_, ok := commonPasswords()[strings.ToLower(strings.TrimSpace(password))]
	return ok
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// quickRatio is 2*M/T where M counts the characters a and b share as
// multisets and T is their combined length.
func quickRatio(a, b []rune) float64 {
	if len(a)+len(b) == 0 {
		return 1
	}
	avail := make(map[rune]int, len(b))
	for _, r := range b {
		avail[r]++
	}
	matches := 0
	for _, r := range a {
		if avail[r] > 0 {
			avail[r]--
			matches++
		}
	}
	return 2 * float64(matches) / float64(len(a)+len(b))
}

// TooSimilar reports whether password resembles attr, or any word of it,
// with a ratio of at least MaxSimilarity. Parts far shorter than the
// password are skipped.
func TooSimilar(password, attr string) bool {
	pw := []rune(strings.ToLower(password))
	attr = strings.ToLower(strings.TrimSpace(attr))
	if attr == "" {
		return false
	}
	for _, part := range append(nonWord.Split(attr, -1), attr) {
		p := []rune(part)
		if len(p) == 0 {
			continue
		}
		if len(pw) >= 10*len(p) && float64(len(p)) < MaxSimilarity/2*float64(len(pw)) {
			continue
		}
		if quickRatio(pw, p) >= MaxSimilarity {
			return true
		}
	}
	return false
}

// ValidatePassword applies the password policy and returns every
// violated rule as a user-facing message. attrs are the account's
// username, names and email, which the password must not resemble.
func ValidatePassword(password string, attrs ...string) []string {
	var problems []string

	for _, a := range attrs {
		if TooSimilar(password, a) {
			problems = append(problems, "The password is too similar to your personal information.")
			break
		}
	}
	if len([]rune(password)) < MinPasswordLength {
		problems = append(problems, "This password is too short. It must contain at least 8 characters.")
	}
	if IsCommonPassword(password) {
		problems = append(problems, "This password is too common.")
	}
	if password != "" && strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) == -1 {
		problems = append(problems, "This password is entirely numeric.")
	}
	return problems
}
