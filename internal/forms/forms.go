// Package forms binds submitted form values, validates them and keeps
// per-field errors for re-rendering.
package forms

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// NonField collects errors that belong to the form as a whole.
const NonField = "__all__"

type Errors map[string][]string

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Get returns the first error for field, or "".
func (e Errors) Get(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Form is the shared state of every binding: the submitted values and
// whatever validation found wrong with them.
type Form struct {
	url.Values
	Errors Errors
}

func New(data url.Values) *Form {
	if data == nil {
		data = url.Values{}
	}
	return &Form{Values: data, Errors: Errors{}}
}

// Get returns the trimmed value of field.
func (f *Form) Get(field string) string {
	return strings.TrimSpace(f.Values.Get(field))
}

func (f *Form) Required(fields ...string) {
	for _, field := range fields {
		if f.Get(field) == "" {
			f.Errors.Add(field, "This field is required.")
		}
	}
}

func (f *Form) MaxLength(field string, n int) {
	if v := f.Get(field); utf8.RuneCountInString(v) > n {
		f.Errors.Add(field, fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", n, utf8.RuneCountInString(v)))
	}
}

func (f *Form) Valid() bool {
	return len(f.Errors) == 0
}
