package forms

import (
	"context"
	"net/mail"
	"net/url"
	"regexp"

	"blog/internal/auth"
	"blog/internal/models"
)

var usernameRx = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// UsernameChecker reports whether a username is already registered.
type UsernameChecker interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
}

type RegisterForm struct {
	*Form
}

func NewRegisterForm(data url.Values) *RegisterForm {
	return &RegisterForm{New(data)}
}

// Validate checks every field. The returned error is only for lookup
// failures; validation problems land in f.Errors.
func (f *RegisterForm) Validate(ctx context.Context, users UsernameChecker) error {
	f.Required("first_name", "last_name", "username", "email", "password1", "password2")
	f.MaxLength("first_name", 30)
	f.MaxLength("last_name", 30)
	f.MaxLength("username", 150)

	if u := f.Get("username"); u != "" {
		if !usernameRx.MatchString(u) {
			f.Errors.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
		} else {
			taken, err := users.UsernameExists(ctx, u)
			if err != nil {
				return err
			}
			if taken {
				f.Errors.Add("username", "A user with that username already exists.")
			}
		}
	}

	if e := f.Get("email"); e != "" {
		if addr, err := mail.ParseAddress(e); err != nil || addr.Address != e {
			f.Errors.Add("email", "Enter a valid email address.")
		}
	}

	// passwords are not trimmed
	p1, p2 := f.Values.Get("password1"), f.Values.Get("password2")
	if p1 != "" && p2 != "" {
		if p1 != p2 {
			f.Errors.Add("password2", "The two password fields didn’t match.")
		} else {
			for _, msg := range auth.ValidatePassword(p2, f.Get("username"), f.Get("first_name"), f.Get("last_name"), f.Get("email")) {
				f.Errors.Add("password2", msg)
			}
		}
	}
	return nil
}

// User builds the account to create; call only after Validate succeeds.
func (f *RegisterForm) User() *models.User {
	return &models.User{
		Username:  f.Get("username"),
		Email:     f.Get("email"),
		FirstName: f.Get("first_name"),
		LastName:  f.Get("last_name"),
	}
}

func (f *RegisterForm) Password() string {
	return f.Values.Get("password1")
}

type LoginForm struct {
	*Form
}

func NewLoginForm(data url.Values) *LoginForm {
	return &LoginForm{New(data)}
}

func (f *LoginForm) Validate() {
	f.Required("username", "password")
}
