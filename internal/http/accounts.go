package httpx

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"blog/internal/auth"
	"blog/internal/forms"
	"blog/internal/store"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.render(w, r, http.StatusOK, "register.html", &pageData{Title: "Register", Form: forms.NewRegisterForm(nil)})
	case http.MethodPost:
		if !s.parseForm(w, r) {
			return
		}
		f := forms.NewRegisterForm(r.PostForm)
		if err := f.Validate(r.Context(), s.Store.Users()); err != nil {
			s.serverError(w, r, err)
			return
		}
		if f.Valid() {
			err := s.Auth.Register(r.Context(), f.User(), f.Password())
			if err == nil {
				http.Redirect(w, r, "/login/", http.StatusSeeOther)
				return
			}
			if !errors.Is(err, store.ErrUsernameTaken) {
				s.serverError(w, r, err)
				return
			}
			f.Errors.Add("username", "A user with that username already exists.")
		}
		s.render(w, r, http.StatusOK, "register.html", &pageData{Title: "Register", Form: f})
	default:
		s.methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return "/"
	}
	return next
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.render(w, r, http.StatusOK, "login.html", &pageData{
			Title: "Log in",
			Form:  forms.NewLoginForm(nil),
			Next:  r.URL.Query().Get("next"),
		})
	case http.MethodPost:
		if !s.parseForm(w, r) {
			return
		}
		f := forms.NewLoginForm(r.PostForm)
		next := r.PostForm.Get("next")
		f.Validate()
		if f.Valid() {
			sess, u, err := s.Auth.Login(r.Context(), f.Get("username"), f.Values.Get("password"))
			switch {
			case err == nil:
				s.Auth.SetCookie(w, sess)
				s.Log.Info("login", "user_id", u.ID)
				http.Redirect(w, r, safeNext(next), http.StatusSeeOther)
				return
			case errors.Is(err, auth.ErrInvalidLogin):
				f.Errors.Add(forms.NonField, "Please enter a correct username and password. Note that both fields may be case-sensitive.")
			default:
				s.serverError(w, r, err)
				return
			}
		}
		s.render(w, r, http.StatusOK, "login.html", &pageData{Title: "Log in", Form: f, Next: next})
	default:
		s.methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead && r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodGet, http.MethodPost)
		return
	}
	if c, err := r.Cookie(auth.CookieName); err == nil && c.Value != "" {
		if err := s.Auth.Logout(r.Context(), c.Value); err != nil && !errors.Is(err, store.ErrNotFound) {
			s.serverError(w, r, err)
			return
		}
	}
	s.Auth.ClearCookie(w)
	r = r.WithContext(auth.WithUser(r.Context(), nil))
	s.render(w, r, http.StatusOK, "logged_out.html", &pageData{Title: "Logged out"})
}
