package httpx

import (
	"errors"
	"net/http"
	"strconv"

	"blog/internal/models"
	"blog/internal/store"
)

// pageData is the view model every template renders from.
type pageData struct {
	Title   string
	User    *models.User
	Page    *models.Page
	Posts   []*models.Post
	Profile *models.UserProfile
	Detail  *models.PostDetail
	Post    *models.Post
	Form    any
	Next    string
}

// pageNumber reads ?page=. "last" selects the final page; anything else
// that is not an integer is rejected.
func pageNumber(r *http.Request) (int, bool) {
	v := r.URL.Query().Get("page")
	switch v {
	case "":
		return 1, true
	case "last":
		return store.LastPage, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) listing(w http.ResponseWriter, r *http.Request, opts store.ListOptions, page, title string) {
	n, ok := pageNumber(r)
	if !ok {
		s.notFound(w)
		return
	}
	p, err := s.Store.Posts().Page(r.Context(), opts, n, PageSize)
	if errors.Is(err, store.ErrInvalidPage) {
		s.notFound(w)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, page, &pageData{Title: title, Page: p})
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.listing(w, r, store.ListOptions{}, "home.html", "Home")
}

func (s *Server) handleMyPosts(w http.ResponseWriter, r *http.Request) {
	profile, err := s.Store.Profiles().GetOrCreate(r.Context(), userFrom(r).ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.listing(w, r, store.ListOptions{ProfileID: profile.ID, ByID: true}, "post_list.html", "My posts")
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.Store.Profiles().ByUsername(r.Context(), r.PathValue("username"))
	if errors.Is(err, store.ErrNotFound) {
		s.notFound(w)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	posts, err := s.Store.Posts().ByProfile(r.Context(), profile.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "profile.html", &pageData{Title: profile.Username, Profile: profile, Posts: posts})
}

// parseForm answers 400 itself when the body cannot be read.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		s.clientError(w, http.StatusBadRequest)
		return false
	}
	return true
}
