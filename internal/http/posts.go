package httpx

import (
	"errors"
	"fmt"
	"net/http"

	"blog/internal/auth"
	"blog/internal/forms"
	"blog/internal/models"
	"blog/internal/store"
)

func detailURL(id int64) string { return fmt.Sprintf("/posts/detail/%d/", id) }

func (s *Server) renderPostForm(w http.ResponseWriter, r *http.Request, title string, f *forms.PostForm) {
	s.render(w, r, http.StatusOK, "post_form.html", &pageData{Title: title, Form: f})
}

func (s *Server) handlePostCreate(w http.ResponseWriter, r *http.Request) {
	categories, err := s.Store.Categories().List(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.renderPostForm(w, r, "New post", forms.NewPostForm(nil, categories))
	case http.MethodPost:
		if !s.parseForm(w, r) {
			return
		}
		f := forms.NewPostForm(r.PostForm, categories)
		f.Validate()
		if !f.Valid() {
			s.renderPostForm(w, r, "New post", f)
			return
		}
		profile, err := s.Store.Profiles().GetOrCreate(r.Context(), userFrom(r).ID)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		p := &models.Post{ProfileID: profile.ID}
		f.Bind(p)
		if err := s.Store.Posts().Create(r.Context(), p); err != nil {
			s.serverError(w, r, err)
			return
		}
		http.Redirect(w, r, detailURL(p.ID), http.StatusSeeOther)
	default:
		s.methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

// ownedPost loads the post named in the path and checks the caller wrote
// it. On false the response has already been written.
func (s *Server) ownedPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	id, ok := pathID(r)
	if !ok {
		s.notFound(w)
		return nil, false
	}
	p, err := s.Store.Posts().Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.notFound(w)
		return nil, false
	}
	if err != nil {
		s.serverError(w, r, err)
		return nil, false
	}
	if p.AuthorUserID != userFrom(r).ID {
		s.forbidden(w)
		return nil, false
	}
	return p, true
}

func (s *Server) handlePostUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := s.ownedPost(w, r)
	if !ok {
		return
	}
	categories, err := s.Store.Categories().List(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	if r.Method != http.MethodPost {
		s.renderPostForm(w, r, "Edit post", forms.PostFormFrom(p, categories))
		return
	}
	if !s.parseForm(w, r) {
		return
	}
	f := forms.NewPostForm(r.PostForm, categories)
	f.Validate()
	if !f.Valid() {
		s.renderPostForm(w, r, "Edit post", f)
		return
	}
	f.Bind(p)
	if err := s.Store.Posts().Update(r.Context(), p); err != nil {
		s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, detailURL(p.ID), http.StatusSeeOther)
}

func (s *Server) handlePostDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := s.ownedPost(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		s.render(w, r, http.StatusOK, "post_confirm_delete.html", &pageData{Title: "Delete post", Post: p})
		return
	}
	if err := s.Store.Posts().Delete(r.Context(), p.ID); err != nil {
		s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/posts/", http.StatusSeeOther)
}

func (s *Server) handlePostDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.notFound(w)
		return
	}
	user := userFrom(r)
	viewerID, _ := auth.UserIDFrom(r.Context())

	f := forms.NewCommentForm(nil, user != nil)
	if r.Method == http.MethodPost {
		if !s.parseForm(w, r) {
			return
		}
		f = forms.NewCommentForm(r.PostForm, user != nil)
		f.Validate()
	}

	d, err := s.Store.Posts().Detail(r.Context(), id, viewerID)
	if errors.Is(err, store.ErrNotFound) {
		s.notFound(w)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	if r.Method == http.MethodPost && f.Valid() {
		var profile *models.UserProfile
		if user != nil {
			if profile, err = s.Store.Profiles().GetOrCreate(r.Context(), user.ID); err != nil {
				s.serverError(w, r, err)
				return
			}
		}
		if err := s.Store.Comments().Create(r.Context(), f.Comment(id, user, profile)); err != nil {
			s.serverError(w, r, err)
			return
		}
		http.Redirect(w, r, detailURL(id), http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "post_detail.html", &pageData{Title: d.Post.Title, Detail: d, Form: f})
}
