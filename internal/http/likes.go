package httpx

import (
	"errors"
	"net/http"

	"blog/internal/store"
)

func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.notFound(w)
		return
	}
	p, err := s.Store.Posts().Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.notFound(w)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	profile, err := s.Store.Profiles().GetOrCreate(r.Context(), userFrom(r).ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if _, err := s.Store.Likes().TogglePost(r.Context(), profile.ID, p.ID); err != nil {
		s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, detailURL(p.ID), http.StatusSeeOther)
}

func (s *Server) handleToggleCommentLike(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.notFound(w)
		return
	}
	c, err := s.Store.Comments().Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.notFound(w)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	profile, err := s.Store.Profiles().GetOrCreate(r.Context(), userFrom(r).ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if _, err := s.Store.Likes().ToggleComment(r.Context(), profile.ID, c.ID); err != nil {
		s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, detailURL(c.PostID), http.StatusSeeOther)
}
