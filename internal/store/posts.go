package store

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"blog/internal/models"
)

// LastPage asks Page for the final page of a listing.
const LastPage = -1

type PostService struct{ s *Store }

// ListOptions narrows a post listing.
type ListOptions struct {
	ProfileID int64 // only posts owned by this profile when non-zero
	ByID      bool  // order by id DESC instead of creation time
}

func (ps *PostService) selectPost() sq.SelectBuilder {
	return ps.s.sb.Select(
		"p.id", "p.profile_id", "p.title", "p.content", "p.category_id", "p.created_at", "p.updated_at",
		"u.username AS author", "u.id AS author_user_id",
		"c.name AS category_name", "c.slug AS category_slug",
	).
		From("posts p").
		Join("profiles pr ON pr.id = p.profile_id").
		Join("users u ON u.id = pr.user_id").
		LeftJoin("categories c ON c.id = p.category_id")
}

// Create inserts p, stamping both timestamps.
func (ps *PostService) Create(ctx context.Context, p *models.Post) error {
	p.CreatedAt = ps.s.timestamp()
	p.UpdatedAt = p.CreatedAt
	id, err := ps.s.insert(ctx, "posts.create", ps.s.sb.
		Insert("posts").
		Columns("profile_id", "title", "content", "category_id", "created_at", "updated_at").
		Values(p.ProfileID, p.Title, p.Content, p.CategoryID, p.CreatedAt, p.UpdatedAt))
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (ps *PostService) Get(ctx context.Context, id int64) (*models.Post, error) {
	var p models.Post
	if err := ps.s.get(ctx, "posts.get", &p, ps.selectPost().Where(sq.Eq{"p.id": id})); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update saves title, content and category and bumps UpdatedAt.
func (ps *PostService) Update(ctx context.Context, p *models.Post) error {
	p.UpdatedAt = ps.s.timestamp()
	return ps.s.execOne(ctx, "posts.update", ps.s.sb.
		Update("posts").
		Set("title", p.Title).
		Set("content", p.Content).
		Set("category_id", p.CategoryID).
		Set("updated_at", p.UpdatedAt).
		Where(sq.Eq{"id": p.ID}))
}

// Delete removes the post with its comments and likes.
func (ps *PostService) Delete(ctx context.Context, id int64) error {
	return ps.s.execOne(ctx, "posts.delete", ps.s.sb.Delete("posts").Where(sq.Eq{"id": id}))
}

// Page returns page number (1-based, or LastPage) of size posts.
// Page 1 always exists; any other page outside the listing is
// ErrInvalidPage.
func (ps *PostService) Page(ctx context.Context, opts ListOptions, number, size int) (*models.Page, error) {
	if size <= 0 {
		return nil, ErrInvalidPage
	}

	var where sq.Sqlizer = sq.Expr("1 = 1")
	if opts.ProfileID != 0 {
		where = sq.Eq{"p.profile_id": opts.ProfileID}
	}

	var total int
	if err := ps.s.get(ctx, "posts.count", &total,
		ps.s.sb.Select("COUNT(*)").From("posts p").Where(where)); err != nil {
		return nil, err
	}

	numPages := (total + size - 1) / size
	if numPages == 0 {
		numPages = 1
	}
	if number == LastPage {
		number = numPages
	}
	if number < 1 || number > numPages {
		return nil, ErrInvalidPage
	}

	q := ps.selectPost().Where(where).
		Limit(uint64(size)).
		Offset(uint64((number - 1) * size))
	if opts.ByID {
		q = q.OrderBy("p.id DESC")
	} else {
		q = q.OrderBy("p.created_at DESC", "p.id DESC")
	}

	page := &models.Page{Number: number, NumPages: numPages, Total: total}
	if err := ps.s.selectAll(ctx, "posts.page", &page.Posts, q); err != nil {
		return nil, err
	}
	return page, nil
}

// ByProfile returns every post owned by the profile, newest first.
func (ps *PostService) ByProfile(ctx context.Context, profileID int64) ([]*models.Post, error) {
	var posts []*models.Post
	err := ps.s.selectAll(ctx, "posts.by_profile", &posts, ps.selectPost().
		Where(sq.Eq{"p.profile_id": profileID}).
		OrderBy("p.created_at DESC", "p.id DESC"))
	return posts, err
}

// Detail gathers the post page for a viewer; viewerID 0 is anonymous.
func (ps *PostService) Detail(ctx context.Context, id, viewerID int64) (*models.PostDetail, error) {
	post, err := ps.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &models.PostDetail{Post: post, LikedCommentIDs: map[int64]bool{}}

	if d.Comments, err = ps.s.Comments().ForPost(ctx, id); err != nil {
		return nil, err
	}
	if d.TotalLikes, err = ps.s.Likes().CountPost(ctx, id); err != nil {
		return nil, err
	}
	if viewerID == 0 {
		return d, nil
	}

	profile, err := ps.s.Profiles().ForUser(ctx, viewerID)
	if errors.Is(err, ErrNotFound) {
		return d, nil
	}
	if err != nil {
		return nil, err
	}

	like, err := ps.s.Likes().ForPost(ctx, profile.ID, id)
	switch {
	case err == nil:
		d.UserLiked = like.IsLiked
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	ids, err := ps.s.Likes().LikedCommentIDs(ctx, profile.ID, id)
	if err != nil {
		return nil, err
	}
	for _, cid := range ids {
		d.LikedCommentIDs[cid] = true
	}
	return d, nil
}
