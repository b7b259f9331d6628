package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"blog/internal/models"
)

type CommentService struct{ s *Store }

func (cs *CommentService) selectComment() sq.SelectBuilder {
	return cs.s.sb.Select("c.id", "c.profile_id", "c.post_id", "c.name", "c.comment_text", "c.created_at").
		Column(sq.Expr("(SELECT COUNT(*) FROM comment_likes cl WHERE cl.comment_id = c.id AND cl.is_liked = ?) AS likes", true)).
		From("comments c")
}

func (cs *CommentService) Create(ctx context.Context, c *models.Comment) error {
	c.CreatedAt = cs.s.timestamp()
	id, err := cs.s.insert(ctx, "comments.create", cs.s.sb.
		Insert("comments").
		Columns("profile_id", "post_id", "name", "comment_text", "created_at").
		Values(c.ProfileID, c.PostID, c.Name, c.CommentText, c.CreatedAt))
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (cs *CommentService) Get(ctx context.Context, id int64) (*models.Comment, error) {
	var c models.Comment
	if err := cs.s.get(ctx, "comments.get", &c, cs.selectComment().Where(sq.Eq{"c.id": id})); err != nil {
		return nil, err
	}
	return &c, nil
}

// ForPost lists the post's comments newest first, with like counts.
func (cs *CommentService) ForPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := cs.s.selectAll(ctx, "comments.for_post", &comments, cs.selectComment().
		Where(sq.Eq{"c.post_id": postID}).
		OrderBy("c.created_at DESC", "c.id DESC"))
	return comments, err
}

func (cs *CommentService) CountForPost(ctx context.Context, postID int64) (int, error) {
	var n int
	err := cs.s.get(ctx, "comments.count", &n,
		cs.s.sb.Select("COUNT(*)").From("comments").Where(sq.Eq{"post_id": postID}))
	return n, err
}
