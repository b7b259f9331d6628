package store

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"blog/internal/models"
)

type LikeService struct{ s *Store }

// TogglePost flips the profile's like on a post, creating the row on first
// use. Rows are never removed; unliking sets is_liked back to false.
func (ls *LikeService) TogglePost(ctx context.Context, profileID, postID int64) (*models.Like, error) {
	l := &models.Like{ProfileID: profileID, PostID: postID}
	id, liked, err := ls.toggle(ctx, "likes", "post_id", profileID, postID)
	if err != nil {
		return nil, err
	}
	l.ID, l.IsLiked = id, liked
	return l, nil
}

// ToggleComment is TogglePost for comments.
func (ls *LikeService) ToggleComment(ctx context.Context, profileID, commentID int64) (*models.CommentLike, error) {
	l := &models.CommentLike{ProfileID: profileID, CommentID: commentID}
	id, liked, err := ls.toggle(ctx, "comment_likes", "comment_id", profileID, commentID)
	if err != nil {
		return nil, err
	}
	l.ID, l.IsLiked = id, liked
	return l, nil
}

// toggle is get-or-create followed by a flip of is_liked. Two concurrent
// first toggles can both miss the row; the loser fails on the unique
// (profile, target) constraint.
func (ls *LikeService) toggle(ctx context.Context, table, targetCol string, profileID, targetID int64) (int64, bool, error) {
	var (
		id    int64
		liked bool
	)
	err := ls.s.Transaction(ctx, func(tx *Store) error {
		var row struct {
			ID      int64 `db:"id"`
			IsLiked bool  `db:"is_liked"`
		}
		err := tx.get(ctx, table+".get", &row, tx.sb.
			Select("id", "is_liked").
			From(table).
			Where(sq.Eq{"profile_id": profileID, targetCol: targetID}))
		if errors.Is(err, ErrNotFound) {
			row.ID, err = tx.insert(ctx, table+".create", tx.sb.
				Insert(table).
				Columns("profile_id", targetCol, "is_liked").
				Values(profileID, targetID, false))
		}
		if err != nil {
			return err
		}

		id, liked = row.ID, !row.IsLiked
		return tx.execOne(ctx, table+".toggle", tx.sb.
			Update(table).
			Set("is_liked", liked).
			Where(sq.Eq{"id": id}))
	})
	return id, liked, err
}

func (ls *LikeService) ForPost(ctx context.Context, profileID, postID int64) (*models.Like, error) {
	var l models.Like
	err := ls.s.get(ctx, "likes.for_post", &l, ls.s.sb.
		Select("id", "profile_id", "post_id", "is_liked").
		From("likes").
		Where(sq.Eq{"profile_id": profileID, "post_id": postID}))
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (ls *LikeService) ForComment(ctx context.Context, profileID, commentID int64) (*models.CommentLike, error) {
	var l models.CommentLike
	err := ls.s.get(ctx, "comment_likes.for_comment", &l, ls.s.sb.
		Select("id", "profile_id", "comment_id", "is_liked").
		From("comment_likes").
		Where(sq.Eq{"profile_id": profileID, "comment_id": commentID}))
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CountPost counts profiles currently liking the post.
func (ls *LikeService) CountPost(ctx context.Context, postID int64) (int, error) {
	var n int
	err := ls.s.get(ctx, "likes.count", &n, ls.s.sb.
		Select("COUNT(*)").
		From("likes").
		Where(sq.Eq{"post_id": postID, "is_liked": true}))
	return n, err
}

// LikedCommentIDs lists the comments of postID the profile currently likes.
func (ls *LikeService) LikedCommentIDs(ctx context.Context, profileID, postID int64) ([]int64, error) {
	var ids []int64
	err := ls.s.selectAll(ctx, "comment_likes.liked_ids", &ids, ls.s.sb.
		Select("cl.comment_id").
		From("comment_likes cl").
		Join("comments c ON c.id = cl.comment_id").
		Where(sq.Eq{"cl.profile_id": profileID, "c.post_id": postID, "cl.is_liked": true}).
		OrderBy("cl.comment_id"))
	return ids, err
}
