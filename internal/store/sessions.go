package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"blog/internal/models"
)

type SessionService struct{ s *Store }

func (ss *SessionService) Create(ctx context.Context, sess *models.Session) error {
	sess.CreatedAt = ss.s.timestamp()
	_, err := ss.s.exec(ctx, "sessions.create", ss.s.sb.
		Insert("sessions").
		Columns("id", "user_id", "expires_at", "created_at").
		Values(sess.ID, sess.UserID, sess.ExpiresAt.UTC(), sess.CreatedAt))
	return err
}

func (ss *SessionService) Get(ctx context.Context, id string) (*models.Session, error) {
	var sess models.Session
	err := ss.s.get(ctx, "sessions.get", &sess, ss.s.sb.
		Select("id", "user_id", "expires_at", "created_at").
		From("sessions").
		Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (ss *SessionService) Delete(ctx context.Context, id string) error {
	_, err := ss.s.exec(ctx, "sessions.delete", ss.s.sb.Delete("sessions").Where(sq.Eq{"id": id}))
	return err
}

func (ss *SessionService) DeleteForUser(ctx context.Context, userID int64) error {
	_, err := ss.s.exec(ctx, "sessions.delete_for_user", ss.s.sb.Delete("sessions").Where(sq.Eq{"user_id": userID}))
	return err
}

// DeleteExpired purges sessions past their expiry and reports how many.
func (ss *SessionService) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := ss.s.exec(ctx, "sessions.delete_expired",
		ss.s.sb.Delete("sessions").Where(sq.Lt{"expires_at": ss.s.timestamp()}))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
