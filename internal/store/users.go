package store

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"blog/internal/models"
)

type UserService struct{ s *Store }

var userColumns = []string{"id", "username", "email", "first_name", "last_name", "password_hash", "date_joined"}

// Create inserts u, sets its ID and DateJoined, and runs the user hooks in
// the same transaction.
func (us *UserService) Create(ctx context.Context, u *models.User) error {
	return us.s.Transaction(ctx, func(tx *Store) error {
		u.DateJoined = tx.timestamp()
		id, err := tx.insert(ctx, "users.create", tx.sb.
			Insert("users").
			Columns("username", "email", "first_name", "last_name", "password_hash", "date_joined").
			Values(u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.DateJoined))
		if isUniqueViolation(err) {
			return ErrUsernameTaken
		}
		if err != nil {
			return fmt.Errorf("create user %q: %w", u.Username, err)
		}
		u.ID = id

		for _, h := range tx.userHooks {
			if err := h(ctx, tx, u); err != nil {
				return err
			}
		}
		return nil
	})
}

func (us *UserService) ByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := us.s.get(ctx, "users.by_id", &u,
		us.s.sb.Select(userColumns...).From("users").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (us *UserService) ByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := us.s.get(ctx, "users.by_username", &u,
		us.s.sb.Select(userColumns...).From("users").Where(sq.Eq{"username": username}))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (us *UserService) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := us.ByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// List returns every user ordered by username.
func (us *UserService) List(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := us.s.selectAll(ctx, "users.list", &users,
		us.s.sb.Select(userColumns...).From("users").OrderBy("username"))
	return users, err
}

// Delete removes the user; the profile and everything it owns cascade.
func (us *UserService) Delete(ctx context.Context, id int64) error {
	return us.s.execOne(ctx, "users.delete", us.s.sb.Delete("users").Where(sq.Eq{"id": id}))
}
