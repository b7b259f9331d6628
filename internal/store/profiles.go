package store

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"blog/internal/models"
)

type ProfileService struct{ s *Store }

func provisionProfile(ctx context.Context, tx *Store, u *models.User) error {
	if _, err := tx.Profiles().Create(ctx, u.ID); err != nil {
		return fmt.Errorf("provision profile for user %d: %w", u.ID, err)
	}
	return nil
}

func (ps *ProfileService) Create(ctx context.Context, userID int64) (*models.UserProfile, error) {
	id, err := ps.s.insert(ctx, "profiles.create",
		ps.s.sb.Insert("profiles").Columns("user_id").Values(userID))
	if err != nil {
		return nil, err
	}
	return &models.UserProfile{ID: id, UserID: userID}, nil
}

func (ps *ProfileService) selectProfile() sq.SelectBuilder {
	return ps.s.sb.Select("pr.id", "pr.user_id", "u.username").
		From("profiles pr").
		Join("users u ON u.id = pr.user_id")
}

func (ps *ProfileService) ForUser(ctx context.Context, userID int64) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := ps.s.get(ctx, "profiles.for_user", &p, ps.selectProfile().Where(sq.Eq{"pr.user_id": userID})); err != nil {
		return nil, err
	}
	return &p, nil
}

func (ps *ProfileService) ByUsername(ctx context.Context, username string) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := ps.s.get(ctx, "profiles.by_username", &p, ps.selectProfile().Where(sq.Eq{"u.username": username})); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetOrCreate returns the user's profile, creating it for accounts that
// predate profile provisioning.
func (ps *ProfileService) GetOrCreate(ctx context.Context, userID int64) (*models.UserProfile, error) {
	p, err := ps.ForUser(ctx, userID)
	if !errors.Is(err, ErrNotFound) {
		return p, err
	}
	if _, err := ps.Create(ctx, userID); err != nil {
		return nil, err
	}
	return ps.ForUser(ctx, userID)
}

// CountForUser is the number of profile rows owned by userID.
func (ps *ProfileService) CountForUser(ctx context.Context, userID int64) (int, error) {
	var n int
	err := ps.s.get(ctx, "profiles.count", &n,
		ps.s.sb.Select("COUNT(*)").From("profiles").Where(sq.Eq{"user_id": userID}))
	return n, err
}
