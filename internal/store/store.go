// Package store is the persistence layer of the blog: one service per
// entity, built on sqlx for row mapping and squirrel for query building.
package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"blog/internal/db"
	"blog/internal/models"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrUsernameTaken = errors.New("store: username already taken")
	ErrSlugTaken     = errors.New("store: category slug already taken")
	ErrInvalidPage   = errors.New("store: invalid page")
)

type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// UserHook runs inside the user-creation transaction, after the users row
// exists.
type UserHook func(ctx context.Context, tx *Store, u *models.User) error

// Store is safe for concurrent use. A Store returned to a Transaction
// callback is bound to that transaction.
type Store struct {
	db        *sqlx.DB
	ex        executor
	sb        sq.StatementBuilderType
	dialect   db.Dialect
	obs       *observer
	now       func() time.Time
	userHooks []UserHook
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.obs.logger = l }
}

func WithSlowQueryThreshold(d time.Duration) Option {
	return func(s *Store) { s.obs.slow = d }
}

// WithClock replaces time.Now for every timestamp the store writes.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithUserHook appends a hook run after each user is created.
func WithUserHook(h UserHook) Option {
	return func(s *Store) { s.userHooks = append(s.userHooks, h) }
}

func New(conn *sql.DB, d db.Dialect, opts ...Option) *Store {
	xdb := sqlx.NewDb(conn, d.Driver)
	s := &Store{
		db:      xdb,
		ex:      xdb,
		sb:      sq.StatementBuilder.PlaceholderFormat(d.Placeholder),
		dialect: d,
		obs:     newObserver(d.Name),
		now:     time.Now,
		// every user gets exactly one profile
		userHooks: []UserHook{provisionProfile},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) Users() *UserService          { return &UserService{s} }
func (s *Store) Profiles() *ProfileService    { return &ProfileService{s} }
func (s *Store) Sessions() *SessionService    { return &SessionService{s} }
func (s *Store) Categories() *CategoryService { return &CategoryService{s} }
func (s *Store) Posts() *PostService          { return &PostService{s} }
func (s *Store) Comments() *CommentService    { return &CommentService{s} }
func (s *Store) Likes() *LikeService          { return &LikeService{s} }

// Transaction runs fn inside a transaction. Nested calls reuse the
// outer transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) (err error) {
	if _, ok := s.ex.(*sqlx.Tx); ok {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	txStore := *s
	txStore.ex = tx

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&txStore); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

func (s *Store) get(ctx context.Context, op string, dest any, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	ctx, span := s.obs.start(ctx, op, query)
	start := time.Now()
	err = s.ex.GetContext(ctx, dest, query, args...)
	s.obs.finish(ctx, span, op, query, time.Since(start), err)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *Store) selectAll(ctx context.Context, op string, dest any, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	ctx, span := s.obs.start(ctx, op, query)
	start := time.Now()
	err = s.ex.SelectContext(ctx, dest, query, args...)
	s.obs.finish(ctx, span, op, query, time.Since(start), err)
	return err
}

func (s *Store) exec(ctx context.Context, op string, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	ctx, span := s.obs.start(ctx, op, query)
	start := time.Now()
	res, err := s.ex.ExecContext(ctx, query, args...)
	s.obs.finish(ctx, span, op, query, time.Since(start), err)
	return res, err
}

// execOne is exec for statements that must touch exactly one row.
func (s *Store) execOne(ctx context.Context, op string, b sq.Sqlizer) error {
	res, err := s.exec(ctx, op, b)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// insert runs an INSERT ... RETURNING id and returns the new id.
func (s *Store) insert(ctx context.Context, op string, b sq.InsertBuilder) (int64, error) {
	var id int64
	err := s.get(ctx, op, &id, b.Suffix("RETURNING id"))
	return id, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
