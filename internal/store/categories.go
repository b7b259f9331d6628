package store

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/gosimple/slug"

	"blog/internal/models"
)

type CategoryService struct{ s *Store }

// Create adds a category whose slug is derived from name.
func (cs *CategoryService) Create(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	c := &models.Category{Name: name, Slug: slug.Make(name)}
	if c.Name == "" || c.Slug == "" {
		return nil, fmt.Errorf("category name %q has no usable slug", name)
	}
	if len(c.Slug) > 100 {
		c.Slug = strings.Trim(c.Slug[:100], "-")
	}

	id, err := cs.s.insert(ctx, "categories.create",
		cs.s.sb.Insert("categories").Columns("name", "slug").Values(c.Name, c.Slug))
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: %s", ErrSlugTaken, c.Slug)
	}
	if err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}

func (cs *CategoryService) List(ctx context.Context) ([]*models.Category, error) {
	var cats []*models.Category
	err := cs.s.selectAll(ctx, "categories.list", &cats,
		cs.s.sb.Select("id", "name", "slug").From("categories").OrderBy("name", "id"))
	return cats, err
}

func (cs *CategoryService) ByID(ctx context.Context, id int64) (*models.Category, error) {
	var c models.Category
	err := cs.s.get(ctx, "categories.by_id", &c,
		cs.s.sb.Select("id", "name", "slug").From("categories").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (cs *CategoryService) BySlug(ctx context.Context, s string) (*models.Category, error) {
	var c models.Category
	err := cs.s.get(ctx, "categories.by_slug", &c,
		cs.s.sb.Select("id", "name", "slug").From("categories").Where(sq.Eq{"slug": s}))
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes the category; its posts keep existing uncategorised.
func (cs *CategoryService) Delete(ctx context.Context, id int64) error {
	return cs.s.execOne(ctx, "categories.delete", cs.s.sb.Delete("categories").Where(sq.Eq{"id": id}))
}
