package forms

import (
	"database/sql"
	"net/url"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"blog/internal/models"
)

var richText = bluemonday.UGCPolicy()

// SanitizeRichText strips anything from user HTML that could run script.
func SanitizeRichText(html string) string {
	return strings.TrimSpace(richText.Sanitize(html))
}

type PostForm struct {
	*Form
	Categories []*models.Category
	category   sql.NullInt64
}

func NewPostForm(data url.Values, categories []*models.Category) *PostForm {
	return &PostForm{Form: New(data), Categories: categories}
}

// PostFormFrom prefills the form from an existing post.
func PostFormFrom(p *models.Post, categories []*models.Category) *PostForm {
	v := url.Values{}
	v.Set("title", p.Title)
	v.Set("content", p.Content)
	if p.CategoryID.Valid {
		v.Set("category", strconv.FormatInt(p.CategoryID.Int64, 10))
	}
	return NewPostForm(v, categories)
}

func (f *PostForm) Validate() {
	f.Required("title")
	f.MaxLength("title", 100)

	if SanitizeRichText(f.Get("content")) == "" {
		f.Errors.Add("content", "This field is required.")
	}

	raw := f.Get("category")
	if raw == "" {
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err == nil {
		for _, c := range f.Categories {
			if c.ID == id {
				f.category = sql.NullInt64{Int64: id, Valid: true}
				return
			}
		}
	}
	f.Errors.Add("category", "Select a valid choice. That choice is not one of the available choices.")
}

// Selected reports whether category id is the submitted choice.
func (f *PostForm) Selected(id int64) bool {
	return f.Get("category") == strconv.FormatInt(id, 10)
}

// Bind copies the validated fields onto p.
func (f *PostForm) Bind(p *models.Post) {
	p.Title = f.Get("title")
	p.Content = SanitizeRichText(f.Get("content"))
	p.CategoryID = f.category
}
