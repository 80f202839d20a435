package data

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// CategoryRepository handles database operations for categories and tags.
type CategoryRepository struct {
	DB *sqlx.DB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{DB: db}
}

// GetBySlug finds a category by its slug.
func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	var category Category
	err := r.DB.GetContext(ctx, &category, `SELECT * FROM categories WHERE slug = ?`, slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// GetAll retrieves all categories in their natural order (name).
func (r *CategoryRepository) GetAll(ctx context.Context) ([]*Category, error) {
	var categories []*Category
	err := r.DB.SelectContext(ctx, &categories, `SELECT * FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// SlugExists reports whether a category slug is already taken.
func (r *CategoryRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int
	err := r.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM categories WHERE slug = ?`, slug)
	return n > 0, err
}

// Save creates a new category and returns its ID. The caller is expected to
// have assigned a slug already (see service.ensureSlug).
func (r *CategoryRepository) Save(ctx context.Context, category *Category) (int64, error) {
	res, err := r.DB.NamedExecContext(ctx,
		`INSERT INTO categories (name, slug, description) VALUES (:name, :slug, :description)`,
		category)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	category.ID = id
	return id, nil
}

// GetTagBySlug finds a tag by its slug.
func (r *CategoryRepository) GetTagBySlug(ctx context.Context, slug string) (*Tag, error) {
	var tag Tag
	err := r.DB.GetContext(ctx, &tag, `SELECT * FROM tags WHERE slug = ?`, slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tag, nil
}

// TagSlugExists reports whether a tag slug is already taken.
func (r *CategoryRepository) TagSlugExists(ctx context.Context, slug string) (bool, error) {
	var n int
	err := r.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM tags WHERE slug = ?`, slug)
	return n > 0, err
}

// SaveTag creates a new tag and returns its ID.
func (r *CategoryRepository) SaveTag(ctx context.Context, tag *Tag) (int64, error) {
	res, err := r.DB.NamedExecContext(ctx,
		`INSERT INTO tags (name, slug) VALUES (:name, :slug)`, tag)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	tag.ID = id
	return id, nil
}

// TagsForPost returns the tags attached to a post, ordered by name.
func (r *CategoryRepository) TagsForPost(ctx context.Context, postID int64) ([]Tag, error) {
	var tags []Tag
	err := r.DB.SelectContext(ctx, &tags,
		`SELECT t.id, t.name, t.slug FROM tags t
		 JOIN post_tags pt ON pt.tag_id = t.id
		 WHERE pt.post_id = ? ORDER BY t.name`, postID)
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// AttachTag links a tag to a post. Re-attaching an existing pair is a no-op
// at the caller's level; the composite primary key rejects duplicates.
func (r *CategoryRepository) AttachTag(ctx context.Context, postID, tagID int64) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO post_tags (post_id, tag_id) VALUES (?, ?)`, postID, tagID)
	return err
}
