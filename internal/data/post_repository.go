package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// postColumns is the shared projection for post listings and detail views.
// Draft and archived rows never leave this repository through the
// published-only methods, whatever filters the caller adds.
const postColumns = `
	p.id, p.title, p.slug, p.author_id, p.category_id, p.excerpt, p.body,
	p.status, p.is_featured, p.created_at, p.updated_at, p.published_at,
	p.meta_description, p.views_count,
	a.username AS author_username,
	a.first_name AS author_first_name,
	a.last_name AS author_last_name,
	COALESCE(c.name, '') AS category_name,
	COALESCE(c.slug, '') AS category_slug`

const postJoins = `
	FROM posts p
	JOIN authors a ON a.id = p.author_id
	LEFT JOIN categories c ON c.id = p.category_id`

// PostRepository handles database operations for posts.
type PostRepository struct {
	DB *sqlx.DB
}

// NewPostRepository creates a new PostRepository.
func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{DB: db}
}

// ListPublished returns one page of published posts in natural order
// (published_at descending, then created_at descending).
func (r *PostRepository) ListPublished(ctx context.Context, req PageRequest) ([]*Post, PageInfo, error) {
	return r.listWhere(ctx, req, `WHERE p.status = 'published'`)
}

// ListByCategory returns one page of published posts in the given category.
func (r *PostRepository) ListByCategory(ctx context.Context, categoryID int64, req PageRequest) ([]*Post, PageInfo, error) {
	return r.listWhere(ctx, req, `WHERE p.status = 'published' AND p.category_id = ?`, categoryID)
}

// ListByTagSlug returns one page of published posts carrying the given tag.
func (r *PostRepository) ListByTagSlug(ctx context.Context, tagSlug string, req PageRequest) ([]*Post, PageInfo, error) {
	return r.listWhere(ctx, req,
		`JOIN post_tags pt ON pt.post_id = p.id
		 JOIN tags t ON t.id = pt.tag_id
		 WHERE p.status = 'published' AND t.slug = ?`, tagSlug)
}

// Latest returns up to limit published posts, newest first. Used by the
// homepage (5) and the feeds (20).
func (r *PostRepository) Latest(ctx context.Context, limit int) ([]*Post, error) {
	var posts []*Post
	query := fmt.Sprintf(`SELECT %s %s
		WHERE p.status = 'published'
		ORDER BY p.published_at DESC, p.created_at DESC
		LIMIT ?`, postColumns, postJoins)
	if err := r.DB.SelectContext(ctx, &posts, query, limit); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPublishedBySlug retrieves a single published post by slug. A draft or
// archived row with a matching slug is treated as not found.
func (r *PostRepository) GetPublishedBySlug(ctx context.Context, slug string) (*Post, error) {
	var post Post
	query := fmt.Sprintf(`SELECT %s %s WHERE p.slug = ? AND p.status = 'published'`,
		postColumns, postJoins)
	if err := r.DB.GetContext(ctx, &post, query, slug); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post by slug: %w", err)
	}
	return &post, nil
}

// IncrementViews bumps the view counter by one. This is a best-effort
// counter: the single UPDATE avoids a read-modify-write but lost updates
// under concurrent increments are tolerated.
func (r *PostRepository) IncrementViews(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE posts SET views_count = views_count + 1 WHERE id = ?`, id)
	return err
}

// Related returns up to limit other published posts sharing the given
// category, excluding the post itself. A nil category yields no results.
func (r *PostRepository) Related(ctx context.Context, postID int64, categoryID *int64, limit int) ([]*Post, error) {
	if categoryID == nil {
		return nil, nil
	}
	var posts []*Post
	query := fmt.Sprintf(`SELECT %s %s
		WHERE p.status = 'published' AND p.category_id = ? AND p.id <> ?
		ORDER BY p.published_at DESC, p.created_at DESC
		LIMIT ?`, postColumns, postJoins)
	if err := r.DB.SelectContext(ctx, &posts, query, *categoryID, postID, limit); err != nil {
		return nil, err
	}
	return posts, nil
}

// SlugExists reports whether a post slug is already taken.
func (r *PostRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int
	err := r.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM posts WHERE slug = ?`, slug)
	return n > 0, err
}

// Save inserts a new post and returns its ID. Slug and meta description are
// expected to be assigned already (see service.BlogService.CreatePost).
func (r *PostRepository) Save(ctx context.Context, post *Post) (int64, error) {
	res, err := r.DB.NamedExecContext(ctx,
		`INSERT INTO posts
		 (title, slug, author_id, category_id, excerpt, body, status, is_featured,
		  created_at, updated_at, published_at, meta_description, views_count)
		 VALUES
		 (:title, :slug, :author_id, :category_id, :excerpt, :body, :status, :is_featured,
		  :created_at, :updated_at, :published_at, :meta_description, :views_count)`,
		post)
	if err != nil {
		return 0, fmt.Errorf("failed to insert post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	post.ID = id
	return id, nil
}

// Update rewrites the editable fields of a post. The slug is deliberately
// not part of the statement: once assigned, permalinks stay stable even if
// the title changes.
func (r *PostRepository) Update(ctx context.Context, post *Post) error {
	result, err := r.DB.NamedExecContext(ctx,
		`UPDATE posts SET
		 title = :title, category_id = :category_id, excerpt = :excerpt,
		 body = :body, status = :status, is_featured = :is_featured,
		 updated_at = :updated_at, published_at = :published_at,
		 meta_description = :meta_description
		 WHERE id = :id`, post)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// listWhere runs the shared count + page query for a filter clause. The
// clause may include extra joins; the count query reuses it verbatim.
func (r *PostRepository) listWhere(ctx context.Context, req PageRequest, clause string, args ...interface{}) ([]*Post, PageInfo, error) {
	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) %s %s`, postJoins, clause)
	if err := r.DB.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, PageInfo{}, fmt.Errorf("failed to count posts: %w", err)
	}

	info, limit, offset := req.Resolve(total)

	var posts []*Post
	query := fmt.Sprintf(`SELECT %s %s %s
		ORDER BY p.published_at DESC, p.created_at DESC
		LIMIT ? OFFSET ?`, postColumns, postJoins, clause)
	pageArgs := append(append([]interface{}{}, args...), limit, offset)
	if err := r.DB.SelectContext(ctx, &posts, query, pageArgs...); err != nil {
		return nil, PageInfo{}, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, info, nil
}
