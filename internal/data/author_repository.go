package data

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// AuthorRepository handles database operations for authors / handlers.
type AuthorRepository struct {
	DB *sqlx.DB
}

// NewAuthorRepository creates a new AuthorRepository.
func NewAuthorRepository(db *sqlx.DB) *AuthorRepository {
	return &AuthorRepository{DB: db}
}

// GetByUsername finds an author by username.
func (r *AuthorRepository) GetByUsername(ctx context.Context, username string) (*Author, error) {
	var author Author
	err := r.DB.GetContext(ctx, &author,
		`SELECT *, 0 AS post_count FROM authors WHERE username = ?`, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &author, nil
}

// ListActiveHandlers returns active handler profiles, most recently joined
// first, each with its published post count.
func (r *AuthorRepository) ListActiveHandlers(ctx context.Context) ([]*Author, error) {
	var authors []*Author
	err := r.DB.SelectContext(ctx, &authors,
		`SELECT a.*,
		   (SELECT COUNT(*) FROM posts p
		    WHERE p.author_id = a.id AND p.status = 'published') AS post_count
		 FROM authors a
		 WHERE a.is_active_handler = ?
		 ORDER BY a.joined_date DESC`, true)
	if err != nil {
		return nil, err
	}
	return authors, nil
}

// Save inserts a new author and returns its ID.
func (r *AuthorRepository) Save(ctx context.Context, author *Author) (int64, error) {
	res, err := r.DB.NamedExecContext(ctx,
		`INSERT INTO authors
		 (username, first_name, last_name, email, bio, expertise, website,
		  twitter, github, is_active_handler, joined_date)
		 VALUES
		 (:username, :first_name, :last_name, :email, :bio, :expertise, :website,
		  :twitter, :github, :is_active_handler, :joined_date)`, author)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	author.ID = id
	return id, nil
}
