package data

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// CommentRepository handles database operations for comments.
type CommentRepository struct {
	DB *sqlx.DB
}

// NewCommentRepository creates a new CommentRepository.
func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{DB: db}
}

// ListApproved returns the approved comments for a post, oldest first.
// Unapproved comments never appear on public pages.
func (r *CommentRepository) ListApproved(ctx context.Context, postID int64) ([]*Comment, error) {
	var comments []*Comment
	err := r.DB.SelectContext(ctx, &comments,
		`SELECT * FROM comments WHERE post_id = ? AND is_approved = ? ORDER BY created_at`,
		postID, true)
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// ListPending returns one page of comments awaiting moderation, oldest first.
func (r *CommentRepository) ListPending(ctx context.Context, req PageRequest) ([]*Comment, PageInfo, error) {
	var total int64
	err := r.DB.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM comments WHERE is_approved = ?`, false)
	if err != nil {
		return nil, PageInfo{}, err
	}

	info, limit, offset := req.Resolve(total)

	var comments []*Comment
	err = r.DB.SelectContext(ctx, &comments,
		`SELECT * FROM comments WHERE is_approved = ? ORDER BY created_at LIMIT ? OFFSET ?`,
		false, limit, offset)
	if err != nil {
		return nil, PageInfo{}, err
	}
	return comments, info, nil
}

// Save inserts a new comment. is_approved is forced to false regardless of
// what the caller set; only Approve flips it.
func (r *CommentRepository) Save(ctx context.Context, comment *Comment) (int64, error) {
	comment.IsApproved = false
	res, err := r.DB.NamedExecContext(ctx,
		`INSERT INTO comments (post_id, author_name, author_email, body, created_at, is_approved)
		 VALUES (:post_id, :author_name, :author_email, :body, :created_at, :is_approved)`,
		comment)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	comment.ID = id
	return id, nil
}

// Approve marks the given comments as approved. Unknown ids are ignored.
func (r *CommentRepository) Approve(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`UPDATE comments SET is_approved = ? WHERE id IN (?)`, true, ids)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
