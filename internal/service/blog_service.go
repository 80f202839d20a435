package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"stormcenter/internal/data"
	"time"

	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

const (
	slugMaxLen      = 250
	metaDescMaxLen  = 160
	relatedPostsMax = 3
	postPageSize    = 10
)

// PostRepository defines the interface for database operations on posts.
type PostRepository interface {
	ListPublished(ctx context.Context, req data.PageRequest) ([]*data.Post, data.PageInfo, error)
	ListByCategory(ctx context.Context, categoryID int64, req data.PageRequest) ([]*data.Post, data.PageInfo, error)
	ListByTagSlug(ctx context.Context, tagSlug string, req data.PageRequest) ([]*data.Post, data.PageInfo, error)
	Latest(ctx context.Context, limit int) ([]*data.Post, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*data.Post, error)
	IncrementViews(ctx context.Context, id int64) error
	Related(ctx context.Context, postID int64, categoryID *int64, limit int) ([]*data.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Save(ctx context.Context, post *data.Post) (int64, error)
	Update(ctx context.Context, post *data.Post) error
}

// CategoryRepository defines the interface for categories and tags.
type CategoryRepository interface {
	GetBySlug(ctx context.Context, slug string) (*data.Category, error)
	GetAll(ctx context.Context) ([]*data.Category, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Save(ctx context.Context, category *data.Category) (int64, error)
	GetTagBySlug(ctx context.Context, slug string) (*data.Tag, error)
	TagSlugExists(ctx context.Context, slug string) (bool, error)
	SaveTag(ctx context.Context, tag *data.Tag) (int64, error)
	TagsForPost(ctx context.Context, postID int64) ([]data.Tag, error)
	AttachTag(ctx context.Context, postID, tagID int64) error
}

// CommentRepository defines the interface for comment operations.
type CommentRepository interface {
	ListApproved(ctx context.Context, postID int64) ([]*data.Comment, error)
	ListPending(ctx context.Context, req data.PageRequest) ([]*data.Comment, data.PageInfo, error)
	Save(ctx context.Context, comment *data.Comment) (int64, error)
	Approve(ctx context.Context, ids []int64) (int64, error)
}

// PostDetail is everything the post detail page needs.
type PostDetail struct {
	Post     *data.Post
	Related  []*data.Post
	Comments []*data.Comment
}

// BlogService provides business logic for posts, categories, tags and
// comments.
type BlogService struct {
	posts      PostRepository
	categories CategoryRepository
	comments   CommentRepository
	markdown   goldmark.Markdown
	sanitizer  *bluemonday.Policy
}

// NewBlogService creates a new BlogService.
func NewBlogService(posts PostRepository, categories CategoryRepository, comments CommentRepository) *BlogService {
	return &BlogService{
		posts:      posts,
		categories: categories,
		comments:   comments,
		markdown:   goldmark.New(),
		// UGCPolicy allows basic formatting like links, lists and bold
		// while stripping dangerous HTML.
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// ListPosts returns one page of published posts.
func (s *BlogService) ListPosts(ctx context.Context, page int) ([]*data.Post, data.PageInfo, error) {
	return s.posts.ListPublished(ctx, data.PageRequest{Page: page, PageSize: postPageSize})
}

// CategoryPosts returns the category with the given slug and one page of its
// published posts.
func (s *BlogService) CategoryPosts(ctx context.Context, categorySlug string, page int) (*data.Category, []*data.Post, data.PageInfo, error) {
	category, err := s.categories.GetBySlug(ctx, categorySlug)
	if err != nil {
		return nil, nil, data.PageInfo{}, err
	}
	posts, info, err := s.posts.ListByCategory(ctx, category.ID, data.PageRequest{Page: page, PageSize: postPageSize})
	return category, posts, info, err
}

// TagPosts returns the tag with the given slug and one page of published
// posts carrying it.
func (s *BlogService) TagPosts(ctx context.Context, tagSlug string, page int) (*data.Tag, []*data.Post, data.PageInfo, error) {
	tag, err := s.categories.GetTagBySlug(ctx, tagSlug)
	if err != nil {
		return nil, nil, data.PageInfo{}, err
	}
	posts, info, err := s.posts.ListByTagSlug(ctx, tagSlug, data.PageRequest{Page: page, PageSize: postPageSize})
	return tag, posts, info, err
}

// LatestPosts returns up to limit published posts, newest first.
func (s *BlogService) LatestPosts(ctx context.Context, limit int) ([]*data.Post, error) {
	return s.posts.Latest(ctx, limit)
}

// ViewPost fetches a published post by slug, bumps its view counter and
// gathers related posts, tags and approved comments. The counter increment
// happens before the related query runs and counts every request; there is
// no per-visitor dedup.
func (s *BlogService) ViewPost(ctx context.Context, postSlug string) (*PostDetail, error) {
	post, err := s.posts.GetPublishedBySlug(ctx, postSlug)
	if err != nil {
		return nil, err
	}

	if err := s.posts.IncrementViews(ctx, post.ID); err != nil {
		return nil, err
	}
	post.ViewsCount++

	post.HTMLBody, err = s.renderBody(post.Body)
	if err != nil {
		return nil, err
	}

	post.Tags, err = s.categories.TagsForPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	related, err := s.posts.Related(ctx, post.ID, post.CategoryID, relatedPostsMax)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.ListApproved(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	return &PostDetail{Post: post, Related: related, Comments: comments}, nil
}

// CreatePost assigns slug and meta description defaults and stores the post.
// A post published without an explicit publish time gets the current time.
func (s *BlogService) CreatePost(ctx context.Context, post *data.Post, tagNames []string) error {
	if post.Slug == "" {
		assigned, err := s.ensureSlug(ctx, post.Title, s.posts.SlugExists)
		if err != nil {
			return err
		}
		post.Slug = assigned
	}
	if post.MetaDescription == "" {
		post.MetaDescription = truncate(post.Excerpt, metaDescMaxLen)
	}
	if post.Status == "" {
		post.Status = data.StatusDraft
	}
	now := time.Now()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now
	if post.Status == data.StatusPublished && post.PublishedAt == nil {
		post.PublishedAt = &now
	}

	if _, err := s.posts.Save(ctx, post); err != nil {
		return err
	}

	for _, name := range tagNames {
		tag, err := s.ensureTag(ctx, name)
		if err != nil {
			return err
		}
		if err := s.categories.AttachTag(ctx, post.ID, tag.ID); err != nil {
			return err
		}
	}
	return nil
}

// UpdatePost rewrites an existing post. The slug is never re-derived: once a
// post has a permalink, a later title change must not break it.
func (s *BlogService) UpdatePost(ctx context.Context, post *data.Post) error {
	now := time.Now()
	post.UpdatedAt = now
	if post.Status == data.StatusPublished && post.PublishedAt == nil {
		post.PublishedAt = &now
	}
	return s.posts.Update(ctx, post)
}

// CreateCategory assigns a slug if absent and stores the category.
func (s *BlogService) CreateCategory(ctx context.Context, category *data.Category) error {
	if category.Slug == "" {
		assigned, err := s.ensureSlug(ctx, category.Name, s.categories.SlugExists)
		if err != nil {
			return err
		}
		category.Slug = assigned
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now()
	}
	_, err := s.categories.Save(ctx, category)
	return err
}

// Categories returns all categories in natural order.
func (s *BlogService) Categories(ctx context.Context) ([]*data.Category, error) {
	return s.categories.GetAll(ctx)
}

// CreateComment stores a new comment for the given post slug. The body is
// sanitized and the comment always starts unapproved; it stays invisible
// until an admin approves it.
func (s *BlogService) CreateComment(ctx context.Context, postSlug, name, email, body string) error {
	post, err := s.posts.GetPublishedBySlug(ctx, postSlug)
	if err != nil {
		return err
	}
	comment := &data.Comment{
		PostID:      post.ID,
		AuthorName:  name,
		AuthorEmail: email,
		Body:        s.sanitizer.Sanitize(body),
		CreatedAt:   time.Now(),
		IsApproved:  false,
	}
	_, err = s.comments.Save(ctx, comment)
	return err
}

// PendingComments returns one page of the moderation queue.
func (s *BlogService) PendingComments(ctx context.Context, page int) ([]*data.Comment, data.PageInfo, error) {
	return s.comments.ListPending(ctx, data.PageRequest{Page: page, PageSize: 20})
}

// ApproveComments marks the given comments as approved.
func (s *BlogService) ApproveComments(ctx context.Context, ids []int64) (int64, error) {
	return s.comments.Approve(ctx, ids)
}

// RenderBody converts a post's Markdown body into sanitized HTML.
func (s *BlogService) renderBody(body string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("failed to render post body: %w", err)
	}
	return template.HTML(s.sanitizer.SanitizeBytes(buf.Bytes())), nil
}

// ensureSlug derives a URL-safe slug from the given name and probes the
// table for uniqueness, suffixing -2, -3, ... on collision.
func (s *BlogService) ensureSlug(ctx context.Context, name string, exists func(context.Context, string) (bool, error)) (string, error) {
	base := truncate(slug.Make(name), slugMaxLen)
	if base == "" {
		base = "untitled"
	}
	candidate := base
	for i := 2; ; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		suffix := fmt.Sprintf("-%d", i)
		candidate = truncate(base, slugMaxLen-len(suffix)) + suffix
	}
}

// ensureTag finds or creates the tag with the given name.
func (s *BlogService) ensureTag(ctx context.Context, name string) (*data.Tag, error) {
	tagSlug := truncate(slug.Make(name), 100)
	tag, err := s.categories.GetTagBySlug(ctx, tagSlug)
	if err == nil {
		return tag, nil
	}
	if err != data.ErrNotFound {
		return nil, err
	}
	tag = &data.Tag{Name: name, Slug: tagSlug}
	if _, err := s.categories.SaveTag(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// truncate cuts s to at most max characters. Counting runes rather than
// bytes keeps multi-byte excerpts valid UTF-8 in the meta_description
// column; slug.Make output is ASCII so the slug paths are unaffected.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
