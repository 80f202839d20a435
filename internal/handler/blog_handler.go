package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"stormcenter/internal/data"
	"stormcenter/internal/logger"
	"stormcenter/internal/middleware"
	"stormcenter/internal/service"
	"stormcenter/internal/view"
)

// BlogHandler holds the dependencies for the blog handlers.
type BlogHandler struct {
	blog *service.BlogService
	view *view.View
	log  logger.Logger
}

// NewBlogHandler creates a new BlogHandler with the given dependencies.
func NewBlogHandler(blog *service.BlogService, v *view.View, log logger.Logger) *BlogHandler {
	return &BlogHandler{blog: blog, view: v, log: log}
}

// listHandler renders the paginated published-post listing.
func (h *BlogHandler) listHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	posts, pageInfo, err := h.blog.ListPosts(r.Context(), pageParam(r))
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to retrieve posts", Code: http.StatusInternalServerError}
	}

	data := map[string]interface{}{
		"Posts":    posts,
		"PageInfo": pageInfo,
	}
	if err := h.view.Render(w, r, "post_list.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render post list", Code: http.StatusInternalServerError}
	}
	return nil
}

// detailHandler renders a single published post and increments its view
// counter. Draft and archived posts 404 here even when the slug matches.
func (h *BlogHandler) detailHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	slug := chi.URLParam(r, "slug")

	detail, err := h.blog.ViewPost(r.Context(), slug)
	if err != nil {
		if err == data.ErrNotFound {
			return &middleware.AppError{Error: err, Message: "Post not found", Code: http.StatusNotFound}
		}
		return &middleware.AppError{Error: err, Message: "Failed to retrieve post", Code: http.StatusInternalServerError}
	}

	data := map[string]interface{}{
		"Post":     detail.Post,
		"Related":  detail.Related,
		"Comments": detail.Comments,
	}
	if err := h.view.Render(w, r, "post_detail.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render post", Code: http.StatusInternalServerError}
	}
	return nil
}

// commentHandler accepts a comment submission on a post. The comment is
// stored unapproved and will not appear until a moderator approves it.
func (h *BlogHandler) commentHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	slug := chi.URLParam(r, "slug")
	name := r.FormValue("author_name")
	email := r.FormValue("author_email")
	body := r.FormValue("body")
	if name == "" || body == "" {
		return &middleware.AppError{Error: nil, Message: "Name and comment text are required", Code: http.StatusBadRequest}
	}

	if err := h.blog.CreateComment(r.Context(), slug, name, email, body); err != nil {
		if err == data.ErrNotFound {
			return &middleware.AppError{Error: err, Message: "Post not found", Code: http.StatusNotFound}
		}
		return &middleware.AppError{Error: err, Message: "Failed to save comment", Code: http.StatusInternalServerError}
	}

	http.Redirect(w, r, "/blog/post/"+slug+"/", http.StatusFound)
	return nil
}

// categoryHandler renders the published posts of one category.
func (h *BlogHandler) categoryHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	slug := chi.URLParam(r, "slug")

	category, posts, pageInfo, err := h.blog.CategoryPosts(r.Context(), slug, pageParam(r))
	if err != nil {
		if err == data.ErrNotFound {
			return &middleware.AppError{Error: err, Message: "Category not found", Code: http.StatusNotFound}
		}
		return &middleware.AppError{Error: err, Message: "Failed to retrieve category posts", Code: http.StatusInternalServerError}
	}

	data := map[string]interface{}{
		"Category": category,
		"Posts":    posts,
		"PageInfo": pageInfo,
	}
	if err := h.view.Render(w, r, "category_posts.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render category", Code: http.StatusInternalServerError}
	}
	return nil
}

// tagHandler renders the published posts carrying one tag.
func (h *BlogHandler) tagHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	slug := chi.URLParam(r, "slug")

	tag, posts, pageInfo, err := h.blog.TagPosts(r.Context(), slug, pageParam(r))
	if err != nil {
		if err == data.ErrNotFound {
			return &middleware.AppError{Error: err, Message: "Tag not found", Code: http.StatusNotFound}
		}
		return &middleware.AppError{Error: err, Message: "Failed to retrieve tagged posts", Code: http.StatusInternalServerError}
	}

	data := map[string]interface{}{
		"Tag":      tag,
		"Posts":    posts,
		"PageInfo": pageInfo,
	}
	if err := h.view.Render(w, r, "tag_posts.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render tag", Code: http.StatusInternalServerError}
	}
	return nil
}

// pageParam reads the 1-indexed ?page= parameter. Anything unparseable is
// treated as page 1; out-of-range values are clamped by the paginator.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
