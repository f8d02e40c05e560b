package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/rpupo63/blog-platform-backend/models"
	"github.com/rpupo63/blog-platform-backend/services"
)

type blogHandler struct {
	responder      Responder
	logger         zerolog.Logger
	blogs          *services.BlogService
	maxUploadBytes int64
}

func newBlogHandler(blogs *services.BlogService, maxUploadBytes int64) blogHandler {
	logger := log.With().Str("handlerName", "blogHandler").Logger()

	return blogHandler{
		responder:      NewResponder(logger),
		logger:         logger,
		blogs:          blogs,
		maxUploadBytes: maxUploadBytes,
	}
}

// nonNil keeps empty lists serialised as [] rather than null.
func nonNil(blogs []*models.Blog) []*models.Blog {
	if blogs == nil {
		return []*models.Blog{}
	}
	return blogs
}

// addBlog creates a blog owned by the user in the path
// @Summary Create blog
// @Description Creates a blog for {id}. Only that user or an admin may do so. An optional `image` file is stored as PNG.
// @Tags Blogs
// @Accept multipart/form-data,json
// @Produce json
// @Param id path string true "Owner user ID" format(uuid)
// @Success 201 {object} map[string]interface{} "status, message, newBlog"
// @Failure 400 {object} ErrorResponse "Bad Request - missing title/content or undecodable image"
// @Failure 403 {object} ErrorResponse "Forbidden - not the owner"
// @Failure 404 {object} ErrorResponse "Not Found - owner does not exist"
// @Failure 413 {object} ErrorResponse "Payload Too Large"
// @Failure 502 {object} ErrorResponse "Bad Gateway - media provider failed"
// @Router /add-blog/{id} [post]
func (h blogHandler) addBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := parseIDParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		caller, ok := identityFromContext(r.Context())
		if !ok {
			h.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}

		body, err := parseBody(w, r, h.maxUploadBytes, "title", "content")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer body.close()

		blog, err := h.blogs.Create(r.Context(), caller, ownerID, services.NewBlog{
			Title:   body.fields.value("title"),
			Content: body.fields.value("content"),
			Image:   body.image,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteSuccess(w, http.StatusCreated, "Blog added successfully.", map[string]any{
			"newBlog": blog,
		})
	}
}

// getMyBlogs lists the blogs owned by the user in the path, newest first
// @Summary List a user's blogs
// @Tags Blogs
// @Produce json
// @Param id path string true "Owner user ID" format(uuid)
// @Success 200 {array} models.Blog
// @Failure 403 {object} ErrorResponse "Forbidden - not the owner"
// @Router /get-myblogs/{id} [get]
func (h blogHandler) getMyBlogs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := parseIDParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		caller, ok := identityFromContext(r.Context())
		if !ok {
			h.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}

		blogs, err := h.blogs.ListByOwner(r.Context(), caller, ownerID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, http.StatusOK, nonNil(blogs))
	}
}

// getBlog retrieves a specific blog by ID
// @Summary Get blog
// @Tags Blogs
// @Produce json
// @Param id path string true "Blog ID" format(uuid)
// @Success 200 {object} models.Blog
// @Failure 400 {object} ErrorResponse "Bad Request - invalid id"
// @Failure 404 {object} ErrorResponse "Not Found - blog not found"
// @Router /getting-blog/{id} [get]
func (h blogHandler) getBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogID, err := parseIDParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		blog, err := h.blogs.Get(r.Context(), blogID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, http.StatusOK, blog)
	}
}

// updateBlog replaces the provided fields of a blog
// @Summary Update blog
// @Description Only fields present in the request are replaced. A new `image` file replaces the old image.
// @Tags Blogs
// @Accept multipart/form-data,json
// @Produce json
// @Param id path string true "Blog ID" format(uuid)
// @Success 200 {object} map[string]interface{} "status, message, blog"
// @Failure 403 {object} ErrorResponse "Forbidden - not the owner"
// @Failure 404 {object} ErrorResponse "Not Found - blog not found"
// @Router /update-blog/{id} [patch]
func (h blogHandler) updateBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogID, err := parseIDParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		caller, ok := identityFromContext(r.Context())
		if !ok {
			h.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}

		body, err := parseBody(w, r, h.maxUploadBytes, "title", "content")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer body.close()

		blog, err := h.blogs.Update(r.Context(), caller, blogID, services.BlogChanges{
			Title:   body.fields["title"],
			Content: body.fields["content"],
			Image:   body.image,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteSuccess(w, http.StatusOK, "entry updated", map[string]any{
			"blog": blog,
		})
	}
}

// deleteBlog deletes a blog by ID
// @Summary Delete blog
// @Tags Blogs
// @Produce json
// @Param id path string true "Blog ID" format(uuid)
// @Success 200 {object} map[string]string "Success message"
// @Failure 403 {object} ErrorResponse "Forbidden - not the owner"
// @Failure 404 {object} ErrorResponse "Not Found - blog not found"
// @Router /delete-blog/{id} [delete]
func (h blogHandler) deleteBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogID, err := parseIDParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		caller, ok := identityFromContext(r.Context())
		if !ok {
			h.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}

		if err := h.blogs.Delete(r.Context(), caller, blogID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteSuccess(w, http.StatusOK, "entry deleted", nil)
	}
}

// getAllBlogs retrieves every blog, newest first
// @Summary Global feed
// @Tags Blogs
// @Produce json
// @Success 200 {array} models.Blog
// @Router /all-blogs [get]
func (h blogHandler) getAllBlogs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogs, err := h.blogs.ListAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, http.StatusOK, nonNil(blogs))
	}
}
