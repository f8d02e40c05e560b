package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rpupo63/blog-platform-backend/media"
)

// setupPublicRoutes registers the routes that need no token.
func setupPublicRoutes(r chi.Router, handlers *routeHandlers, uploadDir string) {
	r.Get("/health", handlers.healthHandler.health())

	r.Post("/addUser", handlers.userHandler.addUser())
	r.Post("/validateUser", handlers.userHandler.validateUser())

	if uploadDir != "" {
		prefix := media.UploadsRoute + "/"
		r.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(uploadDir))))
	}
}

// setupUserRoutes sets up the routes any authenticated user may call
func setupUserRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.authenticate)

		r.Post("/add-blog/{id}", handlers.blogHandler.addBlog())
		r.Get("/get-myblogs/{id}", handlers.blogHandler.getMyBlogs())
		r.Get("/getting-blog/{id}", handlers.blogHandler.getBlog())
		r.Patch("/update-blog/{id}", handlers.blogHandler.updateBlog())
		r.Delete("/delete-blog/{id}", handlers.blogHandler.deleteBlog())
		r.Get("/all-blogs", handlers.blogHandler.getAllBlogs())
	})
}

// setupAdminRoutes sets up the routes restricted to admins
func setupAdminRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.authenticate)
		r.Use(authMiddleware.requireAdmin)

		r.Delete("/delete-user/{id}", handlers.adminHandler.deleteUser())
		r.Get("/all-users", handlers.adminHandler.getAllUsers())
		r.Patch("/update-userrole/{id}", handlers.adminHandler.updateUserRole())
	})
}
