package api

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Dependencies, router router) *routeHandlers {
	return &routeHandlers{
		healthHandler: newHealthHandler(deps.Database, deps.Cache, router.startupTime),
		userHandler:   newUserHandler(deps.Users),
		blogHandler:   newBlogHandler(deps.Blogs, router.maxUploadBytes),
		adminHandler:  newAdminHandler(deps.Users),
	}
}
