package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-platform-backend/models"
	"github.com/rpupo63/blog-platform-backend/services"
)

type adminHandler struct {
	responder Responder
	logger    zerolog.Logger
	users     *services.UserService
}

func newAdminHandler(users *services.UserService) adminHandler {
	logger := log.With().Str("handlerName", "adminHandler").Logger()

	return adminHandler{
		responder: NewResponder(logger),
		logger:    logger,
		users:     users,
	}
}

// deleteUser deletes a user and every blog they own
// @Summary Delete user
// @Tags Admin
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Success 200 {object} map[string]string "Success message"
// @Failure 403 {object} ErrorResponse "Forbidden - not an admin"
// @Failure 404 {object} ErrorResponse "Not Found - user not found"
// @Failure 503 {object} ErrorResponse "Saved, but token revocation must be retried"
// @Router /delete-user/{id} [delete]
func (h adminHandler) deleteUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := parseIDParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.users.Delete(r.Context(), userID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteSuccess(w, http.StatusOK, "user deleted successfully", nil)
	}
}

// getAllUsers lists every non-admin user, newest first
// @Summary List users
// @Tags Admin
// @Produce json
// @Success 200 {array} models.User
// @Failure 403 {object} ErrorResponse "Forbidden - not an admin"
// @Router /all-users [get]
func (h adminHandler) getAllUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := h.users.ListNonAdmins(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if users == nil {
			users = []*models.User{}
		}

		h.responder.WriteJSON(w, http.StatusOK, users)
	}
}

// updateUserRole promotes a user to admin; promoting an admin again is a no-op
// @Summary Promote user
// @Tags Admin
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Success 200 {object} map[string]string "Success message"
// @Failure 403 {object} ErrorResponse "Forbidden - not an admin"
// @Failure 404 {object} ErrorResponse "Not Found - user not found"
// @Failure 503 {object} ErrorResponse "Saved, but token revocation must be retried"
// @Router /update-userrole/{id} [patch]
func (h adminHandler) updateUserRole() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := parseIDParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.users.PromoteToAdmin(r.Context(), userID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Str("userID", userID.String()).Msg("role updated")
		h.responder.WriteSuccess(w, http.StatusOK, "user role updated", nil)
	}
}
