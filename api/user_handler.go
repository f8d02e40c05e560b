package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-platform-backend/services"
)

type userHandler struct {
	responder Responder
	logger    zerolog.Logger
	users     *services.UserService
}

func newUserHandler(users *services.UserService) userHandler {
	logger := log.With().Str("handlerName", "userHandler").Logger()

	return userHandler{
		responder: NewResponder(logger),
		logger:    logger,
		users:     users,
	}
}

// addUser registers a new account and logs it in
// @Summary Register
// @Tags Users
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Success 201 {object} SessionResponse
// @Failure 400 {object} ErrorResponse "Bad Request - missing or invalid field"
// @Failure 409 {object} ErrorResponse "Conflict - email already registered"
// @Router /addUser [post]
func (h userHandler) addUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := parseBody(w, r, maxJSONBodyBytes, "username", "email", "password")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer body.close()

		session, err := h.users.Register(r.Context(),
			body.fields.value("username"),
			body.fields.value("email"),
			body.fields.value("password"),
		)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, http.StatusCreated, SessionResponse{
			Status:      statusSuccess,
			Message:     "user account created successfully",
			AccessToken: session.AccessToken,
			UserDetail:  userDetailOf(session.User),
		})
	}
}

// validateUser logs a user in
// @Summary Login
// @Tags Users
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Success 200 {object} SessionResponse
// @Failure 401 {object} ErrorResponse "Unauthorized - wrong email or password"
// @Router /validateUser [post]
func (h userHandler) validateUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := parseBody(w, r, maxJSONBodyBytes, "email", "password")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer body.close()

		session, err := h.users.Authenticate(r.Context(), body.fields.value("email"), body.fields.value("password"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, http.StatusOK, SessionResponse{
			Status:      statusSuccess,
			Message:     "entered into the website",
			AccessToken: session.AccessToken,
			UserDetail:  userDetailOf(session.User),
		})
	}
}
