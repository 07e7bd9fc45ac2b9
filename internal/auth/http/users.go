package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/alex2808pl/url-shortener/internal/auth/domain"
	"github.com/alex2808pl/url-shortener/internal/auth/service"
	"github.com/alex2808pl/url-shortener/pkg/authsdk"
	"github.com/alex2808pl/url-shortener/pkg/httpx"
	"github.com/alex2808pl/url-shortener/pkg/slogx"
)

type UsersHandler struct {
	UserService *service.UserService
}

// HandleMe godoc
//
//	@Summary		Current user profile
//	@Description	Returns the profile of the user named by the access token subject.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.UserProfile	"Profile"
//	@Failure		401	{object}	authsdk.APIError	"Invalid or missing access token"
//	@Failure		404	{object}	authsdk.APIError	"User no longer exists"
//	@Failure		500	{object}	authsdk.APIError	"Internal server error"
//	@Router			/users/me [get].
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		authsdk.ErrUnauthorized.WriteError(w)
		return
	}
	h.writeProfile(w, r, p.Subject)
}

// HandleGet godoc
//
//	@Summary		Get a user
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			login	path		string				true	"User login"
//	@Success		200		{object}	authsdk.UserProfile	"Profile"
//	@Failure		401		{object}	authsdk.APIError	"Invalid or missing access token"
//	@Failure		403		{object}	authsdk.APIError	"ADMIN role required"
//	@Failure		404		{object}	authsdk.APIError	"No such user"
//	@Failure		500		{object}	authsdk.APIError	"Internal server error"
//	@Router			/admin/users/{login} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.writeProfile(w, r, r.PathValue("login"))
}

func (h *UsersHandler) writeProfile(w http.ResponseWriter, r *http.Request, login string) {
	u, err := h.UserService.GetProfile(r.Context(), login)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toProfile(u))
}

// HandleSetRoles godoc
//
//	@Summary		Replace a user's roles
//	@Description	Takes effect on the user's next token renewal; outstanding access tokens keep their roles until they expire.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			login	path		string				true	"User login"
//	@Param			request	body		authsdk.RolesRequest	true	"New role set"
//	@Success		200		{object}	authsdk.UserProfile	"Updated profile"
//	@Failure		400		{object}	authsdk.APIError	"Empty or unknown roles"
//	@Failure		401		{object}	authsdk.APIError	"Invalid or missing access token"
//	@Failure		403		{object}	authsdk.APIError	"ADMIN role required"
//	@Failure		404		{object}	authsdk.APIError	"No such user"
//	@Failure		500		{object}	authsdk.APIError	"Internal server error"
//	@Router			/admin/users/{login}/roles [put].
func (h *UsersHandler) HandleSetRoles(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RolesRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	roles, err := domain.ParseRoles(req.Roles)
	if err != nil {
		authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	u, err := h.UserService.SetRoles(r.Context(), r.PathValue("login"), roles)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toProfile(u))
}

func (h *UsersHandler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		authsdk.ErrNotFound.WithDescription("user not found").WriteError(w)
	case errors.Is(err, service.ErrNoRoles), errors.Is(err, domain.ErrUnknownRole):
		authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("user request failed", slog.Any("error", err))
		authsdk.ErrServerError.WriteError(w)
	}
}
