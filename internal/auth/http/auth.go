package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/alex2808pl/url-shortener/internal/auth/domain"
	"github.com/alex2808pl/url-shortener/internal/auth/service"
	"github.com/alex2808pl/url-shortener/pkg/authsdk"
	"github.com/alex2808pl/url-shortener/pkg/httpx"
	"github.com/alex2808pl/url-shortener/pkg/slogx"
)

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Exchanges login and password for an access and refresh token pair.
//	@Description	Unknown login and wrong password get the same response.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.JwtResponse		"type, accessToken, refreshToken, expiresIn"
//	@Failure		400		{object}	authsdk.APIError		"Malformed body"
//	@Failure		401		{object}	authsdk.APIError		"Invalid credentials"
//	@Failure		429		{object}	authsdk.APIError		"Rate limited"
//	@Failure		500		{object}	authsdk.APIError		"Internal server error"
//	@Header			200		{string}	Cache-Control			"no-store"
//	@Router			/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}
	if strings.TrimSpace(req.Login) == "" || req.Password == "" {
		authsdk.ErrInvalidRequest.WithDescription("login and password are required").WriteError(w)
		return
	}

	pair, err := h.AuthService.Login(r.Context(), strings.TrimSpace(req.Login), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			authsdk.ErrInvalidCredentials.WriteError(w)
		default:
			slogx.FromContext(r.Context()).Error("login failed", slog.Any("error", err))
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toJwtResponse(pair))
}

// HandleToken godoc
//
//	@Summary		Renew the access token
//	@Description	Issues a new access token from a valid refresh token. Roles are re-read from the user store.
//	@Description	The refresh token is not rotated and refreshToken is omitted from the response.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	authsdk.JwtResponse		"type, accessToken, expiresIn"
//	@Failure		400		{object}	authsdk.APIError		"Malformed body"
//	@Failure		401		{object}	authsdk.APIError		"Refresh token rejected"
//	@Failure		429		{object}	authsdk.APIError		"Rate limited"
//	@Failure		500		{object}	authsdk.APIError		"Internal server error"
//	@Router			/auth/token [post].
func (h *AuthHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	h.renew(w, r, h.AuthService.Refresh)
}

// HandleRefresh godoc
//
//	@Summary		Rotate both tokens
//	@Description	Issues a new access and refresh token pair from a valid refresh token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	authsdk.JwtResponse		"type, accessToken, refreshToken, expiresIn"
//	@Failure		400		{object}	authsdk.APIError		"Malformed body"
//	@Failure		401		{object}	authsdk.APIError		"Refresh token rejected"
//	@Failure		429		{object}	authsdk.APIError		"Rate limited"
//	@Failure		500		{object}	authsdk.APIError		"Internal server error"
//	@Router			/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	h.renew(w, r, h.AuthService.ReissueBoth)
}

func (h *AuthHandler) renew(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, refreshToken string) (domain.TokenPair, error),
) {
	var req authsdk.RefreshRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}
	if req.RefreshToken == "" {
		authsdk.ErrInvalidRequest.WithDescription("refreshToken is required").WriteError(w)
		return
	}

	pair, err := fn(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAuthFailed):
			// Reason already logged by the service.
			authsdk.ErrAuthenticationFailed.WriteError(w)
		default:
			slogx.FromContext(r.Context()).Error("token renewal failed", slog.Any("error", err))
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toJwtResponse(pair))
}

// HandleRegister godoc
//
//	@Summary		Register a user
//	@Description	Creates a user. Roles default to USER; requesting any other role needs an ADMIN access token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegistrationRequest	true	"New user"
//	@Success		201		{object}	authsdk.UserProfile			"Created user without password"
//	@Failure		400		{object}	authsdk.APIError			"Malformed body or unknown role"
//	@Failure		403		{object}	authsdk.APIError			"Privileged role requested without ADMIN"
//	@Failure		409		{object}	authsdk.APIError			"Login already taken"
//	@Failure		429		{object}	authsdk.APIError			"Rate limited"
//	@Failure		500		{object}	authsdk.APIError			"Internal server error"
//	@Router			/auth/registration [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.RegistrationRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	roles, err := domain.ParseRoles(req.Roles)
	if err != nil {
		authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	if privileged(roles) {
		p, ok := httpx.PrincipalFromContext(ctx)
		if !ok || !p.HasRole(string(domain.RoleAdmin)) {
			slogx.FromContext(ctx).Warn("privileged registration refused", slog.Any("roles", req.Roles))
			authsdk.ErrForbidden.WithDescription("only an administrator may assign these roles").WriteError(w)
			return
		}
	}

	profile, err := h.AuthService.Register(ctx, domain.Registration{
		Login:     req.Login,
		Password:  req.Password,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Roles:     roles,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRegistration):
			authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		case errors.Is(err, service.ErrDuplicateUser):
			authsdk.ErrDuplicateUser.WithDescription(err.Error()).WriteError(w)
		default:
			slogx.FromContext(ctx).Error("registration failed", slog.Any("error", err))
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toProfile(profile))
}

// privileged reports whether roles asks for more than the default set.
func privileged(roles []domain.Role) bool {
	return slices.ContainsFunc(roles, func(r domain.Role) bool {
		return !domain.HasRole(domain.DefaultRoles, r)
	})
}
