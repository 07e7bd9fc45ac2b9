package http

import (
	"github.com/alex2808pl/url-shortener/internal/auth/domain"
	"github.com/alex2808pl/url-shortener/pkg/authsdk"
	"github.com/alex2808pl/url-shortener/pkg/jwtx"
)

func toJwtResponse(pair domain.TokenPair) authsdk.JwtResponse {
	return authsdk.JwtResponse{
		Type:         pair.TokenType,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int(jwtx.AccessTokenTTL.Seconds()),
	}
}

func toProfile(u domain.User) authsdk.UserProfile {
	return authsdk.UserProfile{
		ID:        u.ID,
		Login:     u.Login,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Roles:     domain.RoleStrings(u.Roles),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
