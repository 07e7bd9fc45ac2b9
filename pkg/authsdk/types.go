package authsdk

import "time"

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// RefreshRequest is the body of POST /auth/token and POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RegistrationRequest is the body of POST /auth/registration. Roles default
// to USER; anything else needs an ADMIN caller.
type RegistrationRequest struct {
	Login     string   `json:"login"`
	Password  string   `json:"password"`
	FirstName string   `json:"firstName,omitempty"`
	LastName  string   `json:"lastName,omitempty"`
	Roles     []string `json:"roles,omitempty"`
}

// JwtResponse is returned by every token endpoint. RefreshToken is empty
// when only the access token was renewed.
type JwtResponse struct {
	// Type is always "Bearer"
	Type string `json:"type"`

	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expiresIn"`
}

// UserProfile is a user record without its password hash.
type UserProfile struct {
	ID        string    `json:"id"`
	Login     string    `json:"login"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RolesRequest is the body of PUT /admin/users/{login}/roles.
type RolesRequest struct {
	Roles []string `json:"roles"`
}

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`

	// Tokens names the signing algorithm, or the error that leaves the
	// service unable to issue tokens.
	Tokens string `json:"tokens"`
}
