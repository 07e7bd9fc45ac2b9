// Package authsdk is a Go client for the authentication service and holds
// the request and response types shared with its HTTP handlers.
//
// Unauthenticated calls (login, renewal, registration, health) live on
// SDKClient. A Session wraps a token pair and renews the access token from
// the refresh token when it is about to expire:
//
//	c := authsdk.NewSDKClient("http://localhost:8080")
//	s, err := c.AuthenticateWithPassword(ctx, "alice", "secret")
//	if err != nil {
//		return err
//	}
//	me, err := s.Me(ctx)
//
// Errors from the service come back as *APIError and can be compared with
// errors.Is against the predefined values such as ErrInvalidCredentials.
package authsdk
