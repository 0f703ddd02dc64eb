// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"net/http"

	"github.com/kinde-oss/kinde-go/auth"
)

// SuccessResponseFunc is used by the handlers to create a http response when
// authentication succeeds.
//
// The state parameter is the state returned by the provider. It's empty when
// Login completes without a redirect (client credentials, or an already
// authenticated session). The token is nil when the session was already
// authenticated. The function should use the http.ResponseWriter to send back
// whatever content (headers, html, JSON, etc) it wishes to the client.
type SuccessResponseFunc func(state string, t *auth.TokenResponse, w http.ResponseWriter, req *http.Request)

// ErrorResponseFunc is used by the handlers to create a http response when
// they fail.
//
// The function receives the state returned by the provider. respErr is set
// when the provider returned an error response, e is set for every other
// failure.
type ErrorResponseFunc func(state string, respErr *AuthenErrorResponse, e error, w http.ResponseWriter, req *http.Request)

// AuthenErrorResponse represents Oauth2 error responses.  See:
// https://openid.net/specs/openid-connect-core-1_0.html#AuthError
type AuthenErrorResponse struct {
	Error       string
	Description string
	Uri         string
}
