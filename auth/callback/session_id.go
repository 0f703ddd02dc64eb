// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kinde-oss/kinde-go/auth"
	"github.com/kinde-oss/kinde-go/sdk/id"
)

// DefaultSessionCookie is the cookie name used when CookieSessionID is given
// an empty name.
const DefaultSessionCookie = "kinde_session"

// sessionIDPrefix prefixes generated session ids.
const sessionIDPrefix = "sess"

// SessionIDFunc returns the session id of the request. Implementations may
// create the session, writing whatever headers that needs to w.
type SessionIDFunc func(w http.ResponseWriter, req *http.Request) (string, error)

// CookieSessionID returns a SessionIDFunc that keeps the session id in the
// named cookie, creating a new id when the request doesn't carry one. The
// cookie is HttpOnly and SameSite=Lax so it survives the provider's redirect
// back to the callback. It's Secure when the request came in over TLS.
func CookieSessionID(name string) SessionIDFunc {
	if name == "" {
		name = DefaultSessionCookie
	}
	return func(w http.ResponseWriter, req *http.Request) (string, error) {
		const op = "callback.CookieSessionID"
		ck, err := req.Cookie(name)
		switch {
		case err == nil && ck.Value != "":
			return ck.Value, nil
		case err != nil && !errors.Is(err, http.ErrNoCookie):
			return "", fmt.Errorf("%s: %w", op, err)
		}
		sid, err := id.New(sessionIDPrefix)
		if err != nil {
			return "", fmt.Errorf("%s: %w: %w", op, auth.ErrIdGeneratorFailed, err)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    sid,
			Path:     "/",
			HttpOnly: true,
			Secure:   req.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
		return sid, nil
	}
}
