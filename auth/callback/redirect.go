// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kinde-oss/kinde-go/auth"
)

// Login creates a handler that starts a login for the session. Redirect
// flows send the browser to the provider with a 302. When no redirect is
// needed, because the session is already authenticated or the client uses
// client credentials, the SuccessResponseFunc creates the response.
//
// Options are passed to auth.Client.Login after the ones read from the
// request (see the package docs).
func Login(c *auth.Client, sidFn SessionIDFunc, sFn SuccessResponseFunc, eFn ErrorResponseFunc, opt ...auth.Option) (http.HandlerFunc, error) {
	const op = "callback.Login"
	if err := checkArgs(c, sidFn, sFn, eFn); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return func(w http.ResponseWriter, req *http.Request) {
		sid, err := sidFn(w, req)
		if err != nil {
			eFn("", nil, fmt.Errorf("%s: unable to read session: %w", op, err), w, req)
			return
		}
		res, err := c.Login(req.Context(), sid, requestOpts(req, opt)...)
		if err != nil {
			eFn("", nil, fmt.Errorf("%s: %w", op, err), w, req)
			return
		}
		if res.Redirect != nil {
			http.Redirect(w, req, res.Redirect.URL, http.StatusFound)
			return
		}
		sFn("", res.Token, w, req)
	}, nil
}

// Register creates a handler that sends the browser to the provider's
// registration page.
func Register(c *auth.Client, sidFn SessionIDFunc, eFn ErrorResponseFunc, opt ...auth.Option) (http.HandlerFunc, error) {
	const op = "callback.Register"
	return redirectHandler(op, c, sidFn, eFn, c.Register, opt)
}

// CreateOrg creates a handler that sends the browser to the provider's
// registration page to create an organization. The org_name form value or
// auth.WithOrgName names it.
func CreateOrg(c *auth.Client, sidFn SessionIDFunc, eFn ErrorResponseFunc, opt ...auth.Option) (http.HandlerFunc, error) {
	const op = "callback.CreateOrg"
	return redirectHandler(op, c, sidFn, eFn, c.CreateOrg, opt)
}

type startFunc func(ctx context.Context, sid string, opt ...auth.Option) (*auth.Redirect, error)

func redirectHandler(op string, c *auth.Client, sidFn SessionIDFunc, eFn ErrorResponseFunc, start startFunc, opt []auth.Option) (http.HandlerFunc, error) {
	if err := checkArgs(c, sidFn, noopSuccess, eFn); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return func(w http.ResponseWriter, req *http.Request) {
		sid, err := sidFn(w, req)
		if err != nil {
			eFn("", nil, fmt.Errorf("%s: unable to read session: %w", op, err), w, req)
			return
		}
		r, err := start(req.Context(), sid, requestOpts(req, opt)...)
		if err != nil {
			eFn("", nil, fmt.Errorf("%s: %w", op, err), w, req)
			return
		}
		http.Redirect(w, req, r.URL, http.StatusFound)
	}, nil
}

// Logout creates a handler that clears the session's tokens and sends the
// browser to the provider's logout endpoint.
func Logout(c *auth.Client, sidFn SessionIDFunc, eFn ErrorResponseFunc) (http.HandlerFunc, error) {
	const op = "callback.Logout"
	if err := checkArgs(c, sidFn, noopSuccess, eFn); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return func(w http.ResponseWriter, req *http.Request) {
		sid, err := sidFn(w, req)
		if err != nil {
			eFn("", nil, fmt.Errorf("%s: unable to read session: %w", op, err), w, req)
			return
		}
		u, err := c.Logout(req.Context(), sid)
		if err != nil {
			eFn("", nil, fmt.Errorf("%s: %w", op, err), w, req)
			return
		}
		http.Redirect(w, req, u, http.StatusFound)
	}, nil
}

func noopSuccess(string, *auth.TokenResponse, http.ResponseWriter, *http.Request) {}
