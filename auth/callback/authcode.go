// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kinde-oss/kinde-go/auth"
)

// AuthCode creates the callback handler of the authorization code and PKCE
// flows. It completes the flow with auth.Client.HandleCallback for the
// session identified by sidFn.
//
// The SuccessResponseFunc is used to create a response when callback is
// successful. The ErrorResponseFunc is to create a response when the callback
// fails.
func AuthCode(c *auth.Client, sidFn SessionIDFunc, sFn SuccessResponseFunc, eFn ErrorResponseFunc) (http.HandlerFunc, error) {
	const op = "callback.AuthCode"
	if err := checkArgs(c, sidFn, sFn, eFn); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return func(w http.ResponseWriter, req *http.Request) {
		params := callbackParams(req)

		sid, err := sidFn(w, req)
		if err != nil {
			eFn(params.State, nil, fmt.Errorf("%s: unable to read session: %w", op, err), w, req)
			return
		}

		tr, err := c.HandleCallback(req.Context(), sid, params)
		if err != nil {
			var pe *auth.ProtocolError
			if errors.As(err, &pe) {
				eFn(params.State, &AuthenErrorResponse{
					Error:       pe.Code,
					Description: pe.Description,
					Uri:         req.FormValue("error_uri"),
				}, nil, w, req)
				return
			}
			eFn(params.State, nil, fmt.Errorf("%s: %w", op, err), w, req)
			return
		}
		sFn(params.State, tr, w, req)
	}, nil
}

func checkArgs(c *auth.Client, sidFn SessionIDFunc, sFn SuccessResponseFunc, eFn ErrorResponseFunc) error {
	switch {
	case c == nil:
		return fmt.Errorf("client is nil: %w", auth.ErrNilParameter)
	case sidFn == nil:
		return fmt.Errorf("session id func is nil: %w", auth.ErrNilParameter)
	case sFn == nil:
		return fmt.Errorf("success response func is nil: %w", auth.ErrNilParameter)
	case eFn == nil:
		return fmt.Errorf("error response func is nil: %w", auth.ErrNilParameter)
	}
	return nil
}
