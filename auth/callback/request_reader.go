// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"net/http"

	"golang.org/x/text/language"

	"github.com/kinde-oss/kinde-go/auth"
)

// requestOpts reads the optional authorization parameters of a login,
// registration or organization creation request: the org_code, org_name,
// login_hint and connection_id form values and the preferred language from
// the Accept-Language header. They're applied before the handler's options,
// so the handler's options win.
func requestOpts(req *http.Request, opt []auth.Option) []auth.Option {
	var opts []auth.Option
	if v := req.FormValue("org_code"); v != "" {
		opts = append(opts, auth.WithOrgCode(v))
	}
	if v := req.FormValue("org_name"); v != "" {
		opts = append(opts, auth.WithOrgName(v))
	}
	if v := req.FormValue("login_hint"); v != "" {
		opts = append(opts, auth.WithLoginHint(v))
	}
	if v := req.FormValue("connection_id"); v != "" {
		opts = append(opts, auth.WithConnectionId(v))
	}
	if tags, _, err := language.ParseAcceptLanguage(req.Header.Get("Accept-Language")); err == nil && len(tags) > 0 {
		opts = append(opts, auth.WithLang(tags[0]))
	}
	return append(opts, opt...)
}

// callbackParams reads the callback parameters from either the body or the
// query. FormValue prioritizes body values, if found.
func callbackParams(req *http.Request) *auth.CallbackParams {
	return &auth.CallbackParams{
		Code:             req.FormValue("code"),
		State:            req.FormValue("state"),
		Error:            req.FormValue("error"),
		ErrorDescription: req.FormValue("error_description"),
	}
}
