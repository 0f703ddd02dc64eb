// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

/*
callback is a package that provides net/http handlers for the redirect side
of Kinde authentication: starting a login, registration or organization
creation, handling the provider's callback and logging out.

Every handler identifies the browser's session with a SessionIDFunc.
CookieSessionID keeps the session id in a cookie.

Example:

	sidFn := callback.CookieSessionID(callback.DefaultSessionCookie)
	login, _ := callback.Login(client, sidFn, successFn, errorFn)
	cb, _ := callback.AuthCode(client, sidFn, successFn, errorFn)
	http.Handle("/login", login)
	http.Handle("/callback", cb)
*/
package callback
