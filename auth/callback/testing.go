// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kinde-oss/kinde-go/auth"
	"github.com/kinde-oss/kinde-go/session/memory"
)

// testSuccessFn is a test SuccessResponseFunc
func testSuccessFn(state string, t *auth.TokenResponse, w http.ResponseWriter, req *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("login successful"))
}

// testFailFn is a test ErrorResponseFunc
func testFailFn(state string, r *AuthenErrorResponse, e error, w http.ResponseWriter, req *http.Request) {
	if e != nil {
		w.WriteHeader(http.StatusInternalServerError)
		j, _ := json.Marshal(&AuthenErrorResponse{
			Error:       "internal-callback-error",
			Description: e.Error(),
		})
		_, _ = w.Write(j)
		return
	}
	if r != nil {
		w.WriteHeader(http.StatusUnauthorized)
		j, _ := json.Marshal(r)
		_, _ = w.Write(j)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
	j, _ := json.Marshal(&AuthenErrorResponse{
		Error: "unknown-callback-error",
	})
	_, _ = w.Write(j)
}

// testApp is a relying party served over TLS, configured against a
// TestProvider. Handlers are registered on mux.
type testApp struct {
	tp     *auth.TestProvider
	srv    *httptest.Server
	mux    *http.ServeMux
	client *auth.Client
}

// testNewApp starts the app's server and creates a client whose redirect URL
// is the app's /callback. This is helpful internally, but intentionally not
// exported.
func testNewApp(t *testing.T, grant auth.GrantType) *testApp {
	const op = "testNewApp"
	t.Helper()
	require := require.New(t)

	tp := auth.StartTestProvider(t)
	mux := http.NewServeMux()
	srv := httptest.NewTLSServer(mux)
	t.Cleanup(srv.Close)

	redirect := srv.URL + "/callback"
	tp.SetAllowedRedirectURIs([]string{redirect})
	cfg, err := auth.NewConfig(tp.Addr(), auth.TestClientID, auth.TestClientSecret, redirect, srv.URL, grant, auth.WithProviderCA(tp.CACert()))
	require.NoErrorf(err, "%s: unable to create config", op)
	c, err := auth.NewClient(cfg, memory.New(memory.DefaultTTL))
	require.NoErrorf(err, "%s: unable to create client", op)
	return &testApp{tp: tp, srv: srv, mux: mux, client: c}
}

// browser returns a http.Client with a cookie jar that trusts both the app
// and the provider. With follow false it doesn't follow redirects.
func (a *testApp) browser(t *testing.T, follow bool) *http.Client {
	t.Helper()
	require := require.New(t)
	pool := x509.NewCertPool()
	require.True(pool.AppendCertsFromPEM([]byte(a.tp.CACert())))
	pool.AddCert(a.srv.Certificate())
	jar, err := cookiejar.New(nil)
	require.NoError(err)
	hc := &http.Client{
		Jar: jar,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12},
		},
	}
	if !follow {
		hc.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	}
	return hc
}

func (a *testApp) srvURL(t *testing.T) *url.URL {
	t.Helper()
	u, err := url.Parse(a.srv.URL)
	require.NoError(t, err)
	return u
}
