// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package http

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCAPem(t *testing.T) string {
	t.Helper()
	require := require.New(t)
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(err)
	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{Organization: []string{"Acme Co"}},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(time.Minute),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	require.NoError(err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
}

func TestNewClient(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		caPEM     string
		wantErr   bool
		wantIsErr error
		wantTLS   bool
	}{
		{name: "system-roots"},
		{name: "with-ca", caPEM: testCAPem(t), wantTLS: true},
		{name: "bad-ca", caPEM: "not a cert", wantErr: true, wantIsErr: ErrInvalidCertificatePem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := NewClient(tt.caPEM)
			if tt.wantErr {
				require.Error(err)
				assert.Truef(errors.Is(err, tt.wantIsErr), "wanted \"%s\" but got \"%s\"", tt.wantIsErr, err)
				return
			}
			require.NoError(err)
			assert.Equal(DefaultTimeout, got.Timeout)
			tr, ok := got.Transport.(*http.Transport)
			require.True(ok)
			if tt.wantTLS {
				require.NotNil(tr.TLSClientConfig)
				assert.NotNil(tr.TLSClientConfig.RootCAs)
			}
		})
	}
}

func TestContextClient(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	fallback := &http.Client{}
	override := &http.Client{}

	assert.Same(fallback, ContextClient(context.Background(), fallback))
	assert.Same(override, ContextClient(ClientContext(context.Background(), override), fallback))
}
