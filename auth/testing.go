// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/square/go-jose.v2"
	"gopkg.in/square/go-jose.v2/jwt"
)

// TestGenerateSigningKey returns a PEM encoded ECDSA P-256 private key for
// TestSignJWT.
func TestGenerateSigningKey(t *testing.T) string {
	t.Helper()
	require := require.New(t)
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(err)
	der, err := x509.MarshalECPrivateKey(key)
	require.NoError(err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}))
}

// TestSignJWT returns an ES256 compact JWT carrying the registered claims and
// kindeClaims. Clients only decode claims, so the key is never published.
func TestSignJWT(t *testing.T, keyPEM string, claims jwt.Claims, kindeClaims map[string]interface{}) string {
	t.Helper()
	require := require.New(t)
	block, _ := pem.Decode([]byte(keyPEM))
	require.NotNil(block, "signing key is not PEM encoded")
	key, err := x509.ParseECPrivateKey(block.Bytes)
	require.NoError(err)

	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.ES256, Key: key}, (&jose.SignerOptions{}).WithType("JWT"))
	require.NoError(err)
	b := jwt.Signed(signer).Claims(claims)
	if kindeClaims != nil {
		b = b.Claims(kindeClaims)
	}
	raw, err := b.CompactSerialize()
	require.NoError(err)
	return raw
}

// TestKindeClaims returns the claims Kinde adds to an access token issued for
// an organization: org_code, permissions and an empty feature_flags set.
func TestKindeClaims(orgCode string, permissions ...string) map[string]interface{} {
	if permissions == nil {
		permissions = []string{}
	}
	return map[string]interface{}{
		"org_code":      orgCode,
		"permissions":   permissions,
		"feature_flags": map[string]interface{}{},
	}
}

// TestGenerateCA returns a short lived, self signed PEM CA certificate. It's
// only good for exercising WithProviderCA; TestProvider.CACert is the CA to
// trust when talking to a TestProvider.
func TestGenerateCA(t *testing.T) string {
	t.Helper()
	require := require.New(t)
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(err)
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 64))
	require.NoError(err)

	now := time.Now()
	tmpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{Organization: []string{"Kinde Test CA"}},
		DNSNames:              []string{"localhost"},
		NotBefore:             now,
		NotAfter:              now.Add(2 * time.Minute),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
}
