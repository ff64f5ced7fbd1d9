package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProject = "blogsite-test"

type testProvider struct {
	key    *rsa.PrivateKey
	kid    string
	server *httptest.Server
	hits   atomic.Int32
	status int
}

func newTestProvider(t *testing.T) *testProvider {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "securetoken.system.gserviceaccount.com"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	p := &testProvider{key: key, kid: "key-1", status: http.StatusOK}

	certs := map[string]string{
		p.kid: string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})),
	}

	p.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.hits.Add(1)
		if p.status != http.StatusOK {
			w.WriteHeader(p.status)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
		json.NewEncoder(w).Encode(certs)
	}))
	t.Cleanup(p.server.Close)

	return p
}

func (p *testProvider) sign(t *testing.T, mutate func(c *Claims, header map[string]any)) string {
	t.Helper()

	now := time.Now()
	claims := &Claims{
		Email: "a@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://securetoken.google.com/" + testProject,
			Audience:  jwt.ClaimStrings{testProject},
			Subject:   "uid-1",
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = p.kid

	if mutate != nil {
		mutate(claims, token.Header)
	}

	signed, err := token.SignedString(p.key)
	require.NoError(t, err)

	return signed
}

func TestFirebaseVerifier_Verify(t *testing.T) {
	p := newTestProvider(t)
	v := NewFirebaseVerifier(testProject, p.server.URL, p.server.Client(), nil)

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	testCases := []struct {
		name    string
		token   func(t *testing.T) string
		want    Principal
		wantErr bool
	}{
		{
			name:  "valid token",
			token: func(t *testing.T) string { return p.sign(t, nil) },
			want:  "a@x.com",
		},
		{
			name: "wrong audience",
			token: func(t *testing.T) string {
				return p.sign(t, func(c *Claims, _ map[string]any) { c.Audience = jwt.ClaimStrings{"other-project"} })
			},
			wantErr: true,
		},
		{
			name: "wrong issuer",
			token: func(t *testing.T) string {
				return p.sign(t, func(c *Claims, _ map[string]any) { c.Issuer = "https://accounts.example.com" })
			},
			wantErr: true,
		},
		{
			name: "expired",
			token: func(t *testing.T) string {
				return p.sign(t, func(c *Claims, _ map[string]any) {
					c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
				})
			},
			wantErr: true,
		},
		{
			name: "missing expiry",
			token: func(t *testing.T) string {
				return p.sign(t, func(c *Claims, _ map[string]any) { c.ExpiresAt = nil })
			},
			wantErr: true,
		},
		{
			name: "unknown kid",
			token: func(t *testing.T) string {
				return p.sign(t, func(_ *Claims, h map[string]any) { h["kid"] = "rotated-away" })
			},
			wantErr: true,
		},
		{
			name: "missing email",
			token: func(t *testing.T) string {
				return p.sign(t, func(c *Claims, _ map[string]any) { c.Email = "" })
			},
			wantErr: true,
		},
		{
			name: "missing subject",
			token: func(t *testing.T) string {
				return p.sign(t, func(c *Claims, _ map[string]any) { c.Subject = "" })
			},
			wantErr: true,
		},
		{
			name: "signed by another key",
			token: func(t *testing.T) string {
				token := jwt.NewWithClaims(jwt.SigningMethodRS256, &Claims{
					Email: "a@x.com",
					RegisteredClaims: jwt.RegisteredClaims{
						Issuer:    "https://securetoken.google.com/" + testProject,
						Audience:  jwt.ClaimStrings{testProject},
						Subject:   "uid-1",
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
					},
				})
				token.Header["kid"] = p.kid
				s, err := token.SignedString(otherKey)
				require.NoError(t, err)
				return s
			},
			wantErr: true,
		},
		{
			name: "hmac algorithm",
			token: func(t *testing.T) string {
				token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "a@x.com", "sub": "uid-1"})
				token.Header["kid"] = p.kid
				s, err := token.SignedString([]byte("guessable"))
				require.NoError(t, err)
				return s
			},
			wantErr: true,
		},
		{
			name:    "garbage",
			token:   func(t *testing.T) string { return "not-a-jwt" },
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := v.Verify(context.Background(), tc.token(t))
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
				assert.Empty(t, got)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFirebaseVerifier_CachesCertificates(t *testing.T) {
	p := newTestProvider(t)
	v := NewFirebaseVerifier(testProject, p.server.URL, p.server.Client(), nil)

	for i := 0; i < 3; i++ {
		_, err := v.Verify(context.Background(), p.sign(t, nil))
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), p.hits.Load())
}

func TestFirebaseVerifier_ProviderUnavailable(t *testing.T) {
	p := newTestProvider(t)
	p.status = http.StatusServiceUnavailable

	v := NewFirebaseVerifier(testProject, p.server.URL, p.server.Client(), nil)

	_, err := v.Verify(context.Background(), p.sign(t, nil))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMaxAge(t *testing.T) {
	testCases := []struct {
		header string
		want   time.Duration
	}{
		{header: "public, max-age=19302, must-revalidate, no-transform", want: 19302 * time.Second},
		{header: "max-age=60", want: time.Minute},
		{header: "no-cache", want: time.Hour},
		{header: "max-age=abc", want: time.Hour},
		{header: "", want: time.Hour},
	}

	for _, tc := range testCases {
		t.Run(tc.header, func(t *testing.T) {
			assert.Equal(t, tc.want, maxAge(tc.header))
		})
	}
}
