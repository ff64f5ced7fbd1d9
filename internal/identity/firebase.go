package identity

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sushihentaime/blogsite/internal/common"
)

const (
	GoogleCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

	firebaseIssuerPrefix = "https://securetoken.google.com/"
	defaultKeysTTL       = time.Hour
	clockSkew            = 5 * time.Second
)

// FirebaseVerifier checks Firebase Authentication ID tokens. The provider's
// signing certificates are fetched on demand and cached for as long as the
// response's Cache-Control max-age allows.
type FirebaseVerifier struct {
	projectID string
	certsURL  string
	client    *http.Client
	cache     *common.Cache
	now       func() time.Time

	// serializes certificate refreshes
	mu sync.Mutex
}

func NewFirebaseVerifier(projectID, certsURL string, client *http.Client, cache *common.Cache) *FirebaseVerifier {
	if certsURL == "" {
		certsURL = GoogleCertsURL
	}

	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	if cache == nil {
		cache = common.NewCache(defaultKeysTTL, 2*defaultKeysTTL)
	}

	return &FirebaseVerifier{
		projectID: projectID,
		certsURL:  certsURL,
		client:    client,
		cache:     cache,
		now:       time.Now,
	}
}

func (v *FirebaseVerifier) issuer() string {
	return firebaseIssuerPrefix + v.projectID
}

func (v *FirebaseVerifier) Verify(ctx context.Context, credential string) (Principal, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.issuer()),
		jwt.WithAudience(v.projectID),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(v.now),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(credential, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("kid header missing")
		}

		keys, err := v.signingKeys(ctx)
		if err != nil {
			return nil, err
		}

		key, ok := keys[kid]
		if !ok {
			return nil, fmt.Errorf("unknown kid %q", kid)
		}

		return key, nil
	})
	if err != nil {
		return "", invalid(err)
	}

	return principalFromClaims(&claims)
}

func (v *FirebaseVerifier) signingKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	cacheKey := common.CacheKeySigningKeys(v.issuer())

	if keys, ok := v.cache.Get(cacheKey); ok {
		return keys.(map[string]*rsa.PublicKey), nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	// another request may have refreshed the keys while we waited
	if keys, ok := v.cache.Get(cacheKey); ok {
		return keys.(map[string]*rsa.PublicKey), nil
	}

	keys, ttl, err := v.fetchSigningKeys(ctx)
	if err != nil {
		return nil, err
	}

	v.cache.Set(cacheKey, keys, ttl)

	return keys, nil
}

func (v *FirebaseVerifier) fetchSigningKeys(ctx context.Context) (map[string]*rsa.PublicKey, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return nil, 0, err
	}

	res, err := v.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("could not fetch signing certificates: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("could not fetch signing certificates: status %d", res.StatusCode)
	}

	var certs map[string]string
	if err := json.NewDecoder(res.Body).Decode(&certs); err != nil {
		return nil, 0, fmt.Errorf("could not decode signing certificates: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, certPEM := range certs {
		key, err := parseCertificateKey([]byte(certPEM))
		if err != nil {
			return nil, 0, fmt.Errorf("certificate %q: %w", kid, err)
		}
		keys[kid] = key
	}

	return keys, maxAge(res.Header.Get("Cache-Control")), nil
}

func parseCertificateKey(certPEM []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(certPEM)
	if block == nil {
		return nil, errors.New("failed to decode PEM")
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, err
	}

	key, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("not an RSA public key")
	}

	return key, nil
}

// maxAge reads the max-age directive, falling back to an hour.
func maxAge(cacheControl string) time.Duration {
	for _, directive := range strings.Split(cacheControl, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(directive), "=")
		if !ok || !strings.EqualFold(name, "max-age") {
			continue
		}

		seconds, err := strconv.Atoi(value)
		if err != nil || seconds <= 0 {
			break
		}

		return time.Duration(seconds) * time.Second
	}

	return defaultKeysTTL
}
