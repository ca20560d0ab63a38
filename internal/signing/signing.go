// Package signing generates and verifies the HMAC signatures on locally
// served artifact URLs, so the file endpoint can hand out expiring links
// without any session state.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Signer generates and validates HMAC based signatures over an artifact
// path ("<attachmentID>/<name>") and an expiry timestamp.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner creates a Signer issuing links valid for ttl.
func NewSigner(secret []byte, ttl time.Duration) *Signer {
	return &Signer{secret: secret, ttl: ttl}
}

// Sign returns the hex signature for an artifact path and expiry.
func (s *Signer) Sign(artifactPath string, expiresUnix int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s:%d", artifactPath, expiresUnix)
	return hex.EncodeToString(mac.Sum(nil))
}

// Validate checks a signature against an artifact path and the expiry taken
// from the query string, rejecting expired links.
func (s *Signer) Validate(artifactPath, expires, signature string) bool {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return false
	}
	if time.Now().Unix() > exp {
		return false
	}
	expected := s.Sign(artifactPath, exp)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignedQuery builds the "exp=...&sig=..." query for an artifact path with
// the signer's TTL applied from now.
func (s *Signer) SignedQuery(artifactPath string) url.Values {
	exp := time.Now().Add(s.ttl).Unix()
	q := url.Values{}
	q.Set("exp", strconv.FormatInt(exp, 10))
	q.Set("sig", s.Sign(artifactPath, exp))
	return q
}

// LocalURLs resolves stored artifact paths into signed URLs below
// <base>/files/. It implements media.URLResolver for the local backend.
type LocalURLs struct {
	base   string
	signer *Signer
}

// NewLocalURLs builds a resolver rooted at the public base URL.
func NewLocalURLs(baseURL string, signer *Signer) *LocalURLs {
	return &LocalURLs{base: strings.TrimRight(baseURL, "/"), signer: signer}
}

// ResolveURL returns the signed public URL for a stored path.
func (l *LocalURLs) ResolveURL(_ string, storedPath string) string {
	storedPath = strings.TrimLeft(storedPath, "/")
	return l.base + "/files/" + storedPath + "?" + l.signer.SignedQuery(storedPath).Encode()
}
