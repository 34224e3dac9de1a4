package auth

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-docstore/core"
)

const jwtAlgRS256 = "RS256"

// BuildAssertion mints the signed JWT-bearer assertion exchanged for a
// bearer token: base64url header and claims joined with ".", signed with
// RSA-SHA256 over the identity's PKCS8 private key.
func BuildAssertion(identity core.SigningIdentity, now time.Time, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = core.DefaultTokenTTL
	}
	now = now.UTC()

	key, err := parsePrivateKey(identity.PrivateKey)
	if err != nil {
		return "", &Error{Message: "parse signing key", Cause: err}
	}

	header := map[string]any{
		"alg": jwtAlgRS256,
		"typ": "JWT",
	}
	claims := map[string]any{
		"iss":   strings.TrimSpace(identity.ServiceIdentity),
		"scope": strings.TrimSpace(identity.Scope),
		"aud":   strings.TrimSpace(identity.TokenAudience),
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}

	headerRaw, err := json.Marshal(header)
	if err != nil {
		return "", &Error{Message: "marshal assertion header", Cause: err}
	}
	claimsRaw, err := json.Marshal(claims)
	if err != nil {
		return "", &Error{Message: "marshal assertion claims", Cause: err}
	}

	headerToken := base64.RawURLEncoding.EncodeToString(headerRaw)
	claimsToken := base64.RawURLEncoding.EncodeToString(claimsRaw)
	signed := headerToken + "." + claimsToken

	digest := sha256.Sum256([]byte(signed))
	signature, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	if err != nil {
		return "", &Error{Message: "sign assertion", Cause: err}
	}
	return signed + "." + base64.RawURLEncoding.EncodeToString(signature), nil
}

func parsePrivateKey(material []byte) (*rsa.PrivateKey, error) {
	if len(material) == 0 {
		return nil, fmt.Errorf("auth: signing key is required")
	}
	der := material
	if block, _ := pem.Decode(material); block != nil {
		der = block.Bytes
	}
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("auth: parse pkcs8 key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("auth: signing key is not an rsa key")
	}
	return key, nil
}
