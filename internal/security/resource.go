package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/url"
	"strings"
)

func SignResource(secret string, parts ...string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(parts, ":")))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func VerifyResource(secret, signature string, parts ...string) bool {
	return hmac.Equal([]byte(signature), []byte(SignResource(secret, parts...)))
}

// SetupLink builds the account setup URL sent to new users. The signature
// lets the setup page trust the user id without a login.
func SetupLink(base, secret, userID string) string {
	q := url.Values{}
	q.Set("uid", userID)
	q.Set("sig", SignResource(secret, "setup", userID))

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + q.Encode()
}
