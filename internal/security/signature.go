package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	HeaderSignature = "X-Eldrix-Signature"
	HeaderDate      = "X-Eldrix-Date"
	HeaderNonce     = "X-Eldrix-Nonce"
)

func ComputeBodyHash(body []byte) string {
	sum := sha256.Sum256(body)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func ComputeSignature(secret, method, path, bodyHash, date, nonce string) string {
	data := strings.Join([]string{
		strings.ToUpper(method),
		path,
		bodyHash,
		date,
		nonce,
	}, "\n")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func ValidateSignature(secret, signature, method, path string, body []byte, date, nonce string) bool {
	expected := ComputeSignature(secret, method, path, ComputeBodyHash(body), date, nonce)
	return hmac.Equal([]byte(signature), []byte(expected))
}

// SignRequest sets the date, nonce and signature headers on an outgoing
// request whose body is body.
func SignRequest(req *http.Request, secret string, body []byte, now time.Time, nonce string) {
	date := now.UTC().Format(time.RFC3339)
	req.Header.Set(HeaderDate, date)
	req.Header.Set(HeaderNonce, nonce)
	req.Header.Set(HeaderSignature, ComputeSignature(secret, req.Method, req.URL.Path, ComputeBodyHash(body), date, nonce))
}

func ExtractSignatureHeaders(c *gin.Context) (date string, nonce string, signature string, err error) {
	date = c.GetHeader(HeaderDate)
	nonce = c.GetHeader(HeaderNonce)
	signature = c.GetHeader(HeaderSignature)

	if date == "" || nonce == "" || signature == "" {
		return "", "", "", fmt.Errorf("missing signature headers")
	}
	return date, nonce, signature, nil
}
