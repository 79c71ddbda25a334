package githubhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const signaturePrefix = "sha256="

// VerifySignature reports whether signature is the sha256= HMAC of body under
// secret. The header is compared exactly as received, so GitHub's lowercase
// hex is the only accepted form. It fails closed: an empty secret or a
// malformed signature never verifies.
func VerifySignature(body []byte, signature, secret string) bool {
	if secret == "" {
		return false
	}

	if !strings.HasPrefix(signature, signaturePrefix) {
		return false
	}

	expected := ComputeSignature(secret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ComputeSignature renders the GitHub sha256= prefixed HMAC in hex form.
func ComputeSignature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}
