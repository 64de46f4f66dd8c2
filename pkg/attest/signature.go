package attest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
)

// Wire headers shared by the remote client and the in-process handler.
const (
	HeaderMode      = "X-Attest-Mode"
	HeaderChain     = "X-Attest-Chain"
	HeaderSignature = "X-Attest-Signature"
)

// SignedRequest is the part of a wire request covered by the signature.
type SignedRequest struct {
	Method string
	Path   string
	Mode   string
	Chain  string
	Body   []byte
}

// RequestToSign collects the signed parts of r. body is the raw payload,
// empty for GET requests.
func RequestToSign(r *http.Request, body []byte) SignedRequest {
	return SignedRequest{
		Method: r.Method,
		Path:   r.URL.EscapedPath(),
		Mode:   r.Header.Get(HeaderMode),
		Chain:  r.Header.Get(HeaderChain),
		Body:   body,
	}
}

// Sign returns the hex HMAC-SHA256 of the canonical request keyed by the
// signing key.
func Sign(key string, req SignedRequest) string {
	return hex.EncodeToString(mac(key, req))
}

// VerifySignature checks a signature produced by Sign in constant time.
func VerifySignature(key string, req SignedRequest, signature string) bool {
	want, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(want, mac(key, req))
}

// mac hashes METHOD\nPATH\nMODE\nCHAIN\n followed by the body.
func mac(key string, req SignedRequest) []byte {
	h := hmac.New(sha256.New, []byte(key))
	for _, part := range []string{strings.ToUpper(req.Method), req.Path, req.Mode, req.Chain} {
		h.Write([]byte(part))
		h.Write([]byte{'\n'})
	}
	h.Write(req.Body)
	return h.Sum(nil)
}
