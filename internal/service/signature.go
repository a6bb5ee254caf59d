package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignatureVerifier checks the provider's x-signature header:
//
//	x-signature: ts=<unix>,v1=<hex hmac-sha256>
//
// The HMAC covers the manifest "id:<paymentId>;request-id:<requestId>;ts:<ts>;".
type SignatureVerifier struct {
	secret    []byte
	tolerance time.Duration
	now       func() time.Time
}

// NewSignatureVerifier builds a verifier. A zero tolerance disables the
// timestamp freshness check.
func NewSignatureVerifier(secret string, tolerance time.Duration) *SignatureVerifier {
	return &SignatureVerifier{
		secret:    []byte(secret),
		tolerance: tolerance,
		now:       time.Now,
	}
}

func (v *SignatureVerifier) Verify(signatureHeader, requestID, paymentID string) bool {
	if len(v.secret) == 0 || paymentID == "" {
		return false
	}

	ts, v1, ok := parseSignatureHeader(signatureHeader)
	if !ok {
		return false
	}
	if !v.fresh(ts) {
		return false
	}

	got, err := hex.DecodeString(strings.ToLower(v1))
	if err != nil {
		return false
	}

	return hmac.Equal(got, v.sign(Manifest(paymentID, requestID, ts)))
}

// Sign returns the header value the provider would send. Used by tests and
// by local tooling that replays notifications.
func (v *SignatureVerifier) Sign(paymentID, requestID, ts string) string {
	return fmt.Sprintf("ts=%s,v1=%s", ts, hex.EncodeToString(v.sign(Manifest(paymentID, requestID, ts))))
}

func (v *SignatureVerifier) sign(manifest string) []byte {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(manifest))
	return mac.Sum(nil)
}

func (v *SignatureVerifier) fresh(ts string) bool {
	if v.tolerance <= 0 {
		return true
	}
	n, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return false
	}

	var sent time.Time
	if n > 1e12 {
		sent = time.UnixMilli(n)
	} else {
		sent = time.Unix(n, 0)
	}

	age := v.now().Sub(sent)
	if age < 0 {
		age = -age
	}
	return age <= v.tolerance
}

func Manifest(paymentID, requestID, ts string) string {
	return "id:" + paymentID + ";request-id:" + requestID + ";ts:" + ts + ";"
}

func parseSignatureHeader(header string) (ts, v1 string, ok bool) {
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch strings.TrimSpace(key) {
		case "ts":
			ts = strings.TrimSpace(value)
		case "v1":
			v1 = strings.TrimSpace(value)
		}
	}
	return ts, v1, ts != "" && v1 != ""
}
