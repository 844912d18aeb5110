package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

const (
	HeaderSignature = "X-Blog-Signature"
	HeaderTimestamp = "X-Blog-Timestamp"
	HeaderEventID   = "X-Blog-Event-Id"
)

// SignPayload returns "sha256=<hex>" over "<timestamp>.<body>".
func SignPayload(secret string, timestamp int64, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func VerifyPayload(secret string, timestamp int64, body []byte, signature string) bool {
	expected := SignPayload(secret, timestamp, body)
	return hmac.Equal([]byte(signature), []byte(expected))
}
