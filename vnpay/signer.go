package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

const (
	ParamSecureHash     = "vnp_SecureHash"
	ParamSecureHashType = "vnp_SecureHashType"
)

// encodeValue matches the form encoding the gateway signs with: spaces become
// '+', '*' stays literal and '~' is escaped.
func encodeValue(s string) string {
	e := url.QueryEscape(s)
	e = strings.ReplaceAll(e, "%2A", "*")
	return strings.ReplaceAll(e, "~", "%7E")
}

func sortedKeys(params map[string]string) []string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// HashData is the signing payload: non-empty params sorted by key, as
// key=encoded(value) joined by '&'. Keys are not encoded.
func HashData(params map[string]string) string {
	var b strings.Builder
	for i, k := range sortedKeys(params) {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(encodeValue(params[k]))
	}
	return b.String()
}

func queryString(params map[string]string) string {
	var b strings.Builder
	for i, k := range sortedKeys(params) {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(encodeValue(k))
		b.WriteByte('=')
		b.WriteString(encodeValue(params[k]))
	}
	return b.String()
}

// Sign returns the lowercase hex HMAC-SHA512 of data.
func Sign(secret, data string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature over every param except the hash fields
// and compares it case-insensitively with vnp_SecureHash.
func Verify(secret string, params map[string]string) bool {
	received := params[ParamSecureHash]
	if received == "" {
		return false
	}
	fields := make(map[string]string, len(params))
	for k, v := range params {
		if k == ParamSecureHash || k == ParamSecureHashType {
			continue
		}
		fields[k] = v
	}
	expected := Sign(secret, HashData(fields))
	return len(expected) == len(received) &&
		hmac.Equal([]byte(expected), []byte(strings.ToLower(received)))
}
