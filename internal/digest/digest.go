// Package digest answers HTTP Digest (RFC 7616, MD5) challenges.
package digest

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// Challenge holds the parameters of a WWW-Authenticate: Digest header.
type Challenge struct {
	Realm     string
	Nonce     string
	Opaque    string
	Qop       string
	Algorithm string
}

// ParseChallenge parses a WWW-Authenticate header. ok is false when the
// header is not a Digest challenge.
func ParseChallenge(header string) (Challenge, bool) {
	scheme, rest, _ := strings.Cut(strings.TrimSpace(header), " ")
	if !strings.EqualFold(scheme, "Digest") {
		return Challenge{}, false
	}

	params := make(map[string]string)
	for _, part := range splitParams(rest) {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		params[strings.ToLower(strings.TrimSpace(key))] = strings.Trim(strings.TrimSpace(value), `"`)
	}

	c := Challenge{
		Realm:     params["realm"],
		Nonce:     params["nonce"],
		Opaque:    params["opaque"],
		Algorithm: params["algorithm"],
	}
	// prefer "auth" when the server offers several
	for _, q := range strings.Split(params["qop"], ",") {
		if strings.TrimSpace(q) == "auth" {
			c.Qop = "auth"
		}
	}
	return c, c.Nonce != ""
}

// splitParams splits on commas that are not inside quotes.
func splitParams(s string) []string {
	var out []string
	inQuotes := false
	start := 0
	for i, r := range s {
		switch r {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}

// Authorization builds the Authorization header value for one request.
// uri is the request-target (path + query).
func (c Challenge) Authorization(method, uri, username, password string) (string, error) {
	if c.Algorithm != "" && !strings.EqualFold(c.Algorithm, "MD5") {
		return "", fmt.Errorf("digest: unsupported algorithm %q", c.Algorithm)
	}
	cnonce, err := cnonce()
	if err != nil {
		return "", err
	}
	return c.authorization(method, uri, username, password, "00000001", cnonce), nil
}

func (c Challenge) authorization(method, uri, username, password, nc, cnonce string) string {
	ha1 := md5Hex(username + ":" + c.Realm + ":" + password)
	ha2 := md5Hex(method + ":" + uri)

	var response string
	if c.Qop == "auth" {
		response = md5Hex(strings.Join([]string{ha1, c.Nonce, nc, cnonce, c.Qop, ha2}, ":"))
	} else {
		response = md5Hex(ha1 + ":" + c.Nonce + ":" + ha2)
	}

	parts := []string{
		fmt.Sprintf(`username="%s"`, username),
		fmt.Sprintf(`realm="%s"`, c.Realm),
		fmt.Sprintf(`nonce="%s"`, c.Nonce),
		fmt.Sprintf(`uri="%s"`, uri),
		fmt.Sprintf(`response="%s"`, response),
	}
	if c.Algorithm != "" {
		parts = append(parts, "algorithm="+c.Algorithm)
	}
	if c.Qop != "" {
		parts = append(parts, "qop="+c.Qop, "nc="+nc, fmt.Sprintf(`cnonce="%s"`, cnonce))
	}
	if c.Opaque != "" {
		parts = append(parts, fmt.Sprintf(`opaque="%s"`, c.Opaque))
	}
	return "Digest " + strings.Join(parts, ", ")
}

func cnonce() (string, error) {
	b := make([]byte, 8)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("digest: cnonce: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
