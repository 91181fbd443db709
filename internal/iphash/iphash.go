// Package iphash derives an anonymous submitter identity from the client's
// network address. Raw addresses are never stored; only the keyed digest is.
package iphash

import (
	"encoding/hex"
	"net"
	"net/http"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/google/uuid"
)

const fallbackIdentity = "unknown"

type Hasher struct {
	pepper []byte
}

// New creates a Hasher keyed with pepper. An empty pepper gets a random
// per-process one: hashes then stay consistent within a run but not across
// restarts, which is fine for rate limiting but not for stable display.
func New(pepper string) *Hasher {
	if pepper == "" {
		pepper = uuid.New().String() + "-" + uuid.New().String()
	}
	key := []byte(pepper)
	if len(key) > blake2b.Size {
		key = key[:blake2b.Size]
	}
	return &Hasher{pepper: key}
}

// Hash returns the hex digest of the normalized address.
func (h *Hasher) Hash(rawIP string) string {
	normalized := strings.TrimSpace(rawIP)
	if normalized == "" {
		normalized = fallbackIdentity
	}

	mac, err := blake2b.New256(h.pepper)
	if err != nil {
		// Only possible with an oversized key, which New prevents.
		panic(err)
	}
	mac.Write([]byte(normalized))
	return hex.EncodeToString(mac.Sum(nil))
}

// ClientIP extracts the client address from proxy headers, falling back to
// RemoteAddr. Header order mirrors what the hosting platforms actually set.
func ClientIP(r *http.Request) string {
	candidates := []string{
		strings.TrimSpace(strings.Split(r.Header.Get("X-Forwarded-For"), ",")[0]),
		r.Header.Get("X-Real-Ip"),
		r.Header.Get("Cf-Connecting-Ip"),
		r.Header.Get("Fly-Client-Ip"),
		r.Header.Get("True-Client-Ip"),
	}
	for _, candidate := range candidates {
		if candidate != "" {
			return candidate
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if ip == "" {
		return fallbackIdentity
	}
	return ip
}
