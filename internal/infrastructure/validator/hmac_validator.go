package validator

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"balanced.io/internal/domain/port"
	"balanced.io/internal/infrastructure/logger"
)

const (
	HeaderTimestamp = "X-Timestamp"
	HeaderNonce     = "X-Nonce"
	HeaderSignature = "X-Signature"
)

var (
	ErrMissingHeader    = errors.New("missing signature header")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrStaleTimestamp   = errors.New("timestamp out of tolerance")
	ErrReplayedNonce    = errors.New("nonce already used")
	ErrInvalidSignature = errors.New("invalid signature")
)

const defaultNonceCapacity = 10000

// NonceStore remembers nonces for ttl so a signed request cannot be replayed
// while its timestamp is still acceptable.
type NonceStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	nonces   map[string]time.Time
	now      func() time.Time
}

// NewNonceStore creates a nonce store that forgets nonces after ttl
func NewNonceStore(ttl time.Duration) *NonceStore {
	return &NonceStore{
		ttl:      ttl,
		capacity: defaultNonceCapacity,
		nonces:   make(map[string]time.Time),
		now:      time.Now,
	}
}

// Use records nonce and reports whether it was unused.
func (ns *NonceStore) Use(nonce string) bool {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	now := ns.now()
	if seen, ok := ns.nonces[nonce]; ok && now.Sub(seen) <= ns.ttl {
		return false
	}
	ns.nonces[nonce] = now

	if len(ns.nonces) > ns.capacity {
		ns.expire(now)
	}
	return true
}

// Len returns the number of remembered nonces.
func (ns *NonceStore) Len() int {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	return len(ns.nonces)
}

func (ns *NonceStore) expire(now time.Time) {
	for nonce, seen := range ns.nonces {
		if now.Sub(seen) > ns.ttl {
			delete(ns.nonces, nonce)
		}
	}
}

// HMACValidator implements the RequestValidator port
type HMACValidator struct {
	secret    []byte
	tolerance time.Duration
	nonces    *NonceStore
	logger    logger.Logger
	now       func() time.Time
}

var _ port.RequestValidator = (*HMACValidator)(nil)

// NewHMACValidator creates a new HMAC validator. Nonces are kept for twice
// the tolerance, covering every timestamp the validator would accept.
func NewHMACValidator(secret string, tolerance time.Duration, log logger.Logger) *HMACValidator {
	return &HMACValidator{
		secret:    []byte(secret),
		tolerance: tolerance,
		nonces:    NewNonceStore(2 * tolerance),
		logger:    log.WithComponent("hmac_validator"),
		now:       time.Now,
	}
}

// ValidateRequest checks timestamp, nonce and signature of a signed request
func (v *HMACValidator) ValidateRequest(ctx context.Context, r *http.Request, body []byte) error {
	timestampStr := r.Header.Get(HeaderTimestamp)
	nonce := r.Header.Get(HeaderNonce)
	signature := r.Header.Get(HeaderSignature)

	switch {
	case timestampStr == "":
		return fmt.Errorf("%w: %s", ErrMissingHeader, HeaderTimestamp)
	case nonce == "":
		return fmt.Errorf("%w: %s", ErrMissingHeader, HeaderNonce)
	case signature == "":
		return fmt.Errorf("%w: %s", ErrMissingHeader, HeaderSignature)
	}

	timestamp, err := strconv.ParseInt(timestampStr, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTimestamp, err)
	}

	now := v.now()
	diff := now.Sub(time.Unix(timestamp, 0)).Abs()
	if diff > v.tolerance {
		v.logger.LogWarning(ctx, "Request timestamp out of tolerance",
			"timestamp", timestamp,
			"current_time", now.Unix(),
			"difference_seconds", diff.Seconds())
		return fmt.Errorf("%w: off by %v, max %v", ErrStaleTimestamp, diff, v.tolerance)
	}

	if !hmac.Equal([]byte(Sign(v.secret, timestampStr, nonce, body)), []byte(signature)) {
		v.logger.LogWarning(ctx, "Invalid request signature", "nonce", nonce)
		return ErrInvalidSignature
	}

	// Only verified requests consume their nonce.
	if !v.nonces.Use(nonce) {
		v.logger.LogWarning(ctx, "Replayed nonce", "nonce", nonce, "timestamp", timestamp)
		return ErrReplayedNonce
	}

	return nil
}

// Sign returns hex(HMAC-SHA256(secret, timestamp + "\n" + nonce + "\n" + body)).
func Sign(secret []byte, timestamp, nonce string, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(timestamp + "\n" + nonce + "\n"))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
