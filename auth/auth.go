// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrInvalidToken     = errors.New("invalid token format")
	ErrMissingToken     = errors.New("missing caller token")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnknownUser      = errors.New("unknown user")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// SignToken binds a user id to an HMAC signature: "<uid>.<sig>".
// The signature is deterministic so tokens need no server-side storage.
func SignToken(uid, salt string) string {
	return uid + "." + signature(uid, salt)
}

// ParseToken verifies a token and returns the user id it carries
func ParseToken(token, salt string) (string, error) {
	uid, sig, ok := strings.Cut(token, ".")
	if !ok || uid == "" || sig == "" {
		return "", ErrInvalidToken
	}
	if !hmac.Equal([]byte(sig), []byte(signature(uid, salt))) {
		return "", ErrInvalidToken
	}
	return uid, nil
}

func signature(uid, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(uid))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner tokens
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// CallerFromRequest extracts the caller id from "Authorization: Bearer <token>"
func CallerFromRequest(r *http.Request, salt string) (string, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", ErrMissingToken
	}
	return ParseToken(strings.TrimSpace(token), salt)
}

// GenerateShareSlug creates a short, deterministic URL slug for an event
// Uses HMAC for determinism and base62 encoding for URL-friendliness
func GenerateShareSlug(eventID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(eventID))
	sum := h.Sum(nil)

	// Take first 8 bytes for a shorter slug
	return base62Encode(sum[:8])
}

// base62Encode converts bytes to base62 (0-9, a-z, A-Z)
func base62Encode(data []byte) string {
	const base62Chars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	var num uint64
	for i := 0; i < len(data) && i < 8; i++ {
		num = num<<8 | uint64(data[i])
	}

	if num == 0 {
		return "0"
	}

	result := make([]byte, 0, 11) // max length for uint64
	for num > 0 {
		result = append(result, base62Chars[num%62])
		num /= 62
	}

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}

	return string(result)
}
