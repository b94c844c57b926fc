package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for algorithm migration.
const (
	DomainBody   = "prusti/body/v1"
	DomainMethod = "prusti/method/v1"
	DomainError  = "prusti/error/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash computes the domain-separated hash of the canonical form of v.
func Hash(domain string, v any) (string, error) {
	data, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", domain, err)
	}
	return hashWithDomain(domain, data), nil
}

// MethodID computes the content-addressed ID of an encoded method: the
// procedure it encodes, the hash of the body it was encoded from and the
// printed IVL text.
func MethodID(def, bodyHash, text string) (string, error) {
	obj := map[string]any{
		"def":       def,
		"body_hash": bodyHash,
		"text":      text,
	}
	id, err := Hash(DomainMethod, obj)
	if err != nil {
		return "", fmt.Errorf("MethodID: %w", err)
	}
	return id, nil
}

// ErrorID computes the content-addressed ID of an encoding failure within a run.
func ErrorID(runID, def, code, message string) (string, error) {
	obj := map[string]any{
		"run_id":  runID,
		"def":     def,
		"code":    code,
		"message": message,
	}
	id, err := Hash(DomainError, obj)
	if err != nil {
		return "", fmt.Errorf("ErrorID: %w", err)
	}
	return id, nil
}

// MustMethodID is like MethodID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustMethodID(def, bodyHash, text string) string {
	id, err := MethodID(def, bodyHash, text)
	if err != nil {
		panic(err)
	}
	return id
}
