package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed digests.
// The version suffix leaves room for algorithm migration.
const (
	DomainBuffer   = "worldsmith/buffer/v1"
	DomainArtifact = "worldsmith/artifact/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Digest computes the content digest of a call buffer. Two buffers with the
// same calls in the same order always share a digest, which is what makes
// repeated compiles of unchanged content comparable.
func Digest(b *CallBuffer) (string, error) {
	canonical, err := MarshalCanonicalBuffer(b)
	if err != nil {
		return "", fmt.Errorf("digest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainBuffer, canonical), nil
}

// MustDigest is like Digest but panics on error.
// Use only in tests or when calls are known to be valid.
func MustDigest(b *CallBuffer) string {
	d, err := Digest(b)
	if err != nil {
		panic(err)
	}
	return d
}

// ArtifactDigest computes the digest of a generated artifact's bytes.
func ArtifactDigest(content []byte) string {
	return hashWithDomain(DomainArtifact, content)
}
