package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	publicKeyPrefix = "pk_"
	secretKeyPrefix = "sk_"
	keyEntropyBytes = 24
)

// GenerateKeyPair issues the public/secret API credential pair for a new
// environment. Keys are immutable once issued, so this is only called at
// provisioning time.
func GenerateKeyPair() (publicKey string, secretKey string, err error) {
	publicKey, err = randomToken(publicKeyPrefix)
	if err != nil {
		return "", "", err
	}
	secretKey, err = randomToken(secretKeyPrefix)
	if err != nil {
		return "", "", err
	}
	return publicKey, secretKey, nil
}

func randomToken(prefix string) (string, error) {
	buf := make([]byte, keyEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return prefix + hex.EncodeToString(buf), nil
}

// ComputeHMAC256 signs the payload with the secret key and returns a hex digest.
func ComputeHMAC256(toSign []byte, secretKey string) string {
	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write(toSign)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// VerifyHMAC compares a provided signature against the expected digest in
// constant time.
func VerifyHMAC(secretKey string, toSign []byte, providedSign string) bool {
	expected := ComputeHMAC256(toSign, secretKey)
	return hmac.Equal([]byte(expected), []byte(providedSign))
}

// DomainTXTRecord derives the TXT record value a tenant must publish to prove
// ownership of a custom domain. The value is stable for a given
// (domain, environment secret key) pair so re-checks do not rotate it.
func DomainTXTRecord(domain, environmentSecretKey string) string {
	digest := ComputeHMAC256([]byte(domain), environmentSecretKey)
	return "authcove-verify=" + digest[:32]
}

func HashPassword(password string) (string, error) {
	pwd, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(pwd), nil
}

func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
