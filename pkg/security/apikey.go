package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// APIKeyPrefix marks live verification keys.
const APIKeyPrefix = "sk_live_"

const secretBytes = 16

var (
	ErrHashingFailed = errors.New("api key hashing failed")
	ErrKeyMalformed  = errors.New("api key malformed")
	MinSecretLen     = 16
)

// KeyHasher provides interface for API key operations
type KeyHasher interface {
	Hash(key string) (string, error)
	Compare(hashedKey, key string) error
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a new key hasher using bcrypt
func NewBcryptHasher(cost int) KeyHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (b *bcryptHasher) Hash(key string) (string, error) {
	if !strings.HasPrefix(key, APIKeyPrefix) || len(key)-len(APIKeyPrefix) < MinSecretLen {
		return "", ErrKeyMalformed
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(key), b.cost)
	if err != nil {
		return "", ErrHashingFailed
	}
	return string(bytes), nil
}

func (b *bcryptHasher) Compare(hashedKey, key string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedKey), []byte(key))
}

// GenerateAPIKey returns a fresh key with 16 random bytes of secret,
// hex encoded. A nil reader uses crypto/rand.
func GenerateAPIKey(r io.Reader) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	buf := make([]byte, secretBytes)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return APIKeyPrefix + hex.EncodeToString(buf), nil
}
