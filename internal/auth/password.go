package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"
)

const (
	argonSaltLen = 16
	argonKeyLen  = 32
)

// Hasher derives and verifies argon2id password hashes. The produced string
// follows the PHC format, so every hash embeds its own salt and parameters.
type Hasher struct {
	time    uint32
	memory  uint32
	threads uint8
	logger  *zap.Logger
}

// NewHasher builds a hasher with explicit parameters. Zero values fall back
// to the OWASP-recommended defaults; a nil logger is replaced with a no-op.
func NewHasher(time, memoryKiB uint32, threads uint8, logger *zap.Logger) *Hasher {
	if time == 0 {
		time = 1
	}
	if memoryKiB == 0 {
		memoryKiB = 64 * 1024
	}
	if threads == 0 {
		threads = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hasher{time: time, memory: memoryKiB, threads: threads, logger: logger}
}

// Hash derives a one-way hash of password with a fresh random salt.
// It fails only when the system RNG does.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.time, h.memory, h.threads, argonKeyLen)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.memory, h.time, h.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// Verify recomputes the hash with the parameters embedded in stored and
// compares in constant time. A malformed stored hash is reported as a
// non-match, never as an error.
func (h *Hasher) Verify(password string, stored []byte) bool {
	salt, expected, time, memory, threads, ok := decodeHash(string(stored))
	if !ok {
		h.logger.Warn("malformed stored password hash")
		return false
	}

	key := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(key, expected) == 1
}

// decodeHash parses the PHC string $argon2id$v=19$m=..,t=..,p=..$salt$hash.
func decodeHash(encoded string) (salt, key []byte, time, memory uint32, threads uint8, ok bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, nil, 0, 0, 0, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, nil, 0, 0, 0, false
	}

	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &par); err != nil {
		return nil, nil, 0, 0, 0, false
	}
	if memory == 0 || time == 0 || par == 0 {
		return nil, nil, 0, 0, 0, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return nil, nil, 0, 0, 0, false
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return nil, nil, 0, 0, 0, false
	}

	return salt, key, time, memory, par, true
}
