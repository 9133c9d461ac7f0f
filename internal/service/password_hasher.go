package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// PasswordHasher calcula y verifica hashes de contraseña con sal por usuario.
type PasswordHasher interface {
	Hash(password string) (digest string, salt string, err error)
	Verify(password, salt, digest string) bool
}

// Argon2Params agrupa el costo de argon2id.
type Argon2Params struct {
	MemoryKB   uint32
	Iterations uint32
	Threads    uint8
	KeyLen     uint32
}

const (
	saltBytes          = 16
	argon2Prefix       = "argon2id$"
	legacyDigestLength = sha256.Size * 2

	// Cotas para no derivar con parametros absurdos leidos de la base.
	maxArgon2MemoryKB   = 1 << 20
	maxArgon2Iterations = 16
)

func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		MemoryKB:   64 * 1024,
		Iterations: 1,
		Threads:    4,
		KeyLen:     32,
	}
}

// Argon2Hasher deriva el digest con argon2id sobre salt+password.
// Tambien acepta digests SHA-256 hex heredados del servicio anterior.
type Argon2Hasher struct {
	params Argon2Params
}

func NewArgon2Hasher(params Argon2Params) *Argon2Hasher {
	def := DefaultArgon2Params()
	if params.MemoryKB == 0 {
		params.MemoryKB = def.MemoryKB
	}
	if params.Iterations == 0 {
		params.Iterations = def.Iterations
	}
	if params.Threads == 0 {
		params.Threads = def.Threads
	}
	if params.KeyLen == 0 {
		params.KeyLen = def.KeyLen
	}
	return &Argon2Hasher{params: params}
}

func (h *Argon2Hasher) Hash(password string) (string, string, error) {
	raw := make([]byte, saltBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("generate salt: %w", err)
	}
	salt := hex.EncodeToString(raw)

	p := h.params
	key := argon2.IDKey([]byte(salt+password), []byte(salt), p.Iterations, p.MemoryKB, p.Threads, p.KeyLen)
	digest := fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s",
		argon2Prefix, argon2.Version, p.MemoryKB, p.Iterations, p.Threads,
		base64.RawStdEncoding.EncodeToString(key),
	)
	return digest, salt, nil
}

func (h *Argon2Hasher) Verify(password, salt, digest string) bool {
	if salt == "" || digest == "" {
		return false
	}
	if isArgon2Digest(digest) {
		return verifyArgon2(password, salt, digest)
	}
	if len(digest) == legacyDigestLength {
		sum := sha256.Sum256([]byte(salt + password))
		computed := hex.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(computed), []byte(strings.ToLower(digest))) == 1
	}
	return false
}

func isArgon2Digest(digest string) bool {
	return strings.HasPrefix(digest, argon2Prefix)
}

func verifyArgon2(password, salt, digest string) bool {
	parts := strings.Split(digest, "$")
	if len(parts) != 4 {
		return false
	}
	var version int
	if _, err := fmt.Sscanf(parts[1], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}
	var (
		memory, iterations uint32
		threads            uint8
	)
	if _, err := fmt.Sscanf(parts[2], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false
	}
	if memory == 0 || memory > maxArgon2MemoryKB || iterations == 0 || iterations > maxArgon2Iterations || threads == 0 {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil || len(expected) == 0 {
		return false
	}
	computed := argon2.IDKey([]byte(salt+password), []byte(salt), iterations, memory, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(computed, expected) == 1
}
