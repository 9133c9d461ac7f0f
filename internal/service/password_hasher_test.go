package service

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
)

func newTestHasher() *Argon2Hasher {
	return NewArgon2Hasher(Argon2Params{MemoryKB: 1024, Iterations: 1, Threads: 1})
}

func TestArgon2Hasher_HashIsSaltedAndVerifies(t *testing.T) {
	h := newTestHasher()

	d1, s1, err := h.Hash("pw1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	d2, s2, err := h.Hash("pw1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if s1 == s2 {
		t.Fatalf("expected different salts")
	}
	if d1 == d2 {
		t.Fatalf("expected different digests")
	}
	if len(s1) != saltBytes*2 {
		t.Fatalf("expected %d hex chars of salt, got %d", saltBytes*2, len(s1))
	}
	if !strings.HasPrefix(d1, "argon2id$v=19$m=1024,t=1,p=1$") {
		t.Fatalf("unexpected digest format: %s", d1)
	}
	if strings.Contains(d1, "pw1") {
		t.Fatalf("digest must not contain the plaintext")
	}
	if !h.Verify("pw1", s1, d1) || !h.Verify("pw1", s2, d2) {
		t.Fatalf("expected both hashes to verify")
	}
}

func TestArgon2Hasher_VerifyRejects(t *testing.T) {
	h := newTestHasher()
	digest, salt, err := h.Hash("secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	cases := map[string]struct {
		password, salt, digest string
	}{
		"wrong password":  {"Secret", salt, digest},
		"empty salt":      {"secret", "", digest},
		"other salt":      {"secret", strings.Repeat("0", len(salt)), digest},
		"empty digest":    {"secret", salt, ""},
		"garbage digest":  {"secret", salt, "argon2id$nope"},
		"bad version":     {"secret", salt, strings.Replace(digest, "v=19", "v=16", 1)},
		"absurd memory":   {"secret", salt, strings.Replace(digest, "m=1024", "m=99999999", 1)},
		"unknown scheme":  {"secret", salt, "bcrypt$whatever"},
		"bad base64 tail": {"secret", salt, digest[:strings.LastIndex(digest, "$")+1] + "!!!"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if h.Verify(tc.password, tc.salt, tc.digest) {
				t.Fatalf("expected verify to fail")
			}
		})
	}
}

func TestArgon2Hasher_HonorsEncodedParams(t *testing.T) {
	strong := NewArgon2Hasher(Argon2Params{MemoryKB: 2048, Iterations: 2, Threads: 1})
	digest, salt, err := strong.Hash("pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !newTestHasher().Verify("pw", salt, digest) {
		t.Fatalf("expected digest to verify with the parameters it encodes")
	}
}

func TestArgon2Hasher_VerifiesLegacySHA256(t *testing.T) {
	h := newTestHasher()
	salt := "00112233445566778899aabbccddeeff"
	sum := sha256.Sum256([]byte(salt + "pw1"))
	digest := hex.EncodeToString(sum[:])

	if !h.Verify("pw1", salt, digest) {
		t.Fatalf("expected legacy digest to verify")
	}
	if h.Verify("pw2", salt, digest) {
		t.Fatalf("expected wrong password to fail on legacy digest")
	}
	if h.Verify("pw1", "", digest) {
		t.Fatalf("expected empty salt to fail on legacy digest")
	}
}
