package phi

import (
	"crypto/rand"
	"strings"
	"testing"
)

func generateTestKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("generate test key: %v", err)
	}
	return key
}

func TestNewEncryptor(t *testing.T) {
	t.Run("valid 32-byte key", func(t *testing.T) {
		enc, err := NewEncryptor(generateTestKey(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if enc == nil {
			t.Fatal("expected non-nil encryptor")
		}
	})

	t.Run("key too short", func(t *testing.T) {
		if _, err := NewEncryptor(make([]byte, 16)); err == nil {
			t.Fatal("expected error for 16-byte key")
		}
	})

	t.Run("empty key", func(t *testing.T) {
		if _, err := NewEncryptor([]byte{}); err == nil {
			t.Fatal("expected error for empty key")
		}
	})
}

func TestSealOpen(t *testing.T) {
	enc, err := NewEncryptor(generateTestKey(t))
	if err != nil {
		t.Fatalf("create encryptor: %v", err)
	}

	cases := []string{
		"Hipertensão controlada, alergia a dipirona.",
		"Diabetes tipo 2 desde 2019",
		"x",
	}

	for _, plaintext := range cases {
		t.Run(plaintext, func(t *testing.T) {
			stored, err := enc.Seal(plaintext)
			if err != nil {
				t.Fatalf("seal: %v", err)
			}
			if !strings.HasPrefix(stored, prefix) {
				t.Fatalf("expected %q prefix, got %q", prefix, stored)
			}
			if strings.Contains(stored, plaintext) {
				t.Fatal("stored value leaks plaintext")
			}

			opened, err := enc.Open(stored)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			if opened != plaintext {
				t.Errorf("expected %q, got %q", plaintext, opened)
			}
		})
	}
}

func TestSeal_NonceUniqueness(t *testing.T) {
	enc, _ := NewEncryptor(generateTestKey(t))
	a, _ := enc.Seal("mesmo texto")
	b, _ := enc.Seal("mesmo texto")
	if a == b {
		t.Error("expected different ciphertexts for the same plaintext")
	}
}

func TestSeal_Empty(t *testing.T) {
	enc, _ := NewEncryptor(generateTestKey(t))
	stored, err := enc.Seal("")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if stored != "" {
		t.Errorf("expected empty string to stay empty, got %q", stored)
	}
}

func TestOpen_LegacyPlaintext(t *testing.T) {
	enc, _ := NewEncryptor(generateTestKey(t))
	opened, err := enc.Open("sem criptografia")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if opened != "sem criptografia" {
		t.Errorf("expected passthrough, got %q", opened)
	}
}

func TestOpen_WrongKey(t *testing.T) {
	enc1, _ := NewEncryptor(generateTestKey(t))
	enc2, _ := NewEncryptor(generateTestKey(t))

	stored, _ := enc1.Seal("segredo")
	if _, err := enc2.Open(stored); err == nil {
		t.Fatal("expected error opening with a different key")
	}
}

func TestOpen_Tampered(t *testing.T) {
	enc, _ := NewEncryptor(generateTestKey(t))
	if _, err := enc.Open(prefix + "!!!"); err == nil {
		t.Fatal("expected base64 error")
	}
	if _, err := enc.Open(prefix + "AAAA"); err == nil {
		t.Fatal("expected short ciphertext error")
	}
}

func TestNewFieldCipher(t *testing.T) {
	c, err := NewFieldCipher(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.(Plaintext); !ok {
		t.Fatalf("expected Plaintext for empty key, got %T", c)
	}

	c, err = NewFieldCipher(generateTestKey(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.(*Encryptor); !ok {
		t.Fatalf("expected *Encryptor, got %T", c)
	}
}

func TestPlaintext_RefusesEncryptedValue(t *testing.T) {
	enc, _ := NewEncryptor(generateTestKey(t))
	stored, _ := enc.Seal("segredo")

	if _, err := (Plaintext{}).Open(stored); err == nil {
		t.Fatal("expected error opening encrypted value without a key")
	}
	got, err := (Plaintext{}).Seal("texto")
	if err != nil || got != "texto" {
		t.Fatalf("expected passthrough, got %q, %v", got, err)
	}
}
