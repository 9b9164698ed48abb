package crypto

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"
)

func testKey(t *testing.T) [32]byte {
	t.Helper()
	var key [32]byte
	if _, err := rand.Read(key[:]); err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	return key
}

func testHeader(seq uint16, ts, ssrc uint32) []byte {
	return []byte{
		0x80, 0x78,
		byte(seq >> 8), byte(seq),
		byte(ts >> 24), byte(ts >> 16), byte(ts >> 8), byte(ts),
		byte(ssrc >> 24), byte(ssrc >> 16), byte(ssrc >> 8), byte(ssrc),
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := testKey(t)
	schemes := []Scheme{SchemeEmbedded, SchemeSuffix, SchemeLite}
	sizes := []int{0, 1, 3, 20, 160, 1275}

	for _, scheme := range schemes {
		t.Run(scheme.String(), func(t *testing.T) {
			for i, size := range sizes {
				plaintext := make([]byte, size)
				if _, err := rand.Read(plaintext); err != nil {
					t.Fatalf("Failed to generate plaintext: %v", err)
				}
				header := testHeader(uint16(i*7), uint32(i*960), 0xdeadbeef+uint32(i))

				nonce, err := GenerateNonce()
				if err != nil {
					t.Fatalf("GenerateNonce() error: %v", err)
				}
				if scheme == SchemeLite {
					nonce = LiteNonce(uint32(i))
				}

				ciphertext, err := Encrypt(scheme, header, plaintext, key, nonce)
				if err != nil {
					t.Fatalf("Encrypt() error: %v", err)
				}
				if len(ciphertext) != size+scheme.Overhead() {
					t.Errorf("ciphertext length = %d, want %d", len(ciphertext), size+scheme.Overhead())
				}

				got, err := Decrypt(scheme, header, ciphertext, key)
				if err != nil {
					t.Fatalf("Decrypt() error: %v", err)
				}
				if !bytes.Equal(got, plaintext) {
					t.Errorf("Decrypt(Encrypt(p)) != p for size %d", size)
				}
			}
		})
	}
}

func TestDecryptWrongKey(t *testing.T) {
	key := testKey(t)
	other := testKey(t)
	header := testHeader(1, 960, 42)

	for _, scheme := range []Scheme{SchemeEmbedded, SchemeSuffix, SchemeLite} {
		nonce := LiteNonce(9)
		ciphertext, err := Encrypt(scheme, header, []byte("opus frame"), key, nonce)
		if err != nil {
			t.Fatalf("Encrypt() error: %v", err)
		}
		_, err = Decrypt(scheme, header, ciphertext, other)
		if !errors.Is(err, ErrDecryptionFailed) {
			t.Errorf("%s: Decrypt with wrong key = %v, want ErrDecryptionFailed", scheme, err)
		}
	}
}

func TestDecryptEmbeddedDependsOnHeader(t *testing.T) {
	key := testKey(t)
	ciphertext, err := Encrypt(SchemeEmbedded, testHeader(1, 960, 42), []byte("payload"), key, Nonce{})
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	_, err = Decrypt(SchemeEmbedded, testHeader(2, 960, 42), ciphertext, key)
	if !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("Decrypt with altered header = %v, want ErrDecryptionFailed", err)
	}
}

func TestDecryptTruncated(t *testing.T) {
	key := testKey(t)
	header := testHeader(1, 960, 42)

	cases := []struct {
		name   string
		scheme Scheme
		size   int
	}{
		{"suffix shorter than nonce", SchemeSuffix, SuffixNonceSize - 1},
		{"suffix without authenticator", SchemeSuffix, SuffixNonceSize},
		{"lite shorter than counter", SchemeLite, 3},
		{"embedded empty", SchemeEmbedded, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decrypt(tc.scheme, header, make([]byte, tc.size), key)
			if !errors.Is(err, ErrDecryptionFailed) {
				t.Errorf("Decrypt() = %v, want ErrDecryptionFailed", err)
			}
		})
	}
}

func TestDecryptInvalidHeader(t *testing.T) {
	key := testKey(t)
	_, err := Decrypt(SchemeEmbedded, []byte{0x80}, make([]byte, 32), key)
	if !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("Decrypt() = %v, want ErrInvalidHeader", err)
	}
	_, err = Encrypt(SchemeLite, []byte{0x80}, []byte("x"), key, Nonce{})
	if !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("Encrypt() = %v, want ErrInvalidHeader", err)
	}
}

func TestUnsupportedScheme(t *testing.T) {
	key := testKey(t)
	header := testHeader(1, 960, 42)
	if _, err := Encrypt(Scheme(99), header, []byte("x"), key, Nonce{}); !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("Encrypt() = %v, want ErrUnsupportedScheme", err)
	}
	if _, err := Decrypt(Scheme(99), header, make([]byte, 32), key); !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("Decrypt() = %v, want ErrUnsupportedScheme", err)
	}
}

func TestParseScheme(t *testing.T) {
	cases := map[string]Scheme{
		"xsalsa20_poly1305":        SchemeEmbedded,
		"xsalsa20_poly1305_suffix": SchemeSuffix,
		" XSALSA20_POLY1305_LITE ": SchemeLite,
	}
	for name, want := range cases {
		got, err := ParseScheme(name)
		if err != nil {
			t.Fatalf("ParseScheme(%q) error: %v", name, err)
		}
		if got != want {
			t.Errorf("ParseScheme(%q) = %s, want %s", name, got, want)
		}
	}

	if _, err := ParseScheme("aead_aes256_gcm"); !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("ParseScheme(unknown) = %v, want ErrUnsupportedScheme", err)
	}
}

func TestLiteNonceLayout(t *testing.T) {
	nonce := LiteNonce(0x01020304)
	want := [4]byte{0x01, 0x02, 0x03, 0x04}
	if !bytes.Equal(nonce[:4], want[:]) {
		t.Errorf("LiteNonce prefix = %x, want %x", nonce[:4], want)
	}
	if !bytes.Equal(nonce[4:], make([]byte, NonceSize-4)) {
		t.Error("LiteNonce is not zero padded")
	}
}

func TestSuffixNonceLayout(t *testing.T) {
	key := testKey(t)
	var nonce Nonce
	for i := range nonce {
		nonce[i] = byte(i + 1)
	}

	sealed, err := Encrypt(SchemeSuffix, testHeader(1, 960, 7), []byte("opus"), key, nonce)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if SuffixNonceSize != NonceSize {
		t.Fatalf("SuffixNonceSize = %d, want the full %d byte nonce", SuffixNonceSize, NonceSize)
	}
	if !bytes.Equal(sealed[len(sealed)-NonceSize:], nonce[:]) {
		t.Errorf("suffix = %x, want %x", sealed[len(sealed)-NonceSize:], nonce)
	}
	if len(sealed) != len("opus")+SchemeSuffix.Overhead() {
		t.Errorf("sealed length = %d, want %d", len(sealed), len("opus")+SchemeSuffix.Overhead())
	}
}
