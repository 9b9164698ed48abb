package crypto

import (
	"bytes"
	"errors"
	"testing"
)

func TestStripHeaderExtension(t *testing.T) {
	opus := []byte{0xfc, 0x01, 0x02, 0x03}

	cases := []struct {
		name      string
		plaintext []byte
		want      []byte
		wantErr   error
	}{
		{
			name:      "no extension",
			plaintext: opus,
			want:      opus,
		},
		{
			name:      "one word extension",
			plaintext: append([]byte{0xbe, 0xde, 0x00, 0x01, 0x10, 0xaa, 0x00, 0x00}, opus...),
			want:      opus,
		},
		{
			name:      "two word extension",
			plaintext: append([]byte{0xbe, 0xde, 0x00, 0x02, 1, 2, 3, 4, 5, 6, 7, 8}, opus...),
			want:      opus,
		},
		{
			name:      "zero length extension",
			plaintext: append([]byte{0xbe, 0xde, 0x00, 0x00}, opus...),
			want:      opus,
		},
		{
			name:      "marker only is not an extension",
			plaintext: []byte{0xbe, 0xde, 0x00, 0x01},
			want:      []byte{0xbe, 0xde, 0x00, 0x01},
		},
		{
			name:      "declared length past end",
			plaintext: []byte{0xbe, 0xde, 0x00, 0x09, 0x10, 0xaa},
			wantErr:   ErrMalformedExtension,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := StripHeaderExtension(tc.plaintext)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("StripHeaderExtension() = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("StripHeaderExtension() error: %v", err)
			}
			if !bytes.Equal(got, tc.want) {
				t.Errorf("StripHeaderExtension() = %x, want %x", got, tc.want)
			}
		})
	}
}

func TestDecryptOpusStripsExtension(t *testing.T) {
	key := testKey(t)
	header := testHeader(5, 4800, 7)
	opus := []byte{0x78, 0x11, 0x22}
	plaintext := append([]byte{0xbe, 0xde, 0x00, 0x01, 0x51, 0x00, 0x00, 0x00}, opus...)

	ciphertext, err := Encrypt(SchemeLite, header, plaintext, key, LiteNonce(77))
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	got, err := DecryptOpus(SchemeLite, header, ciphertext, key)
	if err != nil {
		t.Fatalf("DecryptOpus() error: %v", err)
	}
	if !bytes.Equal(got, opus) {
		t.Errorf("DecryptOpus() = %x, want %x", got, opus)
	}
}
