package encoding

import (
	"errors"
	"strings"
	"testing"
)

type sessionProps struct {
	SessionID string `msgpack:"s"`
	Panel     string `msgpack:"p,omitempty"`
	Scratch   string `msgpack:"-"`
}

func newTestEncoder(t *testing.T, key string) *Encoder {
	t.Helper()
	enc, err := NewEncoder([]byte(key))
	if err != nil {
		t.Fatalf("NewEncoder(%q) error = %v", key, err)
	}
	return enc
}

func TestNewEncoderRejectsEmptyKey(t *testing.T) {
	if _, err := NewEncoder(nil); err == nil {
		t.Fatal("NewEncoder(nil) error = nil, want error")
	}
}

func TestSignedRoundTrip(t *testing.T) {
	enc := newTestEncoder(t, "short")
	in := sessionProps{SessionID: "0190c1d2", Panel: "generate", Scratch: "dropped"}

	encoded, err := enc.Encode(in, false)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !strings.Contains(encoded, ".") {
		t.Errorf("signed encoding %q has no signature separator", encoded)
	}

	var out sessionProps
	if err := enc.Decode(encoded, false, &out); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if out.SessionID != in.SessionID || out.Panel != in.Panel {
		t.Errorf("Decode() = %+v, want %+v", out, in)
	}
	if out.Scratch != "" {
		t.Errorf("Scratch = %q, want excluded field to stay empty", out.Scratch)
	}
}

func TestEncryptedRoundTripIsOpaque(t *testing.T) {
	enc := newTestEncoder(t, "this-is-a-32-byte-key-for-aes!!!")
	in := sessionProps{SessionID: "visible-session-id"}

	encoded, err := enc.Encode(in, true)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if strings.Contains(encoded, ".") {
		t.Errorf("encrypted encoding %q looks signed", encoded)
	}

	var out sessionProps
	if err := enc.Decode(encoded, true, &out); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if out.SessionID != in.SessionID {
		t.Errorf("SessionID = %q, want %q", out.SessionID, in.SessionID)
	}
}

func TestDecodeRejectsTampering(t *testing.T) {
	enc := newTestEncoder(t, "key-one")
	other := newTestEncoder(t, "key-two")

	signed, err := enc.Encode(sessionProps{SessionID: "abc"}, false)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	sealed, err := enc.Encode(sessionProps{SessionID: "abc"}, true)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	tests := []struct {
		name      string
		dec       *Encoder
		input     string
		sensitive bool
		want      error
	}{
		{"missing signature", enc, "bm9zaWc", false, ErrInvalidFormat},
		{"bad base64", enc, "!!!.???", false, ErrInvalidFormat},
		{"wrong key signed", other, signed, false, ErrSignatureInvalid},
		{"wrong key sealed", other, sealed, true, ErrDecryptFailed},
		{"short ciphertext", enc, "YWJj", true, ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out sessionProps
			err := tt.dec.Decode(tt.input, tt.sensitive, &out)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}
