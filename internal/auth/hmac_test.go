package auth

import (
	"context"
	"errors"
	"testing"
)

func TestVerify_RoundTrip(t *testing.T) {
	v := NewHMACVerifier("shared-key")
	token := v.Sign("u1")

	uid, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if uid != "u1" {
		t.Fatalf("uid = %q", uid)
	}
}

func TestVerify_Rejections(t *testing.T) {
	v := NewHMACVerifier("shared-key")
	good := v.Sign("u1")
	other := NewHMACVerifier("different-key").Sign("u1")

	cases := []struct {
		name  string
		token string
		want  error
	}{
		{"no separator", "justauserid", ErrMalformedToken},
		{"empty user", "." + good, ErrMalformedToken},
		{"empty signature", "u1.", ErrMalformedToken},
		{"non-hex signature", "u1.zzzz", ErrMalformedToken},
		{"wrong secret", other, ErrBadSignature},
		{"tampered user", "u2." + good[len("u1."):], ErrBadSignature},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := v.Verify(context.Background(), tc.token); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestVerify_EmptySecretRejectsEverything(t *testing.T) {
	v := NewHMACVerifier("")
	if _, err := v.Verify(context.Background(), v.Sign("u1")); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("err = %v, want ErrBadSignature", err)
	}
}
