package main

import (
	"strings"
	"testing"
)

func TestSessionValueRoundTrip(t *testing.T) {
	auth := newAuthService(nil, "secret")

	value := auth.createSessionValue("admin@paint.works")
	email, ok := auth.verifySessionValue(value)
	if !ok || email != "admin@paint.works" {
		t.Fatalf("expected valid session for admin, got %q ok=%v", email, ok)
	}
}

func TestSessionValueRejectsTampering(t *testing.T) {
	auth := newAuthService(nil, "secret")
	value := auth.createSessionValue("admin@paint.works")
	payload, signature, _ := strings.Cut(value, ".")

	cases := map[string]string{
		"empty":         "",
		"no signature":  payload,
		"extra part":    value + ".x",
		"bad hex":       payload + ".zz",
		"other payload": "b3RoZXI." + signature,
		"other secret":  newAuthService(nil, "other").createSessionValue("admin@paint.works"),
	}
	for name, v := range cases {
		if _, ok := auth.verifySessionValue(v); ok {
			t.Fatalf("%s: expected session value to be rejected", name)
		}
	}
}
