package smtpkit

import (
	"encoding/base64"
	"testing"
)

func TestEncodeHelloEHLO(t *testing.T) {
	got := string(encodeHello("mail.server.tld", true))
	want := "EHLO mail.server.tld\r\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEncodeHelloHELO(t *testing.T) {
	got := string(encodeHello("mail.server.tld", false))
	want := "HELO mail.server.tld\r\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEncodeAuthCredentialUsername(t *testing.T) {
	got := string(encodeAuthCredential("my.user@example.com", 0))
	want := "bXkudXNlckBleGFtcGxlLmNvbQ==\r\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEncodeAuthCredentialPassword(t *testing.T) {
	got := string(encodeAuthCredential(`jB)7ie$sJ)Q8mXN@^ZR8RybVP!FDvwXG`, 0))
	want := "akIpN2llJHNKKVE4bVhOQF5aUjhSeWJWUCFGRHZ3WEc=\r\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEncodeMailFromAndRecipient(t *testing.T) {
	if got, want := string(encodeMailFrom("s@e.com")), "MAIL FROM:<s@e.com>\r\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got, want := string(encodeRecipient("r@e.com")), "RCPT TO:<r@e.com>\r\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEncodeQuitAndData(t *testing.T) {
	if got, want := string(encodeQuit()), "QUIT\r\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got, want := string(encodeData()), "DATA\r\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEncodeBase64RoundTrip(t *testing.T) {
	inputs := []string{"a", "hello world", "emoji 🎉", "jB)7ie$sJ)Q8mXN@^ZR8RybVP!FDvwXG"}
	for _, in := range inputs {
		encoded := encodeBase64([]byte(in), 0)
		decoded, err := base64.StdEncoding.DecodeString(string(encoded))
		if err != nil {
			t.Fatalf("decode error for %q: %v", in, err)
		}
		if string(decoded) != in {
			t.Fatalf("round trip mismatch: got %q, want %q", decoded, in)
		}
	}
}

func TestEncodeBase64LineWrapping(t *testing.T) {
	payload := make([]byte, 100)
	for i := range payload {
		payload[i] = byte('a' + i%26)
	}

	wrapped64 := string(encodeBase64(payload, FeatureMaxBase64LineLength64))
	for _, line := range splitCRLF(wrapped64) {
		if len(line) > 64 {
			t.Fatalf("line exceeds 64 chars: %q", line)
		}
	}

	wrapped76 := string(encodeBase64(payload, FeatureMaxBase64LineLength76))
	for _, line := range splitCRLF(wrapped76) {
		if len(line) > 76 {
			t.Fatalf("line exceeds 76 chars: %q", line)
		}
	}

	// 64 takes precedence when both flags are set.
	both := string(encodeBase64(payload, FeatureMaxBase64LineLength64|FeatureMaxBase64LineLength76))
	if both != wrapped64 {
		t.Fatalf("both flags set should match the 64-char wrap: got %q, want %q", both, wrapped64)
	}
}

func splitCRLF(s string) []string {
	var lines []string
	start := 0
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '\r' && s[i+1] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 2
		}
	}
	lines = append(lines, s[start:])
	return lines
}
