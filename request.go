package smtpkit

import (
	"bytes"
	"encoding/base64"
	"fmt"
)

func encodeLine(text string) []byte {
	return []byte(text + "\r\n")
}

// encodeHello renders the HELO/EHLO command.
func encodeHello(serverName string, useESMTP bool) []byte {
	verb := "HELO"
	if useESMTP {
		verb = "EHLO"
	}
	return encodeLine(fmt.Sprintf("%s %s", verb, serverName))
}

// encodeStartTLS renders STARTTLS.
func encodeStartTLS() []byte {
	return encodeLine("STARTTLS")
}

// encodeBeginAuth renders AUTH LOGIN.
func encodeBeginAuth() []byte {
	return encodeLine("AUTH LOGIN")
}

// encodeAuthCredential base64-encodes value (a username or password) and
// terminates it with CRLF, wrapping at the flags' configured line length if
// any.
func encodeAuthCredential(value string, flags FeatureFlags) []byte {
	encoded := encodeBase64([]byte(value), flags)
	return append(encoded, '\r', '\n')
}

// encodeMailFrom renders MAIL FROM:<addr>.
func encodeMailFrom(addr string) []byte {
	return encodeLine(fmt.Sprintf("MAIL FROM:<%s>", addr))
}

// encodeRecipient renders RCPT TO:<addr>.
func encodeRecipient(addr string) []byte {
	return encodeLine(fmt.Sprintf("RCPT TO:<%s>", addr))
}

// encodeData renders DATA.
func encodeData() []byte {
	return encodeLine("DATA")
}

// encodeQuit renders QUIT.
func encodeQuit() []byte {
	return encodeLine("QUIT")
}

// base64LineLength resolves which wrap width applies: FeatureMaxBase64LineLength64
// wins over FeatureMaxBase64LineLength76 if both are set; 0 means unwrapped.
func base64LineLength(flags FeatureFlags) int {
	return flags.base64LineLength()
}

// encodeBase64 base64-encodes data and, if flags request a wrap width,
// inserts CRLF every lineLength characters.
func encodeBase64(data []byte, flags FeatureFlags) []byte {
	encoded := base64.StdEncoding.EncodeToString(data)
	lineLength := base64LineLength(flags)
	if lineLength <= 0 || len(encoded) <= lineLength {
		return []byte(encoded)
	}
	var buf bytes.Buffer
	for i := 0; i < len(encoded); i += lineLength {
		end := i + lineLength
		if end > len(encoded) {
			end = len(encoded)
		}
		if i > 0 {
			buf.WriteString("\r\n")
		}
		buf.WriteString(encoded[i:end])
	}
	return buf.Bytes()
}
