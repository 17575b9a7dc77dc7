package smtpkit

import "time"

// StartTLSMode controls what happens when a server rejects the STARTTLS command.
type StartTLSMode int

const (
	// StartTLSAlways fails the submission if the server never upgrades to TLS.
	StartTLSAlways StartTLSMode = iota
	// StartTLSIfAvailable continues over plaintext if the server rejects STARTTLS.
	StartTLSIfAvailable
)

type encryptionKind int

const (
	encryptionPlain encryptionKind = iota
	encryptionSSL
	encryptionStartTLS
)

// Encryption selects how the transport is secured. Construct one with Plain,
// SSL, or StartTLS — never by composing the zero value directly.
type Encryption struct {
	kind         encryptionKind
	startTLSMode StartTLSMode
}

// Plain sends the whole conversation unencrypted.
func Plain() Encryption { return Encryption{kind: encryptionPlain} }

// SSL wraps the connection in TLS before any SMTP bytes are exchanged.
func SSL() Encryption { return Encryption{kind: encryptionSSL} }

// StartTLS begins in plaintext and upgrades via the STARTTLS command. mode
// controls the behavior when the server does not support it.
func StartTLS(mode StartTLSMode) Encryption {
	return Encryption{kind: encryptionStartTLS, startTLSMode: mode}
}

// IsSSL reports whether the transport is wrapped in implicit TLS.
func (e Encryption) IsSSL() bool { return e.kind == encryptionSSL }

// IsStartTLS reports whether the transport upgrades via STARTTLS.
func (e Encryption) IsStartTLS() bool { return e.kind == encryptionStartTLS }

// DefaultPort returns the conventional port for this encryption choice: 25 for
// plain, 465 for SSL, 587 for STARTTLS.
func (e Encryption) DefaultPort() int {
	switch e.kind {
	case encryptionSSL:
		return 465
	case encryptionStartTLS:
		return 587
	default:
		return 25
	}
}

// Server identifies the SMTP submission endpoint. Port of zero means "use
// Encryption's default port."
type Server struct {
	Hostname   string
	Port       int
	Encryption Encryption
}

// EffectivePort returns Port if set, otherwise Encryption's default port.
func (s Server) EffectivePort() int {
	if s.Port != 0 {
		return s.Port
	}
	return s.Encryption.DefaultPort()
}

// Credentials authenticate via AUTH LOGIN.
type Credentials struct {
	Username string
	Password string
}

// FeatureFlags is a bitset of optional protocol behaviors.
type FeatureFlags uint8

const (
	// FeatureUseESMTP sends EHLO instead of HELO.
	FeatureUseESMTP FeatureFlags = 1 << iota
	// FeatureBase64EncodeAllMessages base64-encodes plain/html body content,
	// not just attachments (which are always base64-encoded).
	FeatureBase64EncodeAllMessages
	// FeatureMaxBase64LineLength64 wraps base64 output at 64 characters per
	// line. Takes precedence over FeatureMaxBase64LineLength76 if both are set.
	FeatureMaxBase64LineLength64
	// FeatureMaxBase64LineLength76 wraps base64 output at 76 characters per line.
	FeatureMaxBase64LineLength76
)

// Has reports whether flag is set.
func (f FeatureFlags) Has(flag FeatureFlags) bool { return f&flag != 0 }

func (f FeatureFlags) base64LineLength() int {
	if f.Has(FeatureMaxBase64LineLength64) {
		return 64
	}
	if f.Has(FeatureMaxBase64LineLength76) {
		return 76
	}
	return 0
}

// DefaultConnectionTimeout is used by NewConfiguration when no override is given.
const DefaultConnectionTimeout = 60 * time.Second

// Configuration is the complete set of inputs a Mailer needs to submit mail.
// Build one with NewConfiguration and the With* methods; the zero value is not
// usable (it has no Server hostname).
type Configuration struct {
	Server            Server
	ConnectionTimeout time.Duration
	Credentials       *Credentials
	FeatureFlags      FeatureFlags
}

// NewConfiguration returns a Configuration for server with the default
// connection timeout.
func NewConfiguration(server Server) Configuration {
	return Configuration{Server: server, ConnectionTimeout: DefaultConnectionTimeout}
}

// WithCredentials attaches AUTH LOGIN credentials.
func (c Configuration) WithCredentials(username, password string) Configuration {
	c.Credentials = &Credentials{Username: username, Password: password}
	return c
}

// WithFeatureFlags overrides the feature flag bitset.
func (c Configuration) WithFeatureFlags(flags FeatureFlags) Configuration {
	c.FeatureFlags = flags
	return c
}

// WithConnectionTimeout overrides how long the initial TCP connect may take
// before failing with a TransportError. The implicit TLS handshake for SSL is
// not bounded by it.
func (c Configuration) WithConnectionTimeout(d time.Duration) Configuration {
	c.ConnectionTimeout = d
	return c
}
