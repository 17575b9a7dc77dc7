package smtpkit

import (
	"crypto/tls"
	"sync"

	"golang.org/x/net/idna"
)

var (
	sharedTLSConfigOnce sync.Once
	sharedTLSBaseConfig *tls.Config
)

// sharedTLSBase returns the process-wide TLS client configuration template
// every connection's handshake is cloned from. Cloning per-connection is
// required because crypto/tls.Config's ServerName varies per destination;
// the template carries only the settings common to every connection (the
// minimum TLS version).
func sharedTLSBase() *tls.Config {
	sharedTLSConfigOnce.Do(func() {
		sharedTLSBaseConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	})
	return sharedTLSBaseConfig
}

// sniHostname converts hostname to its ASCII (punycode) form for use as a TLS
// ServerName, falling back to the original string if it is not representable
// as an IDNA label (e.g. an IPv6 literal). An IPv4 literal is already plain
// ASCII and comes back unchanged.
func sniHostname(hostname string) string {
	ascii, err := idna.Lookup.ToASCII(hostname)
	if err != nil {
		return hostname
	}
	return ascii
}

func tlsConfigFor(hostname string) *tls.Config {
	cfg := sharedTLSBase().Clone()
	cfg.ServerName = sniHostname(hostname)
	return cfg
}
