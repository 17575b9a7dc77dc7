//go:build !unix

package smtpkit

import "syscall"

// reuseAddrControl is a no-op outside unix: SO_REUSEADDR has no equivalent
// setup step worth taking on Windows for this dialer's usage pattern.
func reuseAddrControl(_, _ string, _ syscall.RawConn) error {
	return nil
}
