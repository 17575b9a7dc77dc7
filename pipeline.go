package smtpkit

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/outpostmail/smtpkit/internal/lalog"
)

// TransmissionLogger receives a formatted line for every frame exchanged with
// the server, prefixed "☁️ " for inbound frames and "💻 " for outbound ones.
type TransmissionLogger interface {
	LogSMTPMessage(message string)
}

// dial opens the transport for cfg's server: a plain TCP connection, or one
// already wrapped in TLS for Encryption.SSL. STARTTLS upgrades happen later,
// inside the pipeline's run loop.
func dial(ctx context.Context, cfg *Configuration) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: cfg.ConnectionTimeout, Control: reuseAddrControl}
	address := net.JoinHostPort(cfg.Server.Hostname, strconv.Itoa(cfg.Server.EffectivePort()))

	rawConn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if !cfg.Server.Encryption.IsSSL() {
		return rawConn, nil
	}

	tlsConn := tls.Client(rawConn, tlsConfigFor(cfg.Server.Hostname))
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, &TransportError{Err: err}
	}
	return tlsConn, nil
}

// pipeline drives one connection's submission end to end: read the greeting,
// then alternate between sending the conversation's next command and reading
// its response, until the conversation is done or a response/transport error
// aborts it.
type pipeline struct {
	conn     net.Conn
	cfg      *Configuration
	email    *Email
	conv     *conversation
	txLogger TransmissionLogger
	diag     *lalog.Logger

	scanner frameScanner
	pending [][]byte
}

func newPipeline(conn net.Conn, cfg *Configuration, email *Email, txLogger TransmissionLogger, diag *lalog.Logger) *pipeline {
	return &pipeline{
		conn:     conn,
		cfg:      cfg,
		email:    email,
		conv:     newConversation(cfg, email, time.Now()),
		txLogger: txLogger,
		diag:     diag,
	}
}

func (p *pipeline) logInbound(frame []byte) {
	if p.txLogger == nil {
		return
	}
	p.txLogger.LogSMTPMessage("☁️ " + lalog.TruncateString(string(frame), lalog.MaxLogMessageLen))
}

func (p *pipeline) logOutbound(cmd []byte) {
	if p.txLogger == nil {
		return
	}
	text := strings.TrimRight(string(cmd), "\r\n")
	p.txLogger.LogSMTPMessage("💻 " + lalog.TruncateString(text, lalog.MaxLogMessageLen))
}

func (p *pipeline) writeCommand(cmd []byte) error {
	p.logOutbound(cmd)
	_, err := p.conn.Write(cmd)
	if err != nil {
		return &TransportError{Err: err}
	}
	return nil
}

// readFrame returns the next complete frame, reading more bytes off the
// connection as needed.
func (p *pipeline) readFrame() ([]byte, error) {
	for {
		if len(p.pending) > 0 {
			frame := p.pending[0]
			p.pending = p.pending[1:]
			return frame, nil
		}
		buf := make([]byte, 4096)
		n, err := p.conn.Read(buf)
		if n > 0 {
			p.pending = append(p.pending, p.scanner.feed(buf[:n])...)
		}
		if err != nil {
			return nil, err
		}
	}
}

// terminal reports whether the conversation has nothing left to say, so a
// read error at this point should be tolerated rather than surfaced.
func (p *pipeline) terminal() bool {
	return p.conv.state == stateQuitSent || p.conv.state == stateDone
}

var closeNotifyFinalResponse = response{kind: responseSuccess, code: 221, text: "connection closed"}

// readResponse reads frames until a terminal (non-continuation) reply is
// decoded, swallowing intermediate "250-..." style continuation lines. A read
// error that occurs once the conversation is waiting only for QUIT's reply is
// treated as a successful close, since many servers drop the connection
// immediately after accepting QUIT instead of writing "221" first.
func (p *pipeline) readResponse() (response, error) {
	for {
		frame, err := p.readFrame()
		if err != nil {
			if p.terminal() {
				return closeNotifyFinalResponse, nil
			}
			if errors.Is(err, io.EOF) {
				if len(p.scanner.leftover()) > 0 {
					return response{}, &LeftOverBytesError{}
				}
				return response{}, &TransportError{Err: err}
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return response{}, &UncleanShutdownError{Err: err}
			}
			return response{}, &TransportError{Err: err}
		}
		p.logInbound(frame)
		resp, decodeErr := decodeResponseLine(frame)
		if decodeErr != nil {
			return response{}, decodeErr
		}
		if resp.kind == responseIntermediate {
			continue
		}
		return resp, nil
	}
}

// installTLS upgrades the connection in place after a successful STARTTLS
// response, resetting the framer since no plaintext bytes may follow a
// STARTTLS reply.
func (p *pipeline) installTLS(ctx context.Context) error {
	tlsConn := tls.Client(p.conn, tlsConfigFor(p.cfg.Server.Hostname))
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return &TransportError{Err: err}
	}
	p.conn = tlsConn
	p.scanner = frameScanner{}
	p.pending = nil
	return nil
}

// run drives the conversation to completion and closes the connection,
// returning the submission's terminal error (nil on success).
func (p *pipeline) run(ctx context.Context) error {
	defer p.conn.Close()

	resp, err := p.readResponse()
	if err != nil {
		return err
	}
	if resp.kind == responseFailure {
		return &ServerError{Message: resp.full}
	}

	for {
		if p.conv.state == stateStartTLSSent {
			if resp.kind == responseSuccess {
				if err := p.installTLS(ctx); err != nil {
					return err
				}
			} else {
				switch p.cfg.Server.Encryption.startTLSMode {
				case StartTLSIfAvailable:
					resp = response{kind: responseSuccess}
				default:
					return &ServerError{Message: resp.full}
				}
			}
		} else if resp.kind == responseFailure {
			return &ServerError{Message: resp.full}
		}

		cmd, closeAfter := p.conv.next()
		if closeAfter {
			return nil
		}
		if err := p.writeCommand(cmd); err != nil {
			return err
		}
		resp, err = p.readResponse()
		if err != nil {
			return err
		}
	}
}
