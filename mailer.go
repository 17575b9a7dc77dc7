package smtpkit

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/outpostmail/smtpkit/internal/lalog"
)

// DefaultMaxConnections is used by NewMailer when WithMaxConnections is not
// given.
const DefaultMaxConnections = 2

// MailerOption configures a Mailer at construction time.
type MailerOption func(*Mailer)

// WithMaxConnections bounds how many submissions may dial out concurrently.
func WithMaxConnections(n int) MailerOption {
	return func(m *Mailer) { m.maxConnections = n }
}

// WithTransmissionLogger attaches a logger that receives every inbound and
// outbound SMTP frame.
func WithTransmissionLogger(l TransmissionLogger) MailerOption {
	return func(m *Mailer) { m.txLogger = l }
}

type scheduledEmail struct {
	id     uint64
	email  *Email
	future *Future
}

var submissionCounter uint64

// Mailer accepts Email submissions and dials out to its configured server,
// never running more than maxConnections deliveries at once. Submissions are
// started in the order Send was called; once started, they may complete in
// any order.
type Mailer struct {
	cfg            Configuration
	maxConnections int
	txLogger       TransmissionLogger
	diag           *lalog.Logger

	sem *semaphore.Weighted

	mu      sync.Mutex
	pending []*scheduledEmail
	wake    chan struct{}
}

// NewMailer builds a Mailer for cfg and starts its dispatcher.
func NewMailer(cfg Configuration, opts ...MailerOption) (*Mailer, error) {
	m := &Mailer{
		cfg:            cfg,
		maxConnections: DefaultMaxConnections,
		wake:           make(chan struct{}, 1),
		diag:           &lalog.Logger{ComponentName: "smtpkit.mailer", ComponentID: []lalog.LoggerIDField{{Key: "Server", Value: cfg.Server.Hostname}}},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.maxConnections <= 0 {
		return nil, ErrMaxConnectionsMustBePositive
	}
	m.sem = semaphore.NewWeighted(int64(m.maxConnections))
	go m.dispatchLoop()
	return m, nil
}

// Send enqueues email for delivery and returns a Future for its completion.
// The Future resolves with ErrNoRecipients or ErrEmptyContactAddress
// immediately, without dialing, if email fails validation.
func (m *Mailer) Send(email *Email) *Future {
	future := newFuture()
	if err := email.Validate(); err != nil {
		future.complete(err)
		return future
	}

	se := &scheduledEmail{id: atomic.AddUint64(&submissionCounter, 1), email: email, future: future}
	m.mu.Lock()
	m.pending = append(m.pending, se)
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
	return future
}

// dispatchLoop is the single dedicated worker goroutine: it is the only one
// that pops from the pending queue, so acquiring a semaphore permit per item
// happens strictly in FIFO order even though the deliveries
// themselves run concurrently once started.
func (m *Mailer) dispatchLoop() {
	for range m.wake {
		for {
			m.mu.Lock()
			if len(m.pending) == 0 {
				m.mu.Unlock()
				break
			}
			se := m.pending[0]
			m.pending = m.pending[1:]
			m.mu.Unlock()

			if err := m.sem.Acquire(context.Background(), 1); err != nil {
				se.future.complete(&TransportError{Err: err})
				continue
			}
			go m.deliver(se)
		}
	}
}

func (m *Mailer) deliver(se *scheduledEmail) {
	defer m.sem.Release(1)

	ctx := context.Background()
	rawConn, err := dial(ctx, &m.cfg)
	if err != nil {
		m.diag.MaybeMinorError(err)
		se.future.complete(err)
		return
	}

	p := newPipeline(rawConn, &m.cfg, se.email, m.txLogger, m.diag)
	err = p.run(ctx)
	if err != nil {
		m.diag.MaybeMinorError(err)
	}
	se.future.complete(err)
}
