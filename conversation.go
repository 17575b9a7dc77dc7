package smtpkit

import "time"

type convState int

const (
	stateIdle convState = iota
	stateHelloSent
	stateStartTLSSent
	stateAuthBegan
	stateUsernameSent
	statePasswordSent
	stateMailFromSent
	stateRecipientSent
	stateDataCommandSent
	stateMailDataSent
	stateQuitSent
	stateDone
)

// conversation is the client-side SMTP state machine. Given the terminal
// response that just arrived, next returns the next command to send. It never
// inspects response success/failure itself — the pipeline decides whether a
// failure aborts the submission before calling next again — except for the
// one state (stateStartTLSSent) where the pipeline must act on the outcome
// before conversation.next runs, since it changes what "next" means.
type conversation struct {
	cfg          *Configuration
	email        *Email
	now          time.Time
	state        convState
	recipients   []Contact
	recipientIdx int
	startTLSDone bool
}

func newConversation(cfg *Configuration, email *Email, now time.Time) *conversation {
	return &conversation{cfg: cfg, email: email, now: now, state: stateIdle, recipients: email.allRecipients()}
}

// next advances the state machine and returns the command to send. closeAfter
// is true once the submission has nothing left to send and the connection
// should be closed.
func (c *conversation) next() (cmd []byte, closeAfter bool) {
	switch c.state {
	case stateIdle:
		c.state = stateHelloSent
		return encodeHello(c.cfg.Server.Hostname, c.cfg.FeatureFlags.Has(FeatureUseESMTP)), false

	case stateHelloSent:
		if c.cfg.Server.Encryption.IsStartTLS() && !c.startTLSDone {
			c.state = stateStartTLSSent
			return encodeStartTLS(), false
		}
		if c.cfg.Credentials != nil {
			c.state = stateAuthBegan
			return encodeBeginAuth(), false
		}
		c.state = stateMailFromSent
		return encodeMailFrom(c.email.Sender.Address), false

	case stateStartTLSSent:
		c.startTLSDone = true
		c.state = stateHelloSent
		return encodeHello(c.cfg.Server.Hostname, c.cfg.FeatureFlags.Has(FeatureUseESMTP)), false

	case stateAuthBegan:
		c.state = stateUsernameSent
		return encodeAuthCredential(c.cfg.Credentials.Username, c.cfg.FeatureFlags), false

	case stateUsernameSent:
		c.state = statePasswordSent
		return encodeAuthCredential(c.cfg.Credentials.Password, c.cfg.FeatureFlags), false

	case statePasswordSent:
		c.state = stateMailFromSent
		return encodeMailFrom(c.email.Sender.Address), false

	case stateMailFromSent:
		c.state = stateRecipientSent
		c.recipientIdx = 0
		return encodeRecipient(c.recipients[c.recipientIdx].Address), false

	case stateRecipientSent:
		c.recipientIdx++
		if c.recipientIdx < len(c.recipients) {
			return encodeRecipient(c.recipients[c.recipientIdx].Address), false
		}
		c.state = stateDataCommandSent
		return encodeData(), false

	case stateDataCommandSent:
		c.state = stateMailDataSent
		payload := buildDataPayload(c.now, c.email, c.cfg.FeatureFlags)
		return append(payload, []byte("\r\n.\r\n")...), false

	case stateMailDataSent:
		c.state = stateQuitSent
		return encodeQuit(), false

	default: // stateQuitSent, stateDone
		c.state = stateDone
		return nil, true
	}
}
