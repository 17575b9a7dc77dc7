package smtpkit

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewEmailFailsFastOnEmptyRecipients(t *testing.T) {
	_, err := NewEmail(Contact{Address: "s@e.com"}, nil, "subject", PlainBody("body"))
	if !errors.Is(err, ErrNoRecipients) {
		t.Fatalf("got %v, want ErrNoRecipients", err)
	}
}

func TestNewEmailFailsFastOnEmptySenderAddress(t *testing.T) {
	_, err := NewEmail(Contact{}, []Contact{{Address: "r@e.com"}}, "subject", PlainBody("body"))
	if !errors.Is(err, ErrEmptyContactAddress) {
		t.Fatalf("got %v, want ErrEmptyContactAddress", err)
	}
}

func TestAllRecipientsIncludesToCcBcc(t *testing.T) {
	email, err := NewEmail(Contact{Address: "s@e.com"}, []Contact{{Address: "to@e.com"}}, "subject", PlainBody("body"))
	if err != nil {
		t.Fatal(err)
	}
	email.WithCC(Contact{Address: "cc@e.com"}).WithBCC(Contact{Address: "bcc@e.com"})

	all := email.allRecipients()
	if len(all) != 3 {
		t.Fatalf("got %d recipients, want 3: %+v", len(all), all)
	}
	if all[0].Address != "to@e.com" || all[1].Address != "cc@e.com" || all[2].Address != "bcc@e.com" {
		t.Fatalf("unexpected order: %+v", all)
	}
}

func TestContactMIMEForm(t *testing.T) {
	cases := []struct {
		contact Contact
		want    string
	}{
		{Contact{Address: "a@e.com"}, "a@e.com"},
		{Contact{Address: "a@e.com", Name: "A Name"}, `"A Name" <a@e.com>`},
		{Contact{Address: "a@e.com", Name: `Quote"Name`}, `"Quote\"Name" <a@e.com>`},
	}
	for _, tc := range cases {
		if got := tc.contact.mimeForm(); got != tc.want {
			t.Errorf("got %q, want %q", got, tc.want)
		}
	}
}

func TestNewInlineAttachmentRequiresContentID(t *testing.T) {
	_, err := NewInlineAttachment("logo.png", "image/png", []byte{1}, "")
	if !errors.Is(err, ErrInlineAttachmentRequiresContentID) {
		t.Fatalf("got %v, want ErrInlineAttachmentRequiresContentID", err)
	}
}

func TestBccNeverAppearsInHeaders(t *testing.T) {
	email, err := NewEmail(Contact{Address: "s@e.com"}, []Contact{{Address: "to@e.com"}}, "subject", PlainBody("body"))
	if err != nil {
		t.Fatal(err)
	}
	email.WithBCC(Contact{Address: "secret@e.com"})

	payload := string(buildDataPayload(time.Unix(0, 0), email, 0))
	if strings.Contains(payload, "secret@e.com") {
		t.Fatalf("bcc address leaked into headers: %q", payload)
	}
}
