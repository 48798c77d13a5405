package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instashare/instashare/internal/server/models"
)

func TestSMTPSender_SendsToOwner(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	s := NewSMTPSender("mail:1025", "no-reply@instashare.io")
	s.sendMail = func(addr, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	user := &models.User{Name: "Alice", Email: "alice@example.com"}
	err := s.NotifyOutcome(context.Background(), user, "report.pdf", OutcomeSuccess)
	require.NoError(t, err)

	assert.Equal(t, "mail:1025", gotAddr)
	assert.Equal(t, "no-reply@instashare.io", gotFrom)
	assert.Equal(t, []string{"alice@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Hi Alice,")
	assert.Contains(t, string(gotMsg), `"report.pdf"`)
	assert.Contains(t, string(gotMsg), "available to download by the community")
}

func TestSMTPSender_FailedOutcomeMessage(t *testing.T) {
	var gotMsg []byte

	s := NewSMTPSender("mail:1025", "no-reply@instashare.io")
	s.sendMail = func(addr, from string, to []string, msg []byte) error {
		gotMsg = msg
		return nil
	}

	user := &models.User{Name: "Bob", Email: "bob@example.com"}
	require.NoError(t, s.NotifyOutcome(context.Background(), user, "movie.avi", OutcomeFailed))

	assert.Contains(t, string(gotMsg), "failed the archiving/compression process")
	assert.Contains(t, string(gotMsg), "we encourage you to upload it again")
}

func TestSMTPSender_NoRecipient(t *testing.T) {
	s := NewSMTPSender("mail:1025", "no-reply@instashare.io")
	s.sendMail = func(addr, from string, to []string, msg []byte) error {
		t.Fatal("sendMail must not be called without a recipient")
		return nil
	}

	err := s.NotifyOutcome(context.Background(), nil, "report.pdf", OutcomeSuccess)
	assert.Error(t, err)

	err = s.NotifyOutcome(context.Background(), &models.User{Name: "Ghost"}, "report.pdf", OutcomeFailed)
	assert.Error(t, err)
}

func TestSMTPSender_PropagatesDeliveryError(t *testing.T) {
	s := NewSMTPSender("mail:1025", "no-reply@instashare.io")
	s.sendMail = func(addr, from string, to []string, msg []byte) error {
		return errors.New("connection refused")
	}

	user := &models.User{Name: "Eve", Email: "eve@example.com"}
	err := s.NotifyOutcome(context.Background(), user, "x.bin", OutcomeFailed)
	assert.ErrorContains(t, err, "connection refused")
}
