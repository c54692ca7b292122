package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageStringRoundTrip(t *testing.T) {
	cases := []Message{
		{Kind: Initialize, Sender: 0},
		{Kind: Request, Sender: 2},
		{Kind: Privilege, Sender: 1},
		{Kind: Restart, Sender: 0},
		{Kind: Advise, Sender: 1, Payload: "4"},
	}
	for _, want := range cases {
		got, err := ParseMessage(want.String())
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestParseMessageTrimsTrailingWhitespace(t *testing.T) {
	msg, err := ParseMessage("REQUEST 2  \r\n")
	assert.NoError(t, err)
	assert.Equal(t, Message{Kind: Request, Sender: 2}, msg)
}

func TestParseMessageRejectsUnknownKind(t *testing.T) {
	_, err := ParseMessage("BOGUS 0")
	assert.Error(t, err)
}

func TestParseMessageRejectsBadSender(t *testing.T) {
	_, err := ParseMessage("REQUEST notanumber")
	assert.Error(t, err)
}

func TestParseMessageRejectsAdviseCodeOutOfRange(t *testing.T) {
	_, err := ParseMessage("ADVISE 1 5")
	assert.Error(t, err)
}

func TestParseMessageRejectsPayloadOnNonAdvise(t *testing.T) {
	_, err := ParseMessage("REQUEST 1 2")
	assert.Error(t, err)
}

func TestParseMessageRejectsTooFewFields(t *testing.T) {
	_, err := ParseMessage("REQUEST")
	assert.Error(t, err)
}

func TestMailboxName(t *testing.T) {
	assert.Equal(t, "node_0", MailboxName(0))
	assert.Equal(t, "node_12", MailboxName(12))
}
