package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendOnceNewConversation(t *testing.T) {
	transport := newStubTransport()
	ctrl := newTestController(t, transport)

	reply, id, err := sendOnce(ctrl, "", "hello")
	require.NoError(t, err)

	assert.Equal(t, "echo: hello", reply)
	assert.Equal(t, "42", id.String())
}

func TestSendOnceExistingConversation(t *testing.T) {
	transport := newStubTransport()
	ctrl := newTestController(t, transport)

	reply, id, err := sendOnce(ctrl, "7", "more")
	require.NoError(t, err)

	assert.Equal(t, "echo: more", reply)
	assert.Equal(t, "7", id.String())
	require.Len(t, transport.sent, 1)
	assert.Equal(t, "7", transport.sent[0].ConversationID.String())
}

func TestSendOnceErrors(t *testing.T) {
	t.Run("empty message", func(t *testing.T) {
		ctrl := newTestController(t, newStubTransport())
		_, _, err := sendOnce(ctrl, "", "   ")
		assert.EqualError(t, err, "message is empty")
	})

	t.Run("send fails", func(t *testing.T) {
		transport := newStubTransport()
		transport.failSend = true
		ctrl := newTestController(t, transport)

		_, _, err := sendOnce(ctrl, "", "hello")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Could not connect")
	})

	t.Run("load fails", func(t *testing.T) {
		transport := newStubTransport()
		transport.failLoad = true
		ctrl := newTestController(t, transport)

		_, _, err := sendOnce(ctrl, "7", "hello")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "open conversation 7")
		assert.Empty(t, transport.sent)
	})
}
