package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subject string
	data    []byte
	pubErr  error
	flushed bool
	closed  bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.subject, f.data = subject, data
	return f.pubErr
}

func (f *fakeConn) FlushWithContext(context.Context) error {
	f.flushed = true
	return nil
}

func (f *fakeConn) Close() { f.closed = true }

func TestNATSNotifier_Publish(t *testing.T) {
	conn := &fakeConn{}
	n := newNATSNotifier(conn, "")

	err := n.Publish(t.Context(), BuildEvent{
		InvocationID:   "abc",
		Event:          "after:deploy:createDeploymentArtifacts",
		Service:        "myservice",
		Artifact:       "/svc/.serverless/myservice.zip",
		Status:         "success",
		FunctionsBuilt: 2,
		DurationMS:     1200,
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultSubject, conn.subject)
	assert.True(t, conn.flushed)

	var got map[string]any
	require.NoError(t, json.Unmarshal(conn.data, &got))
	assert.Equal(t, "abc", got["invocation_id"])
	assert.Equal(t, "/svc/.serverless/myservice.zip", got["artifact"])
	assert.InDelta(t, 2, got["functions_built"], 0)
	assert.NotContains(t, got, "function")
	assert.NotContains(t, got, "error")
	assert.NotEmpty(t, got["timestamp"])

	require.NoError(t, n.Close())
	assert.True(t, conn.closed)
}

func TestNATSNotifier_PublishError(t *testing.T) {
	conn := &fakeConn{pubErr: errors.New("nats: connection closed")}
	n := newNATSNotifier(conn, "ci.cljs")

	err := n.Publish(t.Context(), BuildEvent{InvocationID: "x", Timestamp: time.Now()})
	require.Error(t, err)
	assert.Equal(t, "ci.cljs", conn.subject)
	assert.False(t, conn.flushed)
}

func TestNewNATSNotifier_Unreachable(t *testing.T) {
	_, err := NewNATSNotifier("nats://127.0.0.1:1", "")
	require.Error(t, err)
}

func TestNoopNotifier(t *testing.T) {
	var n Notifier = NoopNotifier{}
	require.NoError(t, n.Publish(t.Context(), BuildEvent{}))
	require.NoError(t, n.Close())
}
