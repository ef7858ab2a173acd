package queue

import "testing"

func TestSetupSignalsReadyOncePerConsumer(t *testing.T) {
	c := &Consumer{ready: make(chan struct{})}
	h := &sessionHandler{consumer: c}

	// A rebalance runs Setup again on the same consumer; the second call must
	// not panic on an already-closed channel.
	if err := h.Setup(nil); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := h.Setup(nil); err != nil {
		t.Fatalf("Setup after rebalance: %v", err)
	}

	select {
	case <-c.ready:
	default:
		t.Fatal("ready channel not closed after Setup")
	}
}

func TestHandleSkipsBadMessages(t *testing.T) {
	h := &sessionHandler{consumer: &Consumer{}}

	cases := []struct {
		name    string
		payload string
	}{
		{"malformed json", `{not json`},
		{"failed upstream status", `{"uuid":"u1","script":"[HOOK] x","status":"failed"}`},
		{"empty script", `{"uuid":"u2","script":""}`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			mark, err := h.handle([]byte(c.payload))
			if err != nil {
				t.Fatalf("handle: %v", err)
			}
			if !mark {
				t.Fatal("bad message should be marked to avoid redelivery loops")
			}
		})
	}
}
