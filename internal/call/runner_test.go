package call

import (
	"context"
	"testing"
	"time"
)

func TestRunnerEndsCall(t *testing.T) {
	ended := make(chan Summary, 1)
	sess := NewSession(loadRegistry(t),
		WithConnectDelay(0),
		WithBudget(5*time.Millisecond),
		WithOnEnded(func(s Summary) { ended <- s }),
	)
	if err := sess.OpenPicker(); err != nil {
		t.Fatal(err)
	}
	if err := sess.SelectSubject("Mathematics"); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(sess, time.Millisecond)
	done := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(done)
	}()

	select {
	case <-ended:
	case <-time.After(time.Second):
		t.Fatal("call did not end")
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not exit after call ended")
	}
	if sess.State() != StateEnded {
		t.Errorf("state = %q, want %q", sess.State(), StateEnded)
	}
}

func TestRunnerStop(t *testing.T) {
	sess := NewSession(loadRegistry(t), WithConnectDelay(0))
	if err := sess.OpenPicker(); err != nil {
		t.Fatal(err)
	}
	if err := sess.SelectSubject("Physics"); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(sess, time.Millisecond)
	go r.Run(context.Background())
	r.Stop()

	if sess.State() == StateEnded {
		t.Error("stopping the runner must not end the call")
	}
}
