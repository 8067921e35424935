package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func TestBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	cfg := DefaultConfig("test")
	cfg.ConsecutiveFailures = 3
	cfg.Timeout = time.Hour

	var transitions []gobreaker.State
	cfg.OnStateChange = func(_ string, _, to gobreaker.State) {
		transitions = append(transitions, to)
	}

	b := New[int](cfg)
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		if _, err := b.Execute(func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
			t.Fatalf("call %d: err = %v, want boom", i, err)
		}
	}

	if !b.IsOpen() {
		t.Fatalf("state = %s, want open", b.State())
	}

	_, err := b.Execute(func() (int, error) { return 1, nil })
	if !IsRejection(err) {
		t.Errorf("err = %v, want breaker rejection", err)
	}

	if len(transitions) != 1 || transitions[0] != gobreaker.StateOpen {
		t.Errorf("transitions = %v, want [open]", transitions)
	}
}

func TestBreaker_SuccessPassesThrough(t *testing.T) {
	b := New[string](DefaultConfig("ok"))

	got, err := b.Execute(func() (string, error) { return "book", nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "book" {
		t.Errorf("got %q, want book", got)
	}
	if b.Name() != "ok" {
		t.Errorf("Name = %q, want ok", b.Name())
	}
	if b.State() != gobreaker.StateClosed {
		t.Errorf("state = %s, want closed", b.State())
	}
}

func TestBreaker_IsSuccessfulIgnoresClassifiedErrors(t *testing.T) {
	benign := errors.New("benign")
	cfg := DefaultConfig("classified")
	cfg.ConsecutiveFailures = 1
	cfg.IsSuccessful = func(err error) bool { return err == nil || errors.Is(err, benign) }

	b := New[int](cfg)
	for i := 0; i < 3; i++ {
		b.Execute(func() (int, error) { return 0, benign })
	}

	if b.IsOpen() {
		t.Error("breaker tripped on errors classified as successful")
	}
}

func TestIsRejection(t *testing.T) {
	if IsRejection(errors.New("other")) {
		t.Error("plain error reported as rejection")
	}
	if !IsRejection(gobreaker.ErrTooManyRequests) {
		t.Error("ErrTooManyRequests not reported as rejection")
	}
}
