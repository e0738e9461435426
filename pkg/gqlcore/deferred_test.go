package gqlcore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDeferredResolveDeliversValue(t *testing.T) {
	d := NewDeferred[int]()
	d.Resolve(42)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	v, err := d.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait() error = %v, want nil", err)
	}
	if v != 42 {
		t.Errorf("Wait() = %d, want 42", v)
	}
}

func TestDeferredRejectDeliversError(t *testing.T) {
	d := NewDeferred[int]()
	boom := errors.New("boom")
	d.Reject(boom)

	_, err := d.Wait(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("Wait() error = %v, want %v", err, boom)
	}
}

func TestDeferredFirstWriterWins(t *testing.T) {
	d := NewDeferred[int]()
	d.Resolve(1)
	d.Resolve(2)
	d.Reject(errors.New("too late"))

	v, err := d.Wait(context.Background())
	if err != nil || v != 1 {
		t.Errorf("Wait() = (%d, %v), want (1, nil) from the first Resolve", v, err)
	}
}

func TestDeferredWaitRespectsContextCancellation(t *testing.T) {
	d := NewDeferred[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Wait(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
}

func TestDeferredConcurrentResolveIsRaceFree(t *testing.T) {
	d := NewDeferred[int]()
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func(n int) {
			d.Resolve(n)
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}
	if _, err := d.Wait(context.Background()); err != nil {
		t.Errorf("Wait() error = %v, want nil", err)
	}
}
