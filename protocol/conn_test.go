package protocol

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"
)

func TestConnRoundTrip(t *testing.T) {
	a, b := net.Pipe()
	host := NewConn(a)
	device := NewConn(b)
	defer host.Close()
	defer device.Close()

	payload := CommandFrame{Linear: 0.5, Angular: 0.1, Flags: CmdEnable}.Bytes()

	sent := make(chan uint8, 2)
	go func() {
		for i := 0; i < 2; i++ {
			seq, err := host.Send(payload)
			if err != nil {
				t.Errorf("Send failed: %v", err)
				return
			}
			sent <- seq
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for i := 0; i < 2; i++ {
		block, err := device.Receive(ctx)
		if err != nil {
			t.Fatalf("Receive failed: %v", err)
		}
		seq := <-sent
		if block.Sequence != seq {
			t.Errorf("Sequence mismatch: sent 0x%02X, received 0x%02X", seq, block.Sequence)
		}
		if !bytes.Equal(block.Payload, payload) {
			t.Errorf("Payload mismatch: %v", block.Payload)
		}
	}
}

func TestConnSequenceAdvances(t *testing.T) {
	a, b := net.Pipe()
	host := NewConn(a)
	device := NewConn(b)
	defer host.Close()
	defer device.Close()

	go func() {
		ctx := context.Background()
		for {
			if _, err := device.Receive(ctx); err != nil {
				return
			}
		}
	}()

	first, err := host.Send([]byte{1})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	second, err := host.Send([]byte{2})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if first != MessageDest || second != NextSequence(first) {
		t.Errorf("Unexpected sequences 0x%02X, 0x%02X", first, second)
	}
}

func TestConnReceiveContextTimeout(t *testing.T) {
	a, b := net.Pipe()
	conn := NewConn(a)
	defer conn.Close()
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := conn.Receive(ctx); err != context.DeadlineExceeded {
		t.Errorf("Expected DeadlineExceeded, got %v", err)
	}
}

func TestConnClosed(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()
	conn := NewConn(a)

	if err := conn.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	_ = conn.Close() // second close is a no-op

	if _, err := conn.Send([]byte{1}); err != ErrClosed {
		t.Errorf("Expected ErrClosed from Send, got %v", err)
	}
	if _, err := conn.Receive(context.Background()); err != ErrClosed {
		t.Errorf("Expected ErrClosed from Receive, got %v", err)
	}
}
