package chunkstore

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestPutOutOfOrderRoundTrip(t *testing.T) {
	store := New(time.Hour)
	parts := [][]byte{[]byte("aaaa"), []byte("bbbb"), []byte("cc")}

	for _, idx := range []int{2, 0, 1} {
		st, err := store.Put("up-1", "file.png", idx, len(parts), parts[idx])
		if err != nil {
			t.Fatalf("put chunk %d failed: %v", idx, err)
		}
		if idx == 1 {
			if !st.Complete {
				t.Fatalf("expected completion on the last missing chunk")
			}
			want := bytes.Join(parts, nil)
			if !bytes.Equal(st.Buffer, want) {
				t.Fatalf("reassembled buffer mismatch: got %q want %q", st.Buffer, want)
			}
			if st.FileName != "file.png" {
				t.Fatalf("unexpected file name %q", st.FileName)
			}
		} else if st.Complete {
			t.Fatalf("unexpected completion after chunk %d", idx)
		}
	}

	if store.Len() != 0 {
		t.Fatalf("expected session to be evicted after completion, %d left", store.Len())
	}
}

func TestPutIdempotentResend(t *testing.T) {
	store := New(time.Hour)

	if _, err := store.Put("up-1", "f", 0, 3, []byte("old")); err != nil {
		t.Fatalf("first put failed: %v", err)
	}
	st, err := store.Put("up-1", "f", 0, 3, []byte("new"))
	if err != nil {
		t.Fatalf("resend failed: %v", err)
	}
	if st.Received != 1 {
		t.Fatalf("resend double-counted: received = %d", st.Received)
	}

	if _, err := store.Put("up-1", "f", 1, 3, []byte("mid")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	final, err := store.Put("up-1", "f", 2, 3, []byte("end"))
	if err != nil {
		t.Fatalf("final put failed: %v", err)
	}
	if !final.Complete {
		t.Fatalf("expected completion")
	}
	if !bytes.Equal(final.Buffer, []byte("newmidend")) {
		t.Fatalf("resend did not overwrite: got %q", final.Buffer)
	}
}

func TestPutValidation(t *testing.T) {
	store := New(time.Hour)

	if _, err := store.Put("up-1", "f", 0, 2, nil); !errors.Is(err, ErrEmptyChunk) {
		t.Fatalf("expected ErrEmptyChunk, got %v", err)
	}
	if _, err := store.Put("up-1", "f", 0, 0, []byte("x")); !errors.Is(err, ErrTotalChunksInvalid) {
		t.Fatalf("expected ErrTotalChunksInvalid, got %v", err)
	}
	if _, err := store.Put("up-1", "f", 2, 2, []byte("x")); !errors.Is(err, ErrChunkIndexRange) {
		t.Fatalf("expected ErrChunkIndexRange, got %v", err)
	}
	if _, err := store.Put("up-1", "f", -1, 2, []byte("x")); !errors.Is(err, ErrChunkIndexRange) {
		t.Fatalf("expected ErrChunkIndexRange for negative index, got %v", err)
	}
}

func TestPutTotalChunksMismatchKeepsSession(t *testing.T) {
	store := New(time.Hour)

	if _, err := store.Put("up-1", "f", 0, 3, []byte("a")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if _, err := store.Put("up-1", "f", 1, 4, []byte("b")); !errors.Is(err, ErrTotalChunksMismatch) {
		t.Fatalf("expected ErrTotalChunksMismatch, got %v", err)
	}

	// The session survives with its original shape.
	st, err := store.Put("up-1", "f", 1, 3, []byte("b"))
	if err != nil {
		t.Fatalf("put after mismatch failed: %v", err)
	}
	if st.Received != 2 || st.Total != 3 {
		t.Fatalf("unexpected session state: received=%d total=%d", st.Received, st.Total)
	}
}

func TestSessionsIndependent(t *testing.T) {
	store := New(time.Hour)

	if _, err := store.Put("up-a", "a", 0, 2, []byte("a0")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if _, err := store.Put("up-b", "b", 0, 1, []byte("b0")); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	st, err := store.Put("up-a", "a", 1, 2, []byte("a1"))
	if err != nil || !st.Complete {
		t.Fatalf("expected up-a to complete: %v", err)
	}
	if !bytes.Equal(st.Buffer, []byte("a0a1")) {
		t.Fatalf("cross-session contamination: %q", st.Buffer)
	}
}

func TestConcurrentFinalChunkCompletesOnce(t *testing.T) {
	store := New(time.Hour)

	if _, err := store.Put("up-1", "f", 0, 2, []byte("head")); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	const senders = 16
	var wg sync.WaitGroup
	completions := make(chan Status, senders)
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st, err := store.Put("up-1", "f", 1, 2, []byte("tail"))
			if err == nil && st.Complete {
				completions <- st
			}
		}()
	}
	wg.Wait()
	close(completions)

	count := 0
	for st := range completions {
		count++
		if !bytes.Equal(st.Buffer, []byte("headtail")) {
			t.Fatalf("unexpected buffer %q", st.Buffer)
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one completion, got %d", count)
	}
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	store := New(30 * time.Minute)

	if _, err := store.Put("stale", "f", 0, 2, []byte("x")); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	if n := store.Sweep(time.Now()); n != 0 {
		t.Fatalf("fresh session evicted: %d", n)
	}
	if n := store.Sweep(time.Now().Add(31 * time.Minute)); n != 1 {
		t.Fatalf("expected one eviction, got %d", n)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store after sweep")
	}
}
