package chunkstore

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrEmptyChunk          = errors.New("chunk data is empty")
	ErrTotalChunksInvalid  = errors.New("total chunks must be positive")
	ErrTotalChunksMismatch = errors.New("total chunks does not match session")
	ErrChunkIndexRange     = errors.New("chunk index out of range")
	ErrSessionCompleted    = errors.New("upload session already completed")
)

// Status is the result of placing one chunk. When Complete is true, Buffer
// holds the whole file and the session has already been evicted.
type Status struct {
	Complete bool
	Received int
	Total    int
	FileName string
	Buffer   []byte
}

type session struct {
	mu         sync.Mutex
	fileName   string
	total      int
	parts      [][]byte
	received   int
	completed  bool
	lastActive time.Time
}

// MemoryStore accumulates chunks per upload ID until a file is complete.
// Sessions for different upload IDs proceed independently; mutations within
// one session are serialized on the session mutex, so the completeness check
// can fire at most once.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
}

func New(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*session),
		ttl:      ttl,
	}
}

// Put places the chunk at index and reports reassembly progress. Re-sending
// an index overwrites the previous bytes without double-counting. When the
// last slot fills, chunks are concatenated in index order, the session is
// dropped, and the full buffer is returned.
func (s *MemoryStore) Put(uploadID, fileName string, index, totalChunks int, data []byte) (Status, error) {
	if len(data) == 0 {
		return Status{}, ErrEmptyChunk
	}
	if totalChunks <= 0 {
		return Status{}, ErrTotalChunksInvalid
	}
	if index < 0 || index >= totalChunks {
		return Status{}, ErrChunkIndexRange
	}

	s.mu.Lock()
	sess, ok := s.sessions[uploadID]
	if !ok {
		sess = &session{
			fileName:   fileName,
			total:      totalChunks,
			parts:      make([][]byte, totalChunks),
			lastActive: time.Now(),
		}
		s.sessions[uploadID] = sess
	}
	s.mu.Unlock()

	sess.mu.Lock()
	if sess.completed {
		// A duplicate resend raced the final chunk; the buffer is gone.
		sess.mu.Unlock()
		return Status{}, ErrSessionCompleted
	}
	if totalChunks != sess.total {
		sess.mu.Unlock()
		return Status{}, ErrTotalChunksMismatch
	}

	if sess.parts[index] == nil {
		sess.received++
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	sess.parts[index] = buf
	sess.lastActive = time.Now()

	if sess.received < sess.total {
		st := Status{Received: sess.received, Total: sess.total, FileName: sess.fileName}
		sess.mu.Unlock()
		return st, nil
	}

	sess.completed = true
	size := 0
	for _, p := range sess.parts {
		size += len(p)
	}
	full := make([]byte, 0, size)
	for _, p := range sess.parts {
		full = append(full, p...)
	}
	fileName = sess.fileName
	total := sess.total
	sess.parts = nil
	sess.mu.Unlock()

	s.mu.Lock()
	delete(s.sessions, uploadID)
	s.mu.Unlock()

	return Status{Complete: true, Received: total, Total: total, FileName: fileName, Buffer: full}, nil
}

// Len reports how many sessions are currently buffered.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle longer than the store TTL and returns how many
// were dropped. Abandoned uploads would otherwise hold their buffers forever.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := now.Sub(sess.lastActive)
		sess.mu.Unlock()
		if idle > s.ttl {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}
