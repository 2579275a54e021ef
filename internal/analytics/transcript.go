package analytics

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vinodismyname/hrpulse/config"
)

// Exchange is one question and the answer given to it.
type Exchange struct {
	Question string    `json:"question"`
	Topic    string    `json:"topic"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"asked_at"`
}

// Transcript is the append-only history of one conversation. Exchanges are
// never edited; once a transcript exceeds its store's cap the oldest ones
// are dropped.
type Transcript struct {
	ID        string
	Exchanges []Exchange
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TranscriptStore keeps transcripts in memory, each capped at maxKeep recent
// exchanges (HRPULSE_TRANSCRIPT_MAX). Answers never depend on it; it only
// records what was asked. It is safe for concurrent access.
type TranscriptStore struct {
	mu          sync.RWMutex
	transcripts map[string]*Transcript
	maxKeep     int // max exchanges kept per transcript
	clock       func() time.Time
}

// NewTranscriptStore keeps up to maxKeep exchanges per transcript;
// non-positive values fall back to config.DefaultTranscriptMaxExchanges.
func NewTranscriptStore(maxKeep int) *TranscriptStore {
	if maxKeep <= 0 {
		maxKeep = config.DefaultTranscriptMaxExchanges
	}
	return &TranscriptStore{
		transcripts: make(map[string]*Transcript),
		maxKeep:     maxKeep,
		clock:       time.Now,
	}
}

// Append records an exchange under id, creating a transcript when id is empty
// or unknown. It returns the transcript id and the number of exchanges kept.
func (s *TranscriptStore) Append(id string, ex Exchange) (string, int) {
	now := s.clock()
	if ex.AskedAt.IsZero() {
		ex.AskedAt = now
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transcripts[id]
	if !ok {
		if id == "" {
			id = uuid.NewString()
		}
		t = &Transcript{ID: id, CreatedAt: now}
		s.transcripts[id] = t
	}
	t.UpdatedAt = now
	t.Exchanges = append(t.Exchanges, ex)
	if len(t.Exchanges) > s.maxKeep {
		t.Exchanges = t.Exchanges[len(t.Exchanges)-s.maxKeep:]
	}
	return id, len(t.Exchanges)
}

// History returns a copy of the exchanges recorded under id.
func (s *TranscriptStore) History(id string) ([]Exchange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transcripts[id]
	if !ok {
		return nil, false
	}
	out := make([]Exchange, len(t.Exchanges))
	copy(out, t.Exchanges)
	return out, true
}
