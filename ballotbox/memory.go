package ballotbox

import (
	"context"
	"sync"
)

// MemoryStorage keeps everything in a map, for tests and dry runs.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []*Record          // cast order, nil where replaced
	byCred  map[string]int     // credential -> index in records
	byTrack map[string]*Record // tracker -> live record
	seen    map[string]bool    // every tracker ever stored
}

var _ Storage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{byCred: map[string]int{}, byTrack: map[string]*Record{}, seen: map[string]bool{}}
}

func (m *MemoryStorage) Put(ctx context.Context, rec *Record) (replaced string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[rec.Tracker] {
		return "", ErrDuplicateBallot
	}
	if i, ok := m.byCred[rec.Credential]; ok {
		replaced = m.records[i].Tracker
		delete(m.byTrack, replaced)
		m.records[i] = nil
	}
	cp := *rec
	m.seen[rec.Tracker] = true
	m.byCred[rec.Credential] = len(m.records)
	m.byTrack[rec.Tracker] = &cp
	m.records = append(m.records, &cp)
	return replaced, nil
}

func (m *MemoryStorage) Get(ctx context.Context, tracker string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rec, ok := m.byTrack[tracker]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, ErrBallotMissing
}

func (m *MemoryStorage) Each(ctx context.Context, fn func(*Record) error) error {
	m.mu.RLock()
	live := make([]*Record, 0, len(m.byCred))
	for _, rec := range m.records {
		if rec != nil {
			live = append(live, rec)
		}
	}
	m.mu.RUnlock()
	for _, rec := range live {
		if err := ctx.Err(); err != nil {
			return err
		}
		cp := *rec
		if err := fn(&cp); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryStorage) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byCred), nil
}

func (m *MemoryStorage) Close() error {
	return nil
}
