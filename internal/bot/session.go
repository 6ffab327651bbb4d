package bot

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// DialogStore keeps a user's multi-step conversation between updates.
type DialogStore interface {
	SaveDialog(ctx context.Context, userID int64, state string, ttl time.Duration) error
	LoadDialog(ctx context.Context, userID int64) (string, error)
	ClearDialog(ctx context.Context, userID int64) error
}

// RateLimiter bounds how many updates one user may send per window.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type step string

const (
	stepZone    step = "zone"
	stepAddress step = "address"
	stepPhone   step = "phone"
	stepConfirm step = "confirm"
)

// dialog is the checkout conversation state.
type dialog struct {
	Step    step   `json:"step"`
	Zone    string `json:"zone,omitempty"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Comment string `json:"comment,omitempty"`
}

func (b *Bot) loadDialog(ctx context.Context, userID int64) (*dialog, error) {
	raw, err := b.dialogs.LoadDialog(ctx, userID)
	if err != nil || raw == "" {
		return nil, err
	}
	var d dialog
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		// Unreadable state is dropped rather than trapping the user.
		_ = b.dialogs.ClearDialog(ctx, userID)
		return nil, nil
	}
	return &d, nil
}

func (b *Bot) saveDialog(ctx context.Context, userID int64, d *dialog) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return b.dialogs.SaveDialog(ctx, userID, string(raw), b.dialogTTL)
}

// MemoryDialogs is a process-local DialogStore for running without Redis.
type MemoryDialogs struct {
	mu      sync.Mutex
	entries map[int64]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	state   string
	expires time.Time
}

func NewMemoryDialogs() *MemoryDialogs {
	return &MemoryDialogs{entries: make(map[int64]memoryEntry), now: time.Now}
}

func (m *MemoryDialogs) SaveDialog(_ context.Context, userID int64, state string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := memoryEntry{state: state}
	if ttl > 0 {
		entry.expires = m.now().Add(ttl)
	}
	m.entries[userID] = entry
	return nil
}

func (m *MemoryDialogs) LoadDialog(_ context.Context, userID int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[userID]
	if !ok {
		return "", nil
	}
	if !entry.expires.IsZero() && m.now().After(entry.expires) {
		delete(m.entries, userID)
		return "", nil
	}
	return entry.state, nil
}

func (m *MemoryDialogs) ClearDialog(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, userID)
	return nil
}
