package realtime

import (
	"context"
	"errors"
	"sort"
	"sync"
)

type Memory struct {
	mu   sync.RWMutex
	recs map[string]ExtendedTransaction
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{recs: make(map[string]ExtendedTransaction)}
}

func (m *Memory) Upsert(ctx context.Context, et ExtendedTransaction) error {
	if et.TransactionID == "" {
		return errors.New("upsert: transaction id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[et.TransactionID] = et
	return nil
}

func (m *Memory) Get(ctx context.Context, transactionID string) (ExtendedTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	et, ok := m.recs[transactionID]
	if !ok {
		return ExtendedTransaction{}, ErrNotFound
	}
	return et, nil
}

func (m *Memory) ListByAccount(ctx context.Context, accountID int64) ([]ExtendedTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ExtendedTransaction
	for _, et := range m.recs {
		if et.AccountID == accountID {
			out = append(out, et)
		}
	}
	// Transaction ids are ULIDs, so this is execution order.
	sort.Slice(out, func(i, j int) bool { return out[i].TransactionID < out[j].TransactionID })
	return out, nil
}

func (m *Memory) Close() error { return nil }
