package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"bacheliers/internal/models"
)

// MemoryRegistrationStore keeps documents in process memory. Used for local runs and tests.
type MemoryRegistrationStore struct {
	mu   sync.Mutex
	docs map[string]map[string]interface{}
	now  func() time.Time
}

func NewMemoryRegistrationStore() *MemoryRegistrationStore {
	return &MemoryRegistrationStore{
		docs: make(map[string]map[string]interface{}),
		now:  time.Now,
	}
}

func (s *MemoryRegistrationStore) Get(ctx context.Context, identity string) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[identity]
	if !ok {
		return nil, ErrNotFound
	}
	return decodeDoc(doc)
}

func (s *MemoryRegistrationStore) FindByCorrelation(ctx context.Context, correlationID string) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range s.docs {
		if v, _ := doc[models.FieldCorrelationID].(string); v != "" && v == correlationID {
			return decodeDoc(doc)
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryRegistrationStore) Merge(ctx context.Context, identity string, fields models.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[identity]
	now := s.now()
	if !ok {
		doc = map[string]interface{}{models.FieldCreatedAt: now}
		s.docs[identity] = doc
	}
	s.apply(doc, fields, now)
	doc[models.FieldIdentity] = identity
	return nil
}

func (s *MemoryRegistrationStore) Update(ctx context.Context, identity string, fields models.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[identity]
	if !ok {
		return ErrNotFound
	}
	s.apply(doc, fields, s.now())
	return nil
}

func (s *MemoryRegistrationStore) Transact(ctx context.Context, identity string, fn func(r *models.Registration) (models.Fields, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[identity]
	if !ok {
		return ErrNotFound
	}
	reg, err := decodeDoc(doc)
	if err != nil {
		return err
	}
	fields, err := fn(reg)
	if err != nil {
		return err
	}
	if len(fields) > 0 {
		s.apply(doc, fields, s.now())
	}
	return nil
}

// Len returns the number of stored documents.
func (s *MemoryRegistrationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

func (s *MemoryRegistrationStore) apply(doc map[string]interface{}, fields models.Fields, now time.Time) {
	for k, v := range fields {
		doc[k] = v
	}
	doc[models.FieldUpdatedAt] = now
}

func decodeDoc(doc map[string]interface{}) (*models.Registration, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var reg models.Registration
	if err := json.Unmarshal(raw, &reg); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &reg, nil
}

// MemoryEventLog keeps webhook deliveries in memory.
type MemoryEventLog struct {
	mu     sync.Mutex
	events []models.PaymentEvent
}

func NewMemoryEventLog() *MemoryEventLog {
	return &MemoryEventLog{}
}

func (l *MemoryEventLog) Record(ctx context.Context, e *models.PaymentEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.ID = uint(len(l.events) + 1)
	l.events = append(l.events, *e)
	return nil
}

// Events returns a copy of the recorded events in delivery order.
func (l *MemoryEventLog) Events() []models.PaymentEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.PaymentEvent, len(l.events))
	copy(out, l.events)
	return out
}
