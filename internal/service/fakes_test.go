package service

import (
	"context"
	"errors"
	"sync"

	"bacheliers/internal/models"
	"bacheliers/internal/repository"
	"bacheliers/pkg/payment"
)

// spyStore wraps the in-memory store and counts mutating calls.
type spyStore struct {
	*repository.MemoryRegistrationStore
	mu       sync.Mutex
	writes   int
	failNext error
}

func newSpyStore() *spyStore {
	return &spyStore{MemoryRegistrationStore: repository.NewMemoryRegistrationStore()}
}

func (s *spyStore) takeFailure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.failNext
	s.failNext = nil
	return err
}

func (s *spyStore) count() {
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
}

func (s *spyStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *spyStore) Merge(ctx context.Context, identity string, fields models.Fields) error {
	if err := s.takeFailure(); err != nil {
		return err
	}
	s.count()
	return s.MemoryRegistrationStore.Merge(ctx, identity, fields)
}

func (s *spyStore) Update(ctx context.Context, identity string, fields models.Fields) error {
	if err := s.takeFailure(); err != nil {
		return err
	}
	s.count()
	return s.MemoryRegistrationStore.Update(ctx, identity, fields)
}

func (s *spyStore) Transact(ctx context.Context, identity string, fn func(r *models.Registration) (models.Fields, error)) error {
	if err := s.takeFailure(); err != nil {
		return err
	}
	s.count()
	return s.MemoryRegistrationStore.Transact(ctx, identity, fn)
}

type sentMail struct {
	To, Subject, HTML string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, html string) SendResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return SendResult{Reason: "smtp down"}
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, HTML: html})
	return SendResult{Success: true}
}

func (m *fakeMailer) Sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

type pushed struct {
	Identity string
	Payload  interface{}
}

type fakeHub struct {
	mu     sync.Mutex
	pushes []pushed
}

func (h *fakeHub) BroadcastToUser(identity string, payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pushes = append(h.pushes, pushed{Identity: identity, Payload: payload})
}

type fakeProvider struct {
	resp *payment.PaymentResponse
	err  error
	reqs []payment.PaymentRequest
}

func (p *fakeProvider) Name() string { return "stub" }

func (p *fakeProvider) InitiatePayment(ctx context.Context, req payment.PaymentRequest) (*payment.PaymentResponse, error) {
	p.reqs = append(p.reqs, req)
	if p.err != nil {
		return nil, p.err
	}
	return p.resp, nil
}

var errStoreDown = errors.New("store unavailable")
