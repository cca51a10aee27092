package mocks

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/launchboard/admission-gateway/internal/core/domain/admission"
)

// MemoryStore is an in-memory CacheStore with real atomicity, used for
// deterministic concurrency tests. Now is swappable so tests can advance the
// clock past TTLs and window boundaries.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry

	// Now supplies the store's clock. Defaults to time.Now.
	Now func() time.Time
	// Err, when set, makes every operation fail with it (simulated outage).
	Err error
}

type memoryEntry struct {
	value     []byte
	counter   int64
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), Now: time.Now}
}

func (s *MemoryStore) live(key string) (memoryEntry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !e.expiresAt.IsZero() && !s.Now().Before(e.expiresAt) {
		delete(s.entries, key)
		return memoryEntry{}, false
	}
	return e, true
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, false, s.Err
	}
	e, ok := s.live(key)
	if !ok {
		return nil, false, nil
	}
	if e.value == nil {
		return []byte(strconv.FormatInt(e.counter, 10)), true, nil
	}
	return e.value, true, nil
}

func (s *MemoryStore) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	if _, ok := s.live(key); ok {
		return false, nil
	}
	s.entries[key] = memoryEntry{value: value, expiresAt: s.expiry(ttl)}
	return true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.entries[key] = memoryEntry{value: value, expiresAt: s.expiry(ttl)}
	return nil
}

func (s *MemoryStore) IncrWithExpiry(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	e, ok := s.live(key)
	if !ok {
		// TTL applies only on creation, matching the Redis script.
		e = memoryEntry{expiresAt: s.expiry(ttl)}
	}
	e.counter++
	s.entries[key] = e
	return e.counter, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.Now().Add(ttl)
}

// IdentityResolverMock is a lightweight mock for IdentityResolver
type IdentityResolverMock struct {
	ResolveFn func(r *admission.Request) admission.ClientIdentity
}

func (m *IdentityResolverMock) Resolve(r *admission.Request) admission.ClientIdentity {
	if m.ResolveFn != nil {
		return m.ResolveFn(r)
	}
	return admission.ClientIdentity{IP: r.ClientIP(), Tier: admission.TierAnonymous}
}

// ThreatDetectorMock is a lightweight mock for ThreatDetector
type ThreatDetectorMock struct {
	EvaluateFn func(ctx context.Context, identity admission.ClientIdentity, r *admission.Request) admission.ThreatVerdict
}

func (m *ThreatDetectorMock) Evaluate(ctx context.Context, identity admission.ClientIdentity, r *admission.Request) admission.ThreatVerdict {
	if m.EvaluateFn != nil {
		return m.EvaluateFn(ctx, identity, r)
	}
	return admission.ThreatVerdict{}
}

// RateLimiterMock is a lightweight mock for RateLimiter
type RateLimiterMock struct {
	CheckFn func(ctx context.Context, identity admission.ClientIdentity, r *admission.Request) admission.RateLimitResult
}

func (m *RateLimiterMock) Check(ctx context.Context, identity admission.ClientIdentity, r *admission.Request) admission.RateLimitResult {
	if m.CheckFn != nil {
		return m.CheckFn(ctx, identity, r)
	}
	return admission.RateLimitResult{Allowed: true, Limit: 100, Remaining: 99, ResetAt: time.Now().Add(time.Minute).Unix()}
}

// RequestValidatorMock is a lightweight mock for RequestValidator
type RequestValidatorMock struct {
	ValidateFn func(identity admission.ClientIdentity, r *admission.Request) []string
}

func (m *RequestValidatorMock) Validate(identity admission.ClientIdentity, r *admission.Request) []string {
	if m.ValidateFn != nil {
		return m.ValidateFn(identity, r)
	}
	return nil
}

// AdmissionServiceMock is a lightweight mock for AdmissionService
type AdmissionServiceMock struct {
	AdmitFn func(ctx context.Context, r *admission.Request) admission.Decision
}

func (m *AdmissionServiceMock) Admit(ctx context.Context, r *admission.Request) admission.Decision {
	if m.AdmitFn != nil {
		return m.AdmitFn(ctx, r)
	}
	return admission.Allow(nil)
}

// BlocklistAdminMock is a lightweight mock for BlocklistAdmin
type BlocklistAdminMock struct {
	GetBlockFn func(ctx context.Context, ip string) (*admission.BlockRecord, error)
	BlockFn    func(ctx context.Context, ip, reason string) (*admission.BlockRecord, error)
	UnblockFn  func(ctx context.Context, ip string) error
}

func (m *BlocklistAdminMock) GetBlock(ctx context.Context, ip string) (*admission.BlockRecord, error) {
	if m.GetBlockFn != nil {
		return m.GetBlockFn(ctx, ip)
	}
	return nil, nil
}
func (m *BlocklistAdminMock) Block(ctx context.Context, ip, reason string) (*admission.BlockRecord, error) {
	if m.BlockFn != nil {
		return m.BlockFn(ctx, ip, reason)
	}
	return &admission.BlockRecord{IP: ip, Reason: reason}, nil
}
func (m *BlocklistAdminMock) Unblock(ctx context.Context, ip string) error {
	if m.UnblockFn != nil {
		return m.UnblockFn(ctx, ip)
	}
	return nil
}

// ViolationRepositoryMock is a lightweight mock for ViolationRepository
type ViolationRepositoryMock struct {
	AppendFn      func(ctx context.Context, v *admission.Violation) error
	RecentFn      func(ctx context.Context, limit int) ([]*admission.Violation, error)
	CountHourFn   func(ctx context.Context, clientKey string) (int64, error)
	MarkAlertedFn func(ctx context.Context, clientKey string) (bool, error)
}

func (m *ViolationRepositoryMock) Append(ctx context.Context, v *admission.Violation) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, v)
	}
	return nil
}
func (m *ViolationRepositoryMock) Recent(ctx context.Context, limit int) ([]*admission.Violation, error) {
	if m.RecentFn != nil {
		return m.RecentFn(ctx, limit)
	}
	return nil, nil
}
func (m *ViolationRepositoryMock) CountHour(ctx context.Context, clientKey string) (int64, error) {
	if m.CountHourFn != nil {
		return m.CountHourFn(ctx, clientKey)
	}
	return 1, nil
}
func (m *ViolationRepositoryMock) MarkAlerted(ctx context.Context, clientKey string) (bool, error) {
	if m.MarkAlertedFn != nil {
		return m.MarkAlertedFn(ctx, clientKey)
	}
	return true, nil
}

// ViolationServiceMock is a lightweight mock for ViolationService
type ViolationServiceMock struct {
	RecordFn func(ctx context.Context, v *admission.Violation)
	RecentFn func(ctx context.Context, limit int) ([]*admission.Violation, error)
}

func (m *ViolationServiceMock) Record(ctx context.Context, v *admission.Violation) {
	if m.RecordFn != nil {
		m.RecordFn(ctx, v)
	}
}
func (m *ViolationServiceMock) Recent(ctx context.Context, limit int) ([]*admission.Violation, error) {
	if m.RecentFn != nil {
		return m.RecentFn(ctx, limit)
	}
	return nil, nil
}

// AlertSenderMock is a lightweight mock for AlertSender
type AlertSenderMock struct {
	SendAbuseAlertFn func(ctx context.Context, clientKey string, count int64) error
}

func (m *AlertSenderMock) SendAbuseAlert(ctx context.Context, clientKey string, count int64) error {
	if m.SendAbuseAlertFn != nil {
		return m.SendAbuseAlertFn(ctx, clientKey, count)
	}
	return nil
}
