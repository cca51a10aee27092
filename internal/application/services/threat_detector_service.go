package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/launchboard/admission-gateway/internal/core/domain/admission"
	"github.com/launchboard/admission-gateway/internal/core/ports"
)

const (
	blockKeyPrefix   = "block:"
	anomalyKeyPrefix = "anomaly:"
)

// ThreatDetectorService runs the ordered threat checks: blocklist, burst
// anomaly, bot signature, attack patterns. The first match wins.
//
// Anomaly and attack hits escalate to an IP-wide, time-boxed block so one
// detector hit protects subsequent requests without repeating pattern work.
// Bot hits do not escalate: shared-UA legitimate clients exist, so a soft
// per-request signal bounds the false-positive blast radius.
type ThreatDetectorService struct {
	store  ports.CacheStore
	cfg    *admission.Config
	logger *logrus.Logger
	now    func() time.Time
}

func NewThreatDetectorService(store ports.CacheStore, cfg *admission.Config, logger *logrus.Logger) *ThreatDetectorService {
	return &ThreatDetectorService{store: store, cfg: cfg, logger: logger, now: time.Now}
}

func (s *ThreatDetectorService) Evaluate(ctx context.Context, identity admission.ClientIdentity, r *admission.Request) admission.ThreatVerdict {
	ip := identity.IP

	// Cheapest check first: an existing block short-circuits everything.
	if rec := s.activeBlock(ctx, ip); rec != nil {
		return admission.ThreatVerdict{Blocked: true, Reason: rec.Reason}
	}

	if verdict, hit := s.checkBurst(ctx, ip); hit {
		return verdict
	}

	if verdict, hit := s.checkBotSignature(ip, r.UserAgent); hit {
		return verdict
	}

	if verdict, hit := s.checkAttackPatterns(ctx, ip, r); hit {
		return verdict
	}

	return admission.ThreatVerdict{}
}

// activeBlock returns the unexpired BlockRecord for ip, if any. Store errors
// fail open: the request proceeds to the remaining checks.
func (s *ThreatDetectorService) activeBlock(ctx context.Context, ip string) *admission.BlockRecord {
	data, ok, err := s.store.Get(ctx, blockKeyPrefix+ip)
	if err != nil {
		if s.logger != nil {
			s.logger.WithField("ip", ip).WithError(err).Warn("threat detector: blocklist read failed; skipping check")
		}
		return nil
	}
	if !ok {
		return nil
	}
	var rec admission.BlockRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		if s.logger != nil {
			s.logger.WithField("ip", ip).WithError(err).Warn("threat detector: corrupt block record; ignoring")
		}
		return nil
	}
	if rec.Expired(s.now()) {
		return nil
	}
	return &rec
}

func (s *ThreatDetectorService) checkBurst(ctx context.Context, ip string) (admission.ThreatVerdict, bool) {
	minute := s.now().Unix() / 60
	key := fmt.Sprintf("%s%s:%d", anomalyKeyPrefix, ip, minute)
	// TTL is twice the bucket width so a bucket outlives its own minute
	// without needing a sliding window.
	count, err := s.store.IncrWithExpiry(ctx, key, 2*time.Minute)
	if err != nil {
		if s.logger != nil {
			s.logger.WithField("ip", ip).WithError(err).Warn("threat detector: anomaly counter unavailable; skipping check")
		}
		return admission.ThreatVerdict{}, false
	}
	if count > int64(s.cfg.SuspiciousThreshold) {
		s.block(ctx, ip, admission.ReasonExcessiveRate)
		return admission.ThreatVerdict{Blocked: true, Reason: admission.ReasonExcessiveRate}, true
	}
	return admission.ThreatVerdict{}, false
}

func (s *ThreatDetectorService) checkBotSignature(ip, userAgent string) (admission.ThreatVerdict, bool) {
	ua := strings.ToLower(userAgent)
	if ua == "" {
		return admission.ThreatVerdict{}, false
	}
	matched := false
	for _, sig := range s.cfg.BotSignatures {
		if strings.Contains(ua, sig) {
			matched = true
			break
		}
	}
	if !matched {
		return admission.ThreatVerdict{}, false
	}
	for _, crawler := range s.cfg.CrawlerAllowlist {
		if strings.Contains(ua, crawler) {
			return admission.ThreatVerdict{}, false
		}
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"ip": ip, "user_agent": userAgent}).Info("threat detector: bot-like user agent rejected")
	}
	return admission.ThreatVerdict{Blocked: true, Reason: admission.ReasonBotBehavior}, true
}

func (s *ThreatDetectorService) checkAttackPatterns(ctx context.Context, ip string, r *admission.Request) (admission.ThreatVerdict, bool) {
	haystacks := make([]string, 0, 1+len(r.Query))
	haystacks = append(haystacks, strings.ToLower(r.Path))
	for _, values := range r.Query {
		for _, v := range values {
			haystacks = append(haystacks, strings.ToLower(v))
		}
	}
	for _, rule := range s.cfg.AttackPatterns {
		for _, h := range haystacks {
			if strings.Contains(h, rule.Signature) {
				if s.logger != nil {
					s.logger.WithFields(logrus.Fields{
						"ip": ip, "path": r.Path, "kind": rule.Kind,
					}).Warn("threat detector: attack pattern matched")
				}
				s.block(ctx, ip, admission.ReasonAttackPattern)
				return admission.ThreatVerdict{Blocked: true, Reason: admission.ReasonAttackPattern}, true
			}
		}
	}
	return admission.ThreatVerdict{}, false
}

// block writes an IP-wide BlockRecord, overwriting any prior one and
// resetting its TTL. Best effort; a store failure only loses the escalation,
// not the per-request denial.
func (s *ThreatDetectorService) block(ctx context.Context, ip, reason string) {
	now := s.now()
	rec := admission.BlockRecord{
		IP:        ip,
		Reason:    reason,
		BlockedAt: now,
		ExpiresAt: now.Add(s.cfg.BlockDuration),
	}
	data, err := json.Marshal(rec)
	if err == nil {
		err = s.store.Set(ctx, blockKeyPrefix+ip, data, s.cfg.BlockDuration)
	}
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"ip": ip, "reason": reason}).WithError(err).Warn("threat detector: failed to persist block record")
		}
		return
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"ip": ip, "reason": reason, "expires_at": rec.ExpiresAt}).Warn("threat detector: ip blocked")
	}
}

// GetBlock returns the active block record for ip, or nil when none exists.
func (s *ThreatDetectorService) GetBlock(ctx context.Context, ip string) (*admission.BlockRecord, error) {
	data, ok, err := s.store.Get(ctx, blockKeyPrefix+ip)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var rec admission.BlockRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	if rec.Expired(s.now()) {
		return nil, nil
	}
	return &rec, nil
}

// Block creates a manual block record for ip.
func (s *ThreatDetectorService) Block(ctx context.Context, ip, reason string) (*admission.BlockRecord, error) {
	if reason == "" {
		reason = admission.ReasonManualBlock
	}
	now := s.now()
	rec := admission.BlockRecord{IP: ip, Reason: reason, BlockedAt: now, ExpiresAt: now.Add(s.cfg.BlockDuration)}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, blockKeyPrefix+ip, data, s.cfg.BlockDuration); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Unblock removes the block record for ip before its natural expiry.
func (s *ThreatDetectorService) Unblock(ctx context.Context, ip string) error {
	return s.store.Delete(ctx, blockKeyPrefix+ip)
}
