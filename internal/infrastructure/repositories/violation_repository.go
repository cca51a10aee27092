package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/launchboard/admission-gateway/internal/core/domain/admission"
)

const (
	recentViolationsKey = "violations:recent"
	violationCountKey   = "violations:count"
	violationAlertKey   = "violations:alerted"

	// The recent log is capped and time-boxed; it backs ops inspection and
	// alerting, not long-term analytics.
	recentViolationsCap = 200
	violationRetention  = time.Hour
)

// ViolationRedisRepository stores recent violations in a capped Redis list
// and per-client hourly counters for alert thresholds.
type ViolationRedisRepository struct {
	r      redis.Cmdable
	logger *logrus.Logger
}

func NewViolationRedisRepository(r redis.Cmdable, logger *logrus.Logger) *ViolationRedisRepository {
	return &ViolationRedisRepository{r: r, logger: logger}
}

// Append adds a violation to the recent log, trimming it to its cap and
// refreshing the retention TTL.
func (repo *ViolationRedisRepository) Append(ctx context.Context, v *admission.Violation) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	pipe := repo.r.TxPipeline()
	pipe.LPush(ctx, recentViolationsKey, data)
	pipe.LTrim(ctx, recentViolationsKey, 0, recentViolationsCap-1)
	pipe.Expire(ctx, recentViolationsKey, violationRetention)
	_, err = pipe.Exec(ctx)
	return err
}

// Recent returns up to limit of the newest violations, newest first.
func (repo *ViolationRedisRepository) Recent(ctx context.Context, limit int) ([]*admission.Violation, error) {
	if limit <= 0 || limit > recentViolationsCap {
		limit = recentViolationsCap
	}
	raw, err := repo.r.LRange(ctx, recentViolationsKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*admission.Violation, 0, len(raw))
	for _, item := range raw {
		var v admission.Violation
		if err := json.Unmarshal([]byte(item), &v); err != nil {
			if repo.logger != nil {
				repo.logger.WithError(err).Warn("skipping corrupt violation entry")
			}
			continue
		}
		out = append(out, &v)
	}
	return out, nil
}

// CountHour increments and returns the client's violation count for the
// current hour bucket.
func (repo *ViolationRedisRepository) CountHour(ctx context.Context, clientKey string) (int64, error) {
	bucket := time.Now().Unix() / 3600
	key := fmt.Sprintf("%s:%s:%d", violationCountKey, clientKey, bucket)
	pipe := repo.r.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, violationRetention)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// MarkAlerted records that an alert fired for the client's current hour
// bucket. Returns false when one already fired.
func (repo *ViolationRedisRepository) MarkAlerted(ctx context.Context, clientKey string) (bool, error) {
	bucket := time.Now().Unix() / 3600
	key := fmt.Sprintf("%s:%s:%d", violationAlertKey, clientKey, bucket)
	return repo.r.SetNX(ctx, key, "1", violationRetention).Result()
}
