package hashapi

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// RetryPolicy configures WithRetry. Attempts counts the first call, so 1
// disables retrying.
type RetryPolicy struct {
	Attempts int
	Base     time.Duration
	Max      time.Duration
}

// WithRetry wraps next so transport faults are retried with exponential
// backoff. Rejections are returned at once: asking again gets the same
// answer. With Attempts <= 1 next is returned unchanged.
func WithRetry(next Service, policy RetryPolicy, logger *zap.Logger) Service {
	if policy.Attempts <= 1 {
		return next
	}
	if policy.Base <= 0 {
		policy.Base = 200 * time.Millisecond
	}
	if policy.Max <= 0 {
		policy.Max = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &retrying{next: next, policy: policy, logger: logger}
}

type retrying struct {
	next   Service
	policy RetryPolicy
	logger *zap.Logger
}

func (r *retrying) Generate(ctx context.Context, req GenerateRequest) (HashResult, error) {
	var out HashResult
	err := r.do(ctx, "generate", func(ctx context.Context) error {
		res, err := r.next.Generate(ctx, req)
		if err == nil {
			out = res
		}
		return err
	})
	return out, err
}

func (r *retrying) Verify(ctx context.Context, req VerifyRequest) (VerificationResult, error) {
	var out VerificationResult
	err := r.do(ctx, "verify", func(ctx context.Context) error {
		res, err := r.next.Verify(ctx, req)
		if err == nil {
			out = res
		}
		return err
	})
	return out, err
}

func (r *retrying) do(ctx context.Context, op string, call func(context.Context) error) error {
	b := retry.NewExponential(r.policy.Base)
	b = retry.WithCappedDuration(r.policy.Max, b)
	b = retry.WithMaxRetries(uint64(r.policy.Attempts-1), b)

	attempt := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		err := call(ctx)
		if err == nil || !errors.Is(err, ErrTransport) || ctx.Err() != nil {
			return err
		}
		r.logger.Warn("hash service call failed, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		return retry.RetryableError(err)
	})
}
