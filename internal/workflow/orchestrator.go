// Package workflow runs the Generate and Verify workflows of one page
// session against a shared form.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pthm/cyphergo/internal/form"
	"github.com/pthm/cyphergo/internal/hashapi"
	"github.com/pthm/cyphergo/internal/present"
)

// ErrNothingToCopy is returned by Copy when there is no hash on screen.
var ErrNothingToCopy = errors.New("workflow: no hash to copy")

// Orchestrator owns the two workflow slots and the copied flag. Submissions
// never return errors: every failure ends up in the workflow's slot.
type Orchestrator struct {
	service  hashapi.Service
	form     *form.State
	copied   present.CopyState
	generate *Slot[hashapi.HashResult]
	verify   *Slot[hashapi.VerificationResult]
	logger   *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*orchestratorOptions)

type orchestratorOptions struct {
	ordering Ordering
	logger   *zap.Logger
}

// WithOrdering sets the overlap policy for both workflows.
func WithOrdering(o Ordering) Option {
	return func(opts *orchestratorOptions) {
		opts.ordering = o
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(opts *orchestratorOptions) {
		opts.logger = l
	}
}

// New returns an orchestrator with an empty form and both workflows Idle.
func New(service hashapi.Service, opts ...Option) *Orchestrator {
	o := orchestratorOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Orchestrator{
		service:  service,
		form:     form.NewState(),
		generate: NewSlot[hashapi.HashResult](o.ordering),
		verify:   NewSlot[hashapi.VerificationResult](o.ordering),
		logger:   o.logger,
	}
}

// SetField records a field edit.
func (o *Orchestrator) SetField(id, value string) {
	o.form.SetField(id, value)
}

// SetFields records several field edits.
func (o *Orchestrator) SetFields(values map[string]string) {
	o.form.SetFields(values)
}

// Payload returns the current form snapshot.
func (o *Orchestrator) Payload() form.Payload {
	return o.form.CurrentPayload()
}

// SubmitGenerate issues one generate call and returns the slot as it stands
// afterwards. The copied flag is cleared before the call goes out.
func (o *Orchestrator) SubmitGenerate(ctx context.Context) present.Outcome[hashapi.HashResult] {
	o.copied.Reset()
	seq := o.generate.Begin()
	req := o.form.CurrentPayload().GenerateRequest()

	res, err := guard(func() (hashapi.HashResult, error) {
		return o.service.Generate(ctx, req)
	})
	o.resolved("generate", seq, o.generate.Resolve(seq, res, err), err)
	return o.generate.Snapshot()
}

// SubmitVerify issues one verify call and returns the slot as it stands
// afterwards.
func (o *Orchestrator) SubmitVerify(ctx context.Context) present.Outcome[hashapi.VerificationResult] {
	seq := o.verify.Begin()
	req := o.form.CurrentPayload().VerifyRequest()

	res, err := guard(func() (hashapi.VerificationResult, error) {
		return o.service.Verify(ctx, req)
	})
	o.resolved("verify", seq, o.verify.Resolve(seq, res, err), err)
	return o.verify.Snapshot()
}

// Copy writes the current hash to cb.
func (o *Orchestrator) Copy(ctx context.Context, cb present.Clipboard) error {
	out := o.generate.Snapshot()
	if !out.HasValue {
		return ErrNothingToCopy
	}
	return o.copied.Copy(ctx, cb, out.Value.HashValue)
}

// Copied reports the clipboard flag.
func (o *Orchestrator) Copied() bool {
	return o.copied.Copied()
}

// GenerateOutcome returns the generate slot.
func (o *Orchestrator) GenerateOutcome() present.Outcome[hashapi.HashResult] {
	return o.generate.Snapshot()
}

// VerifyOutcome returns the verify slot.
func (o *Orchestrator) VerifyOutcome() present.Outcome[hashapi.VerificationResult] {
	return o.verify.Snapshot()
}

// GenerateView is the presented generate slot.
func (o *Orchestrator) GenerateView() present.GenerateView {
	return present.Generate(o.generate.Snapshot(), o.copied.Copied())
}

// VerifyView is the presented verify slot.
func (o *Orchestrator) VerifyView() present.VerifyView {
	return present.Verify(o.verify.Snapshot())
}

func (o *Orchestrator) resolved(op string, seq uint64, applied bool, err error) {
	fields := []zap.Field{zap.String("workflow", op), zap.Uint64("seq", seq), zap.Bool("applied", applied)}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	o.logger.Debug("workflow resolved", fields...)
}

// guard runs call and turns a panic into an error.
func guard[T any](call func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("workflow: hash service call panicked: %v", r)
		}
	}()
	return call()
}
