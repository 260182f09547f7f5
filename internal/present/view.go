// Package present turns workflow outcomes into view models and owns the
// copied-to-clipboard flag.
package present

import (
	"github.com/pthm/cyphergo/internal/hashapi"
)

// Tone is the visual treatment of a verification banner.
type Tone string

const (
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
)

// GenerateView is everything the Generate panel renders below its form.
type GenerateView struct {
	Submitting bool

	Error string

	HasResult bool
	Algorithm string
	HashValue string
	CopyLabel string
}

// VerifyView is everything the Verify panel renders below its form.
type VerifyView struct {
	Submitting bool

	Error string

	HasResult bool
	Tone      Tone
	Message   string
}

// Generate builds the view for a generate outcome. A failure hides any
// earlier result.
func Generate(o Outcome[hashapi.HashResult], copied bool) GenerateView {
	v := GenerateView{Submitting: o.State == Submitting}
	switch {
	case o.Err != nil:
		v.Error = hashapi.Message(o.Err)
	case o.HasValue:
		v.HasResult = true
		v.Algorithm = o.Value.Algorithm
		v.HashValue = o.Value.HashValue
		v.CopyLabel = CopyLabel(copied)
	}
	return v
}

// Verify builds the view for a verify outcome. The tone follows IsValid and
// nothing else.
func Verify(o Outcome[hashapi.VerificationResult]) VerifyView {
	v := VerifyView{Submitting: o.State == Submitting}
	switch {
	case o.Err != nil:
		v.Error = hashapi.Message(o.Err)
	case o.HasValue:
		v.HasResult = true
		v.Message = o.Value.Message
		v.Tone = ToneNegative
		if o.Value.IsValid {
			v.Tone = TonePositive
		}
	}
	return v
}
