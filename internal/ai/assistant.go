// Package ai defines the generative dependency used to phrase recommendations.
package ai

import (
	"context"
	"errors"
)

const (
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// Failure reasons reported by generators.
const (
	ReasonTimeout     = "timeout"
	ReasonQuota       = "quota"
	ReasonRequest     = "request"
	ReasonEmpty       = "empty response"
	ReasonUnavailable = "unavailable"
)

// Result is the outcome of a single generation. Exactly one of Text or Reason is set.
type Result struct {
	Text   string
	Reason string
	Err    error
}

func Success(text string) Result {
	return Result{Text: text}
}

func Failure(reason string, err error) Result {
	if err == nil {
		err = errors.New(reason)
	}
	return Result{Reason: reason, Err: err}
}

func (r Result) Failed() bool {
	return r.Reason != "" || r.Text == ""
}

// Generator turns a system instruction and a user prompt into text. It reports
// failures in the Result rather than as an error.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) Result
	Model() string
}
