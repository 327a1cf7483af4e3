// Package synthesis turns ranked candidates into a recommendation narrative.
package synthesis

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/hr-assistant/internal/ai"
	"github.com/spigell/hr-assistant/internal/ranking"
	"github.com/spigell/hr-assistant/internal/roster"
	"github.com/spigell/hr-assistant/internal/utils"
)

const (
	NoMatchMessage = "I couldn't find any employees matching your criteria. Please try refining your search."

	SystemInstruction = "You are a helpful HR assistant that provides detailed, actionable recommendations for employee resource allocation."

	closingPrompt = "Would you like more details about any of these candidates or help with scheduling interviews?"

	DefaultTimeout = 20 * time.Second

	fallbackProjects = 3
)

//go:embed prompt.md
var promptTemplate string

// Synthesizer prefers the generator and falls back to a fixed template when
// generation fails or no generator is configured.
type Synthesizer struct {
	generator ai.Generator
	timeout   time.Duration
	logger    *zap.Logger
}

func New(generator ai.Generator, timeout time.Duration, logger *zap.Logger) *Synthesizer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Synthesizer{
		generator: generator,
		timeout:   timeout,
		logger:    logger,
	}
}

// Synthesize always returns a non-empty narrative.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, candidates []ranking.Candidate) string {
	if len(candidates) == 0 {
		return NoMatchMessage
	}

	if s.generator == nil {
		return Fallback(query, candidates)
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res := s.generator.Generate(genCtx, SystemInstruction, BuildPrompt(query, candidates))
	if res.Failed() {
		s.logger.Warn("generation failed, using fallback response",
			zap.String("reason", res.Reason),
			zap.Error(res.Err),
			zap.Int("candidates", len(candidates)),
		)
		return Fallback(query, candidates)
	}

	return res.Text
}

// BuildPrompt renders the user prompt for the generator.
func BuildPrompt(query string, candidates []ranking.Candidate) string {
	return strings.NewReplacer(
		"{{QUERY}}", query,
		"{{CONTEXT}}", BuildContext(candidates),
	).Replace(promptTemplate)
}

// BuildContext lists the candidates in ranked order for the generator.
func BuildContext(candidates []ranking.Candidate) string {
	var b strings.Builder
	b.WriteString("Here are the relevant employees I found:\n\n")
	for _, c := range candidates {
		e := c.Record
		fmt.Fprintf(&b, "**%s** (%d years experience)\n", e.Name, e.ExperienceYears)
		fmt.Fprintf(&b, "Skills: %s\n", roster.JoinList(e.Skills))
		fmt.Fprintf(&b, "Recent Projects: %s\n", roster.JoinList(e.Projects))
		fmt.Fprintf(&b, "Department: %s\n", e.DepartmentOrUnknown())
		fmt.Fprintf(&b, "Location: %s\n", e.LocationOrUnknown())
		fmt.Fprintf(&b, "Availability: %s\n", e.Availability)
		fmt.Fprintf(&b, "Relevance Score: %.2f\n\n", c.Score)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Fallback is the deterministic narrative used whenever generation is unavailable.
func Fallback(query string, candidates []ranking.Candidate) string {
	if len(candidates) == 0 {
		return NoMatchMessage
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on your query '%s', I found %d relevant candidate(s):\n\n", query, len(candidates))
	for i, c := range candidates {
		e := c.Record
		projects := e.Projects
		if len(projects) > fallbackProjects {
			projects = projects[:fallbackProjects]
		}

		fmt.Fprintf(&b, "**%d. %s** (%d years experience)\n", i+1, e.Name, e.ExperienceYears)
		fmt.Fprintf(&b, "   • Skills: %s\n", roster.JoinList(e.Skills))
		fmt.Fprintf(&b, "   • Recent Projects: %s\n", roster.JoinList(projects))
		fmt.Fprintf(&b, "   • Availability: %s\n", e.Availability)
		fmt.Fprintf(&b, "   • Match Score: %s\n\n", utils.Percent(c.Score))
	}
	b.WriteString(closingPrompt)
	return b.String()
}
