// Package extract recovers a generated image from the loosely structured text
// returned by the transformation service.
//
// The service does not commit to a response shape: the image may arrive as an
// embedded data URL, a hosted URL in markdown, a JSON field or a bare base64
// fragment. Extract runs an ordered list of strategies and returns the first
// match. When nothing matches, the text is checked for moderation markers so
// that a policy rejection is reported differently from a parsing failure.
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

type Kind int

const (
	NoMatch Kind = iota
	DirectMatch
	URLMatch
	JSONFieldMatch
	LooseMatch
	ModerationRejection
)

func (k Kind) String() string {
	switch k {
	case DirectMatch:
		return "direct"
	case URLMatch:
		return "url"
	case JSONFieldMatch:
		return "json_field"
	case LooseMatch:
		return "loose"
	case ModerationRejection:
		return "moderation_rejection"
	default:
		return "no_match"
	}
}

// Outcome is the tagged result of an extraction.
type Outcome struct {
	Kind    Kind
	Payload string // data URL or remote image URL when matched
	Reason  string // moderation reason for ModerationRejection

	// LowConfidence marks payloads whose MIME prefix was synthesized.
	LowConfidence bool
}

func (o Outcome) Matched() bool {
	return o.Payload != "" && o.Kind != NoMatch && o.Kind != ModerationRejection
}

// Err converts a failed outcome to an error; it returns nil for matches.
func (o Outcome) Err() error {
	switch {
	case o.Matched():
		return nil
	case o.Kind == ModerationRejection:
		return &RejectionError{Reason: o.Reason}
	default:
		return ErrNoImageData
	}
}

var ErrNoImageData = errors.New("no valid image data found in the response")

// RejectionError reports that the service refused the content in-band.
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("content rejected by moderation: %s", e.Reason)
}

const DefaultRejectionReason = "content moderation failed"

var (
	moderationKeywords = []string{
		"input_moderation",
		"moderation",
		"content policy",
		"content_policy",
		"failed",
		"failure",
	}
	failureReasonPattern = regexp.MustCompile(`(?i)failure reason\s*[:：]\s*([^\n]+)`)
)

// Extractor runs its strategies in order.
type Extractor struct {
	strategies []Strategy
}

// New returns an extractor with the given strategies, or the default set.
func New(strategies ...Strategy) *Extractor {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Extractor{strategies: strategies}
}

// DefaultStrategies returns direct, URL, JSON-field and loose scans, in that order.
func DefaultStrategies() []Strategy {
	return []Strategy{
		DirectStrategy{},
		URLStrategy{},
		JSONFieldStrategy{},
		LooseStrategy{},
	}
}

func (e *Extractor) Extract(text string) Outcome {
	for _, s := range e.strategies {
		if out, ok := s.Match(text); ok {
			return out
		}
	}
	return classifyFailure(text)
}

// Extract runs the default strategies.
func Extract(text string) Outcome {
	return defaultExtractor.Extract(text)
}

var defaultExtractor = New()

func classifyFailure(text string) Outcome {
	lower := strings.ToLower(text)
	for _, kw := range moderationKeywords {
		if strings.Contains(lower, kw) {
			reason := DefaultRejectionReason
			if m := failureReasonPattern.FindStringSubmatch(text); m != nil {
				if r := strings.TrimSpace(m[1]); r != "" {
					reason = r
				}
			}
			return Outcome{Kind: ModerationRejection, Reason: reason}
		}
	}
	return Outcome{Kind: NoMatch}
}
