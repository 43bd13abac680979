package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Strategy is one pattern-matching rule. Match returns ok=false when the rule
// does not apply to text.
type Strategy interface {
	Name() string
	Match(text string) (Outcome, bool)
}

var (
	dataURLPattern  = regexp.MustCompile(`data:image/(jpeg|png|webp);base64,[A-Za-z0-9+/]+=*`)
	imageURLPattern = regexp.MustCompile(`(?i)!\[[^\]]*?\]\((https://[^\s)]+)\)|https://\S+\.(?:png|jpe?g|gif|webp|svg)`)
	downloadPattern = regexp.MustCompile(`(?i)\[(?:下载|download)[^\]]*\]\((https?://[^\s)]+)\)`)
	jsonSpanPattern = regexp.MustCompile(`\{[\s\S]*\}`)
	loosePattern    = regexp.MustCompile(`base64,[A-Za-z0-9+/]+=*`)
	remoteURLPrefix = regexp.MustCompile(`(?i)^https?://\S+$`)
)

// imageFields are probed in order on a decoded JSON object.
var imageFields = []string{"image", "imageUrl", "image_url", "url", "data", "base64", "result", "output"}

// DirectStrategy finds an embedded data:image/...;base64 token.
type DirectStrategy struct{}

func (DirectStrategy) Name() string { return "direct" }

func (DirectStrategy) Match(text string) (Outcome, bool) {
	if m := dataURLPattern.FindString(text); m != "" {
		return Outcome{Kind: DirectMatch, Payload: m}, true
	}
	return Outcome{}, false
}

// URLStrategy finds a hosted image, preferring a companion download link.
type URLStrategy struct{}

func (URLStrategy) Name() string { return "url" }

func (URLStrategy) Match(text string) (Outcome, bool) {
	m := imageURLPattern.FindStringSubmatch(text)
	if m == nil {
		return Outcome{}, false
	}
	url := m[1]
	if url == "" {
		url = m[0]
	}
	if d := downloadPattern.FindStringSubmatch(text); d != nil {
		url = d[1]
	}
	return Outcome{Kind: URLMatch, Payload: url}, true
}

// JSONFieldStrategy decodes the outermost {...} span and probes conventional
// field names. If no field qualifies, the span is scanned for a data URL.
type JSONFieldStrategy struct{}

func (JSONFieldStrategy) Name() string { return "json_field" }

func (JSONFieldStrategy) Match(text string) (Outcome, bool) {
	span := jsonSpanPattern.FindString(text)
	if span == "" {
		return Outcome{}, false
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(span), &obj); err != nil {
		return Outcome{}, false
	}

	for _, field := range imageFields {
		value, ok := obj[field].(string)
		if !ok || value == "" {
			continue
		}
		if m := dataURLPattern.FindString(value); m != "" {
			return Outcome{Kind: JSONFieldMatch, Payload: m}, true
		}
		if v := strings.TrimSpace(value); remoteURLPrefix.MatchString(v) {
			return Outcome{Kind: JSONFieldMatch, Payload: v}, true
		}
	}

	// Re-serializing drops escapes such as "\/" that hide the token in the raw text.
	normalized, err := json.Marshal(obj)
	if err != nil {
		return Outcome{}, false
	}
	if m := dataURLPattern.FindString(string(normalized)); m != "" {
		return Outcome{Kind: JSONFieldMatch, Payload: m}, true
	}
	return Outcome{}, false
}

// LooseStrategy accepts a bare base64 fragment and assumes JPEG.
type LooseStrategy struct{}

func (LooseStrategy) Name() string { return "loose" }

func (LooseStrategy) Match(text string) (Outcome, bool) {
	m := loosePattern.FindString(text)
	if m == "" {
		return Outcome{}, false
	}
	return Outcome{Kind: LooseMatch, Payload: "data:image/jpeg;" + m, LowConfidence: true}, true
}
