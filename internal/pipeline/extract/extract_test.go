package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nemanja-m/stylize/internal/pipeline/dataurl"
)

const pngToken = "data:image/png;base64,AAAA"

func TestExtract(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantKind      Kind
		wantPayload   string
		wantReason    string
		lowConfidence bool
	}{
		{
			name:        "direct data url",
			text:        "Here is your image: " + pngToken + " enjoy",
			wantKind:    DirectMatch,
			wantPayload: pngToken,
		},
		{
			name:        "direct data url stops at quote",
			text:        `<img src="data:image/webp;base64,UklGR+/=">`,
			wantKind:    DirectMatch,
			wantPayload: "data:image/webp;base64,UklGR+/=",
		},
		{
			name:        "markdown wrapped data url",
			text:        "![result](data:image/png;base64,iVBORw0KGgo=)",
			wantKind:    DirectMatch,
			wantPayload: "data:image/png;base64,iVBORw0KGgo=",
		},
		{
			name:        "data url followed by period",
			text:        "Done: data:image/png;base64,iVBORw0KGgo=.",
			wantKind:    DirectMatch,
			wantPayload: "data:image/png;base64,iVBORw0KGgo=",
		},
		{
			name:        "json wrapped token found directly",
			text:        `{"image": "` + pngToken + `"}`,
			wantKind:    DirectMatch,
			wantPayload: pngToken,
		},
		{
			name:        "markdown image url",
			text:        "![file_abc](https://cdn.example.com/gen/abc.png)\n",
			wantKind:    URLMatch,
			wantPayload: "https://cdn.example.com/gen/abc.png",
		},
		{
			name:        "bare image url",
			text:        "Result available at https://cdn.example.com/out/photo.JPEG now",
			wantKind:    URLMatch,
			wantPayload: "https://cdn.example.com/out/photo.JPEG",
		},
		{
			name:        "download link preferred over preview",
			text:        "![preview](https://cdn.example.com/p/1.webp)\n[下载⏬](https://cdn.example.com/d/1.png)",
			wantKind:    URLMatch,
			wantPayload: "https://cdn.example.com/d/1.png",
		},
		{
			name:        "english download link preferred",
			text:        "![preview](https://cdn.example.com/p/2.png) [Download](https://files.example.com/2)",
			wantKind:    URLMatch,
			wantPayload: "https://files.example.com/2",
		},
		// Unescaped JSON is caught by the direct scan; escaped slashes hide the
		// token from it so the JSON field strategy is reached.
		{
			name:        "json field with escaped slashes",
			text:        `{"image": "data:image\/png;base64,AAAA"}`,
			wantKind:    JSONFieldMatch,
			wantPayload: pngToken,
		},
		{
			name:        "json url field",
			text:        `Done. {"status":"ok","url":"http://images.example.com/x/y"}`,
			wantKind:    JSONFieldMatch,
			wantPayload: "http://images.example.com/x/y",
		},
		{
			name:        "json nested value via serialized scan",
			text:        `{"response":{"img":"data:image\/jpeg;base64,\/9j\/AA=="}}`,
			wantKind:    JSONFieldMatch,
			wantPayload: "data:image/jpeg;base64,/9j/AA==",
		},
		{
			name:          "loose base64 fragment",
			text:          "image;base64,iVBORw0KGgo=",
			wantKind:      LooseMatch,
			wantPayload:   "data:image/jpeg;base64,iVBORw0KGgo=",
			lowConfidence: true,
		},
		{
			name:          "unsupported mime falls through to loose",
			text:          "data:image/gif;base64,R0lGOD",
			wantKind:      LooseMatch,
			wantPayload:   "data:image/jpeg;base64,R0lGOD",
			lowConfidence: true,
		},
		{
			name:       "moderation with reason",
			text:       "Generation stopped.\nfailure reason: nudity detected\n",
			wantKind:   ModerationRejection,
			wantReason: "nudity detected",
		},
		{
			name:       "moderation with full width colon",
			text:       "input_moderation triggered. Failure Reason： violent content",
			wantKind:   ModerationRejection,
			wantReason: "violent content",
		},
		{
			name:       "moderation without reason",
			text:       `{"error":"input_moderation"}`,
			wantKind:   ModerationRejection,
			wantReason: DefaultRejectionReason,
		},
		{
			name:     "plain text without image",
			text:     "I can describe this picture but not draw it.",
			wantKind: NoMatch,
		},
		{
			name:     "empty",
			text:     "",
			wantKind: NoMatch,
		},
		{
			name:     "invalid json without image",
			text:     "{not json}",
			wantKind: NoMatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)
			require.Equal(t, tt.wantKind, got.Kind, "kind %s", got.Kind)
			require.Equal(t, tt.wantPayload, got.Payload)
			require.Equal(t, tt.wantReason, got.Reason)
			require.Equal(t, tt.lowConfidence, got.LowConfidence)
		})
	}
}

func TestExtract_PayloadDecodes(t *testing.T) {
	texts := []string{
		"![result](data:image/png;base64,iVBORw0KGgo=)",
		"Here it is: data:image/jpeg;base64,/9j/AA==.",
		"(data:image/webp;base64,UklGR+/=), enjoy",
		`{"image": "data:image\/png;base64,iVBORw0KGgo="}`,
		"partial base64,iVBORw0KGgo=)",
	}

	for _, text := range texts {
		got := Extract(text)
		require.NoError(t, got.Err(), text)
		_, _, err := dataurl.Decode(got.Payload)
		require.NoError(t, err, "payload %q from %q", got.Payload, text)
	}
}

func TestJSONFieldStrategy_RoundTrip(t *testing.T) {
	out, ok := JSONFieldStrategy{}.Match(`{"image": "` + pngToken + `"}`)
	require.True(t, ok)
	require.Equal(t, JSONFieldMatch, out.Kind)
	require.Equal(t, pngToken, out.Payload)
}

func TestJSONFieldStrategy_FieldOrder(t *testing.T) {
	text := `{"output":"data:image/png;base64,BBBB","image":"data:image/png;base64,CCCC"}`
	out, ok := JSONFieldStrategy{}.Match(text)
	require.True(t, ok)
	require.Equal(t, "data:image/png;base64,CCCC", out.Payload)
}

func TestJSONFieldStrategy_IgnoresNonImageFields(t *testing.T) {
	_, ok := JSONFieldStrategy{}.Match(`{"result":"success","data":42}`)
	require.False(t, ok)
}

func TestStrategies_Independent(t *testing.T) {
	strategies := DefaultStrategies()
	names := make([]string, 0, len(strategies))
	for _, s := range strategies {
		names = append(names, s.Name())
	}
	require.Equal(t, []string{"direct", "url", "json_field", "loose"}, names)

	_, ok := DirectStrategy{}.Match("https://cdn.example.com/a.png")
	require.False(t, ok)
	_, ok = URLStrategy{}.Match(pngToken)
	require.False(t, ok)
	_, ok = LooseStrategy{}.Match("no payload here")
	require.False(t, ok)
}

func TestExtractor_CustomStrategies(t *testing.T) {
	e := New(URLStrategy{})

	got := e.Extract(pngToken)
	require.Equal(t, NoMatch, got.Kind)

	got = e.Extract("https://cdn.example.com/a.png")
	require.Equal(t, URLMatch, got.Kind)
}

func TestOutcome_Err(t *testing.T) {
	require.NoError(t, Outcome{Kind: DirectMatch, Payload: pngToken}.Err())

	err := Outcome{Kind: ModerationRejection, Reason: "nudity detected"}.Err()
	var rejection *RejectionError
	require.True(t, errors.As(err, &rejection))
	require.Equal(t, "nudity detected", rejection.Reason)
	require.Equal(t, "content rejected by moderation: nudity detected", err.Error())

	require.ErrorIs(t, Outcome{Kind: NoMatch}.Err(), ErrNoImageData)
}

func TestKind_String(t *testing.T) {
	require.Equal(t, "json_field", JSONFieldMatch.String())
	require.Equal(t, "no_match", NoMatch.String())
	require.Equal(t, "moderation_rejection", ModerationRejection.String())
}
