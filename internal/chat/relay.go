// Package chat relays conversations to a third-party conversational
// endpoint, augmenting the prompt with map context and re-emitting the
// reply as a word-chunked pseudo-stream.
package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/atmoview/atmoview/internal/geo"
	"github.com/atmoview/atmoview/internal/observability"
	"github.com/atmoview/atmoview/internal/providers"
	"github.com/atmoview/atmoview/internal/weather"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// maxPromptChars caps the single-turn prompt sent upstream.
	maxPromptChars = 2000

	// historyLimit bounds how many trailing messages are forwarded.
	historyLimit = 10

	// upstreamTimeout bounds the conversational provider call.
	upstreamTimeout = 30 * time.Second

	// testTimeout bounds the connectivity diagnostics call.
	testTimeout = 10 * time.Second

	// chunkDelay paces the pseudo-stream.
	chunkDelay = 20 * time.Millisecond
)

// Message is one turn of the client-held conversation log.
type Message struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// Location is the map position the user is currently viewing.
type Location struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name"`
}

// Request is the chat relay input.
type Request struct {
	Messages        []Message       `json:"messages" validate:"required,min=1,dive"`
	CurrentLocation *Location       `json:"currentLocation"`
	CurrentWeather  *weather.Sample `json:"currentWeather"`
}

// Completer is the conversational provider surface the relay needs.
type Completer interface {
	Complete(ctx context.Context, prompt string) ([]byte, error)
	Endpoint() string
}

// Lookuper resolves a place name to a labeled weather sample for prompt
// augmentation.
type Lookuper interface {
	Lookup(ctx context.Context, place string) (string, *weather.Sample, error)
}

// Relay builds context-augmented prompts, calls the provider, and
// streams replies.
type Relay struct {
	client  Completer
	weather Lookuper
	logger  *zap.SugaredLogger

	// delay overrides chunkDelay in tests.
	delay time.Duration
}

// NewRelay creates a Relay.
func NewRelay(client Completer, lookup Lookuper, logger *zap.SugaredLogger) *Relay {
	return &Relay{client: client, weather: lookup, logger: logger, delay: chunkDelay}
}

// locationPattern spots location-seeking questions such as
// "what's the weather in Tokyo?".
var locationPattern = regexp.MustCompile(`(?i)weather\s+(?:in|at|for)\s+([a-zA-Z][a-zA-Z\s,.'-]*)`)

// BuildPrompt assembles the single-turn prompt: a context preamble, the
// trailing conversation, and a best-effort weather block when the latest
// user message asks about a specific place. Secondary lookup failures
// are logged and swallowed; the prompt proceeds unaugmented.
func (r *Relay) BuildPrompt(ctx context.Context, req Request) string {
	var preamble strings.Builder
	preamble.WriteString("You are a friendly weather assistant embedded in a map application. Answer briefly and conversationally.\n")

	if req.CurrentLocation != nil && req.CurrentWeather != nil {
		name := req.CurrentLocation.Name
		if name == "" {
			name = fmt.Sprintf("%.4f,%.4f", req.CurrentLocation.Lat, req.CurrentLocation.Lon)
		}
		preamble.WriteString(fmt.Sprintf("The user is viewing %s. Current conditions there: %s.\n",
			name, req.CurrentWeather.Summary()))
	}

	messages := req.Messages
	if len(messages) > historyLimit {
		messages = messages[len(messages)-historyLimit:]
	}

	if block := r.lookupBlock(ctx, messages); block != "" {
		preamble.WriteString(block)
		preamble.WriteString("\n")
	}

	// Drop oldest turns first when the assembled prompt runs long.
	for len(messages) > 1 {
		if promptLen(preamble.String(), messages) <= maxPromptChars {
			break
		}
		messages = messages[1:]
	}

	prompt := assemble(preamble.String(), messages)
	if len(prompt) > maxPromptChars {
		prompt = prompt[:maxPromptChars]
	}
	return prompt
}

func promptLen(preamble string, messages []Message) int {
	return len(assemble(preamble, messages))
}

func assemble(preamble string, messages []Message) string {
	var b strings.Builder
	b.WriteString(preamble)
	for _, m := range messages {
		if m.Role == "assistant" {
			b.WriteString("Assistant: ")
		} else {
			b.WriteString("User: ")
		}
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	b.WriteString("Assistant:")
	return b.String()
}

// lookupBlock scans the latest user message for a location-seeking
// phrase and, when found, resolves that place's weather. At most one
// secondary lookup runs per turn.
func (r *Relay) lookupBlock(ctx context.Context, messages []Message) string {
	var latest string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			latest = messages[i].Content
			break
		}
	}
	if latest == "" {
		return ""
	}

	m := locationPattern.FindStringSubmatch(latest)
	if m == nil {
		return ""
	}
	place := strings.TrimSpace(strings.TrimRight(m[1], " ?!."))
	if place == "" {
		return ""
	}

	label, sample, err := r.weather.Lookup(ctx, place)
	if err != nil {
		r.logger.Warnw("secondary weather lookup failed, continuing without it",
			"place", place, "error", err)
		return ""
	}
	return FormatWeather(label, sample)
}

// FormatWeather renders a weather sample as the multi-line block
// embedded in chat prompts.
func FormatWeather(label string, s *weather.Sample) string {
	tempF := geo.CToF(s.TemperatureC)
	feelsF := geo.CToF(s.FeelsLikeC)

	visibility := "N/A"
	if s.VisibilityM != nil {
		visibility = fmt.Sprintf("%.1f km", float64(*s.VisibilityM)/1000)
	}
	precip := 0.0
	if s.Precipitation1hMM != nil {
		precip = *s.Precipitation1hMM
	}
	sunrise, sunset := "N/A", "N/A"
	if s.SunriseEpoch != nil {
		sunrise = time.Unix(*s.SunriseEpoch, 0).UTC().Format("15:04:05")
	}
	if s.SunsetEpoch != nil {
		sunset = time.Unix(*s.SunsetEpoch, 0).UTC().Format("15:04:05")
	}

	return fmt.Sprintf(`Weather for %s:
- Temperature: %.0f°F (%.0f°C)
- Feels like: %.0f°F (%.0f°C)
- Condition: %s
- Humidity: %d%%
- Wind: %.1f m/s at %.0f°
- Pressure: %d hPa
- Cloud coverage: %.0f%%
- Visibility: %s
- Precipitation: %.1f mm
- Sunrise: %s
- Sunset: %s`,
		label,
		tempF, s.TemperatureC,
		feelsF, s.FeelsLikeC,
		s.ConditionDesc,
		s.HumidityPct,
		s.WindSpeedMS, s.WindDirectionDeg,
		s.PressureHPa,
		s.CloudCoverage(),
		visibility,
		precip,
		sunrise, sunset)
}

// Apology maps an upstream failure to a canned, human-readable reply.
func Apology(err error) string {
	var se *providers.StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusInternalServerError:
			return "I'm having trouble reaching my knowledge service right now. Please try again in a moment."
		case http.StatusTooManyRequests:
			return "I'm answering a lot of questions right now and hit a rate limit. Give me a few seconds and ask again."
		case http.StatusForbidden:
			return "My access to the assistant service looks misconfigured. Please check the API credentials on the server."
		}
	}
	return "Sorry, I ran into an unexpected problem answering that. Please try again."
}

// Stream produces the reply for a request and emits it word by word
// through emit, each chunk carrying a leading separator after the first.
// Upstream failures become an apology streamed through the same path, so
// emit always receives a complete, human-readable reply. An emit error
// (client gone) stops the producer.
func (r *Relay) Stream(ctx context.Context, req Request, emit func(chunk string) error) error {
	streamID := uuid.NewString()

	prompt := r.BuildPrompt(ctx, req)

	upstreamCtx, cancel := context.WithTimeout(ctx, upstreamTimeout)
	defer cancel()

	text := ""
	outcome := "reply"
	body, err := r.client.Complete(upstreamCtx, prompt)
	if err == nil {
		text = ExtractText(body)
	}
	if err != nil || text == "" {
		if err == nil {
			err = errors.New("no usable text in provider response")
		}
		r.logger.Warnw("chat upstream failed, streaming apology",
			"stream", streamID, "error", err)
		text = Apology(err)
		outcome = "apology"
	}
	observability.ChatStreamsTotal.WithLabelValues(outcome).Inc()

	return r.pseudoStream(ctx, text, emit)
}

// pseudoStream chunks an already-complete reply into words and paces
// them out. The sequence is finite and non-restartable.
func (r *Relay) pseudoStream(ctx context.Context, text string, emit func(chunk string) error) error {
	words := strings.Fields(text)
	for i, word := range words {
		chunk := word
		if i > 0 {
			chunk = " " + word
		}
		if err := emit(chunk); err != nil {
			return err
		}
		if i == len(words)-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.delay):
		}
	}
	return nil
}

// Test performs the connectivity diagnostics call: a fixed prompt with a
// short timeout, returning the endpoint and extracted response text.
func (r *Relay) Test(ctx context.Context) (endpoint, response string, err error) {
	testCtx, cancel := context.WithTimeout(ctx, testTimeout)
	defer cancel()

	body, err := r.client.Complete(testCtx, "Reply with the single word: pong")
	if err != nil {
		return r.client.Endpoint(), "", err
	}
	return r.client.Endpoint(), ExtractText(body), nil
}
