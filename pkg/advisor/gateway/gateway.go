package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"finaudit-be/pkg/llm"
)

// Config holds the secondary (RapidAPI Gemini) endpoint settings.
type Config struct {
	FallbackURL  string
	RapidAPIKey  string
	RapidAPIHost string
}

// Result is the outcome of a non-blocking completion.
type Result struct {
	Text string
	Err  error
}

// Gateway routes completions to the primary provider and, on transient
// failure, makes exactly one fail-over attempt against the secondary
// HTTP endpoint. There is no retry loop: one shot at each provider.
type Gateway struct {
	primary llm.LLMProvider
	cfg     Config
	client  *http.Client
}

func New(primary llm.LLMProvider, cfg Config) *Gateway {
	if cfg.FallbackURL == "" {
		cfg.FallbackURL = "https://gemini-pro-ai.p.rapidapi.com/"
	}
	if cfg.RapidAPIHost == "" {
		cfg.RapidAPIHost = "gemini-pro-ai.p.rapidapi.com"
	}
	return &Gateway{
		primary: primary,
		cfg:     cfg,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Complete sends the conversation to the primary provider. A transient
// primary failure triggers the fail-over; any other error propagates
// unchanged.
func (g *Gateway) Complete(ctx context.Context, conversation []llm.Message) (string, error) {
	text, err := g.primary.Chat(ctx, conversation)
	if err == nil {
		return text, nil
	}

	if !IsTransient(err) {
		return "", err
	}

	log.Printf("[WARN] Primary LLM failed (%v). Attempting RapidAPI fallback...", err)
	return g.fallback(ctx, conversation)
}

// CompleteAsync runs Complete without blocking the caller. The returned
// channel is buffered, so the worker goroutine never leaks even if the
// caller abandons the request.
func (g *Gateway) CompleteAsync(ctx context.Context, conversation []llm.Message) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		text, err := g.Complete(ctx, conversation)
		out <- Result{Text: text, Err: err}
	}()
	return out
}

// transientMarkers are matched against lowercase error text only when the
// provider did not surface a structured status code. Substring matching is
// a known precision gap inherited from stringified SDK exceptions.
var transientMarkers = []string{"400", "429", "500", "quota", "resourceexhausted", "resource exhausted", "rate limit"}

var transientStatusCodes = map[int]bool{
	http.StatusBadRequest:          true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
}

// IsTransient reports whether a primary-provider error is eligible for
// fail-over: rate-limit/quota exhaustion and the equivalent HTTP classes.
func IsTransient(err error) bool {
	var provErr *llm.ProviderError
	if errors.As(err, &provErr) {
		return transientStatusCodes[provErr.StatusCode]
	}

	errStr := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(errStr, marker) {
			return true
		}
	}
	return false
}

// --- Secondary provider wire schema ---

type fallbackPart struct {
	Text string `json:"text"`
}

type fallbackContent struct {
	Role  string         `json:"role"`
	Parts []fallbackPart `json:"parts"`
}

type fallbackRequest struct {
	Contents []fallbackContent `json:"contents"`
}

type fallbackCandidate struct {
	Content fallbackContent `json:"content"`
}

type fallbackResponse struct {
	Candidates []fallbackCandidate `json:"candidates"`
}

// encodeFallback re-encodes the conversation into the secondary schema.
// System turns are concatenated into one instruction block which is folded
// into the first user turn and then cleared; assistant turns map to the
// "model" role.
func encodeFallback(conversation []llm.Message) []fallbackContent {
	contents := make([]fallbackContent, 0, len(conversation))

	var instruction strings.Builder
	for _, msg := range conversation {
		switch msg.Role {
		case llm.RoleSystem:
			if instruction.Len() > 0 {
				instruction.WriteString("\n\n")
			}
			instruction.WriteString(msg.Content)
		case llm.RoleUser:
			text := msg.Content
			if instruction.Len() > 0 {
				text = instruction.String() + "\n\n" + text
				instruction.Reset()
			}
			contents = append(contents, fallbackContent{
				Role:  "user",
				Parts: []fallbackPart{{Text: text}},
			})
		case llm.RoleAssistant:
			contents = append(contents, fallbackContent{
				Role:  "model",
				Parts: []fallbackPart{{Text: msg.Content}},
			})
		}
	}

	return contents
}

func (g *Gateway) fallback(ctx context.Context, conversation []llm.Message) (string, error) {
	payload := fallbackRequest{
		Contents: encodeFallback(conversation),
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal fallback request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.cfg.FallbackURL, bytes.NewBuffer(payloadJson))
	if err != nil {
		return "", fmt.Errorf("create fallback request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", g.cfg.RapidAPIKey)
	req.Header.Set("x-rapidapi-host", g.cfg.RapidAPIHost)
	req.Header.Set("Content-Type", "application/json")

	res, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fallback request failed: %w", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("read fallback response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", &llm.ProviderError{
			Provider:   "rapidapi-gemini",
			StatusCode: res.StatusCode,
			Body:       string(resBody),
		}
	}

	var fallbackRes fallbackResponse
	if err := json.Unmarshal(resBody, &fallbackRes); err != nil {
		return "", fmt.Errorf("unmarshal fallback response: %w", err)
	}

	if len(fallbackRes.Candidates) == 0 ||
		len(fallbackRes.Candidates[0].Content.Parts) == 0 ||
		fallbackRes.Candidates[0].Content.Parts[0].Text == "" {
		return "", fmt.Errorf("empty response from fallback provider, body: %s", string(resBody))
	}

	log.Printf("[INFO] RapidAPI fallback succeeded.")
	return fallbackRes.Candidates[0].Content.Parts[0].Text, nil
}
