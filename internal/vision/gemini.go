package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kozzzzzzy/twin-sync-addon/internal/common"
	"github.com/kozzzzzzy/twin-sync-addon/internal/model"
)

const geminiAPIBase = "https://generativelanguage.googleapis.com/v1beta"

// Config holds settings for the Gemini vision client.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// GeminiClient implements Client against the Gemini generateContent API.
type GeminiClient struct {
	httpClient *http.Client
	source     SnapshotSource
	apiKey     string
	model      string
	baseURL    string
	retryOpts  common.RetryOptions
	temp       float64
	maxTokens  int
}

// NewGeminiClient creates a Gemini vision client reading frames from source.
func NewGeminiClient(cfg Config, source SnapshotSource) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is required", common.ErrMissingConfig)
	}
	if source == nil {
		return nil, fmt.Errorf("%w: snapshot source is required", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = geminiAPIBase
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 90 * time.Second
	}
	temp := cfg.Temperature
	if temp == 0 {
		temp = 0.4
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}

	return &GeminiClient{
		apiKey:    cfg.APIKey,
		model:     model,
		baseURL:   baseURL,
		temp:      temp,
		maxTokens: maxTokens,
		source:    source,
		retryOpts: common.RetryOptions{MaxAttempts: 2, InitialDelay: time.Second, MaxDelay: 5 * time.Second},
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// Observe grabs a snapshot and asks the model for per-item state
// descriptions. Any failure is an adapter error: retry policy beyond the
// transient rate-limit backoff belongs to the caller.
func (c *GeminiClient) Observe(ctx context.Context, req ObservationRequest) (*Observed, error) {
	start := time.Now()

	frame, err := c.source.Snapshot(ctx, req.CameraEntity)
	if err != nil {
		return nil, fmt.Errorf("%w: snapshot from %s: %v", common.ErrAdapter, req.CameraEntity, err)
	}
	if len(frame) == 0 {
		return nil, fmt.Errorf("%w: empty snapshot from %s", common.ErrAdapter, req.CameraEntity)
	}

	var observed *Observed
	err = common.WithRetry(ctx, func() error {
		var callErr error
		observed, callErr = c.generate(ctx, req, frame)
		return callErr
	}, c.retryOpts)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: %v", common.ErrObservationTimeout, err)
		}
		return nil, err
	}

	observed.ResponseTime = time.Since(start)
	observed.Observation.SourceRef = req.CameraEntity
	return observed, nil
}

func (c *GeminiClient) generate(ctx context.Context, req ObservationRequest, frame []byte) (*Observed, error) {
	prompt := buildPrompt(req)

	payload := map[string]any{
		"contents": []map[string]any{{
			"parts": []map[string]any{
				{"text": prompt},
				{"inline_data": map[string]any{
					"mime_type": "image/jpeg",
					"data":      base64.StdEncoding.EncodeToString(frame),
				}},
			},
		}},
		"generationConfig": map[string]any{
			"temperature":     c.temp,
			"topK":            32,
			"topP":            1,
			"maxOutputTokens": c.maxTokens,
		},
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", common.ErrAdapter, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(jsonBody)))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", common.ErrAdapter, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrAdapter, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", common.ErrAdapter, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: gemini quota exceeded", common.ErrRateLimit)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: gemini API status %d: %s", common.ErrAdapter, resp.StatusCode, truncate(string(body), 200))
	}

	var gr geminiResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, fmt.Errorf("%w: parse response envelope: %v", common.ErrAdapter, err)
	}

	text, err := gr.text()
	if err != nil {
		return nil, err
	}

	return parseObserved(text)
}

// buildPrompt asks for a structured per-item reading of the frame against
// the user's own definition, plus short notes in the selected voice.
func buildPrompt(req ObservationRequest) string {
	voicePrompt := voicePrompts[req.Voice]
	if req.Voice == model.VoiceCustom && req.CustomVoicePrompt != "" {
		voicePrompt = req.CustomVoicePrompt
	}
	memoryContext := req.MemoryContext
	if memoryContext == "" {
		memoryContext = "First check - no history yet."
	}

	return fmt.Sprintf(`You are checking if "%s" matches its Ready State.

THE USER'S DEFINITION OF READY STATE:
%s

HISTORY (from previous checks):
%s

YOUR VOICE (how to communicate in the notes):
%s

TASK:
Look at the photo. For every item or area the definition mentions, report a
short factual state description of what you actually see.

RULES:
- Be SPECIFIC. "mug on left side of desk" not "items present"
- Use the user's OWN WORDS for item names where possible
- If an area matches the definition, describe it with a ready-state word
  like "clear", "empty", "made", "in place"
- Keep notes to 2-3 sentences MAX
- NEVER say "AI" or mention being an AI

RETURN THIS EXACT JSON FORMAT:
{
    "labels": {
        "item or area name": "short state description"
    },
    "notes": {
        "main": "Your main observation in 1-2 sentences",
        "pattern": "Any pattern from history worth mentioning, or null",
        "encouragement": "Something encouraging if appropriate, or null"
    }
}

Return ONLY valid JSON, no markdown, no extra text.`,
		req.SpotName, req.Definition, memoryContext, voicePrompt)
}

// voicePrompts steer only the free-text notes; the labels stay factual.
var voicePrompts = map[model.VoiceKey]string{
	model.VoiceDirect: `Be direct and factual. State what you see clearly.
No emojis. No encouragement. No sugar-coating.`,
	model.VoiceSupportive: `Be warm and encouraging. Acknowledge progress and effort.
Frame things positively - what's working, then what needs attention.`,
	model.VoiceAnalytical: `Focus on patterns and data. Reference the history provided.
Be observational, not judgmental.`,
	model.VoiceMinimal: `Just the list. No commentary, no observations, no advice.
Prefer silence over filler.`,
	model.VoiceGentleNudge: `Be gentle and low-pressure. Suggest rather than state.
Frame everything as optional, not demands. Be kind.`,
}

// geminiResponse is the API envelope.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (r *geminiResponse) text() (string, error) {
	if len(r.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates in gemini response", common.ErrAdapter)
	}
	for _, part := range r.Candidates[0].Content.Parts {
		if part.Text != "" {
			return part.Text, nil
		}
	}
	return "", fmt.Errorf("%w: no text in gemini response", common.ErrAdapter)
}

// ValidateAPIKey checks whether a Gemini key is usable.
func ValidateAPIKey(ctx context.Context, apiKey string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, geminiAPIBase+"/models/gemini-2.0-flash", http.NoBody)
	if err != nil {
		return false
	}
	req.Header.Set("x-goog-api-key", apiKey)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
