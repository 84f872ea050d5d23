// Package oracle provides an advisory LLM client used to refine risk
// assessments and reminder text. It is never a hard dependency: the client
// is nil when no API key is configured, and all methods on a nil client
// report ErrDisabled so callers fall back to their deterministic paths.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	apiURL            = "https://api.anthropic.com/v1/messages"
	apiVersion        = "2023-06-01"
	defaultModel      = "claude-sonnet-4-5-20250929"
	defaultMaxTokens  = 1024
	defaultReqTimeout = 20 * time.Second
)

// ErrDisabled is returned when the oracle is not configured.
var ErrDisabled = errors.New("oracle not configured")

// Client talks to the advisory model. Nil-safe: a nil *Client is a valid
// "disabled" oracle.
type Client struct {
	apiKey    string
	model     string
	maxTokens int
	baseURL   string // overridden in tests
	logger    *slog.Logger
	client    *http.Client
}

// NewClient creates an oracle client. Returns nil if apiKey is empty
// (oracle disabled).
func NewClient(apiKey, model string, timeout time.Duration, logger *slog.Logger) *Client {
	if apiKey == "" {
		return nil
	}
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = defaultReqTimeout
	}
	return &Client{
		apiKey:    apiKey,
		model:     model,
		maxTokens: defaultMaxTokens,
		baseURL:   apiURL,
		logger:    logger,
		client:    &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether the oracle can be consulted.
func (c *Client) Enabled() bool {
	return c != nil
}

// --------------------------------------------------------------------------
// Structured inputs / outputs
// --------------------------------------------------------------------------

// RiskSignals is the signal bundle seeded into an assessment request.
type RiskSignals struct {
	TeamName       string
	RoundName      string
	Deadline       time.Time
	HoursRemaining float64
	HasSubmission  bool
	RecentMessages int
	// OnTimeRate is the fraction of prior submissions that landed before
	// their deadline, in [0,1]; negative means no history.
	OnTimeRate     float64
	HeuristicScore int
}

// RiskAssessment is the structured response expected from the model.
type RiskAssessment struct {
	RiskScore            int      `json:"riskScore"`
	RiskLevel            string   `json:"riskLevel"`
	Reasons              []string `json:"reasons"`
	Recommendations      []string `json:"recommendations"`
	PredictedProbability int      `json:"predictedProbability"`
}

// ReminderInput seeds a reminder-text request.
type ReminderInput struct {
	TeamName        string
	RoundName       string
	Deadline        time.Time
	RiskLevel       string
	Recommendations []string
}

// --------------------------------------------------------------------------
// Operations
// --------------------------------------------------------------------------

const assessSystemPrompt = `You are a hackathon mentor assistant. Given signals about a team and a round deadline, estimate the risk that the team misses the deadline. Respond with ONLY a JSON object of the shape {"riskScore": 0-100, "riskLevel": "low"|"medium"|"high"|"critical", "reasons": [...], "recommendations": [...], "predictedProbability": 0-100}. No prose outside the JSON.`

// AssessRisk requests a structured risk assessment seeded with the gathered
// signals. The caller is responsible for clamping and for falling back to
// the heuristic on any error.
func (c *Client) AssessRisk(ctx context.Context, sig RiskSignals) (*RiskAssessment, error) {
	if c == nil {
		return nil, ErrDisabled
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Team %q, round %q, deadline %s.\n",
		sig.TeamName, sig.RoundName, sig.Deadline.UTC().Format(time.RFC3339))
	fmt.Fprintf(&sb, "Hours remaining: %.1f\n", sig.HoursRemaining)
	fmt.Fprintf(&sb, "Has submission: %v\n", sig.HasSubmission)
	fmt.Fprintf(&sb, "Chat messages in the last 7 days: %d\n", sig.RecentMessages)
	if sig.OnTimeRate >= 0 {
		fmt.Fprintf(&sb, "Historical on-time rate: %.0f%%\n", sig.OnTimeRate*100)
	} else {
		sb.WriteString("No prior submission history.\n")
	}
	fmt.Fprintf(&sb, "Baseline heuristic score: %d\n", sig.HeuristicScore)

	text, err := c.complete(ctx, assessSystemPrompt, sb.String())
	if err != nil {
		return nil, err
	}

	var out RiskAssessment
	if err := json.Unmarshal(extractJSON(text), &out); err != nil {
		return nil, fmt.Errorf("malformed assessment: %w", err)
	}
	return &out, nil
}

const reminderSystemPrompt = `You write short reminder messages for hackathon teams. 2-3 sentences, encouraging in tone, stating the deadline clearly. Respond with the message text only, no quotes or preamble.`

// ComposeReminder requests a short reminder message.
func (c *Client) ComposeReminder(ctx context.Context, in ReminderInput) (string, error) {
	if c == nil {
		return "", ErrDisabled
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Team %q has not finished their entry for round %q, due %s.\n",
		in.TeamName, in.RoundName, in.Deadline.UTC().Format("Mon Jan 2 15:04 MST"))
	fmt.Fprintf(&sb, "Risk level: %s\n", in.RiskLevel)
	if len(in.Recommendations) > 0 {
		fmt.Fprintf(&sb, "Work these suggestions in: %s\n", strings.Join(in.Recommendations, "; "))
	}

	text, err := c.complete(ctx, reminderSystemPrompt, sb.String())
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty reminder text")
	}
	return text, nil
}

// --------------------------------------------------------------------------
// Messages API plumbing
// --------------------------------------------------------------------------

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system,omitempty"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Content []apiContentBlock `json:"content"`
}

type apiContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// complete makes a single request and returns the concatenated text blocks.
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	c.logger.Debug("consulting oracle", "model", c.model)

	reqBody := apiRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages:  []apiMessage{{Role: "user", Content: user}},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call oracle: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("oracle error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("oracle error (%d)", resp.StatusCode)
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	var parts []string
	for _, block := range result.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, ""), nil
}

// extractJSON pulls the outermost JSON object out of a model response that
// may wrap it in prose or a code fence.
func extractJSON(text string) []byte {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return []byte(text)
	}
	return []byte(text[start : end+1])
}
