package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/finsightlab/finsight/internal/contracts"
	"github.com/finsightlab/finsight/pkg/config"
	"github.com/finsightlab/finsight/pkg/httputil"
	"github.com/finsightlab/finsight/pkg/logger"
)

const systemPrompt = "You are an expert stock market analyst. Analyze the given stock data and provide insights."

// Client talks to an OpenAI-compatible chat completion endpoint.
// All LLM calls go through this client.
type Client struct {
	cfg        config.LLMConfig
	httpClient *httputil.Client
	logger     *logger.Logger
}

// New creates a new LLM client
func New(cfg config.LLMConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     log,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Narrate asks the model for a narrative analysis of one stock.
// Failures come back as a Status "error" analysis, never as a Go error,
// so a flaky model cannot halt a run.
func (c *Client) Narrate(ctx context.Context, summary contracts.StockSummary, settings contracts.AISettings) (*contracts.LLMAnalysis, error) {
	model := settings.Model
	if model == "" {
		model = c.cfg.DefaultModel
	}

	narrative, err := c.complete(ctx, model, settings.Temperature, buildPrompt(summary))
	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"symbol": summary.Symbol,
			"model":  model,
			"error":  err.Error(),
		}).Warn("LLM analysis failed")

		return &contracts.LLMAnalysis{
			Status: "error",
			Error:  err.Error(),
		}, nil
	}

	return &contracts.LLMAnalysis{
		Status:     "success",
		Narrative:  narrative,
		AIScore:    scoreNarrative(narrative),
		KeyInsight: keyInsight(narrative),
		ModelUsed:  model,
		Confidence: 1.0 - settings.Temperature,
	}, nil
}

func (c *Client) complete(ctx context.Context, model string, temperature float64, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: temperature,
		TopP:        1.0,
		MaxTokens:   c.cfg.MaxTokens,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.cfg.BaseURL, "/")+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("chat endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}

	if chat.Error != nil {
		return "", fmt.Errorf("chat endpoint error: %s", chat.Error.Message)
	}
	if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("chat endpoint returned no content")
	}

	return chat.Choices[0].Message.Content, nil
}

// buildPrompt formats the compact summary into the analysis prompt
func buildPrompt(summary contracts.StockSummary) string {
	return fmt.Sprintf(`Please analyze the following stock data and provide insights:

Stock Symbol: %s
Current Price: $%.2f
Price Change: %.2f%%
Sector: %s

Key Metrics:
- Market Cap: %.0f
- AI Score: %.1f
- Trading Volume: %.0f

Please provide:
1. Technical Analysis
2. Risk Assessment
3. Investment Recommendation
4. Key Factors Influencing the Stock`,
		summary.Symbol, summary.Price, summary.ChangePct, summary.Sector,
		summary.MarketCap, summary.AIScore, summary.AvgVolume)
}

var positiveIndicators = []string{"strong", "growth", "positive", "recommend", "buy"}

// scoreNarrative maps narrative sentiment onto a 0-100 score.
// Base 50, plus 10 per positive indicator present.
func scoreNarrative(narrative string) int {
	lower := strings.ToLower(narrative)

	score := 50
	for _, indicator := range positiveIndicators {
		if strings.Contains(lower, indicator) {
			score += 10
		}
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// keyInsight extracts the leading sentence of the narrative
func keyInsight(narrative string) string {
	sentence, _, _ := strings.Cut(narrative, ".")
	sentence = strings.TrimSpace(sentence)
	if sentence == "" {
		return "Analysis not available"
	}
	return sentence
}
