package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/learning-insight/config"
	"github.com/lshigami/learning-insight/internal/dto"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

const geminiModelName = "gemini-1.5-flash"

type geminiInsightProvider struct {
	conn   *genai.Client
	client *genai.GenerativeModel
}

// NewGeminiInsightProvider writes narrative insights with Gemini. Without an
// API key the provider is created but every call fails.
func NewGeminiInsightProvider(cfg *config.Config) (InsightProvider, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Gemini insights will be non-functional.")
		return &geminiInsightProvider{}, nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	model := client.GenerativeModel(geminiModelName)
	model.ResponseMIMEType = "application/json"
	return &geminiInsightProvider{conn: client, client: model}, nil
}

func (p *geminiInsightProvider) Name() string { return config.InsightsProviderGemini }

func (p *geminiInsightProvider) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}

func (p *geminiInsightProvider) Generate(ctx context.Context, userID uint, stats dto.InsightStatsDTO, profileName string) (json.RawMessage, error) {
	if p.client == nil {
		return nil, newError(KindUpstream, "insight provider is not configured", nil)
	}

	resp, err := p.client.GenerateContent(ctx, genai.Text(buildInsightPrompt(stats, profileName)))
	if err != nil {
		return nil, newError(KindUpstream, "gemini request failed", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		log.Warn().Uint("userID", userID).Msg("Generate: Gemini returned no candidates or parts in response.")
		return nil, newError(KindUpstream, "gemini returned an empty response", nil)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	if text.Len() == 0 {
		return nil, newError(KindUpstream, "gemini returned no text content", nil)
	}
	return extractInsightJSON(text.String()), nil
}

func (p *geminiInsightProvider) Health() dto.InsightHealthDTO {
	return dto.InsightHealthDTO{Status: "ok", Provider: p.Name(), TokenConfigured: p.client != nil}
}

func buildInsightPrompt(stats dto.InsightStatsDTO, profileName string) string {
	var b strings.Builder
	b.WriteString("You are a learning coach reviewing an online course student's progress.\n")
	b.WriteString(fmt.Sprintf("Student name: %s\n\n", profileName))
	b.WriteString("Learning statistics:\n")
	b.WriteString(fmt.Sprintf("- Average study duration per tutorial: %.2f hours\n", stats.AvgStudyDurationHours))
	b.WriteString(fmt.Sprintf("- Tutorials completed: %d\n", stats.TotalTutorialCompleted))
	b.WriteString(fmt.Sprintf("- Study days: %d\n", stats.TotalStudyDays))
	b.WriteString(fmt.Sprintf("- Consistency score (0-100): %.2f\n", stats.ConsistencyScore))
	b.WriteString(fmt.Sprintf("- Average exam score (0-100): %.2f\n\n", stats.AvgExamScore))
	b.WriteString("Classify the student's learning style as one of \"Fast Learner\", \"Consistent Learner\" or \"Reflective Learner\".\n")
	b.WriteString("Respond with a single JSON object and nothing else, using these keys:\n")
	b.WriteString(`{"learning_style": string, "confidence": number 0-100, "strengths": [string], "recommendations": [string], "summary": string}`)
	b.WriteString("\n")
	return b.String()
}

// extractInsightJSON returns the JSON object embedded in a model reply, or
// the reply wrapped as {"text": ...} when it holds none.
func extractInsightJSON(reply string) json.RawMessage {
	trimmed := strings.TrimSpace(reply)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		candidate := trimmed[start : end+1]
		if json.Valid([]byte(candidate)) {
			return json.RawMessage(candidate)
		}
	}
	wrapped, _ := json.Marshal(map[string]string{"text": trimmed})
	return wrapped
}
