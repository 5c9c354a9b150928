package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/lshigami/learning-insight/config"
	"github.com/lshigami/learning-insight/internal/dto"
	"github.com/rs/zerolog/log"
)

const (
	mlRequestTimeout = 30 * time.Second
	// maxMLResponseBytes caps how much of an upstream reply is read.
	maxMLResponseBytes = 1 << 20
)

type mlInsightProvider struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewMLInsightProvider calls the learning insight prediction service.
func NewMLInsightProvider(cfg *config.Config) InsightProvider {
	client := cleanhttp.DefaultPooledClient()
	client.Timeout = mlRequestTimeout
	if cfg.ML.ServiceToken == "" {
		log.Warn().Msg("ML_SERVICE_TOKEN is not set. Prediction requests will likely be rejected.")
	}
	return &mlInsightProvider{baseURL: cfg.ML.ServiceURL, token: cfg.ML.ServiceToken, client: client}
}

type mlPredictRequest struct {
	Stats       dto.InsightStatsDTO   `json:"stats"`
	UserProfile dto.InsightProfileDTO `json:"user_profile"`
}

func (p *mlInsightProvider) Name() string { return config.InsightsProviderML }

func (p *mlInsightProvider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

func (p *mlInsightProvider) Generate(ctx context.Context, userID uint, stats dto.InsightStatsDTO, profileName string) (json.RawMessage, error) {
	body, err := json.Marshal(mlPredictRequest{Stats: stats, UserProfile: dto.InsightProfileDTO{Name: profileName}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode prediction request: %w", err)
	}

	url := fmt.Sprintf("%s/api/predict/%d", p.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-SERVICE-TOKEN", p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, newError(KindUpstream, "insight service is unreachable", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxMLResponseBytes))
	if err != nil {
		return nil, newError(KindUpstream, "failed to read insight service response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn().Int("status", resp.StatusCode).Str("body", string(payload)).Uint("userID", userID).Msg("Generate: Insight service returned an error")
		return nil, newError(KindUpstream, fmt.Sprintf("insight service error: %s", http.StatusText(resp.StatusCode)), nil).
			with("upstream_status", resp.StatusCode)
	}
	if !json.Valid(payload) {
		return nil, newError(KindUpstream, "insight service returned invalid JSON", nil)
	}
	return json.RawMessage(payload), nil
}

func (p *mlInsightProvider) Health() dto.InsightHealthDTO {
	return dto.InsightHealthDTO{
		Status:          "ok",
		Provider:        p.Name(),
		ServiceURL:      p.baseURL,
		TokenConfigured: p.token != "",
	}
}
