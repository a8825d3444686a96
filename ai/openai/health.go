package openai

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/poiesic/repolens/ai"
)

// healthCheckTimeout bounds the health probe itself.
const healthCheckTimeout = 5 * time.Second

// CheckHealth verifies connectivity to the completion service and the
// validity of the configured API key by listing the available models.
// Returns nil if the service answered 200 OK.
func CheckHealth(ctx context.Context, config *ai.Config) error {
	if err := config.Validate(); err != nil {
		return err
	}

	logger := slog.Default().With("component", "health-check")

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	url := strings.TrimSuffix(config.CompletionHost, "/") + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+config.APIKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		logger.Error("health check request failed", "err", err)
		return fmt.Errorf("completion service unreachable: %w", err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		logger.Error("health check failed", "status", resp.StatusCode)
		return fmt.Errorf("completion service returned status %d; the API key may be invalid or expired", resp.StatusCode)
	}

	logger.Debug("health check succeeded")
	return nil
}
