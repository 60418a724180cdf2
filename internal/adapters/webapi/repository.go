package webapi

import (
	"context"
	"net/http"
	"time"

	"github.com/bale2838/Tetris/internal/domain"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

const (
	clientTimeout       = 5 * time.Second
	sessionsEndpoint    = "/sessions"
	healthCheckEndpoint = "/health"
)

type repository struct {
	cli *http.Client
}

func New() repository {
	return repository{
		cli: &http.Client{Timeout: clientTimeout},
	}
}

func (r repository) HealthCheck(ctx context.Context, addr string) (*domain.HealthCheckResponse, error) {
	result := new(domain.HealthCheckResponse)
	if err := r.get(ctx, addr, healthCheckEndpoint, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r repository) Sessions(ctx context.Context, addr string) ([]domain.SessionInfo, error) {
	var result []domain.SessionInfo
	if err := r.get(ctx, addr, sessionsEndpoint, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r repository) get(ctx context.Context, addr, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr+endpoint, nil)
	if err != nil {
		return errors.WithMessage(err, "new get request")
	}
	resp, err := r.cli.Do(req)
	if err != nil {
		return errors.WithMessagef(err, "call http endpoint '%s'", endpoint)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected response status '%s'", resp.Status)
	}
	if err := jsoniter.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.WithMessage(err, "decode json response body")
	}
	return nil
}
