package domain

import (
	"context"
	"time"
)

type SessionInfo struct {
	Id        string    `json:"id"`
	Connected bool      `json:"connected"`
	LastSeen  time.Time `json:"last_seen"`
}

type HubUseCase interface {
	Handle(ctx context.Context, client Client) error
	Sessions() []SessionInfo
	Close() error
}

type HealthCheckResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}
