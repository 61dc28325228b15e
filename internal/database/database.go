// Package database provides the data access layer.
package database

import (
	"context"

	"github.com/factchecker/misinfo-detector/internal/models"
)

// Store defines the interface for data persistence. Analysis results are
// never stored; only UI settings and the request audit trail are.
type Store interface {
	// Settings
	GetSetting(ctx context.Context, key string) (*models.Setting, error)
	PutSetting(ctx context.Context, setting *models.Setting) error
	ListSettings(ctx context.Context) ([]*models.Setting, error)

	// Audit logs
	LogRequest(ctx context.Context, log *models.AuditLog) error
	GetAuditLogs(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)

	// Lifecycle
	Close() error
	Migrate() error
}
