package client

import (
	"context"

	"github.com/constructora/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientFilter narrows client listings
type ClientFilter struct {
	shared.Filter
	Status    Status
	ProjectID *uuid.UUID
}

// ClientRepository persists clients
type ClientRepository interface {
	// FindByID returns nil when the client does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
	// FindByIDForUpdate locks the client row for the rest of the transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Client, error)
	FindAll(ctx context.Context, filter ClientFilter) ([]Client, int64, error)
	ExistsByDocument(ctx context.Context, documentNumber string) (bool, error)
	// Save inserts a new client
	Save(ctx context.Context, c *Client) error
	// SaveWithLock updates a client, failing with CONCURRENT_MODIFICATION on a stale version
	SaveWithLock(ctx context.Context, c *Client) error
}

// RenunciationFilter narrows renunciation listings
type RenunciationFilter struct {
	shared.Filter
	Status   RenunciationStatus
	ClientID *uuid.UUID
}

// RenunciationRepository persists renunciations
type RenunciationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Renunciation, error)
	FindAll(ctx context.Context, filter RenunciationFilter) ([]Renunciation, int64, error)
	Save(ctx context.Context, r *Renunciation) error
	SaveWithLock(ctx context.Context, r *Renunciation) error
}
