package usecases

import (
	"context"
	"log/slog"

	"github.com/merehead/crypto-tx-notifier/internal/core/ports"
)

// UnknownName is rendered whenever a merchant or project cannot be resolved.
const UnknownName = "Unknown"

// Directory resolves merchant and project ids to display names. The
// merchant mapping is loaded once at startup; project names are looked up
// per transaction. A failed lookup degrades to UnknownName, never an error.
type Directory struct {
	logger    *slog.Logger
	store     ports.TransactionStore
	merchants map[int64]string
}

func NewDirectory(ctx context.Context, logger *slog.Logger, store ports.TransactionStore) (*Directory, error) {
	merchants, err := store.Merchants(ctx)
	if err != nil {
		return nil, err
	}

	logger.Info("Merchant directory loaded", "merchants", len(merchants))

	return &Directory{
		logger:    logger,
		store:     store,
		merchants: merchants,
	}, nil
}

func (d *Directory) MerchantName(merchantID int64) string {
	if name, ok := d.merchants[merchantID]; ok {
		return name
	}
	return UnknownName
}

func (d *Directory) ProjectName(ctx context.Context, projectID int64) string {
	name, err := d.store.ProjectName(ctx, projectID)
	if err != nil {
		d.logger.Warn("Project name lookup failed", "project_id", projectID, "error", err)
		return UnknownName
	}
	if name == "" {
		return UnknownName
	}
	return name
}
