// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package sync

import (
	"context"

	"github.com/tomtom215/rewind/internal/logging"
	"github.com/tomtom215/rewind/internal/models"
)

// AccountStore caches account lists per server.
type AccountStore interface {
	Get(ctx context.Context, server string) ([]models.Account, bool)
	Set(ctx context.Context, server string, accounts []models.Account) error
}

// AccountDirectory resolves account names, reading through a cache.
type AccountDirectory struct {
	client *PlexClient
	store  AccountStore
}

// NewAccountDirectory creates a directory over client. store may be nil.
func NewAccountDirectory(client *PlexClient, store AccountStore) *AccountDirectory {
	return &AccountDirectory{client: client, store: store}
}

// Accounts returns the server's accounts, from cache when available.
func (d *AccountDirectory) Accounts(ctx context.Context) ([]models.Account, error) {
	server, err := d.client.ServerKey(ctx)
	if err != nil {
		return nil, err
	}
	if d.store != nil {
		if accounts, ok := d.store.Get(ctx, server); ok {
			return accounts, nil
		}
	}

	accounts, err := d.client.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	if d.store != nil {
		if err := d.store.Set(ctx, server, accounts); err != nil {
			logging.Ctx(ctx).Debug().Err(err).Msg("account cache write failed")
		}
	}
	return accounts, nil
}
