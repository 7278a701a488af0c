// Package store persists client balance sheets.
//
// Items are stored as one JSON document per (team, client). Every stored item
// carries a server id, assigned on first save. Local ids are client-side only
// and never written; loading re-runs normalization so stored documents from
// older clients still decode.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"wealth_planner/pkg/core/classify"
	"wealth_planner/pkg/models"
)

// ErrNotFound is returned when no balance sheet exists for a client.
var ErrNotFound = errors.New("balance sheet not found")

// ItemStore loads and saves a client's balance-sheet items.
type ItemStore interface {
	Load(ctx context.Context, teamID, clientID string) ([]models.BalanceSheetItem, error)
	Save(ctx context.Context, teamID, clientID string, items []models.BalanceSheetItem) error
}

func validateKey(teamID, clientID string) error {
	if strings.TrimSpace(teamID) == "" || strings.TrimSpace(clientID) == "" {
		return fmt.Errorf("team and client ids are required")
	}
	return nil
}

// AssignIDs returns a copy of items where every item without a server id
// gets a new one. Local ids are kept so callers can match the result back
// to what they sent.
func AssignIDs(items []models.BalanceSheetItem) []models.BalanceSheetItem {
	out := make([]models.BalanceSheetItem, len(items))
	for i, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			item.ID = uuid.NewString()
		}
		out[i] = item
	}
	return out
}

// encodeItems serializes items for storage with server ids assigned and
// local ids removed.
func encodeItems(items []models.BalanceSheetItem) ([]byte, error) {
	data, err := json.Marshal(models.StripLocalIDs(AssignIDs(items)))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal items: %w", err)
	}
	return data, nil
}

func decodeItems(data []byte) ([]models.BalanceSheetItem, error) {
	items, err := classify.NormalizeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode stored items: %w", err)
	}
	return items, nil
}
