package models

import (
	"encoding/json"
)

// Kind is the canonical tag of a balance sheet item (e.g. "isa", "credit_card").
type Kind string

// Category is the projection bucket derived from a Kind.
type Category string

const (
	CategoryAsset    Category = "asset"
	CategoryProperty Category = "property"
	CategoryLoan     Category = "loan"
	CategoryIncome   Category = "income"
	CategoryPension  Category = "pension"
	CategoryOther    Category = "other" // Fallback for unrecognised kinds
)

// PropertyMode controls whether a property converts to income in a projection.
type PropertyMode string

const (
	ModeNone PropertyMode = "none"
	ModeRent PropertyMode = "rent"
	ModeSell PropertyMode = "sell"
)

// Valid reports whether m is one of the known modes.
func (m PropertyMode) Valid() bool {
	switch m {
	case ModeNone, ModeRent, ModeSell:
		return true
	}
	return false
}

// =============================================================================
// IDENTITY
// =============================================================================

// ItemIdentity separates the server-assigned ID from the client-session LocalID.
// LocalID exists so the UI can address an item (drag, delete) before the
// server has assigned an ID. It is stripped before persistence.
type ItemIdentity struct {
	ID      string `json:"id,omitempty"`
	LocalID string `json:"localId,omitempty"`
}

// Key returns the identifier used for override and highlight lookups.
func (id ItemIdentity) Key() string {
	if id.ID != "" {
		return id.ID
	}
	return id.LocalID
}

// SameServerItem compares two identities using server IDs only.
func (id ItemIdentity) SameServerItem(other ItemIdentity) bool {
	return id.ID != "" && id.ID == other.ID
}

// =============================================================================
// BALANCE SHEET ITEM
// =============================================================================

// BalanceSheetItem is one entry in a client's personal balance sheet.
type BalanceSheetItem struct {
	ItemIdentity
	Kind        Kind
	Description string
	Currency    string // Empty means "server default" (GBP)

	// Data is the kind-dependent payload (see CapitalData, LoanData, CashFlowData).
	Data ItemData

	// Extra keeps payload keys the normalizer did not recognise.
	Extra map[string]any
}

// MarshalJSON writes the persisted shape: kind, description, currency, ite.
func (item BalanceSheetItem) MarshalJSON() ([]byte, error) {
	ite := make(map[string]any, len(item.Extra)+4)
	for k, v := range item.Extra {
		ite[k] = v
	}
	if item.Data != nil {
		item.Data.writeTo(ite)
	}

	wire := struct {
		ID          string         `json:"id,omitempty"`
		LocalID     string         `json:"localId,omitempty"`
		Kind        Kind           `json:"kind"`
		Description string         `json:"description"`
		Currency    string         `json:"currency,omitempty"`
		ItemData    map[string]any `json:"ite"`
	}{
		ID:          item.ID,
		LocalID:     item.LocalID,
		Kind:        item.Kind,
		Description: item.Description,
		Currency:    item.Currency,
		ItemData:    ite,
	}
	return json.Marshal(wire)
}

// StripLocalIDs returns a copy of items without client-only identifiers,
// ready to be sent to persistence.
func StripLocalIDs(items []BalanceSheetItem) []BalanceSheetItem {
	out := make([]BalanceSheetItem, len(items))
	for i, item := range items {
		item.LocalID = ""
		out[i] = item
	}
	return out
}

// =============================================================================
// PROJECTION OUTPUT
// =============================================================================

// ProjectionRow is the derived projection of one item. Never persisted.
type ProjectionRow struct {
	ItemRef     string       `json:"itemRef"`
	Kind        Kind         `json:"kind"`
	Description string       `json:"description"`
	Category    Category     `json:"category"`
	Current     float64      `json:"current"`
	Future      float64      `json:"future"`
	Series      []float64    `json:"series"` // Year 0..N
	Mode        PropertyMode `json:"mode,omitempty"`

	// Income contribution of a property in rent or sell mode.
	IncomeCurrent float64 `json:"incomeCurrent,omitempty"`
	IncomeFuture  float64 `json:"incomeFuture,omitempty"`
}

// Bucket is a category subtotal.
type Bucket struct {
	Current float64 `json:"current"`
	Future  float64 `json:"future"`
}

// Totals aggregates included projection rows.
type Totals struct {
	CurrentSum    float64             `json:"currentSum"`
	FutureSum     float64             `json:"futureSum"`
	FutureSumReal float64             `json:"futureSumReal"`
	ByCategory    map[Category]Bucket `json:"byCategory"`
}
