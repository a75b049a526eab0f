// Package dnc maintains the do-not-contact deny list. Every outbound
// dispatch consults it before any provider call.
package dnc

import (
	"strings"

	"go.uber.org/zap"

	"talentreach/internal/database"
	"talentreach/pkg/models"
)

// Registry is the consent deny-list over the persistent store.
type Registry struct {
	store *database.Store
	log   *zap.Logger
}

// NewRegistry returns a Registry backed by the given store.
func NewRegistry(store *database.Store, log *zap.Logger) *Registry {
	return &Registry{store: store, log: log}
}

// NormalizeValue canonicalizes a contact address for registry comparison.
// Phone numbers keep digits and a leading +; emails are lowercased.
func NormalizeValue(t models.DNCType, value string) string {
	if t == models.DNCPhone {
		var b strings.Builder
		for i, r := range value {
			if r >= '0' && r <= '9' || (r == '+' && i == 0) {
				b.WriteRune(r)
			}
		}
		return b.String()
	}
	return strings.ToLower(strings.TrimSpace(value))
}

// Check reports whether the address is on the deny list.
func (r *Registry) Check(t models.DNCType, value string) (bool, error) {
	return r.store.DNCExists(t, NormalizeValue(t, value))
}

// Add puts an address on the deny list. Adding an address that is already
// listed is a no-op.
func (r *Registry) Add(t models.DNCType, value string, reason models.DNCReason) (*models.DNCEntry, error) {
	entry := &models.DNCEntry{
		Type:   t,
		Value:  NormalizeValue(t, value),
		Reason: reason,
	}
	inserted, err := r.store.InsertDNC(entry)
	if err != nil {
		return nil, err
	}
	if inserted {
		r.log.Info("added to do-not-contact list",
			zap.String("type", string(t)),
			zap.String("value", entry.Value),
			zap.String("reason", string(reason)))
	}
	return entry, nil
}

// Remove deletes an address from the deny list, reporting whether an entry
// was actually removed.
func (r *Registry) Remove(t models.DNCType, value string) (bool, error) {
	removed, err := r.store.DeleteDNC(t, NormalizeValue(t, value))
	if err != nil {
		return false, err
	}
	if removed {
		r.log.Info("removed from do-not-contact list",
			zap.String("type", string(t)),
			zap.String("value", NormalizeValue(t, value)))
	}
	return removed, nil
}

// List returns all active entries, newest first.
func (r *Registry) List() ([]*models.DNCEntry, error) {
	return r.store.ListDNC()
}
