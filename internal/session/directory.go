package session

import (
	"time"

	"github.com/raphaelgruber/chatline/internal/models"
)

// Directory caches the user's conversation summaries. It is only ever
// replaced wholesale; the service is the source of truth.
type Directory struct {
	entries     []models.ConversationSummary
	refreshedAt time.Time

	// applied is the sequence number of the refresh that produced entries.
	applied uint64
}

// Entries returns a copy of the summaries in service order.
func (d *Directory) Entries() []models.ConversationSummary {
	out := make([]models.ConversationSummary, len(d.entries))
	copy(out, d.entries)
	return out
}

// RefreshedAt returns when the directory was last replaced.
func (d *Directory) RefreshedAt() time.Time {
	return d.refreshedAt
}

// Find returns the summary for id.
func (d *Directory) Find(id models.ID) (models.ConversationSummary, bool) {
	for _, c := range d.entries {
		if c.ID == id {
			return c, true
		}
	}
	return models.ConversationSummary{}, false
}

// replace installs entries fetched by refresh number seq. Results of a refresh
// older than the one already applied are dropped.
func (d *Directory) replace(seq uint64, entries []models.ConversationSummary, now time.Time) bool {
	if seq <= d.applied {
		return false
	}
	d.applied = seq
	d.entries = make([]models.ConversationSummary, len(entries))
	copy(d.entries, entries)
	d.refreshedAt = now
	return true
}
