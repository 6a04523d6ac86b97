package session

import "github.com/raphaelgruber/chatline/internal/models"

// Timeline is the ordered message view of one conversation.
//
// At most one entry is a loading placeholder, and it is always the last entry.
// Timeline is not safe for concurrent use; the Controller guards it.
type Timeline struct {
	entries []models.Message
}

// Len returns the number of entries, placeholder included.
func (t *Timeline) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the entries in chronological order.
func (t *Timeline) Entries() []models.Message {
	out := make([]models.Message, len(t.entries))
	copy(out, t.entries)
	return out
}

// Append adds a settled entry. With a live placeholder the entry goes right
// before it so the placeholder stays last.
func (t *Timeline) Append(m models.Message) {
	m.IsLoading = false
	if n := len(t.entries); n > 0 && t.entries[n-1].IsLoading {
		t.entries = append(t.entries, t.entries[n-1])
		t.entries[n-1] = m
		return
	}
	t.entries = append(t.entries, m)
}

// BeginLoading appends a placeholder and returns its identity.
// It returns false if a placeholder is already live.
func (t *Timeline) BeginLoading() (string, bool) {
	if _, ok := t.Placeholder(); ok {
		return "", false
	}
	p := models.NewPlaceholder()
	t.entries = append(t.entries, p)
	return p.ID, true
}

// Placeholder returns the live placeholder, if any.
func (t *Timeline) Placeholder() (models.Message, bool) {
	if n := len(t.entries); n > 0 && t.entries[n-1].IsLoading {
		return t.entries[n-1], true
	}
	return models.Message{}, false
}

// Resolve removes the placeholder with the given identity and appends reply
// in its place. It reports false, changing nothing, when that placeholder is
// no longer present.
func (t *Timeline) Resolve(placeholderID string, reply models.Message) bool {
	for i, m := range t.entries {
		if m.ID != placeholderID {
			continue
		}
		t.entries = append(t.entries[:i], t.entries[i+1:]...)
		t.Append(reply)
		return true
	}
	return false
}

// Replace swaps the whole timeline for msgs.
func (t *Timeline) Replace(msgs []models.Message) {
	t.entries = make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		t.Append(m)
	}
}

// Reset empties the timeline, dropping any placeholder.
func (t *Timeline) Reset() {
	t.entries = nil
}
