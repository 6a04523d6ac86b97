package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/raphaelgruber/chatline/internal/models"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validateFormat(f string) error {
	switch f {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", f)
	}
}

// conversationView is the machine-readable form of a directory entry.
type conversationView struct {
	ID        string     `json:"id" yaml:"id"`
	Title     string     `json:"title" yaml:"title"`
	StartTime *time.Time `json:"start_time,omitempty" yaml:"start_time,omitempty"`
}

func writeConversations(w io.Writer, format string, convs []models.ConversationSummary) error {
	if format != formatText {
		views := lo.Map(convs, func(c models.ConversationSummary, _ int) conversationView {
			return conversationView{
				ID:        c.ID.String(),
				Title:     c.DisplayTitle(),
				StartTime: c.Started(),
			}
		})
		return writeStructured(w, format, views)
	}

	if len(convs) == 0 {
		fmt.Fprintln(w, "No past conversations.")
		return nil
	}

	fmt.Fprintf(w, "Conversations (%d):\n\n", len(convs))
	for _, c := range convs {
		fmt.Fprintf(w, "- [%s] %s (%s)\n", c.ID, c.DisplayTitle(), formatTime(c.Started()))
	}
	return nil
}

func writeMessages(w io.Writer, format string, msgs []models.Message) error {
	if format != formatText {
		if msgs == nil {
			msgs = []models.Message{}
		}
		return writeStructured(w, format, msgs)
	}

	if len(msgs) == 0 {
		fmt.Fprintln(w, "No messages.")
		return nil
	}

	for _, m := range msgs {
		fmt.Fprintln(w, formatMessageLine(m))
	}
	return nil
}

func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return validateFormat(format)
	}
}

// formatMessageLine renders a timeline entry as one line of plain text.
func formatMessageLine(m models.Message) string {
	who := "AI"
	if m.Sender == models.SenderUser {
		who = "You"
	}
	line := who + ": " + m.Text
	if m.Timestamp != nil {
		line = "[" + m.Timestamp.Local().Format("2006-01-02 15:04") + "] " + line
	}
	return line
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// formatClock renders a conversation start as hours and minutes for the sidebar.
func formatClock(c models.ConversationSummary) string {
	t := c.Started()
	if t == nil {
		return "N/A"
	}
	return t.Local().Format("15:04")
}

// truncateRunes shortens s to at most n runes, adding "…" if truncated.
func truncateRunes(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
