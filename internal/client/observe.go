package client

import (
	"time"
)

// maxBodyLogLen is the maximum length of a response body quoted in errors and logs.
const maxBodyLogLen = 200

// slowCallThreshold is the duration above which calls are logged at WARN level.
// Sends wait on the assistant, so the bar is high.
const slowCallThreshold = 5 * time.Second

// observe logs one call with timing and records it in the collector.
func (c *Client) observe(op, method, path string, status int, duration time.Duration, err error) {
	if c.collector != nil {
		c.collector.RecordCall(op, duration, err != nil)
	}

	attrs := []any{
		"op", op,
		"method", method,
		"path", path,
		"duration_ms", duration.Milliseconds(),
	}
	if status != 0 {
		attrs = append(attrs, "status", status)
	}

	switch {
	case err != nil:
		attrs = append(attrs, "error", err.Error())
		c.logger.Error("request failed", attrs...)
	case duration > slowCallThreshold:
		c.logger.Warn("slow request", attrs...)
	default:
		c.logger.Debug("request completed", attrs...)
	}
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
