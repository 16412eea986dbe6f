package helpers

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/doeshing/quest/internal/domain"
	"github.com/doeshing/quest/internal/infrastructure/ai"
)

const previewChars = 60

// RenderCompletion prints the reply to out and, when verbose, the call
// metadata to meta.
func RenderCompletion(out, meta io.Writer, result domain.CompletionResult, verbose bool) {
	fmt.Fprint(out, result.Content)
	if !strings.HasSuffix(result.Content, "\n") {
		fmt.Fprintln(out)
	}
	if verbose && meta != nil {
		fmt.Fprintf(meta, "[%s | %s | %s]\n", result.ID, result.Model, result.Duration.Round(time.Millisecond))
	}
}

// RenderHistoryRecord prints one history line.
func RenderHistoryRecord(out io.Writer, rec domain.HistoryRecord, now time.Time) {
	status := "ok"
	detail := rec.Reply
	if !rec.Success {
		status = "failed"
		detail = rec.Error
	}
	fmt.Fprintf(out, "%s | %s | %s | %dms | %s -> %s\n",
		shortID(rec.ID),
		humanize.RelTime(rec.Timestamp, now, "ago", "from now"),
		status,
		rec.LatencyMS,
		Preview(rec.LastUserMessage()),
		Preview(detail),
	)
}

// Preview flattens s onto one line and shortens it.
func Preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= previewChars {
		return s
	}
	return string(runes[:previewChars-3]) + "..."
}

// DescribeError adds a hint for errors a user can act on.
func DescribeError(err error) string {
	var apiErr *ai.APIError
	switch {
	case errors.Is(err, ai.ErrMissingAPIKey):
		return err.Error() + " (export the key or set provider.auth_env_var in the config)"
	case errors.As(err, &apiErr) && apiErr.Unauthorized():
		return err.Error() + " (check the API key)"
	case errors.As(err, &apiErr) && apiErr.RateLimited():
		return err.Error() + " (rate limited, try again later)"
	default:
		return err.Error()
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
