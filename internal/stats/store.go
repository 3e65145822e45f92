package stats

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Store counts delivered messages per user.
// All implementations must be safe for concurrent use.
type Store interface {
	// RecordMessage increments the message count for username.
	RecordMessage(ctx context.Context, username string) error

	// Summary renders the usage statistics as display text.
	Summary(ctx context.Context) (string, error)
}

// UserCount is one user's message total.
type UserCount struct {
	Username string
	Messages int64
}

// topUsers is how many of the most active users the summary names.
const topUsers = 3

// RenderSummary formats counts as the statistics text: total, average, and
// the top three active users.
func RenderSummary(counts []UserCount) string {
	if len(counts) == 0 {
		return "No statistics available."
	}

	var total int64
	for _, c := range counts {
		total += c.Messages
	}
	avg := float64(total) / float64(len(counts))

	sorted := append([]UserCount(nil), counts...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Messages != sorted[j].Messages {
			return sorted[i].Messages > sorted[j].Messages
		}
		return sorted[i].Username < sorted[j].Username
	})
	if len(sorted) > topUsers {
		sorted = sorted[:topUsers]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Total number of messages sent: %d\n", total)
	fmt.Fprintf(&b, "Average number of messages per user: %.2f\n", avg)
	b.WriteString("Top three active users:\n")
	for _, c := range sorted {
		fmt.Fprintf(&b, "%s: %d messages\n", c.Username, c.Messages)
	}
	return b.String()
}
