package commands

import (
	"context"
	"fmt"

	"qnotes/pkg/utils"
)

// HandleStats processes --stats
func HandleStats(ctx context.Context, env *Env) error {
	stats, err := env.Notes.Statistics(ctx)
	if err != nil {
		return fmt.Errorf("loading statistics: %w", err)
	}

	env.printf("%-28s %8d   %s\n", "Stale notes", stats.StaleNotesCount, "Notes not updated in more than 2 days")
	env.printf("%-28s %8d   %s\n", "High priority notes", stats.HighPriorityNotesCount, "Number of NOW priority notes")
	env.printf("%-28s %8s   %s\n", "Average completion time", utils.FormatHours(stats.AverageCompletionTimeHours), "Average time to mark note as DONE")
	env.printf("%-28s %8s   %s\n", "Average deletion time", utils.FormatHours(stats.AverageDeletionTimeHours), "Average time to deletion")
	return nil
}
