/*
Package snapshot sorts the collected announcements by deadline and writes the
single output document of a run.
*/
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jcondori/convoscraper/internal/types"
)

const (
	deadlineLayout     = "02/01/2006 3:04 PM"
	deadlineDateLayout = "02/01/2006"
)

// deadlineKey converts an announcement's deadline into a sortable instant.
// A missing time means midnight; anything unparseable sorts to the zero
// time, i.e. before every real deadline.
func deadlineKey(a types.Announcement) time.Time {
	if a.DeadlineDate == "" {
		return time.Time{}
	}
	if a.DeadlineTime != "" {
		if t, err := time.Parse(deadlineLayout, a.DeadlineDate+" "+a.DeadlineTime); err == nil {
			return t
		}
	}
	if t, err := time.Parse(deadlineDateLayout, a.DeadlineDate); err == nil {
		return t
	}
	return time.Time{}
}

// Build stable-sorts the announcements by (deadline date, deadline time)
// ascending and wraps them with run metadata.
func Build(anns []types.Announcement, source, baseURL string, now time.Time) types.Snapshot {
	sorted := make([]types.Announcement, len(anns))
	copy(sorted, anns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return deadlineKey(sorted[i]).Before(deadlineKey(sorted[j]))
	})

	return types.Snapshot{
		Metadata: types.Metadata{
			Source:       source,
			BaseURL:      baseURL,
			ScrapedAtUTC: now.UTC().Format("2006-01-02T15:04:05Z"),
			Total:        len(sorted),
		},
		Announcements: sorted,
	}
}

// Write serializes the snapshot as indented JSON at path, creating parent
// directories as needed.
func Write(path string, snap types.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	return nil
}
