package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// listBackups returns the backup files in dir, newest first.
func listBackups(dir string) ([]Info, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("backup: failed to read backup directory: %w", err)
	}

	var backups []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".db") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			Path:      filepath.Join(dir, entry.Name()),
			Timestamp: info.ModTime(),
			Size:      info.Size(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// applyRetention deletes backups beyond each age tier's cap. Within a tier
// the newest survive.
func applyRetention(dir string, policy RetentionPolicy) error {
	backups, err := listBackups(dir)
	if err != nil {
		return err
	}

	now := time.Now()
	tiers := map[string][]Info{}
	var toDelete []string

	for _, b := range backups {
		age := now.Sub(b.Timestamp)
		switch {
		case age < 24*time.Hour:
			tiers["hourly"] = append(tiers["hourly"], b)
		case age < 7*24*time.Hour:
			tiers["daily"] = append(tiers["daily"], b)
		case age < 30*24*time.Hour:
			tiers["weekly"] = append(tiers["weekly"], b)
		case age < 365*24*time.Hour:
			tiers["monthly"] = append(tiers["monthly"], b)
		default:
			toDelete = append(toDelete, b.Path)
		}
	}

	caps := map[string]int{
		"hourly":  policy.Hourly,
		"daily":   policy.Daily,
		"weekly":  policy.Weekly,
		"monthly": policy.Monthly,
	}
	for tier, kept := range tiers {
		if max := caps[tier]; len(kept) > max {
			for _, b := range kept[max:] {
				toDelete = append(toDelete, b.Path)
			}
		}
	}

	var lastErr error
	for _, path := range toDelete {
		if err := os.Remove(path); err != nil {
			// Keep pruning; report the last failure once.
			lastErr = err
		}
	}
	if lastErr != nil {
		return fmt.Errorf("backup: failed to delete some backups: %w", lastErr)
	}
	return nil
}
