package cli

import (
	"context"
	"fmt"
	"time"
)

// History prints the most recent transfers, newest first.
func (a *App) History(ctx context.Context) error {

	items, err := a.history.List(ctx, 20)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		printlnFn("No transfers yet.")
		return nil
	}

	for _, tr := range items {
		when := time.UnixMilli(tr.CreatedAt).Format("2006-01-02 15:04")
		line := fmt.Sprintf("%s  %-4s %-6s %-30s %8d bytes", when, tr.Direction, tr.Channel, tr.Name, tr.Size)
		if tr.Encrypted {
			line += "  [encrypted]"
		}
		if tr.Vibe != "" {
			line += "  vibe=" + tr.Vibe
		}
		printlnFn(line)
	}
	return nil
}

// Vibes lists the locator themes the sender may pick from.
func (a *App) Vibes(ctx context.Context) error {
	for _, key := range a.vibes.Keys() {
		printlnFn(fmt.Sprintf("%-10s %s", key, a.vibes.Title(key)))
	}
	return nil
}
