package game

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// copyReport puts the match report text on the system clipboard.
func copyReport(r Report) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard unavailable on this system")
	}
	if err := clipboard.WriteAll(r.String()); err != nil {
		return fmt.Errorf("copy report: %w", err)
	}
	return nil
}
