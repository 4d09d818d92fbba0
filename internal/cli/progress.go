package cli

import (
	"fmt"
	"strings"
)

// ─── Progress Bar ───────────────────────────────────────────────────────────
// Tier progress for the status view.
// Shows: [=============>................]  42%

const barWidth = 30 // Characters for the progress bar

// tierBar renders pct (0..100) as a fixed-width bar.
func tierBar(pct float64) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	filled := int(pct / 100 * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	empty := barWidth - filled

	var bar string
	if filled == barWidth {
		bar = strings.Repeat("=", filled)
	} else if filled > 0 {
		bar = strings.Repeat("=", filled-1) + ">" + strings.Repeat(".", empty)
	} else {
		bar = strings.Repeat(".", barWidth)
	}
	return fmt.Sprintf("[%s] %3.0f%%", bar, pct)
}

// flameGauge renders weekly fuel against the target, e.g. "(####------) 40%".
func flameGauge(fuel, target int64) string {
	if target <= 0 {
		return "(----------)   0%"
	}
	pct := float64(fuel) / float64(target) * 100
	cells := int(pct / 10)
	if cells > 10 {
		cells = 10
	}
	if cells < 0 {
		cells = 0
	}
	return fmt.Sprintf("(%s%s) %3.0f%%", strings.Repeat("#", cells), strings.Repeat("-", 10-cells), pct)
}
