package domain

import "fmt"

// Countdown is the projected wait progress for a job in waiting status.
type Countdown struct {
	FractionElapsed float64 `json:"fraction_elapsed"`
	RemainingLabel  string  `json:"remaining_label"`
}

// ProjectCountdown maps (waitTime, waitStart, now) to an elapsed fraction
// and a human-readable remaining label. The remote snapshot's wait_start
// does not change between polls, so callers re-evaluate this locally at
// least once per second to keep the displayed countdown advancing.
//
// Pure function, no shared state, safe to call concurrently.
func ProjectCountdown(waitTime int64, waitStart, now float64) Countdown {
	if waitTime <= 0 {
		return Countdown{FractionElapsed: 1, RemainingLabel: "0s"}
	}

	elapsed := (now - waitStart) / float64(waitTime)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > 1 {
		elapsed = 1
	}

	remaining := int64(waitStart) + waitTime - int64(now)
	if remaining < 0 {
		remaining = 0
	}

	return Countdown{
		FractionElapsed: elapsed,
		RemainingLabel:  formatRemaining(remaining),
	}
}

func formatRemaining(seconds int64) string {
	if seconds >= 3600 {
		return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
	}
	if seconds >= 60 {
		return fmt.Sprintf("%dm %02ds", seconds/60, seconds%60)
	}
	return fmt.Sprintf("%ds", seconds)
}
