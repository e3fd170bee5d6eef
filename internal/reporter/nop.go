package reporter

import "go-cityboard-automation/internal/runner"

// Nop is used when Telegram is not configured.
type Nop struct{}

func (Nop) SendRunSummary(string, []runner.Summary) error { return nil }

func (Nop) SendError(error) error { return nil }
