package ui

import (
	"time"

	"github.com/fd1az/synthetic-orderbook/business/synthetics/domain"
)

// BookMsg carries the outcome of one synthetic book build.
type BookMsg struct {
	Result   *domain.Result
	Err      error
	Duration time.Duration
	At       time.Time
}

// TickMsg schedules the next periodic rebuild.
type TickMsg struct{}
