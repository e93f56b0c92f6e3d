package service

import (
	"time"

	"shareloop/internal/domain"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock. Tests substitute a fixed one to pin
// temporal classification.
func SystemClock() domain.Clock { return systemClock{} }
