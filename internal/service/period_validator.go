package service

import (
	"fmt"

	"github.com/univpanel/scheduling-api/internal/models"
	appErrors "github.com/univpanel/scheduling-api/pkg/errors"
)

// PeriodValidator is a pure rule checker for candidate periods. It never
// touches persistence; overlap detection against committed periods belongs
// to the period service.
type PeriodValidator struct{}

// NewPeriodValidator constructs a validator.
func NewPeriodValidator() *PeriodValidator {
	return &PeriodValidator{}
}

// Validate checks a candidate period against the temporal rules, in order:
// schedulable weekday, strictly positive range, non-empty references, and
// the teaching window for the day. The first violated rule wins.
func (v *PeriodValidator) Validate(period models.Period) error {
	if !period.Weekday.Schedulable() {
		return appErrors.Clone(appErrors.ErrInvalidDay, fmt.Sprintf("weekday %q is not schedulable", string(period.Weekday)))
	}

	if !period.StartTime.Before(period.EndTime) {
		return appErrors.Clone(appErrors.ErrInvalidRange, fmt.Sprintf("start %s must come before end %s", period.StartTime, period.EndTime))
	}

	if period.RoomID == "" || period.SubjectID == "" {
		return appErrors.Clone(appErrors.ErrMissingReference, "")
	}

	earliest, latest := models.DayBounds(period.Weekday)
	if period.StartTime.Before(earliest) || period.EndTime.After(latest) {
		return appErrors.Clone(appErrors.ErrOutOfRange,
			fmt.Sprintf("period %s-%s lies outside the %s window %s-%s", period.StartTime, period.EndTime, string(period.Weekday), earliest, latest))
	}

	return nil
}
