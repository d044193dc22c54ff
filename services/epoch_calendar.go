package services

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrInvalidDate is returned when the run date precedes the campaign's
	// first epoch start.
	ErrInvalidDate = errors.New("invalid date: the current date cannot be before the epoch start date")
	// ErrInvalidEpoch is returned for epoch numbers below 1.
	ErrInvalidEpoch = errors.New("invalid epoch: the current epoch can only be 1 or greater")
)

// epochStartLayouts are the accepted forms of an epoch start timestamp.
var epochStartLayouts = []string{
	time.RFC3339,
	"2006-01-02",
}

// EpochCalendar maps wall-clock time to sequential scoring epochs and back.
type EpochCalendar interface {
	CurrentEpochNumber(now time.Time, epochStartDate string, epochLengthDays int) (int, error)
	EpochStartDate(firstEpochStartDate string, epochNumber int, epochLengthDays int) (time.Time, error)
}

type epochCalendar struct{}

func NewEpochCalendar() EpochCalendar {
	return epochCalendar{}
}

// CurrentEpochNumber returns the 1-based epoch containing now. One second is
// added to now before comparing so a run firing exactly on an epoch boundary
// counts toward the epoch that is starting, not the one that just ended.
func (epochCalendar) CurrentEpochNumber(now time.Time, epochStartDate string, epochLengthDays int) (int, error) {
	start, err := parseEpochStart(epochStartDate)
	if err != nil {
		return 0, err
	}

	shifted := now.Add(time.Second)
	if shifted.Before(start) {
		return 0, ErrInvalidDate
	}
	if shifted.Equal(start) {
		return 1, nil
	}

	diffInDays := shifted.Sub(start).Hours() / 24
	return int(math.Ceil(diffInDays / float64(epochLengthDays))), nil
}

// EpochStartDate returns the start timestamp of the given epoch: the first
// epoch's start plus (epochNumber-1) whole epoch lengths.
func (epochCalendar) EpochStartDate(firstEpochStartDate string, epochNumber int, epochLengthDays int) (time.Time, error) {
	if epochNumber < 1 {
		return time.Time{}, ErrInvalidEpoch
	}

	start, err := parseEpochStart(firstEpochStartDate)
	if err != nil {
		return time.Time{}, err
	}

	return start.AddDate(0, 0, (epochNumber-1)*epochLengthDays), nil
}

func parseEpochStart(value string) (time.Time, error) {
	for _, layout := range epochStartLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable epoch start date %q", value)
}
