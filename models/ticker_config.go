package models

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Raw ticker-config field names as stored in the project configuration table.
const (
	FieldTicker              = "ticker"
	FieldEpochStartDateUtc   = "epoch_start_date_utc"
	FieldEpochLengthDays     = "epoch_length_days"
	FieldLikeMultiplier      = "like_multiplier"
	FieldRetweetMultiplier   = "retweet_multiplier"
	FieldViewMultiplier      = "view_multiplier"
	FieldVideoViewMultiplier = "video_view_multiplier"
	FieldQuoteMultiplier     = "quote_multiplier"
)

// requiredConfigFields is the full set of fields a ticker config must carry.
// A record missing any of them is skipped entirely.
var requiredConfigFields = []string{
	FieldTicker,
	FieldEpochStartDateUtc,
	FieldEpochLengthDays,
	FieldLikeMultiplier,
	FieldRetweetMultiplier,
	FieldViewMultiplier,
	FieldVideoViewMultiplier,
	FieldQuoteMultiplier,
}

// RawConfigRecord is one ticker configuration as handed over by the config
// store, keyed by field name with stringified values. Missing-field detection
// happens here, not in the store.
type RawConfigRecord map[string]string

// Multipliers are the per-ticker weights applied to raw engagement counts.
type Multipliers struct {
	Like      float64
	Quote     float64
	Retweet   float64
	View      float64
	VideoView float64
}

// TickerConfig identifies one campaign and its scoring rubric.
type TickerConfig struct {
	Ticker            string `validate:"required"`
	EpochStartDateUtc string `validate:"required"`
	EpochLengthDays   int    `validate:"gt=0"`
	Multipliers       Multipliers
}

// MissingFieldError reports a required ticker-config field that was absent.
type MissingFieldError struct {
	Ticker string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("ticker config %q is missing required field %q", e.Ticker, e.Field)
}

var configValidator = validator.New()

// ParseTickerConfig builds a TickerConfig from a raw record. A missing field
// yields a MissingFieldError naming the field and ticker. Multiplier values
// that are present but zero or unparseable fall back to 1.
func ParseTickerConfig(raw RawConfigRecord) (TickerConfig, error) {
	ticker := raw[FieldTicker]
	for _, field := range requiredConfigFields {
		if _, ok := raw[field]; !ok {
			return TickerConfig{}, &MissingFieldError{Ticker: ticker, Field: field}
		}
	}

	lengthDays, err := strconv.Atoi(raw[FieldEpochLengthDays])
	if err != nil {
		return TickerConfig{}, fmt.Errorf("ticker config %q: invalid %s %q: %w",
			ticker, FieldEpochLengthDays, raw[FieldEpochLengthDays], err)
	}

	cfg := TickerConfig{
		Ticker:            ticker,
		EpochStartDateUtc: raw[FieldEpochStartDateUtc],
		EpochLengthDays:   lengthDays,
		Multipliers: Multipliers{
			Like:      multiplierOrDefault(raw[FieldLikeMultiplier]),
			Quote:     multiplierOrDefault(raw[FieldQuoteMultiplier]),
			Retweet:   multiplierOrDefault(raw[FieldRetweetMultiplier]),
			View:      multiplierOrDefault(raw[FieldViewMultiplier]),
			VideoView: multiplierOrDefault(raw[FieldVideoViewMultiplier]),
		},
	}

	if err := configValidator.Struct(cfg); err != nil {
		return TickerConfig{}, fmt.Errorf("ticker config %q failed validation: %w", ticker, err)
	}
	return cfg, nil
}

// multiplierOrDefault coerces a multiplier value, falling back to 1 when the
// value is zero or does not parse. Coercion failure is not an error.
func multiplierOrDefault(value string) float64 {
	m, err := strconv.ParseFloat(value, 64)
	if err != nil || m == 0 {
		return 1
	}
	return m
}
