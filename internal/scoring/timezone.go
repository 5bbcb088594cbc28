package scoring

import (
	"time"

	"github.com/aa5177-adm/ticket-ai/internal/config"
	"github.com/aa5177-adm/ticket-ai/internal/model"
)

// utcHourFraction returns the UTC hour-of-day as a fraction, e.g. 02:30 UTC → 2.5.
func utcHourFraction(now time.Time) float64 {
	u := now.UTC()
	return float64(u.Hour()) + float64(u.Minute())/60 + float64(u.Second())/3600
}

// inISTWindow reports whether now falls in the configured [start, end) UTC
// window during which India-based members are preferred.
func inISTWindow(cfg config.Config, now time.Time) bool {
	h := utcHourFraction(now)
	return h >= cfg.ISTWindowStartUTC && h < cfg.ISTWindowEndUTC
}

// preferredRegion returns the region preferred by the current time window.
func preferredRegion(cfg config.Config, now time.Time) model.Region {
	if inISTWindow(cfg, now) {
		return model.RegionIN
	}
	return model.RegionUS
}

// timezoneScore computes the timezone component per spec.md §4.2.5: base
// 1.0/0.2 by region match, then the first matching override on the 0.2 floor.
func timezoneScore(cfg config.Config, now time.Time, ticketPriority model.Priority, memberRegion model.Region, solvedSimilarCount int) float64 {
	tz := 0.2
	if memberRegion == preferredRegion(cfg, now) {
		tz = 1.0
	}

	if tz != 0.2 {
		return tz
	}

	switch {
	case ticketPriority == model.PriorityCritical:
		return cfg.TZBoostCritical
	case solvedSimilarCount >= cfg.ExpertSolvedCount:
		return cfg.TZBoostExpert
	default:
		return tz
	}
}
