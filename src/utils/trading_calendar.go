package utils

import (
	"strings"
	"time"

	"market-dashboard/src/logger"
	"market-dashboard/src/models"

	"github.com/scmhub/calendar"
)

// TradingCalendar answers whether the configured exchange trades today and
// whether it is open right now. Exchanges unknown to scmhub/calendar fall back
// to Mon-Fri 09:30-16:00 New York time.
type TradingCalendar struct {
	MIC      string
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

func NewTradingCalendar(mic string, log *logger.Logger) *TradingCalendar {
	mic = strings.ToLower(strings.TrimSpace(mic))
	if mic == "" {
		mic = "xnys"
	}

	// scmhub/calendar.GetCalendar returns a calendar by MIC (ISO 10383)
	cal := calendar.GetCalendar(mic)
	if cal == nil {
		if log != nil {
			log.Warning("No calendar for MIC '%s'. Using simple fallback (Mon-Fri 09:30-16:00 New York).", mic)
		}
		nyLoc, _ := time.LoadLocation("America/New_York")
		if nyLoc == nil {
			nyLoc = time.UTC
		}
		return &TradingCalendar{MIC: mic, Fallback: true, Timezone: nyLoc}
	}

	return &TradingCalendar{MIC: mic, Calendar: cal, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpen checks if the market is open at t.
func (tc *TradingCalendar) IsOpen(t time.Time) bool {
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}

		hour := t.Hour()
		minute := t.Minute()

		// 9:30 - 16:00 NY Time
		return (hour > 9 || (hour == 9 && minute >= 30)) && hour < 16
	}

	return tc.Calendar.IsOpen(t)
}

// -----------------------------------------------------------------------------

// Session labels a dashboard render with the exchange state at t.
func (tc *TradingCalendar) Session(t time.Time) models.MMarketSession {
	return models.MMarketSession{
		MIC:        tc.MIC,
		TradingDay: tc.IsTradingDay(t),
		MarketOpen: tc.IsOpen(t),
	}
}
