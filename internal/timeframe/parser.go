package timeframe

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for startDate/endDate query parameters.
const DateLayout = "2006-01-02"

type ParserParams struct {
	StartDate string
	EndDate   string
}

// Parser turns raw startDate/endDate strings into a TimeFrame. The clock is
// injected so defaults are reproducible in tests.
type Parser struct {
	timeProvider TimeProvider
}

func NewParser(timeProvider ...TimeProvider) *Parser {
	var provider TimeProvider = &DefaultTimeProvider{}
	if len(timeProvider) > 0 && timeProvider[0] != nil {
		provider = timeProvider[0]
	}
	return &Parser{timeProvider: provider}
}

// Parse builds a TimeFrame from the given params. Missing dates fall back to
// the trailing 30-day window ending now. An explicit end date is widened to
// the end of that day so the bound stays inclusive.
func (p *Parser) Parse(params ParserParams) (*TimeFrame, error) {
	now := p.timeProvider.Now()

	from := now.AddDate(0, 0, -DefaultWindowDays)
	if params.StartDate != "" {
		parsed, err := time.Parse(DateLayout, params.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid 'startDate': %w", err)
		}
		from = parsed
	}

	to := now
	if params.EndDate != "" {
		parsed, err := time.Parse(DateLayout, params.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid 'endDate': %w", err)
		}
		to = endOfDay(parsed)
	}

	return NewTimeFrame(from, to)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
