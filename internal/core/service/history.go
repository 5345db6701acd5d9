package service

import (
	"time"

	"github.com/niksmo/price-tracker/internal/core/domain"
	"golang.org/x/text/language"
)

type DateFormatter interface {
	FormatDate(time.Time) string
}

// TransformHistory converts raw price samples into a display series in the
// order delivered.
//
// The ordinary price line is present for the whole series when at least
// one entry carries an ordinary price.
func TransformHistory(
	entries []domain.HistoryEntry, f DateFormatter,
) domain.Series {
	s := domain.Series{Points: make([]domain.SeriesPoint, len(entries))}
	for i, e := range entries {
		s.Points[i] = domain.SeriesPoint{
			Label:         f.FormatDate(e.Timestamp),
			Timestamp:     e.Timestamp,
			Price:         e.Price,
			OrdinaryPrice: e.OrdinaryPrice,
		}
		if e.OrdinaryPrice != nil {
			s.HasOrdinary = true
		}
	}
	return s
}

// Short date layouts keyed by full tag first, then by base language.
var dateLayouts = map[string]string{
	"en-US": "1/2/2006",
	"en-GB": "02/01/2006",
	"en":    "1/2/2006",
	"it":    "2/1/2006",
	"fr":    "02/01/2006",
	"es":    "2/1/2006",
	"pt":    "02/01/2006",
	"de":    "2.1.2006",
	"ru":    "02.01.2006",
	"pl":    "2.01.2006",
	"nl":    "2-1-2006",
	"ja":    "2006/1/2",
	"zh":    "2006/1/2",
}

const isoDateLayout = "2006-01-02"

// A LocaleDateFormatter renders short dates the way the locale writes them.
type LocaleDateFormatter struct {
	layout string
	loc    *time.Location
}

// NewLocaleDateFormatter falls back to ISO dates for unknown locales and to
// [time.Local] for a nil location.
func NewLocaleDateFormatter(
	tag language.Tag, loc *time.Location,
) LocaleDateFormatter {
	if loc == nil {
		loc = time.Local
	}
	return LocaleDateFormatter{layout: layoutFor(tag), loc: loc}
}

func layoutFor(tag language.Tag) string {
	if l, ok := dateLayouts[tag.String()]; ok {
		return l
	}
	base, _ := tag.Base()
	if l, ok := dateLayouts[base.String()]; ok {
		return l
	}
	return isoDateLayout
}

func (f LocaleDateFormatter) FormatDate(t time.Time) string {
	return t.In(f.loc).Format(f.layout)
}
