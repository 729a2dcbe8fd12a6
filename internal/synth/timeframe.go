package synth

import (
	"fmt"

	"github.com/querysmith/querysmith/internal/esdsl"
	"github.com/querysmith/querysmith/internal/intent"
)

// unitSuffix maps timeframe units to date-math suffixes.
var unitSuffix = map[string]string{
	"minutes": "m",
	"hours":   "h",
	"days":    "d",
	"weeks":   "w",
	"months":  "M",
	"years":   "y",
}

// namedPeriods is the fixed range-expression table for named
// timeframes.
var namedPeriods = map[string]esdsl.Range{
	"today":      {GTE: "now/d", LTE: "now"},
	"yesterday":  {GTE: "now-1d/d", LT: "now/d"},
	"this_week":  {GTE: "now/w", LTE: "now"},
	"this_month": {GTE: "now/M", LTE: "now"},
}

// timeframeRange translates a timeframe into a range clause on the
// given time field. Returns false when the timeframe is nil or carries
// no usable window.
func timeframeRange(tf *intent.Timeframe, timeField string) (esdsl.Range, bool) {
	if tf == nil {
		return esdsl.Range{}, false
	}
	field := timeField
	if tf.Field != "" {
		field = tf.Field
	}

	if tf.Named != "" {
		r, ok := namedPeriods[tf.Named]
		if !ok {
			return esdsl.Range{}, false
		}
		r.Field = field
		return r, true
	}
	if tf.IsRelative() {
		suffix, ok := unitSuffix[tf.Unit]
		if !ok {
			return esdsl.Range{}, false
		}
		return esdsl.Range{
			Field: field,
			GTE:   fmt.Sprintf("now-%d%s", tf.Value, suffix),
			LTE:   "now",
		}, true
	}
	if tf.IsAbsolute() {
		r := esdsl.Range{Field: field}
		if tf.Start != "" {
			r.GTE = tf.Start
		}
		if tf.End != "" {
			r.LTE = tf.End
		}
		return r, true
	}
	return esdsl.Range{}, false
}

// histogramInterval picks the date-histogram bucketing interval for a
// timeframe. Sub-day windows bucket by minute or hour, multi-day by
// day, week, or month; the table is fixed so repeated synthesis is
// deterministic.
func histogramInterval(tf *intent.Timeframe) string {
	if tf == nil {
		return "day"
	}
	if tf.Named != "" {
		switch tf.Named {
		case "today", "yesterday":
			return "hour"
		default:
			return "day"
		}
	}
	if !tf.IsRelative() {
		return "day"
	}
	switch tf.Unit {
	case "minutes":
		return "minute"
	case "hours":
		if tf.Value <= 6 {
			return "minute"
		}
		return "hour"
	case "days":
		if tf.Value <= 2 {
			return "hour"
		}
		if tf.Value <= 31 {
			return "day"
		}
		return "week"
	case "weeks":
		return "week"
	case "months", "years":
		return "month"
	default:
		return "day"
	}
}
