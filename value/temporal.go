package value

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Precision is the granularity of a Date/DateTime/Time value. Ordering
// matters: it is used both for comparison rules and for temporal arithmetic's
// "minimum of input precisions" rule (spec.md §4.7).
type Precision int

const (
	PrecisionYear Precision = iota
	PrecisionMonth
	PrecisionDay
	PrecisionHour
	PrecisionMinute
	PrecisionSecond
	PrecisionMillisecond
)

func (p Precision) String() string {
	switch p {
	case PrecisionYear:
		return "year"
	case PrecisionMonth:
		return "month"
	case PrecisionDay:
		return "day"
	case PrecisionHour:
		return "hour"
	case PrecisionMinute:
		return "minute"
	case PrecisionSecond:
		return "second"
	case PrecisionMillisecond:
		return "millisecond"
	default:
		return "unknown"
	}
}

// Temporal is the shared representation backing Date, DateTime, and Time
// values: an absolute instant plus the precision at which it was specified.
// Year/Month/Day/Hour/Minute/Second/Nanosecond mirror time.Time's fields so
// comparisons can be done component-by-component without re-parsing text.
type Temporal struct {
	Year, Month, Day          int
	Hour, Minute, Second, Ns  int
	HasTZ                     bool
	TZOffsetSeconds           int // east of UTC
	Precision                 Precision
	IsTimeOnly                bool // Time literal (@Thh:mm:ss), no date component
}

// ToTime returns the absolute instant as a time.Time, defaulting missing
// components to their minimum value and an unspecified offset to UTC. Used
// only for arithmetic and formatting, never for equality (which is
// component-wise and precision aware).
func (t Temporal) ToTime() time.Time {
	loc := time.UTC
	if t.HasTZ {
		loc = time.FixedZone("", t.TZOffsetSeconds)
	}
	year, month, day := t.Year, t.Month, t.Day
	if t.IsTimeOnly {
		year, month, day = 1, 1, 1
	}
	if month == 0 {
		month = 1
	}
	if day == 0 {
		day = 1
	}
	return time.Date(year, time.Month(month), day, t.Hour, t.Minute, t.Second, t.Ns, loc)
}

// Component returns the value of the component named by p ("biggest" field
// first), and whether that component is defined at this Temporal's
// precision.
func (t Temporal) Component(p Precision) (int, bool) {
	if p > t.Precision {
		return 0, false
	}
	switch p {
	case PrecisionYear:
		return t.Year, true
	case PrecisionMonth:
		return t.Month, true
	case PrecisionDay:
		return t.Day, true
	case PrecisionHour:
		return t.Hour, true
	case PrecisionMinute:
		return t.Minute, true
	case PrecisionSecond:
		return t.Second, true
	case PrecisionMillisecond:
		return t.Ns / 1e6, true
	default:
		return 0, false
	}
}

// ParseDate parses @YYYY, @YYYY-MM, or @YYYY-MM-DD (the '@' already stripped).
func ParseDate(s string) (Temporal, error) {
	parts := strings.Split(s, "-")
	t := Temporal{}
	y, err := strconv.Atoi(parts[0])
	if err != nil || len(parts[0]) != 4 {
		return Temporal{}, fmt.Errorf("malformed date %q", s)
	}
	t.Year = y
	t.Precision = PrecisionYear
	if len(parts) >= 2 {
		m, err := strconv.Atoi(parts[1])
		if err != nil {
			return Temporal{}, fmt.Errorf("malformed date %q", s)
		}
		t.Month = m
		t.Precision = PrecisionMonth
	}
	if len(parts) >= 3 {
		d, err := strconv.Atoi(parts[2])
		if err != nil {
			return Temporal{}, fmt.Errorf("malformed date %q", s)
		}
		t.Day = d
		t.Precision = PrecisionDay
	}
	return t, nil
}

// ParseDateTime parses @YYYY-MM-DDThh[:mm[:ss[.sss]]][(+|-)hh:mm|Z].
func ParseDateTime(s string) (Temporal, error) {
	datePart := s
	timePart := ""
	if idx := strings.IndexByte(s, 'T'); idx >= 0 {
		datePart = s[:idx]
		timePart = s[idx+1:]
	}
	t, err := ParseDate(datePart)
	if err != nil {
		return Temporal{}, err
	}
	if timePart == "" {
		return t, nil
	}
	tm, err := parseTimeBody(timePart)
	if err != nil {
		return Temporal{}, err
	}
	t.Hour, t.Minute, t.Second, t.Ns = tm.Hour, tm.Minute, tm.Second, tm.Ns
	t.HasTZ, t.TZOffsetSeconds = tm.HasTZ, tm.TZOffsetSeconds
	if tm.Precision > PrecisionDay || (t.Precision == PrecisionDay && timePart != "") {
		t.Precision = tm.Precision
	}
	return t, nil
}

// ParseTime parses @Thh[:mm[:ss[.sss]]] (the leading "T" already stripped).
func ParseTime(s string) (Temporal, error) {
	t, err := parseTimeBody(s)
	if err != nil {
		return Temporal{}, err
	}
	t.IsTimeOnly = true
	return t, nil
}

func parseTimeBody(s string) (Temporal, error) {
	// strip timezone
	tz := ""
	body := s
	hasTZ := false
	tzOffset := 0
	if idx := strings.IndexAny(s, "Z+"); idx >= 0 {
		body, tz = s[:idx], s[idx:]
	} else if idx := strings.LastIndexByte(s, '-'); idx > 1 { // avoid matching date separators (none here) or leading sign
		body, tz = s[:idx], s[idx:]
	}
	if tz != "" {
		hasTZ = true
		if tz == "Z" {
			tzOffset = 0
		} else {
			sign := 1
			if tz[0] == '-' {
				sign = -1
			}
			tzBody := tz[1:]
			tzParts := strings.Split(tzBody, ":")
			hh, _ := strconv.Atoi(tzParts[0])
			mm := 0
			if len(tzParts) > 1 {
				mm, _ = strconv.Atoi(tzParts[1])
			}
			tzOffset = sign * (hh*3600 + mm*60)
		}
	}
	parts := strings.Split(body, ":")
	t := Temporal{HasTZ: hasTZ, TZOffsetSeconds: tzOffset, Precision: PrecisionHour}
	hh, err := strconv.Atoi(parts[0])
	if err != nil {
		return Temporal{}, fmt.Errorf("malformed time %q", s)
	}
	t.Hour = hh
	if len(parts) >= 2 {
		mm, err := strconv.Atoi(parts[1])
		if err != nil {
			return Temporal{}, fmt.Errorf("malformed time %q", s)
		}
		t.Minute = mm
		t.Precision = PrecisionMinute
	}
	if len(parts) >= 3 {
		secStr := parts[2]
		secWhole := secStr
		frac := ""
		if dot := strings.IndexByte(secStr, '.'); dot >= 0 {
			secWhole = secStr[:dot]
			frac = secStr[dot+1:]
		}
		ss, err := strconv.Atoi(secWhole)
		if err != nil {
			return Temporal{}, fmt.Errorf("malformed time %q", s)
		}
		t.Second = ss
		t.Precision = PrecisionSecond
		if frac != "" {
			for len(frac) < 9 {
				frac += "0"
			}
			ns, _ := strconv.Atoi(frac[:9])
			t.Ns = ns
			t.Precision = PrecisionMillisecond
		}
	}
	return t, nil
}

// String renders the Temporal back to FHIRPath literal text (without the
// leading '@').
func (t Temporal) String() string {
	var sb strings.Builder
	if !t.IsTimeOnly {
		fmt.Fprintf(&sb, "%04d", t.Year)
		if t.Precision >= PrecisionMonth {
			fmt.Fprintf(&sb, "-%02d", t.Month)
		}
		if t.Precision >= PrecisionDay {
			fmt.Fprintf(&sb, "-%02d", t.Day)
		}
		if t.Precision >= PrecisionHour {
			sb.WriteByte('T')
		}
	} else {
		sb.WriteByte('T')
	}
	if t.Precision >= PrecisionHour {
		fmt.Fprintf(&sb, "%02d", t.Hour)
		if t.Precision >= PrecisionMinute {
			fmt.Fprintf(&sb, ":%02d", t.Minute)
		}
		if t.Precision >= PrecisionSecond {
			fmt.Fprintf(&sb, ":%02d", t.Second)
		}
		if t.Precision >= PrecisionMillisecond {
			fmt.Fprintf(&sb, ".%03d", t.Ns/1e6)
		}
		if t.HasTZ {
			if t.TZOffsetSeconds == 0 {
				sb.WriteByte('Z')
			} else {
				sign := '+'
				off := t.TZOffsetSeconds
				if off < 0 {
					sign = '-'
					off = -off
				}
				fmt.Fprintf(&sb, "%c%02d:%02d", sign, off/3600, (off%3600)/60)
			}
		}
	}
	return sb.String()
}

// ShiftDays adds a (possibly fractional, possibly negative) number of days
// to t, preserving its precision, timezone-presence, and time-only-ness.
// Used by +/- against a calendar-duration Quantity (spec.md §4.7).
func (t Temporal) ShiftDays(days float64) Temporal {
	whole := int64(days)
	fracSeconds := (days - float64(whole)) * 86400
	shifted := t.ToTime().AddDate(0, 0, int(whole)).Add(time.Duration(fracSeconds * float64(time.Second)))
	out := t
	out.Year, out.Month, out.Day = shifted.Year(), int(shifted.Month()), shifted.Day()
	out.Hour, out.Minute, out.Second = shifted.Hour(), shifted.Minute(), shifted.Second()
	out.Ns = shifted.Nanosecond()
	return out
}

// ShiftCalendar adds whole years and months to t using calendar semantics:
// the day-of-month clamps to the last valid day of the resulting month
// (e.g. 2014-01-31 + 1 month -> 2014-02-28) rather than overflowing into the
// next month the way time.Time.AddDate does. Used by +/- against year/month
// calendar-duration Quantities (spec.md §4.7).
func (t Temporal) ShiftCalendar(years, months int) Temporal {
	out := t
	day := t.Day
	if day == 0 {
		day = 1
	}
	month := t.Month
	if month == 0 {
		month = 1
	}
	total := t.Year*12 + (month - 1) + years*12 + months
	y := total / 12
	m := total % 12
	if m < 0 {
		m += 12
		y--
	}
	out.Year = y
	out.Month = m + 1
	if t.Precision >= PrecisionDay {
		if last := daysInMonth(out.Year, out.Month); day > last {
			day = last
		}
		out.Day = day
	}
	return out
}

// daysInMonth returns the number of days in the given calendar month, used to
// clamp day-of-month after a calendar shift (e.g. February in a leap year).
func daysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// CompareTemporal implements spec.md §3.4/§8.8's precision-aware ordering.
// ok=false means Empty (incomparable precisions, non-prefix).
func CompareTemporal(a, b Temporal) (cmp int, ok bool) {
	minP := a.Precision
	if b.Precision < minP {
		minP = b.Precision
	}
	for p := PrecisionYear; p <= minP; p++ {
		av, _ := a.Component(p)
		bv, _ := b.Component(p)
		if av != bv {
			if av < bv {
				return -1, true
			}
			return 1, true
		}
	}
	if a.Precision == b.Precision {
		return 0, true
	}
	// components agree up to the shared precision: a strict prefix, so
	// ordering (and equality) is Empty rather than false, per spec.md §3.4.
	return 0, false
}
