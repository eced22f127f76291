package condition

import (
	"fmt"
	"strconv"
	"strings"
)

// IntervalType selects how a DateInterval is anchored.
type IntervalType string

// Interval types.
const (
	Last       IntervalType = "last"
	Next       IntervalType = "next"
	Predefined IntervalType = "predefined"
)

// Unit is the granularity of a relative interval.
type Unit string

// Interval units.
const (
	Year   Unit = "YEAR"
	Month  Unit = "MONTH"
	Day    Unit = "DAY"
	Hour   Unit = "HOUR"
	Minute Unit = "MINUTE"
)

// ParseUnit parses a unit name, case-insensitively, singular or plural.
func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.TrimSuffix(strings.ToUpper(s), "S"))
	switch u {
	case Year, Month, Day, Hour, Minute:
		return u, nil
	}
	return "", fmt.Errorf("condition: unknown interval unit %q", s)
}

// Predefined intervals.
const (
	Today     = "today"
	Yesterday = "yesterday"
	Tomorrow  = "tomorrow"
)

// DateInterval is the value of an in_interval condition.
type DateInterval struct {
	Type IntervalType
	// Number of units for last and next intervals.
	Number int
	Unit   Unit
	// IncludingCurrent counts the current unit as one of Number.
	IncludingCurrent bool
	// Name of a predefined interval.
	Name string
}

// ParseInterval parses "last|next <n> <unit> [including_current]" or
// "predefined today|yesterday|tomorrow".
func ParseInterval(s string) (*DateInterval, error) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return nil, fmt.Errorf("condition: empty interval")
	}
	switch t := IntervalType(fields[0]); t {
	case Predefined:
		if len(fields) != 2 {
			return nil, fmt.Errorf("condition: invalid interval %q", s)
		}
		switch fields[1] {
		case Today, Yesterday, Tomorrow:
			return &DateInterval{Type: Predefined, Name: fields[1]}, nil
		}
		return nil, fmt.Errorf("condition: unknown predefined interval %q", fields[1])
	case Last, Next:
		if len(fields) < 3 || len(fields) > 4 {
			return nil, fmt.Errorf("condition: invalid interval %q", s)
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("condition: invalid interval length %q", fields[1])
		}
		unit, err := ParseUnit(fields[2])
		if err != nil {
			return nil, err
		}
		d := &DateInterval{Type: t, Number: n, Unit: unit}
		if len(fields) == 4 {
			if fields[3] != "including_current" {
				return nil, fmt.Errorf("condition: invalid interval %q", s)
			}
			d.IncludingCurrent = true
		}
		return d, nil
	}
	return nil, fmt.Errorf("condition: invalid interval %q", s)
}

// String returns the parseable form of the interval.
func (d *DateInterval) String() string {
	if d.Type == Predefined {
		return fmt.Sprintf("%s %s", d.Type, d.Name)
	}
	s := fmt.Sprintf("%s %d %s", d.Type, d.Number, strings.ToLower(string(d.Unit)))
	if d.IncludingCurrent {
		s += " including_current"
	}
	return s
}

// Expression renders the interval as a query macro over the property of
// the aliased entity. The {E} placeholder stands for the alias.
func (d *DateInterval) Expression(property string) string {
	prop := EntityPlaceholder + "." + property
	switch d.Type {
	case Predefined:
		switch d.Name {
		case Today:
			return fmt.Sprintf("@today(%s)", prop)
		case Yesterday:
			return between(prop, -1, 0, Day)
		case Tomorrow:
			return between(prop, 1, 2, Day)
		}
	case Last:
		if d.IncludingCurrent {
			return between(prop, -(d.Number - 1), 1, d.Unit)
		}
		return between(prop, -d.Number, 0, d.Unit)
	case Next:
		if d.IncludingCurrent {
			return between(prop, 0, d.Number, d.Unit)
		}
		return between(prop, 1, d.Number+1, d.Unit)
	}
	return ""
}

// EntityPlaceholder is replaced by the query alias when the query text is
// built.
const EntityPlaceholder = "{E}"

func between(prop string, from, to int, unit Unit) string {
	return fmt.Sprintf("@between(%s, %s, %s, %s)", prop, now(from), now(to), unit)
}

func now(offset int) string {
	switch {
	case offset > 0:
		return "now+" + strconv.Itoa(offset)
	case offset < 0:
		return "now" + strconv.Itoa(offset)
	}
	return "now"
}
