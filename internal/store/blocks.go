package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/rcliao/spaced-review/internal/model"
)

// Session records are stored as a heading block, "[[March 10th, 2026]] 🟢",
// with one "key:: value" child line per field.
const (
	keyReviewMode     = "reviewMode"
	keyGrade          = "grade"
	keyInterval       = "interval"
	keyRepetitions    = "repetitions"
	keyEaseFactor     = "eFactor"
	keyCardState      = "fsrsState"
	keyNextDueDate    = "nextDueDate"
	keyMultiplier     = "intervalMultiplier"
	keyMultiplierUnit = "intervalMultiplierType"
)

// RoamDate formats t as a calendar page title, e.g. "March 10th, 2026".
func RoamDate(t time.Time) string {
	return fmt.Sprintf("%s %s, %d", t.Month(), humanize.Ordinal(t.Day()), t.Year())
}

// ParseRoamDate parses a calendar page title, with or without the "[[ ]]"
// reference brackets, as midnight in loc.
func ParseRoamDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "[["), "]]")

	monthName, rest, ok := strings.Cut(strings.TrimSpace(s), " ")
	if !ok {
		return time.Time{}, fmt.Errorf("parse date %q: missing day", s)
	}
	dayPart, yearPart, ok := strings.Cut(rest, ",")
	if !ok {
		return time.Time{}, fmt.Errorf("parse date %q: missing year", s)
	}

	month, err := time.Parse("January", monthName)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	dayPart = strings.TrimRight(strings.TrimSpace(dayPart), "stndrdth")
	day, err := strconv.Atoi(dayPart)
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("parse date %q: bad day", s)
	}
	year, err := strconv.Atoi(strings.TrimSpace(yearPart))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: bad year", s)
	}
	return time.Date(year, month.Month(), day, 0, 0, 0, 0, loc), nil
}

// GradeMarker is the heading emoji for a session's grade.
func GradeMarker(s model.Session) string {
	g, ok := s.Graded()
	if !ok {
		return "🟢"
	}
	switch g.Grade {
	case 5:
		return "🟢"
	case 4:
		return "🔵"
	case 3, 2:
		return "🟠"
	case 1, 0:
		return "🔴"
	}
	return "🟢"
}

// EncodeSession renders s as a heading and its child lines.
func EncodeSession(s model.Session) (heading string, lines []string) {
	heading = fmt.Sprintf("[[%s]] %s", RoamDate(s.CreatedAt), GradeMarker(s))

	add := func(key, value string) {
		lines = append(lines, key+":: "+value)
	}
	add(keyReviewMode, string(s.Mode))

	if g, ok := s.Graded(); ok {
		add(keyGrade, strconv.Itoa(int(g.Grade)))
		add(keyInterval, strconv.Itoa(g.Interval))
		add(keyRepetitions, strconv.Itoa(g.Repetitions))
		add(keyEaseFactor, strconv.FormatFloat(g.EaseFactor, 'f', -1, 64))
	}
	if s.Adaptive != nil && s.Adaptive.Card != "" {
		add(keyCardState, s.Adaptive.Card)
	}
	if s.Fixed != nil {
		add(keyMultiplier, strconv.Itoa(s.Fixed.Multiplier))
		add(keyMultiplierUnit, string(s.Fixed.Unit))
	}
	if !s.NextDueDate.IsZero() {
		add(keyNextDueDate, "[["+RoamDate(s.NextDueDate)+"]]")
	}
	return heading, lines
}

// DecodeSession parses a heading and child lines written by EncodeSession.
// Dates resolve to midnight in loc. Unknown keys are ignored.
func DecodeSession(heading string, lines []string, loc *time.Location) (model.Session, error) {
	var s model.Session

	dateRef, _, _ := strings.Cut(strings.TrimSpace(heading), "]]")
	created, err := ParseRoamDate(dateRef, loc)
	if err != nil {
		return s, fmt.Errorf("session heading: %w", err)
	}
	s.CreatedAt = created

	fields := make(map[string]string, len(lines))
	for _, line := range lines {
		key, value, ok := strings.Cut(line, "::")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	s.Mode = model.ReviewMode(fields[keyReviewMode])
	if s.Mode == "" {
		switch {
		case fields[keyCardState] != "":
			s.Mode = model.ModeAdaptive
		case fields[keyMultiplier] != "":
			s.Mode = model.ModeFixed
		default:
			s.Mode = model.ModeClassic
		}
	}

	if v, ok := fields[keyNextDueDate]; ok && v != "" {
		due, err := ParseRoamDate(v, loc)
		if err != nil {
			return s, fmt.Errorf("%s: %w", keyNextDueDate, err)
		}
		s.NextDueDate = due
	}

	switch s.Mode {
	case model.ModeClassic, model.ModeAdaptive:
		g, err := decodeGraded(fields)
		if err != nil {
			return s, err
		}
		if s.Mode == model.ModeClassic {
			s.Classic = &g
		} else {
			s.Adaptive = &model.AdaptiveState{GradedState: g, Card: fields[keyCardState]}
		}
	case model.ModeFixed:
		fi := model.FixedInterval{
			Multiplier: model.DefaultFixedMultiplier,
			Unit:       model.UnitDays,
		}
		if v := fields[keyMultiplier]; v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return s, fmt.Errorf("%s: %w", keyMultiplier, err)
			}
			fi.Multiplier = n
		}
		if v := fields[keyMultiplierUnit]; v != "" {
			fi.Unit = model.IntervalUnit(v)
		}
		s.Fixed = &fi
	}

	return s, s.Validate()
}

func decodeGraded(fields map[string]string) (model.GradedState, error) {
	g := model.NewGradedState()

	ints := []struct {
		key string
		dst *int
	}{
		{keyInterval, &g.Interval},
		{keyRepetitions, &g.Repetitions},
	}
	for _, f := range ints {
		v := fields[f.key]
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return g, fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dst = n
	}

	if v := fields[keyGrade]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return g, fmt.Errorf("%s: %w", keyGrade, err)
		}
		g.Grade = model.Grade(n)
	}
	if v := fields[keyEaseFactor]; v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return g, fmt.Errorf("%s: %w", keyEaseFactor, err)
		}
		g.EaseFactor = f
	}
	return g, nil
}
