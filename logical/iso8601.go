package logical

import (
	"fmt"
	"time"
)

// ParseError reports textual date/time input that does not follow ISO-8601.
// Index is the byte offset of the first unexpected character, or -1 when the
// text is well formed but a field is out of range.
type ParseError struct {
	Text   string
	Index  int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("Text '%s' could not be parsed at index %d", e.Text, e.Index)
	}
	return fmt.Sprintf("Text '%s' could not be parsed: %s", e.Text, e.Reason)
}

// Strictness selects which textual forms the parsers accept.
type Strictness int

const (
	// ISOStrict accepts only the extended ISO-8601 forms: 'T' separators,
	// upper-case designators and, for instants, an explicit offset.
	ISOStrict Strictness = iota
	// ISOLenient additionally accepts a space or lower-case 't' between date
	// and time, a lower-case 'z', instants without offset (read as UTC), and
	// offsets on local date-times (dropped).
	ISOLenient
)

type scanner struct {
	text string
	pos  int
}

func (s *scanner) fail() error { return &ParseError{Text: s.text, Index: s.pos} }

func (s *scanner) done() bool { return s.pos >= len(s.text) }

func (s *scanner) peek() byte {
	if s.done() {
		return 0
	}
	return s.text[s.pos]
}

func (s *scanner) digits(n int) (int, error) {
	v := 0
	for i := 0; i < n; i++ {
		c := s.peek()
		if c < '0' || c > '9' {
			return 0, s.fail()
		}
		v = v*10 + int(c-'0')
		s.pos++
	}
	return v, nil
}

func (s *scanner) expect(c byte) error {
	if s.peek() != c || s.done() {
		return s.fail()
	}
	s.pos++
	return nil
}

// maxYearDigits bounds signed years to ±999999999.
const maxYearDigits = 9

func (s *scanner) date() (Date, error) {
	sign := 1
	width := 4
	if c := s.peek(); c == '+' || c == '-' {
		if c == '-' {
			sign = -1
		}
		s.pos++
		width = 0
	}
	var year int
	if width == 4 {
		y, err := s.digits(4)
		if err != nil {
			return Date{}, err
		}
		year = y
	} else {
		start := s.pos
		for c := s.peek(); c >= '0' && c <= '9' && !s.done(); c = s.peek() {
			if s.pos-start == maxYearDigits {
				return Date{}, s.fail()
			}
			year = year*10 + int(c-'0')
			s.pos++
		}
		if s.pos-start < 4 {
			return Date{}, s.fail()
		}
		year *= sign
	}
	if err := s.expect('-'); err != nil {
		return Date{}, err
	}
	month, err := s.digits(2)
	if err != nil {
		return Date{}, err
	}
	if err := s.expect('-'); err != nil {
		return Date{}, err
	}
	day, err := s.digits(2)
	if err != nil {
		return Date{}, err
	}
	if month < 1 || month > 12 {
		return Date{}, &ParseError{Text: s.text, Index: -1,
			Reason: fmt.Sprintf("Invalid value for MonthOfYear (valid values 1 - 12): %d", month)}
	}
	if day < 1 || day > daysIn(year, time.Month(month)) {
		return Date{}, &ParseError{Text: s.text, Index: -1,
			Reason: fmt.Sprintf("Invalid date '%s %d'", time.Month(month).String(), day)}
	}
	return Date{Year: year, Month: time.Month(month), Day: day}, nil
}

func (s *scanner) clock() (TimeOfDay, error) {
	hour, err := s.digits(2)
	if err != nil {
		return 0, err
	}
	if err := s.expect(':'); err != nil {
		return 0, err
	}
	minute, err := s.digits(2)
	if err != nil {
		return 0, err
	}
	second, nanos := 0, 0
	if s.peek() == ':' && !s.done() {
		s.pos++
		if second, err = s.digits(2); err != nil {
			return 0, err
		}
		if s.peek() == '.' && !s.done() {
			s.pos++
			n := 0
			for c := s.peek(); c >= '0' && c <= '9' && !s.done() && n < 9; c = s.peek() {
				nanos = nanos*10 + int(c-'0')
				s.pos++
				n++
			}
			if n == 0 {
				return 0, s.fail()
			}
			for ; n < 9; n++ {
				nanos *= 10
			}
		}
	}
	switch {
	case hour > 23:
		return 0, &ParseError{Text: s.text, Index: -1, Reason: fmt.Sprintf("Invalid value for HourOfDay (valid values 0 - 23): %d", hour)}
	case minute > 59:
		return 0, &ParseError{Text: s.text, Index: -1, Reason: fmt.Sprintf("Invalid value for MinuteOfHour (valid values 0 - 59): %d", minute)}
	case second > 59:
		return 0, &ParseError{Text: s.text, Index: -1, Reason: fmt.Sprintf("Invalid value for SecondOfMinute (valid values 0 - 59): %d", second)}
	}
	return NewTimeOfDay(hour, minute, second, nanos), nil
}

func (s *scanner) separator(mode Strictness) error {
	c := s.peek()
	if s.done() {
		return s.fail()
	}
	if c == 'T' || (mode == ISOLenient && (c == 't' || c == ' ')) {
		s.pos++
		return nil
	}
	return s.fail()
}

// offset parses Z or ±HH:MM. ok is false when no offset is present.
func (s *scanner) offset(mode Strictness) (sec int, ok bool, err error) {
	if s.done() {
		return 0, false, nil
	}
	switch c := s.peek(); {
	case c == 'Z' || (mode == ISOLenient && c == 'z'):
		s.pos++
		return 0, true, nil
	case c == '+' || c == '-':
		s.pos++
		h, err := s.digits(2)
		if err != nil {
			return 0, false, err
		}
		if err := s.expect(':'); err != nil {
			return 0, false, err
		}
		m, err := s.digits(2)
		if err != nil {
			return 0, false, err
		}
		if h > 18 || m > 59 {
			return 0, false, &ParseError{Text: s.text, Index: -1, Reason: "Zone offset out of range"}
		}
		sec = h*3600 + m*60
		if c == '-' {
			sec = -sec
		}
		return sec, true, nil
	}
	return 0, false, s.fail()
}

func (s *scanner) end() error {
	if !s.done() {
		return &ParseError{Text: s.text, Index: -1, Reason: fmt.Sprintf("Unparsed text found at index %d", s.pos)}
	}
	return nil
}

// ParseDate parses an ISO-8601 calendar date, e.g. 2008-06-03. Lenient mode
// also accepts a date-time and keeps its date part.
func ParseDate(text string, mode Strictness) (Date, error) {
	s := &scanner{text: text}
	d, err := s.date()
	if err != nil {
		return Date{}, err
	}
	if mode == ISOLenient && !s.done() {
		if err := s.separator(mode); err != nil {
			return Date{}, err
		}
		if _, err := s.clock(); err != nil {
			return Date{}, err
		}
		if _, _, err := s.offset(mode); err != nil {
			return Date{}, err
		}
	}
	return d, s.end()
}

// ParseTimeOfDay parses an ISO-8601 local time, e.g. 04:51:55.565970.
func ParseTimeOfDay(text string, mode Strictness) (TimeOfDay, error) {
	s := &scanner{text: text}
	t, err := s.clock()
	if err != nil {
		return 0, err
	}
	return t, s.end()
}

// ParseInstant parses an ISO-8601 instant with offset, e.g.
// 2008-06-03T10:15:30.123Z or 2008-06-03T12:15:30+02:00, returning UTC.
func ParseInstant(text string, mode Strictness) (time.Time, error) {
	s := &scanner{text: text}
	d, err := s.date()
	if err != nil {
		return time.Time{}, err
	}
	if err := s.separator(mode); err != nil {
		return time.Time{}, err
	}
	t, err := s.clock()
	if err != nil {
		return time.Time{}, err
	}
	off, ok, err := s.offset(mode)
	if err != nil {
		return time.Time{}, err
	}
	if !ok && mode == ISOStrict {
		return time.Time{}, s.fail()
	}
	if err := s.end(); err != nil {
		return time.Time{}, err
	}
	return d.Time().Add(time.Duration(t)).Add(-time.Duration(off) * time.Second).UTC(), nil
}

// ParseLocalDateTime parses an ISO-8601 local date-time, e.g.
// 2008-06-03T10:15:30.
func ParseLocalDateTime(text string, mode Strictness) (LocalDateTime, error) {
	s := &scanner{text: text}
	d, err := s.date()
	if err != nil {
		return LocalDateTime{}, err
	}
	if err := s.separator(mode); err != nil {
		return LocalDateTime{}, err
	}
	t, err := s.clock()
	if err != nil {
		return LocalDateTime{}, err
	}
	if mode == ISOLenient {
		if _, _, err := s.offset(mode); err != nil {
			return LocalDateTime{}, err
		}
	}
	if err := s.end(); err != nil {
		return LocalDateTime{}, err
	}
	return LocalDateTime{Date: d, Time: t}, nil
}

// FormatInstant renders t in UTC with the shortest 3/6/9 digit fraction.
func FormatInstant(t time.Time) string {
	t = t.UTC()
	l := LocalDateTimeOf(t)
	s := l.Date.String() + "T" + l.Time.String()
	if l.Time.Second() == 0 && l.Time.Nanosecond() == 0 {
		s += ":00"
	}
	return s + "Z"
}

func daysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
