package attendance

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half-day"
	StatusLate    Status = "late"
	StatusLeave   Status = "leave"
)

type Method string

const (
	MethodAuto      Method = "auto"
	MethodManual    Method = "manual"
	MethodBiometric Method = "biometric"
	MethodMobile    Method = "mobile"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"

	// HalfDayHours is credited to a half-day record created without a checkout.
	HalfDayHours = 4.0
)

var (
	ValidStatuses = []string{string(StatusPresent), string(StatusAbsent), string(StatusHalfDay), string(StatusLate), string(StatusLeave)}
	ValidMethods  = []string{string(MethodAuto), string(MethodManual), string(MethodBiometric), string(MethodMobile)}
)

// Record is one member's attendance for one calendar day.
// JSON field names match the dashboard's persisted attendance log.
type Record struct {
	ID         string  `json:"id"`
	MemberID   string  `json:"memberId"`
	MemberName string  `json:"memberName"`
	Date       string  `json:"date"`
	CheckIn    string  `json:"checkIn"`
	CheckOut   string  `json:"checkOut"`
	Status     Status  `json:"status"`
	Method     Method  `json:"method"`
	Notes      *string `json:"notes,omitempty"`
	Location   *string `json:"location,omitempty"`
	WorkHours  float64 `json:"workHours"`
}

// NewRecordParams carries everything the mark, quick-mark and simulator paths know
// about a new record.
type NewRecordParams struct {
	MemberID   string
	MemberName string
	Date       string
	CheckIn    string
	CheckOut   string
	Status     Status
	Method     Method
	Notes      *string
	Location   *string
}

// NewRecord builds a record with a fresh ID and the derived work hours.
// Every creation path goes through here so the defaults cannot drift apart.
func NewRecord(p NewRecordParams) Record {
	rec := Record{
		ID:         newRecordID(),
		MemberID:   p.MemberID,
		MemberName: p.MemberName,
		Date:       p.Date,
		CheckIn:    p.CheckIn,
		CheckOut:   p.CheckOut,
		Status:     p.Status,
		Method:     p.Method,
		Notes:      p.Notes,
		Location:   p.Location,
	}

	if rec.Status == StatusHalfDay && rec.CheckOut == "" {
		rec.WorkHours = HalfDayHours
		if rec.CheckIn != "" {
			if out, err := AddClock(rec.CheckIn, HalfDayHours*60); err == nil {
				rec.CheckOut = out
			}
		}
		return rec
	}

	rec.deriveWorkHours()
	return rec
}

// Patch lists the editable fields of a record. Nil means unchanged.
type Patch struct {
	Date      *string
	CheckIn   *string
	CheckOut  *string
	Status    *Status
	Method    *Method
	Notes     *string
	Location  *string
	WorkHours *float64
}

// Apply edits the record in place. Work hours are re-derived whenever both
// times are present, so an explicit WorkHours only sticks for open records.
// Clearing either time without an explicit WorkHours resets them to 0.
func (r *Record) Apply(p Patch) {
	cleared := (p.CheckIn != nil && *p.CheckIn == "") || (p.CheckOut != nil && *p.CheckOut == "")
	if cleared && p.WorkHours == nil {
		r.WorkHours = 0
	}

	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.CheckIn != nil {
		r.CheckIn = *p.CheckIn
	}
	if p.CheckOut != nil {
		r.CheckOut = *p.CheckOut
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.Method != nil {
		r.Method = *p.Method
	}
	if p.Notes != nil {
		r.Notes = p.Notes
	}
	if p.Location != nil {
		r.Location = p.Location
	}
	if p.WorkHours != nil {
		r.WorkHours = *p.WorkHours
	}
	r.deriveWorkHours()
}

func (r *Record) deriveWorkHours() {
	if hours, ok := WorkHours(r.CheckIn, r.CheckOut); ok {
		r.WorkHours = hours
	}
}

// WorkHours returns checkOut - checkIn in hours. A checkout before the check-in
// yields a negative value; callers decide whether that is acceptable.
func WorkHours(checkIn, checkOut string) (float64, bool) {
	if checkIn == "" || checkOut == "" {
		return 0, false
	}
	in, err := ParseClock(checkIn)
	if err != nil {
		return 0, false
	}
	out, err := ParseClock(checkOut)
	if err != nil {
		return 0, false
	}
	hours := float64(out-in) / 60
	return math.Round(hours*100) / 100, true
}

// ParseClock converts "HH:MM" into minutes after midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes after midnight as "HH:MM", wrapping past midnight.
func FormatClock(minutes int) string {
	minutes = ((minutes % 1440) + 1440) % 1440
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// AddClock shifts a "HH:MM" value by the given number of minutes.
func AddClock(clock string, minutes float64) (string, error) {
	base, err := ParseClock(clock)
	if err != nil {
		return "", err
	}
	return FormatClock(base + int(minutes)), nil
}

// CountsAsPresent reports whether the status contributes to present days.
func (s Status) CountsAsPresent() bool {
	return s == StatusPresent || s == StatusLate
}

func newRecordID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
