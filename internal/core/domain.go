package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"

	maxTitleLength = 200
)

type (
	// Date is a calendar day. Time-of-day is always midnight UTC.
	Date struct {
		time.Time
	}

	// Month identifies a calendar month, serialised as "YYYY-MM".
	Month struct {
		Year  int
		Month time.Month
	}

	Expense struct {
		ID         string     `json:"id"`
		UserID     string     `json:"userId"`
		Title      string     `json:"title"`
		Amount     Money      `json:"amount"`
		Category   Category   `json:"category"`
		Tags       []string   `json:"tags"`
		Date       Date       `json:"date"`
		Notes      string     `json:"notes,omitempty"`
		Recurrence Recurrence `json:"recurrence"`
		CreatedAt  time.Time  `json:"createdAt"`
		UpdatedAt  time.Time  `json:"updatedAt"`
	}

	// ExpensePatch carries a partial update; nil fields keep their value.
	ExpensePatch struct {
		Title      *string
		Amount     *Money
		Category   *Category
		Tags       *[]string
		Date       *Date
		Notes      *string
		Recurrence *Recurrence
	}

	Budget struct {
		ID       string   `json:"id"`
		UserID   string   `json:"userId"`
		Category Category `json:"category"`
		Limit    Money    `json:"limit"`
		Month    Month    `json:"month"`
	}

	User struct {
		ID                string     `json:"id"`
		Name              string     `json:"name"`
		Email             string     `json:"email"`
		PasswordHash      string     `json:"-"`
		Image             string     `json:"image,omitempty"`
		EmailVerified     bool       `json:"emailVerified"`
		VerifyToken       string     `json:"-"`
		VerifyTokenExpiry *time.Time `json:"-"`
		CreatedAt         time.Time  `json:"createdAt"`
	}
)

// NewDate creates a new Date from year, month, day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day, keeping the day as seen in t's own
// location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate accepts "YYYY-MM-DD" or an RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, ErrInvalidDate
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Month returns the month bucket the date falls in.
func (d Date) Month() Month {
	return Month{Year: d.Year(), Month: d.Time.Month()}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidDate
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseMonth parses a "YYYY-MM" token.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, strings.TrimSpace(s))
	if err != nil {
		return Month{}, ErrInvalidMonth
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Start is the first instant of the month (inclusive).
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the first instant of the following month (exclusive).
func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, 0)
}

// Contains reports whether t lies in [Start, End).
func (m Month) Contains(t time.Time) bool {
	return !t.Before(m.Start()) && t.Before(m.End())
}

func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

func (m Month) String() string {
	if m.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Month) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidMonth
	}
	parsed, err := ParseMonth(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if len(e.Title) > maxTitleLength {
		return Invalidf("title too long (max %d characters)", maxTitleLength)
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	if !e.Recurrence.Valid() {
		return ErrInvalidRecurrence
	}
	return nil
}

// Apply copies every set field of p onto e.
func (p ExpensePatch) Apply(e *Expense) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Tags != nil {
		e.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	if p.Recurrence != nil {
		e.Recurrence = *p.Recurrence
	}
}

func (b Budget) Validate() error {
	if !b.Category.Valid() {
		return ErrInvalidCategory
	}
	if b.Month.IsZero() {
		return ErrInvalidMonth
	}
	if err := b.Limit.Validate(); err != nil {
		return err
	}
	return nil
}

// NormalizeEmail lower-cases and trims an address for uniqueness checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
