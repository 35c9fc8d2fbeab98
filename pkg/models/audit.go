package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// CategoryAFIP is the audit type id the backend uses for tax-authority audits.
// Every other id is an internal audit.
const CategoryAFIP int64 = 9

// StatusCompleted is the idAuditado id that marks an audit as completed.
const StatusCompleted int64 = 1

// Kind distinguishes the two audit categories.
type Kind string

const (
	KindInternal Kind = "Interna"
	KindAFIP     Kind = "AFIP"
)

// KindOf maps the afip flag used by filters to a Kind.
func KindOf(afip bool) Kind {
	if afip {
		return KindAFIP
	}
	return KindInternal
}

// Audit is a single audit as returned by GET /audit.
type Audit struct {
	ID        int64        `json:"id"`
	AuditDate AuditDate    `json:"auditDate"`
	Type      AuditType    `json:"idTipoAuditoria"`
	Audited   *AuditStatus `json:"idAuditado,omitempty"`
}

// AuditType is the category reference embedded in an audit.
type AuditType struct {
	ID   int64  `json:"id"`
	Name string `json:"auditType"`
}

// AuditStatus is the completion reference embedded in an audit.
type AuditStatus struct {
	ID   int64  `json:"id"`
	Name string `json:"auditado,omitempty"`
}

// IsAFIP reports whether the audit belongs to the AFIP category.
func (a Audit) IsAFIP() bool {
	return a.Type.ID == CategoryAFIP
}

// IsCompleted reports whether the audit carries the completed status.
func (a Audit) IsCompleted() bool {
	return a.Audited != nil && a.Audited.ID == StatusCompleted
}

// Kind returns the audit category.
func (a Audit) Kind() Kind {
	return KindOf(a.IsAFIP())
}

// StatusLabel returns the label shown next to an audit.
func (a Audit) StatusLabel() string {
	if a.IsCompleted() {
		return "AUDITADO"
	}
	return "SIN AUDITAR"
}

// auditDateLayouts are tried in order when decoding auditDate.
var auditDateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02 15:04:05",
	"02-01-2006",
	"02/01/2006",
}

// AuditDate is a calendar date that tolerates malformed wire values.
// A value that fails to parse decodes to an invalid date instead of an error,
// so one bad record never breaks a whole listing.
type AuditDate struct {
	time.Time
	Valid bool
	Raw   string
}

// NewAuditDate builds a valid date at midnight UTC.
func NewAuditDate(year int, month time.Month, day int) AuditDate {
	return AuditDate{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Valid: true}
}

// ParseAuditDate parses s with the accepted layouts.
func ParseAuditDate(s string) AuditDate {
	s = strings.TrimSpace(s)
	d := AuditDate{Raw: s}
	if s == "" {
		return d
	}
	for _, layout := range auditDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			d.Valid = true
			return d
		}
	}
	return d
}

// UnmarshalJSON implements json.Unmarshaler. It never fails on a bad date.
func (d *AuditDate) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*d = AuditDate{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*d = AuditDate{Raw: string(b)}
		return nil
	}
	*d = ParseAuditDate(s)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d AuditDate) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		if d.Raw == "" {
			return []byte("null"), nil
		}
		return json.Marshal(d.Raw)
	}
	return json.Marshal(d.Format("2006-01-02"))
}

// String formats the date as dd/mm/yyyy, or the raw value when invalid.
func (d AuditDate) String() string {
	if !d.Valid {
		if d.Raw == "" {
			return "N/A"
		}
		return d.Raw
	}
	return d.Format("02/01/2006")
}
