package notify

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/gosuda/coperto/internal/domain"
)

// view is the data every template receives.
type view struct {
	Restaurant  string
	Reservation *domain.Reservation
	Tables      []string
}

func (v view) TableList() string {
	return strings.Join(v.Tables, ", ")
}

var templates = template.Must(template.New("").Parse(`
{{define "submitted.subject"}}New reservation request: {{.Reservation.CustomerName}}, {{.Reservation.Guests}} guests{{end}}
{{define "submitted.body"}}A new reservation request for {{.Restaurant}} is waiting for review.

Name:    {{.Reservation.CustomerName}}
Email:   {{.Reservation.CustomerEmail}}
Phone:   {{.Reservation.CustomerPhone}}
Date:    {{.Reservation.DateString}} at {{.Reservation.Time}}
Guests:  {{.Reservation.Guests}}{{if .Reservation.HighChairs}} (+{{.Reservation.HighChairs}} high chairs){{end}}
{{- if .Reservation.Notes}}
Notes:   {{.Reservation.Notes}}{{end}}
{{end}}
{{define "confirmed.subject"}}Your reservation at {{.Restaurant}} is confirmed{{end}}
{{define "confirmed.body"}}Hello {{.Reservation.CustomerName}},

your reservation at {{.Restaurant}} on {{.Reservation.DateString}} at {{.Reservation.Time}} for {{.Reservation.Guests}} guests is confirmed.
{{- if .Tables}}
Table: {{.TableList}}{{end}}

See you soon!
{{end}}
{{define "rejected.subject"}}Your reservation at {{.Restaurant}} could not be accepted{{end}}
{{define "rejected.body"}}Hello {{.Reservation.CustomerName}},

unfortunately {{.Restaurant}} cannot accept your reservation on {{.Reservation.DateString}} at {{.Reservation.Time}}.
{{- if .Reservation.RejectionReason}}
Reason: {{.Reservation.RejectionReason}}{{end}}
{{end}}
`))

// Render builds the message for an event type.
func Render(evType domain.ReservationEventType, restaurant string, r *domain.Reservation, tables []string) (Message, error) {
	var name string
	switch evType {
	case domain.EventReservationSubmitted:
		name = "submitted"
	case domain.EventReservationConfirmed:
		name = "confirmed"
	case domain.EventReservationRejected:
		name = "rejected"
	default:
		return Message{}, fmt.Errorf("notify.Render: unknown event type %q", evType)
	}

	v := view{Restaurant: restaurant, Reservation: r, Tables: tables}

	var subject, body bytes.Buffer
	if err := templates.ExecuteTemplate(&subject, name+".subject", v); err != nil {
		return Message{}, fmt.Errorf("notify.Render: %s subject: %w", name, err)
	}
	if err := templates.ExecuteTemplate(&body, name+".body", v); err != nil {
		return Message{}, fmt.Errorf("notify.Render: %s body: %w", name, err)
	}

	return Message{Subject: strings.TrimSpace(subject.String()), Body: body.String()}, nil
}
