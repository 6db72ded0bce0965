package notification

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
)

// SeatLine is one seat of a confirmation message.
type SeatLine struct {
	Number     string
	Passenger  string
	HasLuggage bool
}

// ReservationMail is everything a reservation confirmation shows.
// Prices are preformatted with two decimals.
type ReservationMail struct {
	GroupID     uint64
	FlightCode  string
	Origin      string
	Destination string
	Departure   time.Time
	Class       string
	Seats       []SeatLine
	UnitPrice   string
	Total       string
}

const currency = "Q"

var funcs = map[string]any{
	"money": func(s string) string { return currency + s },
	"date":  func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04") },
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
}

var reservationHTML = htmltemplate.Must(htmltemplate.New("reservation").Funcs(funcs).Parse(`<h2>Reservation confirmed</h2>
<p>Reservation <strong>#{{.GroupID}}</strong> for flight <strong>{{.FlightCode}}</strong> ({{.Origin}} &rarr; {{.Destination}}), departing {{date .Departure}} UTC.</p>
<p>Class: {{title .Class}}</p>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Seat</th><th>Passenger</th><th>Luggage</th><th>Price</th></tr>
{{- range .Seats}}
<tr><td>{{.Number}}</td><td>{{.Passenger}}</td><td>{{if .HasLuggage}}yes{{else}}no{{end}}</td><td>{{money $.UnitPrice}}</td></tr>
{{- end}}
</table>
<p>Unit price: {{money .UnitPrice}}<br>Total: <strong>{{money .Total}}</strong></p>
`))

var reservationText = texttemplate.Must(texttemplate.New("reservation").Funcs(funcs).Parse(`Reservation #{{.GroupID}} confirmed
Flight {{.FlightCode}} {{.Origin}} -> {{.Destination}}, departing {{date .Departure}} UTC
Class: {{title .Class}}
{{range .Seats}}- {{.Number}} {{.Passenger}}{{if .HasLuggage}} (luggage){{end}}
{{end}}Unit price: {{money .UnitPrice}}
Total: {{money .Total}}
`))

// RenderReservation renders the subject and bodies of a reservation
// confirmation.
func RenderReservation(d ReservationMail) (subject, html, text string, err error) {
	var hb, tb bytes.Buffer
	if err = reservationHTML.Execute(&hb, d); err != nil {
		return "", "", "", err
	}
	if err = reservationText.Execute(&tb, d); err != nil {
		return "", "", "", err
	}
	return "Reservation confirmed - flight " + d.FlightCode, hb.String(), tb.String(), nil
}

var accountHTML = htmltemplate.Must(htmltemplate.New("account").Parse(`<h2>Confirm your account</h2>
<p>Follow this link to activate your account:</p>
<p><a href="{{.}}">{{.}}</a></p>
`))

// RenderAccountConfirmation renders the registration mail holding link.
func RenderAccountConfirmation(link string) (subject, html, text string, err error) {
	var hb bytes.Buffer
	if err = accountHTML.Execute(&hb, link); err != nil {
		return "", "", "", err
	}
	return "Confirm your account", hb.String(), "Confirm your account: " + link + "\n", nil
}
