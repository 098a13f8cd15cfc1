// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

package mail

import (
	"bytes"
	"html/template"

	"github.com/samber/oops"
)

const (
	copresenterSubjectFormat = "Copresenter with %s at CCAW"
	passwordResetSubject     = "New CCAW password."
)

var copresenterBody = template.Must(template.New("copresenter").Parse(`<div>You've been signed up as a copresenter for a presentation at Conference for Crimes Against Women by {{.LeadName}}.</div>
<div>Please <a href="{{.LoginURL}}">log in here</a> to view and update your information with the following: </div>
<div>Your username: {{.Username}}</div>
<div>Your password: {{.Password}}</div>
`))

var passwordResetBody = template.Must(template.New("password_reset").Parse(
	`<b>Your new password is: {{.Password}}.  </b><a href="{{.LoginURL}}">Login here.</a>`))

type copresenterData struct {
	LeadName string
	LoginURL string
	Username string
	Password string
}

type passwordResetData struct {
	Password string
	LoginURL string
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", oops.With("template", tmpl.Name()).Wrap(err)
	}
	return buf.String(), nil
}
