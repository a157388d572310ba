// Package web carries the dashboard page templates and browser assets,
// compiled into the binary so a single executable serves the whole UI.
package web

import "embed"

var (
	// TemplatesFS holds the page and partial templates.
	//go:embed templates/*.html
	TemplatesFS embed.FS

	// StaticFS holds app.js and style.css, served under /static/.
	//go:embed static/*
	StaticFS embed.FS
)
