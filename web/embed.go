// Package web holds the dashboard's embedded templates and static assets.
package web

import "embed"

// TemplatesFS embeds the page, partial and error templates.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the chart script and stylesheet.
//
//go:embed static/*
var StaticFS embed.FS
