// Package views embeds the HTML templates.
package views

import "embed"

// FS holds the layout, the shared includes and one file per page.
//
//go:embed *.html includes/*.html
var FS embed.FS

// Pages lists the page templates; each renders inside layout.html.
var Pages = []string{
	"index",
	"group",
	"follow",
	"profile",
	"post",
	"new_post",
	"login",
	"signup",
	"404",
	"500",
}
