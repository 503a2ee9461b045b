// Package web embeds the HTML templates and static assets served by the
// catalog.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static templates
var content embed.FS

// StaticFS returns the static assets rooted at static/.
func StaticFS() (fs.FS, error) {
	return fs.Sub(content, "static")
}

// TemplatesFS returns the page templates rooted at templates/.
func TemplatesFS() (fs.FS, error) {
	return fs.Sub(content, "templates")
}
