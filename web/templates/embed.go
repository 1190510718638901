// Package templates embeds the page templates served by the web layer.
package templates

import "embed"

//go:embed *.tmpl
var FS embed.FS
