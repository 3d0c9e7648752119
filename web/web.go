// Package web embeds the HTML templates and static assets.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses every page and partial. Pages are addressed by file name, e.g. "index.html".
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(Funcs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

// Static is the asset tree served under /static.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Local().Format("Jan 2, 2006, 3:04 p.m.")
		},
		"stars": func(score int) string {
			out := make([]rune, 0, 5)
			for i := 1; i <= 5; i++ {
				if i <= score {
					out = append(out, '★')
				} else {
					out = append(out, '☆')
				}
			}
			return string(out)
		},
	}
}
