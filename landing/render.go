package landing

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pageTemplate = template.Must(template.New("index.html").ParseFS(templateFS, "templates/*.html"))

// Render writes the landing page. The page is rendered into a buffer first
// so a template error never leaves a half-written response.
func Render(w io.Writer, page Page) error {
	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, "index.html", page); err != nil {
		return fmt.Errorf("rendering landing page: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Assets the stylesheet and other static files, rooted at "static/"
func Assets() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
