// Package handler contains the HTTP request handlers of the to-do application.
//
// WHAT IS A HANDLER?
// In Go, an HTTP handler is anything that implements the http.Handler interface:
//
//	type Handler interface {
//	    ServeHTTP(ResponseWriter, *Request)
//	}
//
// Or more commonly, we use http.HandlerFunc — a function with the right signature
// that automatically satisfies the Handler interface. Chi's router accepts these directly.
//
// HANDLER RESPONSIBILITIES:
// 1. Parse the incoming HTTP request (URL params, form body, session user)
// 2. Call the service layer
// 3. Render a page or redirect
//
// Handlers should NOT contain business logic — they are the "glue" between HTTP and the services.
package handler

import (
	"fmt"
	"html/template"
	"io"
	"net/url"
	"path/filepath"
)

// Page names. Each one is a file <name>.html in the template directory that
// fills the "content" block of base.html.
const (
	PageRegister = "register"
	PageLogin    = "login"
	PageHome     = "index"
	PageNewList  = "new-list"
	PageNewTask  = "new-task"
	PageShowList = "show-list"
	PageNotFound = "not-found"
)

var pageNames = []string{
	PageRegister, PageLogin, PageHome, PageNewList, PageNewTask, PageShowList, PageNotFound,
}

// Renderer turns a page name and its data into HTML.
//
// Handlers depend on this interface rather than on *template.Template so the
// tests can swap in a recorder and assert on the data a page received.
type Renderer interface {
	Render(w io.Writer, name string, data any) error
}

// funcs are available in every template.
var funcs = template.FuncMap{
	"listSegment": listSegment,
}

// listSegment turns a list name into the {listName} segment of the add-task
// URL ("Home/Work" → "Home%2FWork").
//
// The segment is cosmetic: the task handlers only trust {listID}. Names that
// would send the request elsewhere get a placeholder instead:
//   - "." and ".." are dot-segments, which browsers remove from the path
//   - "static", "delete_list" and "delete_task" are two-segment routes of their own
func listSegment(name string) string {
	switch name {
	case ".", "..", "static", "delete_list", "delete_task":
		return "list"
	}
	return url.PathEscape(name)
}

// TemplateRenderer renders pages from html/template files.
// Templates are parsed once at startup and reused for every request.
type TemplateRenderer struct {
	pages map[string]*template.Template
}

// NewTemplateRenderer parses base.html together with every page file.
//
// TEMPLATE COMPOSITION:
// Each page gets its OWN template set (base.html + page.html). If all pages
// were parsed into one set, the last file's {{define "content"}} would win
// and every page would render the same body.
func NewTemplateRenderer(templateDir string) (*TemplateRenderer, error) {
	base := filepath.Join(templateDir, "base.html")

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New("base.html").Funcs(funcs).
			ParseFiles(base, filepath.Join(templateDir, name+".html"))
		if err != nil {
			return nil, fmt.Errorf("handler: parsing %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &TemplateRenderer{pages: pages}, nil
}

// Render executes the "base" template of the named page.
func (t *TemplateRenderer) Render(w io.Writer, name string, data any) error {
	tmpl, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("handler: unknown page %q", name)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}
