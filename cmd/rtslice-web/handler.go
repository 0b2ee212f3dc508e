package main

import (
	"fmt"
	"html/template"
	"sync"

	"github.com/gorilla/mux"
)

const (
	BaseFilename = "_base.html"

	// CompletedPrefix is the URL prefix under which the output root is served.
	CompletedPrefix = "/completed/"
)

// handler provides global values that must be
// safe for concurrent use from multiple goroutines
// to each handler method.
type handler struct {
	*Global

	router *mux.Router

	// Mutex protected values
	mu       sync.RWMutex
	template map[string]*template.Template
}

// Template returns the named page template layered over the base template.
// Templates are parsed once from the embedded filesystem and cached.
func (h *handler) Template(templateFilename string) (*template.Template, error) {
	h.mu.RLock()
	tpl, ok := h.template[templateFilename]
	h.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.template == nil {
		h.template = make(map[string]*template.Template)
	}

	base, ok := h.template[BaseFilename]
	if !ok {
		h.Global.log.Println("Initializing HTML templates")

		var err error
		base, err = template.New(BaseFilename).Funcs(template.FuncMap{
			"add": func(a, b int) int { return a + b },
		}).ParseFS(embeddedTemplates, "templates/"+BaseFilename)
		if err != nil {
			return nil, fmt.Errorf("handler.go:Template: %w", err)
		}
		h.template[BaseFilename] = base
	}

	// Clone so the page's define blocks do not leak into the base.
	h.Global.log.Println("Initializing HTML template for", templateFilename)
	clone, err := base.Clone()
	if err != nil {
		return nil, fmt.Errorf("handler.go:Template: %w", err)
	}
	tpl, err = clone.ParseFS(embeddedTemplates, "templates/"+templateFilename)
	if err != nil {
		return nil, fmt.Errorf("handler.go:Template: %w", err)
	}
	h.template[templateFilename] = tpl

	return tpl, nil
}
