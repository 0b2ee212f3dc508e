package main

import (
	"fmt"
	"net/http"
)

type Page struct {
	Title string
	Site  string
	Data  interface{}
}

func Render(h *handler, w http.ResponseWriter, r *http.Request, title string, tpl string, data interface{}) {
	page := Page{
		Title: title,
		Site:  h.Global.Site,
		Data:  data,
	}

	t, err := h.Template(tpl)
	if err != nil {
		HTTPError(h, w, r, err)
		return
	}

	if err := t.Execute(w, page); err != nil {
		h.log.Println(r.Host, r.URL.Path, ":", err)
	}
}

func HTTPError(h *handler, w http.ResponseWriter, r *http.Request, err error, code ...int) {
	output := struct {
		StatusCode     int
		StatusCodeText string
		Error          string
	}{
		StatusCode:     http.StatusInternalServerError,
		StatusCodeText: http.StatusText(http.StatusInternalServerError),
		Error:          err.Error(),
	}

	for _, c := range code {
		output.StatusCode = c
		output.StatusCodeText = http.StatusText(c)
		break // Take the first, if any is given
	}

	w.WriteHeader(output.StatusCode)
	h.log.Println(r.Host, r.URL.Path, ":", output.StatusCode, err)

	// Not routed through Render, which could call back into HTTPError.
	page := Page{
		Title: "Error",
		Site:  h.Global.Site,
		Data:  output,
	}

	t, tplErr := h.Template("error.html")
	if tplErr == nil {
		tplErr = t.Execute(w, page)
	}
	if tplErr != nil {
		fmt.Fprintf(w, "Error (%d) (%v) with %+v", output.StatusCode, tplErr, page)
	}
}
