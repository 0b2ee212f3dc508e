package main

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/interpose/middleware"
	"github.com/justinas/alice"
)

//go:embed templates/* templates/static/*
var embeddedTemplates embed.FS

func router(config *Global) (http.Handler, error) {
	router := mux.NewRouter()
	POST := router.Methods("POST").Subrouter()
	GET := router.Methods("GET", "HEAD").Subrouter()

	h := handler{Global: config, router: router}

	GET.HandleFunc("/", h.Index).Name("index")
	GET.HandleFunc("/goroutines", h.Goroutines)

	POST.HandleFunc("/", h.Images).Name("images")

	// Exported rasters
	GET.PathPrefix(CompletedPrefix).Handler(
		http.StripPrefix(CompletedPrefix, http.FileServer(http.Dir(config.Config.OutputRoot))))

	// Static assets
	assetFilesystem, err := fs.Sub(embeddedTemplates, "templates/static")
	if err != nil {
		return nil, err
	}
	GET.PathPrefix("/static/").Handler(
		middleware.MaxAgeHandler(60*60*24*364,
			http.StripPrefix("/static/", http.FileServer(http.FS(assetFilesystem)))))

	standard := alice.New(
		// Log all requests to STDOUT
		middleware.GorillaLog(),
	)

	return standard.Then(router), nil
}
