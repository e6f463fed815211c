//
// Copyright (c) 2025-2026, Forschungszentrum Juelich GmbH. All rights reserved.
//
// See LICENSE.txt for license information
//

// Package webui serves the markdown reports of a dataset directory over
// HTTP, rendered to HTML.
package webui

import (
	"fmt"
	"html"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gomarkdown/markdown"
)

// DefaultPort is the port the WebUI listens on unless told otherwise.
const DefaultPort = 8080

type Config struct {
	// DatasetDir is the directory holding the markdown reports.
	DatasetDir string

	// Name of the dataset, shown on the index page.
	Name string

	Port int

	wg       sync.WaitGroup
	srv      *http.Server
	listener net.Listener
}

// Init returns a configuration with defaults filled in.
func Init() *Config {
	cfg := new(Config)
	cfg.Port = DefaultPort
	cfg.Name = "dataset"
	return cfg
}

// Start launches the HTTP server. It returns once the server listens;
// use Wait to block until it terminates.
func (c *Config) Start() error {
	if c.DatasetDir == "" {
		return fmt.Errorf("undefined dataset directory")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", c.indexHandler)
	mux.HandleFunc("/report/", c.reportHandler)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", c.Port))
	if err != nil {
		return fmt.Errorf("unable to listen on port %d: %w", c.Port, err)
	}
	c.listener = listener
	c.srv = &http.Server{Handler: mux}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.srv.Serve(c.listener); err != nil && err != http.ErrServerClosed {
			log.Printf("WebUI server failed: %s", err)
		}
	}()
	log.Printf("WebUI listening on port %d", c.Port)
	return nil
}

// Wait blocks until the server terminates.
func (c *Config) Wait() {
	c.wg.Wait()
}

// Stop shuts the server down.
func (c *Config) Stop() error {
	if c.srv == nil {
		return nil
	}
	return c.srv.Close()
}

// Reports returns the markdown report files of the dataset, sorted.
func (c *Config) Reports() ([]string, error) {
	entries, err := os.ReadDir(c.DatasetDir)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", c.DatasetDir, err)
	}
	var reports []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		reports = append(reports, e.Name())
	}
	sort.Strings(reports)
	return reports, nil
}

func (c *Config) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	reports, err := c.Reports()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<html><head><title>%s</title></head><body>", html.EscapeString(c.Name))
	fmt.Fprintf(w, "<h1>%s</h1><ul>", html.EscapeString(c.Name))
	for _, name := range reports {
		fmt.Fprintf(w, "<li><a href=\"/report/%s\">%s</a></li>", name, html.EscapeString(name))
	}
	fmt.Fprintf(w, "</ul></body></html>")
}

func (c *Config) reportHandler(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/report/")
	// The report name comes from the URL; keep the lookup inside the
	// dataset directory.
	if name == "" || name != filepath.Base(name) || !strings.HasSuffix(name, ".md") {
		http.NotFound(w, r)
		return
	}
	content, err := os.ReadFile(filepath.Join(c.DatasetDir, name))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<html><head><title>%s</title></head><body>", html.EscapeString(name))
	w.Write(markdown.ToHTML(content, nil, nil))
	fmt.Fprintf(w, "</body></html>")
}
