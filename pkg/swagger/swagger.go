// Package swagger отдаёт Swagger UI и OpenAPI документ gateway.
package swagger

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"algolab/pkg/logger"
)

// Config конфигурация Swagger UI
type Config struct {
	Title                    string
	BasePath                 string
	SpecPath                 string
	DeepLinking              bool
	DocExpansion             string
	DefaultModelsExpandDepth int
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		Title:                    "algolab API",
		BasePath:                 "/docs",
		SpecPath:                 "/openapi.json",
		DeepLinking:              true,
		DocExpansion:             "list",
		DefaultModelsExpandDepth: 1,
	}
}

var uiTemplate = template.Must(template.New("swagger-ui").Parse(swaggerUITemplate))

// Handler HTTP handler для Swagger UI
type Handler struct {
	config   *Config
	spec     []byte
	specETag string
	page     []byte
}

// NewHandler создаёт handler. Страница рендерится один раз, ETag считается
// по содержимому документа.
func NewHandler(cfg *Config, spec []byte) (*Handler, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	data := struct {
		Title                    string
		SpecURL                  string
		DeepLinking              bool
		DocExpansion             string
		DefaultModelsExpandDepth int
	}{
		Title:                    cfg.Title,
		SpecURL:                  cfg.BasePath + cfg.SpecPath,
		DeepLinking:              cfg.DeepLinking,
		DocExpansion:             cfg.DocExpansion,
		DefaultModelsExpandDepth: cfg.DefaultModelsExpandDepth,
	}

	var page bytes.Buffer
	if err := uiTemplate.Execute(&page, data); err != nil {
		return nil, fmt.Errorf("render swagger ui: %w", err)
	}

	return &Handler{
		config:   cfg,
		spec:     spec,
		specETag: fmt.Sprintf(`"%x"`, sha256.Sum256(spec)),
		page:     page.Bytes(),
	}, nil
}

// ServeHTTP обрабатывает HTTP запросы
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, h.config.BasePath)
	path = strings.TrimPrefix(path, "/")

	switch path {
	case "", "index.html":
		h.serveUI(w)
	case strings.TrimPrefix(h.config.SpecPath, "/"):
		h.serveSpec(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) serveUI(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(h.page); err != nil {
		logger.Log.Debug("Failed to write swagger page", "error", err)
	}
}

func (h *Handler) serveSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("ETag", h.specETag)
	if match := r.Header.Get("If-None-Match"); match == h.specETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(h.spec); err != nil {
		logger.Log.Debug("Failed to write spec", "error", err)
	}
}

// RegisterRoutes регистрирует /docs/ в mux; /docs редиректит на /docs/
func RegisterRoutes(mux *http.ServeMux, cfg *Config, spec []byte) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	handler, err := NewHandler(cfg, spec)
	if err != nil {
		return err
	}

	mux.Handle("GET "+cfg.BasePath+"/", handler)
	mux.Handle("GET "+cfg.BasePath, http.RedirectHandler(cfg.BasePath+"/", http.StatusMovedPermanently))
	return nil
}

const swaggerUITemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
    <style>
        body { margin: 0; background: #fafafa; }
        .swagger-ui .topbar { display: none; }
    </style>
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" charset="UTF-8"></script>
    <script>
        window.onload = function() {
            window.ui = SwaggerUIBundle({
                url: "{{.SpecURL}}",
                dom_id: '#swagger-ui',
                deepLinking: {{.DeepLinking}},
                docExpansion: "{{.DocExpansion}}",
                defaultModelsExpandDepth: {{.DefaultModelsExpandDepth}},
                presets: [SwaggerUIBundle.presets.apis],
                validatorUrl: null
            });
        };
    </script>
</body>
</html>`
