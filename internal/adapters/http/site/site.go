// Package site serves the server-rendered assessment form.
package site

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/metarisk/internal/app"
	"github.com/okian/metarisk/internal/domain/catalog"
	"github.com/okian/metarisk/internal/domain/collect"
	"github.com/okian/metarisk/internal/domain/registry"
	"github.com/okian/metarisk/pkg/logger"
)

// Error constants
var (
	ErrTemplate = errors.New("site template failed")
)

//go:embed templates/*.html
var templateFS embed.FS

const defaultMaxFormBytes = 64 << 10

// Dependencies required by the site.
type Dependencies interface {
	Models() []registry.ModelSpec
	Form(id string) (service.Form, error)
	Submit(ctx context.Context, modelID string, raw map[string]string) (service.Assessment, error)
}

// Site renders the model picker and per-model forms.
type Site struct {
	deps    Dependencies
	tmpl    *template.Template
	maxBody int64
	logger  logger.Logger
}

// Option applies a configuration option to the Site.
type Option func(*Site)

// WithLogger sets the logger used by the site.
func WithLogger(l logger.Logger) Option {
	return func(s *Site) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxBodyBytes caps posted form bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Site) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// New parses the embedded templates.
func New(deps Dependencies, opts ...Option) (*Site, error) {
	tmpl, err := template.New("site").Funcs(template.FuncMap{
		"pct":     func(p float64) string { return fmt.Sprintf("%.1f%%", p*100) },
		"columns": columns,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplate, err)
	}
	s := &Site{deps: deps, tmpl: tmpl, maxBody: defaultMaxFormBytes, logger: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register attaches the site routes to r.
func (s *Site) Register(r chi.Router) {
	r.Get("/", s.HandleIndex)
	r.Get("/form", s.HandleForm)
	r.Post("/form", s.HandleSubmit)
}

// columns splits a group into a left and a right column, the left one taking
// the extra feature when the count is odd.
func columns(features []catalog.FeatureSpec) [][]catalog.FeatureSpec {
	half := (len(features) + 1) / 2
	return [][]catalog.FeatureSpec{features[:half], features[half:]}
}

type indexPage struct {
	Title  string
	Models []registry.ModelSpec
	Error  string
}

type formPage struct {
	Title  string
	Form   service.Form
	Values map[string]string
	Errors map[string]string
	Result *service.Assessment
	Error  string
}

// HandleIndex handles GET / requests.
func (s *Site) HandleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "index", indexPage{Title: "Models", Models: s.deps.Models()})
}

// HandleForm handles GET /form?model=id requests.
func (s *Site) HandleForm(w http.ResponseWriter, r *http.Request) {
	form, err := s.deps.Form(r.URL.Query().Get("model"))
	if err != nil {
		s.notFound(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "form", formPage{
		Title:  form.Model.Name,
		Form:   form,
		Values: form.Defaults,
	})
}

// HandleSubmit handles POST /form requests.
func (s *Site) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	form, err := s.deps.Form(r.PostForm.Get("model"))
	if err != nil {
		s.notFound(w, r, err)
		return
	}

	raw := make(map[string]string, len(form.Model.Features))
	for _, name := range form.Model.Features {
		if vs, ok := r.PostForm[name]; ok && len(vs) > 0 {
			raw[name] = vs[0]
		}
	}
	page := formPage{Title: form.Model.Name, Form: form, Values: raw}

	a, err := s.deps.Submit(r.Context(), form.Model.ID, raw)
	if err != nil {
		status := http.StatusInternalServerError
		switch service.ErrorKind(err) {
		case service.KindInvalidInput:
			status = http.StatusUnprocessableEntity
			page.Errors = make(map[string]string)
			for _, fe := range collect.FieldErrors(err) {
				page.Errors[fe.Feature] = fieldMessage(fe)
			}
			page.Error = "Please correct the highlighted fields."
		case service.KindArtifactNotFound:
			status = http.StatusServiceUnavailable
			page.Error = "The scoring artifact for this model is not installed. Choose another model or contact the administrator."
		case service.KindArtifactError:
			status = http.StatusBadGateway
			page.Error = "The scoring artifact for this model could not be used. Choose another model or contact the administrator."
		default:
			page.Error = "The assessment could not be completed."
			s.logger.Error(r.Context(), "form submission failed",
				logger.String("model", form.Model.ID),
				logger.Error(err),
			)
		}
		s.render(w, r, status, "form", page)
		return
	}
	page.Result = &a
	s.render(w, r, http.StatusOK, "form", page)
}

func fieldMessage(fe *collect.FieldError) string {
	if errors.Is(fe.Kind, collect.ErrInvalidSelection) {
		return "Choose one of the listed options."
	}
	return "Enter a number."
}

func (s *Site) notFound(w http.ResponseWriter, r *http.Request, err error) {
	msg := "Unknown model."
	if !errors.Is(err, registry.ErrModelNotFound) {
		msg = "The model could not be loaded."
	}
	s.render(w, r, http.StatusNotFound, "index", indexPage{Title: "Models", Models: s.deps.Models(), Error: msg})
}

// render executes into a buffer first so a template failure never leaves a
// half-written page.
func (s *Site) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error(r.Context(), "render failed", logger.String("template", name), logger.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
