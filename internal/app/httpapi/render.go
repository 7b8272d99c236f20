package httpapi

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/R3E-Network/fatesheet/internal/app/metrics"
	svcerr "github.com/R3E-Network/fatesheet/internal/errors"
	"github.com/R3E-Network/fatesheet/internal/logging"
)

// Page templates.
const (
	tmplHome        = "hello.html"
	tmplTodoList    = "todo-list.html"
	tmplAnotherPage = "another-page.html"
	tmplCharacter   = "character-sheet.html"
)

//go:embed templates/*.html
var templateFS embed.FS

// ParseTemplates parses the embedded page templates.
func ParseTemplates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// renderer turns a view-model into an HTML response. Output is buffered so a
// failing template never leaves a half-written 200 behind.
type renderer struct {
	templates *template.Template
	debug     bool
	metrics   *metrics.Metrics
	log       *logging.Logger
}

func (rd *renderer) render(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	var buf bytes.Buffer
	if err := rd.templates.ExecuteTemplate(&buf, name, data); err != nil {
		rd.renderFailed(w, r, name, data, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (rd *renderer) renderFailed(w http.ResponseWriter, r *http.Request, name string, data interface{}, err error) {
	serviceErr := svcerr.RenderFailed(err)
	rd.log.WithContext(r.Context()).WithError(err).WithField("template", name).Error("template render failed")
	if rd.metrics != nil {
		rd.metrics.RecordRenderFailure(name)
	}

	msg := fmt.Sprintf("Failed to render template. Error: %v", err)
	if rd.debug {
		msg += fmt.Sprintf("; data %+v", data)
	}
	writeText(w, serviceErr.HTTPStatus, msg)
}
