package httpapi

import (
	"html/template"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	app "github.com/R3E-Network/fatesheet/internal/app"
	"github.com/R3E-Network/fatesheet/internal/app/metrics"
	"github.com/R3E-Network/fatesheet/internal/app/services/sheets"
	"github.com/R3E-Network/fatesheet/internal/app/storage"
	svcerr "github.com/R3E-Network/fatesheet/internal/errors"
	"github.com/R3E-Network/fatesheet/internal/logging"
)

// Options configures NewHandler. Zero values are usable.
type Options struct {
	// Templates overrides the embedded page templates.
	Templates *template.Template
	// RenderDebug appends the view-model to render error responses.
	RenderDebug bool
	// Metrics enables /metrics and render failure counting.
	Metrics *metrics.Metrics
	Logger  *logging.Logger
	// Middleware wraps every route as well as the not found and method not
	// allowed responses.
	Middleware []mux.MiddlewareFunc
}

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app    *app.Application
	render *renderer
	log    *logging.Logger
}

type todoListView struct {
	Todos []string
}

// NewHandler returns a router exposing the pages and htmx endpoints.
func NewHandler(application *app.Application, opts Options) *mux.Router {
	log := opts.Logger
	if log == nil {
		log = logging.NewDefault("httpapi")
	}
	tmpl := opts.Templates
	if tmpl == nil {
		tmpl = template.Must(ParseTemplates())
	}

	h := &handler{
		app: application,
		render: &renderer{
			templates: tmpl,
			debug:     opts.RenderDebug,
			metrics:   opts.Metrics,
			log:       log,
		},
		log: log,
	}

	router := mux.NewRouter()
	router.HandleFunc("/", h.showHome).Methods(http.MethodGet)
	router.HandleFunc("/another-page", h.showAnotherPage).Methods(http.MethodGet)
	router.HandleFunc("/api/todos", h.addTodo).Methods(http.MethodPost)
	router.HandleFunc("/api/hello", h.hello).Methods(http.MethodGet)
	router.HandleFunc("/fate/characters/{id}", h.showCharacter).Methods(http.MethodGet)
	router.HandleFunc("/fate/characters/{id}", h.updateCharacter).Methods(http.MethodPost)
	router.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics.Handler()).Methods(http.MethodGet)
	}

	router.Use(opts.Middleware...)
	router.NotFoundHandler = chain(http.HandlerFunc(h.notFound), opts.Middleware)
	router.MethodNotAllowedHandler = chain(http.HandlerFunc(h.methodNotAllowed), opts.Middleware)
	return router
}

// chain applies middleware the way mux does for matched routes, first
// element outermost. The router only runs Use middleware on matches.
func chain(next http.Handler, mw []mux.MiddlewareFunc) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		next = mw[i](next)
	}
	return next
}

func (h *handler) showHome(w http.ResponseWriter, r *http.Request) {
	items, err := h.app.Todos.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.render.render(w, r, tmplHome, todoListView{Todos: items})
}

func (h *handler) addTodo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, svcerr.BadRequest("invalid form", err))
		return
	}
	values, ok := r.PostForm["todo"]
	if !ok || len(values) == 0 {
		h.writeError(w, r, svcerr.BadRequest("todo is required", nil))
		return
	}

	items, err := h.app.Todos.Add(r.Context(), values[0])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.render.render(w, r, tmplTodoList, todoListView{Todos: items})
}

func (h *handler) showAnotherPage(w http.ResponseWriter, r *http.Request) {
	h.render.render(w, r, tmplAnotherPage, nil)
}

func (h *handler) hello(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "Hello!")
}

func (h *handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

func (h *handler) notFound(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusNotFound, "404 page not found")
}

func (h *handler) methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
}

func (h *handler) showCharacter(w http.ResponseWriter, r *http.Request) {
	id, err := characterID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	editable := sheets.ParseEditable(r.URL.Query().Get("editable"))
	sheet, err := h.app.Sheets.Get(r.Context(), id, editable)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.render.render(w, r, tmplCharacter, sheet)
}

func (h *handler) updateCharacter(w http.ResponseWriter, r *http.Request) {
	id, err := characterID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, svcerr.BadRequest("invalid form", err))
		return
	}

	sheet, err := h.app.Sheets.Update(r.Context(), id, r.PostForm)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.render.render(w, r, tmplCharacter, sheet)
}

// characterID returns the canonical form of the {id} path variable.
func characterID(r *http.Request) (string, error) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", svcerr.BadRequest("character id must be a UUID", err)
	}
	return id.String(), nil
}

// writeError maps err onto the service error taxonomy. Causes are logged,
// clients only see the message.
func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	serviceErr := svcerr.From(err, storage.ErrNotFound)

	entry := h.log.WithContext(r.Context()).
		WithField("code", serviceErr.Code).
		WithField("status", serviceErr.HTTPStatus)
	if serviceErr.Err != nil {
		entry = entry.WithError(serviceErr.Err)
	}
	if serviceErr.HTTPStatus >= http.StatusInternalServerError {
		entry.Error(serviceErr.Message)
	} else {
		entry.Debug(serviceErr.Message)
	}

	writeText(w, serviceErr.HTTPStatus, serviceErr.Message)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
