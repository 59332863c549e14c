package serverapp

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/rs/cors"

	"qualrole/internal/config"
	"qualrole/internal/form"
	"qualrole/internal/goal"
	"qualrole/internal/httpmw"
	"qualrole/internal/notion"
	"qualrole/internal/page"
	"qualrole/internal/selection"
	staticfiles "qualrole/static"
)

type Options struct {
	Config *config.Config
	Source notion.Source
	Engine *selection.Engine
	Logger *log.Logger
}

type app struct {
	cfg    *config.Config
	source notion.Source
	engine *selection.Engine
	logger *log.Logger
}

func NewHandler(opts Options) (http.Handler, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Source == nil {
		return nil, errors.New("goal source is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Engine == nil {
		opts.Engine = EngineFor(opts.Config)
	}
	a := &app{cfg: opts.Config, source: opts.Source, engine: opts.Engine, logger: opts.Logger}

	mux := http.NewServeMux()
	rr := &RouteRegistry{}

	staticHandler := http.FileServer(http.FS(staticfiles.EmbeddedFS()))
	if a.cfg.Server.DevStatic {
		staticHandler = http.FileServer(http.Dir(a.cfg.Server.StaticDir))
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", staticHandler))

	handle(mux, rr, "GET /healthz", "Liveness", "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "qualrole",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})
	handle(mux, rr, "GET /readyz", "Readiness and Notion configuration", "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":                true,
			"service":           "qualrole",
			"notion_configured": a.cfg.Notion.DatabaseID != "",
			"time":              time.Now().UTC().Format(time.RFC3339),
		})
	})

	handle(mux, rr, "GET /{$}", "Outing picker page", "", a.homePage)
	handle(mux, rr, "POST /{$}", "Submit the four answers", "category=food&number=4&color=blue&character=naruto", a.submitPage)

	api := http.NewServeMux()
	handle(api, rr, "GET /api/goals", "List goals and categories", "", a.listGoals)
	handle(api, rr, "POST /api/suggestion", "Pick a suggestion", `{"category":"food","number":4,"color":"blue","character":"naruto"}`, a.suggest)
	handle(api, rr, "GET /api/routes", "List routes", "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, rr.List())
	})
	mux.Handle("/api/", corsFor(a.cfg.Server.CORSOrigins).Handler(api))

	return httpmw.Chain(
		mux,
		httpmw.WithAccessLog(opts.Logger),
		httpmw.WithRequestID,
		httpmw.WithRecover(opts.Logger),
	), nil
}

// EngineFor builds the selection engine, seeded when the config asks for it.
func EngineFor(cfg *config.Config) *selection.Engine {
	if cfg != nil && cfg.SeededRNG.Enabled {
		return selection.NewSeededEngine(cfg.SeededRNG.Seed)
	}
	return selection.NewEngine(nil)
}

func corsFor(origins []string) *cors.Cors {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", "Accept", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
	})
}

func (a *app) fetch(r *http.Request) ([]goal.Goal, bool) {
	goals, err := a.source.Fetch(r.Context())
	if err != nil {
		a.logger.Error("fetch goals", "request_id", httpmw.RequestIDFromContext(r.Context()), "err", err)
		return nil, false
	}
	return goals, true
}

func (a *app) meta() page.Meta {
	p := a.cfg.Page
	return page.Meta{
		Title:           p.Title,
		Description:     p.Description,
		SiteName:        p.SiteName,
		PreviewImageURL: p.PreviewImageURL,
	}
}

func (a *app) render(w http.ResponseWriter, r *http.Request, goals []goal.Goal, s form.State) {
	data := page.HomeData{Meta: a.meta(), Categories: goal.Categories(goals), Form: s}
	templ.Handler(page.Home(data)).ServeHTTP(w, r)
}

func (a *app) homePage(w http.ResponseWriter, r *http.Request) {
	goals, ok := a.fetch(r)
	if !ok {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	a.render(w, r, goals, form.New())
}

func (a *app) submitPage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	goals, ok := a.fetch(r)
	if !ok {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	s := form.New()
	for _, f := range selection.Fields {
		if vals, present := r.PostForm[string(f)]; present && len(vals) > 0 {
			s = form.Reduce(s, form.SetField{Field: f, Value: vals[0]})
		}
	}
	s = form.Run(s, goals, a.engine)

	a.logger.Debug("selection",
		"request_id", httpmw.RequestIDFromContext(r.Context()),
		"phase", s.Phase,
		"goals", len(goals),
	)
	a.render(w, r, goals, s)
}

type goalsResponse struct {
	Goals      []goal.Goal `json:"goals"`
	Categories []string    `json:"categories"`
}

func (a *app) listGoals(w http.ResponseWriter, r *http.Request) {
	goals, ok := a.fetch(r)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal server error"})
		return
	}
	if goals == nil {
		goals = []goal.Goal{}
	}
	writeJSON(w, http.StatusOK, goalsResponse{Goals: goals, Categories: goal.Categories(goals)})
}

func (a *app) suggest(w http.ResponseWriter, r *http.Request) {
	var f selection.Filters
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return
	}
	if invalid := selection.Validate(f); len(invalid) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, selection.Outcome{Kind: selection.KindValidationFailed, Invalid: invalid})
		return
	}
	goals, ok := a.fetch(r)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, a.engine.Select(goals, f))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
