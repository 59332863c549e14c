package notion

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jomei/notionapi"
	"github.com/pkg/errors"

	"qualrole/internal/goal"
)

// Source yields the goals for one page load.
type Source interface {
	Fetch(ctx context.Context) ([]goal.Goal, error)
}

// Querier is the slice of the Notion database API the fetcher needs.
// notionapi.Client.Database satisfies it.
type Querier interface {
	Query(ctx context.Context, id notionapi.DatabaseID, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
}

type Config struct {
	DatabaseID     string
	NameProperty   string
	TypeProperty   string
	StatusProperty string
	PageSize       int
	Timeout        time.Duration
}

func (c *Config) ApplyDefaults() {
	if c.NameProperty == "" {
		c.NameProperty = "Name"
	}
	if c.TypeProperty == "" {
		c.TypeProperty = "Type"
	}
	if c.StatusProperty == "" {
		c.StatusProperty = "Status"
	}
	if c.PageSize <= 0 || c.PageSize > 100 {
		c.PageSize = 100
	}
}

// NewClient builds the Notion API client. httpClient may be nil.
func NewClient(token string, httpClient *http.Client) *notionapi.Client {
	if httpClient == nil {
		return notionapi.NewClient(notionapi.Token(token))
	}
	return notionapi.NewClient(notionapi.Token(token), notionapi.WithHTTPClient(httpClient))
}

type Fetcher struct {
	db     Querier
	cfg    Config
	logger *log.Logger
}

func NewFetcher(db Querier, cfg Config, logger *log.Logger) *Fetcher {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = log.Default()
	}
	return &Fetcher{db: db, cfg: cfg, logger: logger}
}

// Fetch reads every row of the database. Without a database id it
// returns no goals and makes no call.
func (f *Fetcher) Fetch(ctx context.Context) ([]goal.Goal, error) {
	if f.cfg.DatabaseID == "" {
		f.logger.Warn("notion database id not configured, serving no goals")
		return nil, nil
	}
	if f.db == nil {
		return nil, errors.New("notion client is not configured")
	}
	if f.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	var (
		goals  []goal.Goal
		cursor notionapi.Cursor
		pages  int
	)
	for {
		resp, err := f.db.Query(ctx, notionapi.DatabaseID(f.cfg.DatabaseID), &notionapi.DatabaseQueryRequest{
			StartCursor: cursor,
			PageSize:    f.cfg.PageSize,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "query notion database %s", f.cfg.DatabaseID)
		}
		pages++
		for _, page := range resp.Results {
			goals = append(goals, f.toGoal(page))
		}
		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}

	f.logger.Debug("notion fetch", "goals", len(goals), "pages", pages, "took", time.Since(start))
	return goals, nil
}

func (f *Fetcher) toGoal(page notionapi.Page) goal.Goal {
	g := goal.Goal{ID: string(page.ID), Types: []goal.Category{}}

	switch p := page.Properties[f.cfg.NameProperty].(type) {
	case *notionapi.TitleProperty:
		if len(p.Title) > 0 {
			g.Name = p.Title[0].PlainText
		}
	case *notionapi.RichTextProperty:
		if len(p.RichText) > 0 {
			g.Name = p.RichText[0].PlainText
		}
	}

	if p, ok := page.Properties[f.cfg.TypeProperty].(*notionapi.MultiSelectProperty); ok {
		for _, opt := range p.MultiSelect {
			g.Types = append(g.Types, goal.Category{ID: string(opt.ID), Name: opt.Name})
		}
	}

	switch p := page.Properties[f.cfg.StatusProperty].(type) {
	case *notionapi.SelectProperty:
		g.Status = goal.Status(p.Select.Name)
	case *notionapi.StatusProperty:
		g.Status = goal.Status(p.Status.Name)
	}

	return g
}
