// Command pick answers the four questions from the terminal and prints
// the suggested outing.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jessevdk/go-flags"

	"qualrole/internal/config"
	"qualrole/internal/goal"
	"qualrole/internal/notion"
	"qualrole/internal/selection"
)

type options struct {
	Category  string  `short:"t" long:"category" description:"kind of outing (exact tag name)"`
	Number    *int    `short:"n" long:"number" description:"a number from 0 to 9"`
	Color     string  `short:"c" long:"color" description:"a color"`
	Character string  `short:"p" long:"character" description:"a character"`
	FromFile  string  `short:"f" long:"from-file" description:"read goals from a YAML file instead of Notion"`
	Config    string  `long:"config" default:"qualrole_config.yml" description:"config file"`
	List      bool    `short:"l" long:"list" description:"list the categories and exit"`
	Seed      *uint64 `long:"seed" description:"seed the draws"`
}

func main() {
	config.LoadDotEnv()

	var opts options
	if _, err := flags.NewParser(&opts, flags.Default).Parse(); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	code, err := run(context.Background(), opts, os.Stdout)
	if err != nil {
		log.Error("pick failed", "err", err)
	}
	os.Exit(code)
}

func source(opts options, cfg *config.Config, logger *log.Logger) (notion.Source, error) {
	if opts.FromFile != "" {
		return notion.LoadStatic(opts.FromFile)
	}
	client := notion.NewClient(cfg.Notion.Token, nil)
	return notion.NewFetcher(client.Database, cfg.Notion.Fetcher(), logger), nil
}

// run returns the process exit code: 0 for a suggestion, 1 for no match
// or an error, 2 for missing answers.
func run(ctx context.Context, opts options, out io.Writer) (int, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return 1, err
	}
	logger := cfg.Log.NewLogger(os.Stderr)

	src, err := source(opts, cfg, logger)
	if err != nil {
		return 1, err
	}
	goals, err := src.Fetch(ctx)
	if err != nil {
		return 1, err
	}

	if opts.List {
		for _, c := range goal.Categories(goals) {
			fmt.Fprintln(out, c)
		}
		return 0, nil
	}

	engine := selection.NewEngine(nil)
	if opts.Seed != nil {
		engine = selection.NewSeededEngine(*opts.Seed)
	} else if cfg.SeededRNG.Enabled {
		engine = selection.NewSeededEngine(cfg.SeededRNG.Seed)
	}

	outcome := engine.Select(goals, selection.Filters{
		Category:  opts.Category,
		Number:    opts.Number,
		Color:     opts.Color,
		Character: opts.Character,
	})
	switch outcome.Kind {
	case selection.KindValidationFailed:
		names := make([]string, 0, len(outcome.Invalid))
		for _, f := range outcome.Invalid {
			names = append(names, "--"+string(f))
		}
		fmt.Fprintf(out, "missing or invalid: %s\n", strings.Join(names, ", "))
		return 2, nil
	case selection.KindNoMatch:
		fmt.Fprintln(out, "no pending outing of that kind")
		return 1, nil
	}

	name := outcome.Goal.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(out, "%s [%s] (%d candidates)\n", name, outcome.Goal.ID, outcome.Candidates)
	return 0, nil
}
