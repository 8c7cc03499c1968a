package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmgilman/go/errors"

	"github.com/goliatone/go-document-cache/document"
	"github.com/goliatone/go-document-cache/pkg/config"
	"github.com/goliatone/go-document-cache/pkg/di"
	"github.com/goliatone/go-document-cache/pkg/export"
	"github.com/goliatone/go-document-cache/pkg/health"
)

const usage = `usage: doccache [--config file.yaml] <command> [flags] [args]

commands:
  create <document>              insert a JSON document
  read [--cached] [--repeat n] [filter]
                                 print matching documents as JSON lines
  update [--many] <filter> <changes>
                                 apply $set/$unset/$inc to matching documents
  delete [--many] <filter>       remove matching documents
  export [--out file] [--zstd] [filter]
                                 write matching documents as JSON lines
  stats [--cached] [--repeat n] [filter]
                                 read, then print cache and gateway counters
  ping [--repeat n]              check that the store is reachable
`

var errUsage = errors.New(errors.CodeInvalidInput, "invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.LookupEnv, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		fmt.Fprintf(os.Stderr, "doccache: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, lookupEnv func(string) (string, bool), stdout io.Writer) error {
	global := flag.NewFlagSet("doccache", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	configPath := global.String("config", "", "YAML configuration file")
	if err := global.Parse(args); err != nil {
		return usageError(err.Error())
	}
	if global.NArg() == 0 {
		return errUsage
	}

	cfg, err := loadConfig(*configPath, lookupEnv)
	if err != nil {
		return err
	}

	container, err := di.NewContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer container.Close(context.WithoutCancel(ctx))

	cmd, cmdArgs := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "create":
		return runCreate(ctx, container, cmdArgs, stdout)
	case "read", "stats":
		return runRead(ctx, container, cmd, cmdArgs, stdout)
	case "update":
		return runUpdate(ctx, container, cmdArgs, stdout)
	case "delete":
		return runDelete(ctx, container, cmdArgs, stdout)
	case "export":
		return runExport(ctx, container, cmdArgs, stdout)
	case "ping":
		return runPing(ctx, container, cmdArgs, stdout)
	default:
		return usageError(fmt.Sprintf("unknown command %q", cmd))
	}
}

func loadConfig(path string, lookupEnv func(string) (string, bool)) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return config.Config{}, err
		}
	}
	if err := cfg.ApplyEnv(lookupEnv); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runCreate(ctx context.Context, c *di.Container, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return usageError("create takes one document")
	}
	doc, err := parseArg("document", args[0])
	if err != nil {
		return err
	}

	ok, err := c.Repository().Create(ctx, doc)
	if err != nil {
		return err
	}
	return printJSON(stdout, map[string]any{"inserted": ok})
}

func runRead(ctx context.Context, c *di.Container, cmd string, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cached := fs.Bool("cached", cmd == "stats", "serve repeated filters from the cache")
	repeat := fs.Int("repeat", 1, "number of times to run the read")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	if *repeat < 1 {
		return usageError("--repeat must be at least 1")
	}

	filter, err := optionalFilter(fs.Args())
	if err != nil {
		return err
	}

	repo := c.Repository()
	var docs []document.Document
	for i := 0; i < *repeat; i++ {
		if !*cached {
			docs = repo.Read(ctx, filter)
			continue
		}
		var hit bool
		docs, hit = repo.ReadCachedWithStatus(ctx, filter)
		c.Logger().Info("cached read", "attempt", i+1, "hit", hit, "results", len(docs))
	}

	if cmd == "stats" {
		return printJSON(stdout, map[string]any{
			"cache":   repo.CacheStats(),
			"gateway": c.Gateway().Stats(),
		})
	}
	_, err = export.Write(stdout, docs, export.Options{})
	return err
}

func runUpdate(ctx context.Context, c *di.Container, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	many := fs.Bool("many", false, "update every matching document")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	if fs.NArg() != 2 {
		return usageError("update takes a filter and changes")
	}

	filter, err := parseArg("filter", fs.Arg(0))
	if err != nil {
		return err
	}
	changes, err := parseArg("changes", fs.Arg(1))
	if err != nil {
		return err
	}

	n, err := c.Repository().Update(ctx, filter, changes, *many)
	if err != nil {
		return err
	}
	return printJSON(stdout, map[string]any{"modified": n})
}

func runDelete(ctx context.Context, c *di.Container, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	many := fs.Bool("many", false, "delete every matching document")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	if fs.NArg() != 1 {
		return usageError("delete takes a filter")
	}

	filter, err := parseArg("filter", fs.Arg(0))
	if err != nil {
		return err
	}

	n, err := c.Repository().Delete(ctx, filter, *many)
	if err != nil {
		return err
	}
	return printJSON(stdout, map[string]any{"deleted": n})
}

func runExport(ctx context.Context, c *di.Container, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	out := fs.String("out", "", "output file, stdout when empty")
	compress := fs.Bool("zstd", false, "compress the output with zstd")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}

	filter, err := optionalFilter(fs.Args())
	if err != nil {
		return err
	}

	w := stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return errors.Wrapf(err, errors.CodeInvalidInput, "export: create %s", *out)
		}
		defer f.Close()
		w = f
	}

	n, err := export.Write(w, c.Repository().Read(ctx, filter), export.Options{Compress: *compress})
	if err != nil {
		return err
	}
	c.Logger().Info("exported documents", "count", n, "zstd", *compress, "out", *out)
	return nil
}

func runPing(ctx context.Context, c *di.Container, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("ping", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	repeat := fs.Int("repeat", 1, "number of checks, later ones within the TTL are cached")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	if *repeat < 1 || fs.NArg() != 0 {
		return usageError("ping takes only --repeat n with n at least 1")
	}

	var (
		status health.Status
		cached bool
	)
	for i := 0; i < *repeat; i++ {
		status, cached = c.Health().Check(ctx)
	}

	if err := printJSON(stdout, map[string]any{
		"status": status,
		"cached": cached,
		"stats":  c.Health().Stats(),
	}); err != nil {
		return err
	}
	if !status.Healthy {
		return errors.WithContext(errors.New(errors.CodeUnavailable, "store unreachable"), "collection", status.Collection)
	}
	return nil
}

func optionalFilter(args []string) (document.Filter, error) {
	switch len(args) {
	case 0:
		return nil, nil
	case 1:
		return parseArg("filter", args[0])
	default:
		return nil, usageError("expected at most one filter")
	}
}

func parseArg(name, raw string) (document.Document, error) {
	doc, err := document.ParseJSON([]byte(raw))
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeInvalidInput, "invalid %s", name)
	}
	return doc, nil
}

func usageError(msg string) error {
	return errors.Wrap(errUsage, errors.CodeInvalidInput, msg)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
