package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/resolvent/resolvent/internal/catalog"
	"github.com/resolvent/resolvent/internal/eventbus"
	"github.com/resolvent/resolvent/internal/executor"
	"github.com/resolvent/resolvent/internal/introspection"
	"github.com/resolvent/resolvent/internal/logging"
	"github.com/resolvent/resolvent/internal/metrics"
	"github.com/resolvent/resolvent/internal/otel"
	"github.com/resolvent/resolvent/internal/resolver"
	"github.com/resolvent/resolvent/internal/schema"
	"github.com/resolvent/resolvent/internal/server"
	"github.com/resolvent/resolvent/internal/store"
)

const rootUsage = `resolvent — GraphQL engine over an in-memory record store

USAGE:
  resolvent <command> [flags]

COMMANDS:
  serve            Run the HTTP GraphQL server
  render-sdl       Parse, validate and render a GraphQL SDL file
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -schema.file <file>            GraphQL SDL file. When omitted, the built-in
                                 games catalog is served. Resolvers bind by
                                 the catalog naming conventions.
  -schema.introspection <bool>   Enable GraphQL introspection (default: true)
  -seed.file <file>              YAML seed fixture. Defaults to the built-in
                                 catalog fixture when no schema file is given.
  -server.addr <addr>            HTTP listen address (default: :8080)
  -server.pretty                 Pretty-print JSON responses
  -server.timeout <duration>     Per-request timeout, e.g. 10s (default: 10s)
  -server.cors <origin>          Allowed CORS origin. Repeatable; * allows all
  -metrics.addr <addr>           Prometheus scrape address (empty disables)
  -otel.endpoint <addr>          OTLP collector endpoint (empty disables)
  -otel.service <name>           OpenTelemetry service name (default: resolvent)
  -log.level <level>             debug, info, warn, error (default: info)
  -log.format <format>           text or json (default: text)
`

const renderSDLUsage = `render-sdl FLAGS:
  -schema.file <file>  GraphQL SDL file to render (required)
  -out <file>          Write rendered SDL to file (default: stdout)
  (Validation always runs; exits non-zero on errors)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("resolvent", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "serve":
		return cmdServe(cmdArgs)
	case "render-sdl":
		return cmdRenderSDL(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Print(serveUsage)
	case "render-sdl":
		fmt.Print(renderSDLUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return "" }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func cmdServe(args []string) error {
	schemaFile := ""
	seedFile := ""
	addr := ":8080"
	pretty := false
	timeout := 10 * time.Second
	enableIntrospection := true
	metricsAddr := ""
	otelEndpoint := ""
	otelService := "resolvent"
	logLevel := "info"
	logFormat := "text"
	var corsOrigins stringListFlag

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaFile, "schema.file", schemaFile, "GraphQL SDL file")
	fs.BoolVar(&enableIntrospection, "schema.introspection", enableIntrospection, "Enable GraphQL introspection")
	fs.StringVar(&seedFile, "seed.file", seedFile, "YAML seed fixture")
	fs.StringVar(&addr, "server.addr", addr, "HTTP listen address")
	fs.BoolVar(&pretty, "server.pretty", pretty, "Pretty-print JSON responses")
	fs.DurationVar(&timeout, "server.timeout", timeout, "Per-request timeout")
	fs.Var(&corsOrigins, "server.cors", "Allowed CORS origin")
	fs.StringVar(&metricsAddr, "metrics.addr", metricsAddr, "Prometheus scrape address")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	fs.StringVar(&logLevel, "log.level", logLevel, "Log level")
	fs.StringVar(&logFormat, "log.format", logFormat, "Log format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}

	eventbus.Use(eventbus.New())
	logger := logging.New(logging.Config{Level: logLevel, Format: logFormat})
	logging.Register(logger)

	shutdown, err := otel.Setup(otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	st := store.New()
	var sch *schema.Schema
	var m *resolver.Map
	if schemaFile == "" {
		sch, m, err = catalog.New(st)
		if err != nil {
			return err
		}
		if seedFile == "" {
			if err := catalog.Seed(st); err != nil {
				return fmt.Errorf("load catalog seed: %w", err)
			}
		}
	} else {
		sdl, rerr := os.ReadFile(schemaFile)
		if rerr != nil {
			return fmt.Errorf("read schema: %w", rerr)
		}
		sch, err = schema.BuildFromSDL(string(sdl))
		if err != nil {
			return fmt.Errorf("build schema: %w", err)
		}
		m = resolver.NewMap()
		resolver.BindStoreConventions(m, st, sch)
		if err := m.Freeze(sch); err != nil {
			return fmt.Errorf("freeze resolvers: %w", err)
		}
	}
	if seedFile != "" {
		seed, serr := store.LoadSeedFile(seedFile)
		if serr != nil {
			return fmt.Errorf("load seed: %w", serr)
		}
		st.LoadSeed(seed)
	}

	var runtime executor.Runtime = m
	if enableIntrospection {
		wrapper := introspection.Wrap(runtime, sch)
		runtime = wrapper.Runtime
		sch = wrapper.Schema
	}

	sopts := []server.Option{server.WithTimeout(timeout)}
	if pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if len(corsOrigins) > 0 {
		sopts = append(sopts, server.WithCORS(corsOrigins...))
	}
	h, err := server.New(runtime, sch, sopts...)
	if err != nil {
		return fmt.Errorf("server init: %w", err)
	}

	if metricsAddr != "" {
		metrics.Register()
		mmux := http.NewServeMux()
		mmux.Handle("/metrics", metrics.Handler())
		go func() {
			if merr := http.ListenAndServe(metricsAddr, mmux); merr != nil {
				log.Printf("metrics server: %v", merr)
			}
		}()
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", h)

	log.Printf("GraphQL server listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func cmdRenderSDL(args []string) error {
	schemaFile := ""
	outFile := ""
	fs := flag.NewFlagSet("render-sdl", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaFile, "schema.file", schemaFile, "GraphQL SDL file to render")
	fs.StringVar(&outFile, "out", outFile, "Write rendered SDL to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, renderSDLUsage)
		return err
	}
	if schemaFile == "" {
		fmt.Fprint(os.Stderr, renderSDLUsage)
		return fmt.Errorf("-schema.file is required")
	}

	sdl, err := os.ReadFile(schemaFile)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	sch, err := schema.BuildFromSDL(string(sdl))
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}
	out := schema.Render(sch)
	if outFile == "" {
		fmt.Print(out)
		return nil
	}
	return os.WriteFile(outFile, []byte(out), 0644)
}
