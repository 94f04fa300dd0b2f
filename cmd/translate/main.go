// Package main provides the translate CLI: it reads a wire document (or an
// SSE stream) from stdin, runs it through the translation registry, and writes
// the translated output to stdout.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/agrelay/agrelay/internal/buildinfo"
	"github.com/agrelay/agrelay/internal/config"
	"github.com/agrelay/agrelay/internal/logging"
	sdktranslator "github.com/agrelay/agrelay/sdk/translator"
	"github.com/agrelay/agrelay/sdk/translator/builtin"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func init() {
	logging.SetupBaseLogger()
	buildinfo.Version = Version
	buildinfo.Commit = Commit
	buildinfo.BuildDate = BuildDate
}

func main() {
	var configPath string
	var source string
	var target string
	var model string
	var mode string
	var showVersion bool
	flag.StringVar(&configPath, "config", "", "path to YAML config file")
	flag.StringVar(&source, "source", "", "source dialect (overrides config)")
	flag.StringVar(&target, "target", "", "target dialect (overrides config)")
	flag.StringVar(&model, "model", "", "model name stamped into translated requests")
	flag.StringVar(&mode, "mode", "request", "translation mode: request, response or stream")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("agrelay translate %s (%s, built %s)\n", buildinfo.Version, buildinfo.Commit, buildinfo.BuildDate)
		return
	}

	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("%v", err)
		}
		cfg = loaded
	}
	if err := logging.ConfigureLogOutput(cfg); err != nil {
		log.Fatalf("%v", err)
	}

	if source == "" {
		source = cfg.Source
	}
	if target == "" {
		target = cfg.Target
	}
	if model == "" {
		model = cfg.Model
	}

	registry := builtin.Registry()
	from := sdktranslator.FromString(source)
	to := sdktranslator.FromString(target)

	var err error
	switch mode {
	case "request":
		err = runRequest(registry, from, to, model)
	case "response":
		err = runResponse(registry, from, to, model)
	case "stream":
		err = runStream(registry, from, to, model)
	default:
		err = fmt.Errorf("unknown mode %q", mode)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

// runRequest translates one complete request document from stdin.
func runRequest(registry *sdktranslator.Registry, from, to sdktranslator.Format, model string) error {
	rawJSON, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	if _, err = registry.LookupRequest(from, to); err != nil {
		return err
	}
	out := registry.TranslateRequest(from, to, model, rawJSON, false)
	_, err = fmt.Println(string(out))
	return err
}

// runResponse translates one complete non-streaming response document.
func runResponse(registry *sdktranslator.Registry, from, to sdktranslator.Format, model string) error {
	rawJSON, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	var param any
	out := registry.TranslateNonStream(context.Background(), from, to, model, nil, nil, rawJSON, &param)
	_, err = fmt.Println(out)
	return err
}

// runStream feeds stdin lines through the streaming translator, one SSE chunk
// per line, and prints every emitted frame.
func runStream(registry *sdktranslator.Registry, from, to sdktranslator.Format, model string) error {
	// Response transforms are registered under the client dialect.
	if !registry.HasResponseTransformer(to, from) {
		return fmt.Errorf("no response translator for %s -> %s", from, to)
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	writer := bufio.NewWriter(os.Stdout)
	defer func() { _ = writer.Flush() }()

	ctx := context.Background()
	var param any
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		for _, frame := range registry.TranslateStream(ctx, from, to, model, nil, nil, line, &param) {
			if _, err := fmt.Fprintln(writer, frame); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}
