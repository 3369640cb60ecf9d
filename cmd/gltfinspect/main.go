// Command gltfinspect loads a .gltf or .glb file and prints a summary of its
// contents, optionally dumping the first elements of one accessor.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-gltf/engine/loader"
)

func main() {
	var (
		format   = flag.String("format", "text", "Output format: text or yaml")
		accessor = flag.Int("accessor", -1, "Index of an accessor to dump (optional)")
		limit    = flag.Int("limit", 8, "Number of accessor elements to dump")
		prefetch = flag.Int("prefetch", 0, "Fetch buffers eagerly on this many workers")
		profile  = flag.Bool("profile", false, "Log the duration of each load phase")
		verbose  = flag.Bool("v", false, "Enable development logging")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: gltfinspect [-format text|yaml] [-accessor N] [-limit K] [-prefetch W] [-profile] [-v] <file.gltf|file.glb>")
		os.Exit(2)
	}

	logger := zap.NewNop()
	if *verbose || *profile {
		level := zap.NewAtomicLevelAt(zap.InfoLevel)
		if *verbose {
			level.SetLevel(zap.DebugLevel)
		}
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = level
		dev, err := cfg.Build()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		logger = dev
		defer func() { _ = logger.Sync() }()
	}

	if err := run(flag.Arg(0), *format, *accessor, *limit, *prefetch, *profile, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(path, format string, accessor, limit, prefetch int, profile bool, logger *zap.Logger) error {
	if format != "text" && format != "yaml" {
		return fmt.Errorf("unknown format %q", format)
	}

	l := loader.NewLoader(
		loader.WithLogger(logger),
		loader.WithPrefetchWorkers(prefetch),
		loader.WithProfiling(profile),
	)
	defer l.Close()
	doc, err := l.Load(filepath.Clean(path))
	if err != nil {
		return err
	}

	s, err := summarize(path, doc, accessor, limit)
	if err != nil {
		return err
	}

	if format == "yaml" {
		out, err := yaml.Marshal(s)
		if err != nil {
			return fmt.Errorf("marshal summary: %w", err)
		}
		_, err = os.Stdout.Write(out)
		return err
	}

	fmt.Print(renderText(s))
	return nil
}
