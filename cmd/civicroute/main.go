// Package main is the civicroute CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/civicroute/internal/cli"
	"github.com/hyperjump/civicroute/internal/config"
	"github.com/hyperjump/civicroute/internal/embedding"
	"github.com/hyperjump/civicroute/internal/metrics"
	"github.com/hyperjump/civicroute/internal/models"
	"github.com/hyperjump/civicroute/internal/pipeline"
	"github.com/hyperjump/civicroute/internal/rag"
	"github.com/hyperjump/civicroute/internal/server"
	"github.com/hyperjump/civicroute/internal/vision"
	"github.com/hyperjump/civicroute/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/civicroute/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "serve", "server":
		runServe()
	case "classify":
		os.Exit(runClassify(os.Args[2:], os.Stdout, os.Stderr))
	case "version", "--version", "-v":
		fmt.Printf("civicroute version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(components.Orchestrator, &cfg.Server, metrics.NewPredictMetrics(), logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// argsReorder moves any flags (and their values) that appear after the image
// path to the front so that flag.Parse() sees them. Go's flag package stops
// at the first non-flag argument.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func printClassifyUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: civicroute classify [flags] <image>\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Without --server the checkpoint and evidence store from the config are loaded
in process. With --server the image is posted to a running civicroute serve.

Examples:
  civicroute classify photo.jpg
  civicroute classify --format json photo.jpg
  civicroute classify --server http://localhost:8000 photo.jpg
`)
}

// runClassify implements the classify subcommand and returns the exit code.
func runClassify(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("classify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = run the pipeline locally)")
	outputFormat := fs.String("format", "text", "output format: text or json")
	fs.Usage = func() { printClassifyUsage(fs) }
	if err := fs.Parse(argsReorder(args)); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		printClassifyUsage(fs)
		return 2
	}
	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	imagePath := fs.Arg(0)
	data, err := os.ReadFile(imagePath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to read image: %v\n", err)
		return 1
	}

	var rec *models.DecisionRecord
	if *serverURL != "" {
		rec, err = classifyViaHTTP(*serverURL, filepath.Base(imagePath), data)
	} else {
		rec, err = classifyLocal(*configPath, data)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Classification failed: %v\n", err)
		return 1
	}
	if err := cli.WriteDecision(stdout, rec, format); err != nil {
		fmt.Fprintf(stderr, "Output failed: %v\n", err)
		return 1
	}
	return 0
}

func classifyLocal(configPath string, data []byte) (*models.DecisionRecord, error) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return nil, err
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		return nil, err
	}
	defer components.Close()
	return components.Orchestrator.HandleImage(context.Background(), data)
}

func classifyViaHTTP(serverURL, filename string, data []byte) (*models.DecisionRecord, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", http.DetectContentType(data))
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	resp, err := http.Post(serverURL+"/api/v1/predict/image", mw.FormDataContentType(), &body)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var rec models.DecisionRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &rec, nil
}

// Components holds initialized services.
type Components struct {
	Classifier   *vision.Classifier
	Embedder     embedding.Embedder
	Store        *rag.Store
	Orchestrator *pipeline.Orchestrator
}

func (c *Components) Close() {
	if c.Classifier != nil {
		_ = c.Classifier.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	classifier, err := vision.Load(cfg.Vision.CheckpointPath, vision.WithRuntimePath(cfg.ONNXRuntimePath))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize classifier: %w", err)
	}
	c := &Components{Classifier: classifier}
	logger.Info("classifier loaded",
		zap.String("checkpoint", cfg.Vision.CheckpointPath),
		zap.String("backbone", classifier.Backbone()),
		zap.Int("classes", len(classifier.Classes())),
	)

	store, err := rag.LoadStore(cfg.Retrieval.StorePath)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize evidence store: %w", err)
	}
	c.Store = store

	embedder, err := embedding.New(embedding.Options{
		Provider:    cfg.Embedding.Provider,
		ModelPath:   cfg.Embedding.ModelPath,
		VocabPath:   cfg.Embedding.VocabPath,
		RuntimePath: cfg.ONNXRuntimePath,
		Dimensions:  cfg.Embedding.Dimensions,
		MaxTokens:   cfg.Embedding.MaxTokens,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	c.Embedder = embedder
	if store.Len() > 0 && store.Dimensions() != embedder.Dimensions() {
		c.Close()
		return nil, models.NewError(models.ErrDimensionMismatch, "initialize components",
			"embedder produces %d dimensions, evidence store holds %d", embedder.Dimensions(), store.Dimensions())
	}
	logger.Info("evidence store loaded",
		zap.String("path", cfg.Retrieval.StorePath),
		zap.Stringer("store", store),
		zap.Int("sources", len(store.Sources())),
		zap.String("embedding_provider", cfg.Embedding.Provider),
	)

	c.Orchestrator = pipeline.New(classifier, rag.NewRetriever(store, embedder), pipeline.WithTopK(cfg.Retrieval.TopK))
	return c, nil
}

func printUsage() {
	fmt.Println(`civicroute - Civic issue classification and department routing

Usage:
  civicroute serve [flags]              Start the HTTP server
  civicroute classify [flags] <image>   Classify one image and print the decision
  civicroute version                    Show version
  civicroute help                       Show this help

Serve Flags:
  --config string    Config file path (default: /usr/local/etc/civicroute/config.yaml)
  --debug            Enable debug logging

Classify Flags:
  --config string    Config file path (local mode)
  --server string    Server URL; empty runs the pipeline in process
  --format string    Output format: text or json (default: text)

Examples:
  civicroute serve
  civicroute classify photo.jpg
  civicroute classify --format json photo.jpg`)
}
