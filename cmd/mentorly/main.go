package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/asmitanand/mentorly/internal/handler"
	appI18n "github.com/asmitanand/mentorly/internal/i18n"
	"github.com/asmitanand/mentorly/internal/llm"
	"github.com/asmitanand/mentorly/internal/mentor"
	"github.com/asmitanand/mentorly/internal/model"
	"github.com/asmitanand/mentorly/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mentorly",
		Short: "AI mentor tutoring backend",
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `mentorly --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "mentorly.db", "SQLite database path")
	f.StringP("mentors", "m", "", "Path to a mentor catalog JSON file (default: built-in catalog)")
	f.String("llm-provider", "openai", "LLM backend (openai, gemini, mock)")
	f.String("llm-url", "http://localhost:11434/v1", "OpenAI-compatible API base URL")
	f.String("llm-key", "ollama", "API key for LLM")
	f.String("llm-model", "llama3.2", "LLM model name")
	f.StringP("lang", "l", "en", "Fallback language (en, hi)")
	f.IntP("quiz-questions", "n", 5, "Questions per generated quiz")
	f.Duration("chat-timeout", 30*time.Second, "Upper bound on one chat-completion call")
	f.Duration("quiz-timeout", 60*time.Second, "Upper bound on one quiz-generation call")
	f.String("cors-origin", "*", "Access-Control-Allow-Origin value")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export study history as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "mentorly.db", "SQLite database path")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("MENTORLY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("mentorly")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/mentorly")
	v.AddConfigPath("/etc/mentorly")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	registry, err := loadCatalog(v.GetString("mentors"))
	if err != nil {
		return fmt.Errorf("load mentor catalog: %w", err)
	}
	slog.Info("mentor catalog loaded", "mentors", len(registry.All()), "subjects", len(registry.Subjects()))

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	provider, err := llm.NewProvider(
		cmd.Context(),
		v.GetString("llm-provider"),
		v.GetString("llm-url"),
		v.GetString("llm-key"),
		v.GetString("llm-model"),
	)
	if err != nil {
		return fmt.Errorf("create LLM provider: %w", err)
	}

	cfg := model.ServerConfig{
		CORSOrigin:    v.GetString("cors-origin"),
		ChatTimeout:   v.GetDuration("chat-timeout"),
		QuizTimeout:   v.GetDuration("quiz-timeout"),
		QuizQuestions: v.GetInt("quiz-questions"),
		DefaultLang:   lang,
	}

	h := handler.New(registry, provider, db, cfg)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(handler.CORS(cfg.CORSOrigin))
	r.Use(appI18n.Middleware)
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"provider", v.GetString("llm-provider"),
		"model", provider.ModelID(),
		"lang", lang,
		"quiz_questions", cfg.QuizQuestions,
		"chat_timeout", cfg.ChatTimeout,
		"quiz_timeout", cfg.QuizTimeout,
	)
	return http.ListenAndServe(addr, r)
}

func loadCatalog(path string) (*mentor.Registry, error) {
	if path == "" {
		return mentor.Load()
	}
	return mentor.LoadFile(path)
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	history, err := db.ExportHistory()
	if err != nil {
		return fmt.Errorf("export history: %w", err)
	}

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)

	return nil
}
