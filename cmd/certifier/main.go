package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/techops-academy/certifier/internal/exam"
	"github.com/techops-academy/certifier/internal/handler"
	appI18n "github.com/techops-academy/certifier/internal/i18n"
	"github.com/techops-academy/certifier/internal/mailer"
	"github.com/techops-academy/certifier/internal/model"
	"github.com/techops-academy/certifier/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "certifier",
		Short: "Trainee certification platform: training modules, two-stage exams, certificates",
	}

	serve := serveCmd()
	root.AddCommand(serve, seedCmd(), exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `certifier --addr ...` still works.
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
	f.String("db", "certifier.db", "SQLite database path")
	f.StringP("lang", "l", "hu", "Default response language (hu, en)")
	f.String("exam-type", "L1 Support", "Exam type label stored on attempts")
	f.String("artifacts-dir", "artifacts", "Directory for generated certificate PDFs")
	f.String("admin-password", "", "Initial admin password (or set CERTIFIER_ADMIN_PASSWORD)")
	f.String("smtp-host", "", "SMTP host for result emails (empty disables sending)")
	f.Int("smtp-port", 587, "SMTP port")
	f.String("smtp-user", "", "SMTP username")
	f.String("smtp-password", "", "SMTP password")
	f.String("smtp-from", "", "Sender address for result emails")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import content files into the database",
		RunE:  runSeed,
	}
	f := cmd.Flags()
	f.String("db", "certifier.db", "SQLite database path")
	f.StringP("questions", "q", "", "Path to questions JSON file")
	f.String("cases", "", "Path to simulation cases JSON file")
	f.String("modules", "", "Path to training modules JSON file")
	f.String("exam-config", "", "Path to exam sampling config JSON file")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all exam attempts as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "certifier.db", "SQLite database path")
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

	v.SetEnvPrefix("CERTIFIER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("certifier")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/certifier")
	v.AddConfigPath("/etc/certifier")
	v.AddConfigPath("/data")
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

	if err := seedAdmin(db, v.GetString("admin-password")); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	m := mailer.New(mailer.Config{
		Host:     v.GetString("smtp-host"),
		Port:     v.GetInt("smtp-port"),
		Username: v.GetString("smtp-user"),
		Password: v.GetString("smtp-password"),
		From:     v.GetString("smtp-from"),
	})

	h := handler.New(db, exam.NewRegistry(), m, handler.Config{
		ExamType:     v.GetString("exam-type"),
		ArtifactsDir: v.GetString("artifacts-dir"),
		DefaultLang:  lang,
	})

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"lang", lang,
		"exam_type", v.GetString("exam-type"),
		"smtp_enabled", m.Enabled(),
		"artifacts_dir", v.GetString("artifacts-dir"),
	)
	return http.ListenAndServe(addr, r)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if path := v.GetString("questions"); path != "" {
		if err := seedQuestions(db, path); err != nil {
			return fmt.Errorf("seed questions: %w", err)
		}
	}
	if path := v.GetString("cases"); path != "" {
		if err := seedCases(db, path); err != nil {
			return fmt.Errorf("seed cases: %w", err)
		}
	}
	if path := v.GetString("modules"); path != "" {
		if err := seedModules(db, path); err != nil {
			return fmt.Errorf("seed modules: %w", err)
		}
	}
	if path := v.GetString("exam-config"); path != "" {
		if err := seedExamConfig(db, path); err != nil {
			return fmt.Errorf("seed exam config: %w", err)
		}
	}
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	attempts, err := db.ListAllAttempts()
	if err != nil {
		return fmt.Errorf("list attempts: %w", err)
	}

	data, err := json.MarshalIndent(attempts, "", "  ")
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

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)

	return nil
}

// readSeedFile loads a content file, skipping it when the stored import hash
// matches. Returns nil data when the file should be skipped.
func readSeedFile(db *store.Store, path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	hash := sha256sum(data)
	storedHash, err := db.GetImportedFileHash(path)
	if err != nil {
		return nil, "", fmt.Errorf("check import status for %s: %w", path, err)
	}
	if storedHash == hash {
		slog.Info("content file unchanged, skipping", "path", path)
		return nil, "", nil
	}
	return data, hash, nil
}

func seedQuestions(db *store.Store, path string) error {
	data, hash, err := readSeedFile(db, path)
	if err != nil || data == nil {
		return err
	}

	var imports []model.QuestionImport
	if err := json.Unmarshal(data, &imports); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	questions := make([]model.Question, 0, len(imports))
	skipped := 0
	for _, qi := range imports {
		q := qi.Canonical()
		if !q.WellFormed() {
			slog.Warn("skipping malformed question", "id", q.ID, "path", path)
			skipped++
			continue
		}
		questions = append(questions, q)
	}

	if err := db.ReplaceQuestions(questions); err != nil {
		return fmt.Errorf("replace questions: %w", err)
	}
	if err := db.SetImportedFileHash(path, hash); err != nil {
		return fmt.Errorf("record import for %s: %w", path, err)
	}
	slog.Info("imported questions", "path", path, "count", len(questions), "skipped", skipped)
	return nil
}

func seedCases(db *store.Store, path string) error {
	data, hash, err := readSeedFile(db, path)
	if err != nil || data == nil {
		return err
	}

	var cases []model.SimulationCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if err := db.ReplaceSimulationCases(cases); err != nil {
		return fmt.Errorf("replace cases: %w", err)
	}
	if err := db.SetImportedFileHash(path, hash); err != nil {
		return fmt.Errorf("record import for %s: %w", path, err)
	}
	slog.Info("imported simulation cases", "path", path, "count", len(cases))
	return nil
}

func seedModules(db *store.Store, path string) error {
	data, hash, err := readSeedFile(db, path)
	if err != nil || data == nil {
		return err
	}

	var modules []model.Module
	if err := json.Unmarshal(data, &modules); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	for _, m := range modules {
		if err := db.UpsertModule(m); err != nil {
			return fmt.Errorf("upsert module %s: %w", m.ID, err)
		}
	}
	if err := db.SetImportedFileHash(path, hash); err != nil {
		return fmt.Errorf("record import for %s: %w", path, err)
	}
	slog.Info("imported modules", "path", path, "count", len(modules))
	return nil
}

func seedExamConfig(db *store.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	var cfg model.ExamConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if err := db.SetExamConfig(cfg); err != nil {
		return fmt.Errorf("store exam config: %w", err)
	}
	slog.Info("stored exam config", "path", path,
		"total_questions", cfg.TotalQuestions, "free_text", cfg.FreeTextCount)
	return nil
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

func seedAdmin(db *store.Store, password string) error {
	count, err := db.UserCount()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if password == "" {
		return fmt.Errorf("admin password is required: set --admin-password flag or CERTIFIER_ADMIN_PASSWORD env var")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	_, err = db.CreateUser(model.User{
		Email:        "admin@techops-example.com",
		Name:         "Administrator",
		PasswordHash: string(hash),
		Role:         model.UserRoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	slog.Info("seeded default admin user", "email", "admin@techops-example.com")
	return nil
}
