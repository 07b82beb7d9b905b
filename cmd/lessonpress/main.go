package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/pavelanni/lessonpress/internal/export"
	"github.com/pavelanni/lessonpress/internal/handler"
	appI18n "github.com/pavelanni/lessonpress/internal/i18n"
	"github.com/pavelanni/lessonpress/internal/imagegen"
	"github.com/pavelanni/lessonpress/internal/model"
	"github.com/pavelanni/lessonpress/internal/render"
	"github.com/pavelanni/lessonpress/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lessonpress",
		Short: "Render and export teachers' pedagogical materials",
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `lessonpress --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP rendering server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "lessonpress.db", "SQLite database path")
	f.StringP("lang", "l", "en", "UI language (en, pt)")
	f.String("brand-name", "Lessonpress", "Branding shown in print page headers")
	f.String("footer-text", "", "Branding line shown in print page footers")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /app)")
	f.Bool("secure-cookies", true, "Set Secure flag on session cookies")
	f.String("image-url", "https://api.openai.com/v1", "OpenAI-compatible image API base URL")
	f.String("image-key", "", "API key for image generation")
	f.String("image-model", "dall-e-3", "Image model name")
	f.String("prompt-style", string(imagegen.StyleIllustration), "Image prompt style (photo, illustration, diagram)")
	f.String("chrome-path", "", "Path to the Chrome binary for PDF export")
	f.String("admin-password", "", "Initial admin password (or set LESSONPRESS_ADMIN_PASSWORD)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a stored material to a file",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "lessonpress.db", "SQLite database path")
	f.Int64("material-id", 0, "Material ID to export (required)")
	f.String("format", "pdf", "Export format (pdf, docx, pptx)")
	f.String("brand-name", "Lessonpress", "Branding shown in print page headers")
	f.String("footer-text", "", "Branding line shown in print page footers")
	f.String("chrome-path", "", "Path to the Chrome binary for PDF export")
	f.StringP("output", "o", "", "Output file path (default: suggested filename)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")

	_ = cmd.MarkFlagRequired("material-id")

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

	v.SetEnvPrefix("LESSONPRESS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("lessonpress")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/lessonpress")
	v.AddConfigPath("/etc/lessonpress")
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

	// Open database.
	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Seed default admin user if no users exist.
	if err := seedAdmin(db, v.GetString("admin-password")); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	// Seed built-in templates without clobbering admin edits.
	if err := db.SeedTemplates(render.DefaultTemplates()); err != nil {
		return fmt.Errorf("seed templates: %w", err)
	}

	// Initialize i18n.
	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	promptStyle := strings.ToLower(strings.TrimSpace(v.GetString("prompt-style")))
	if !imagegen.IsValidStyle(promptStyle) {
		slog.Warn("invalid prompt-style, using illustration", "style", promptStyle)
		promptStyle = string(imagegen.StyleIllustration)
	}

	// Normalize base path.
	basePath := strings.TrimRight(v.GetString("base-path"), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	cfg := model.Config{
		BrandName:     v.GetString("brand-name"),
		FooterText:    v.GetString("footer-text"),
		BasePath:      basePath,
		SecureCookies: v.GetBool("secure-cookies"),
		PromptStyle:   promptStyle,
		ChromePath:    v.GetString("chrome-path"),
	}

	renderer := render.NewRenderer(db)
	paginator := &render.Paginator{BrandName: cfg.BrandName, FooterText: cfg.FooterText}
	generator := imagegen.NewOpenAIGenerator(
		v.GetString("image-url"),
		v.GetString("image-key"),
		v.GetString("image-model"),
	)
	orchestrator := imagegen.NewOrchestrator(generator, imagegen.PromptStyle(promptStyle))
	pdfEncoder := export.NewPDFEncoder(export.DefaultPDFOptions(), cfg.ChromePath)
	exportSvc := export.NewService(renderer, paginator, orchestrator, pdfEncoder)

	h, err := handler.New(db, renderer, paginator, orchestrator, exportSvc, cfg)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))

	if basePath != "" {
		r.Route(basePath, func(sub chi.Router) {
			h.Routes(sub)
		})
		r.Get(basePath, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, basePath+"/", http.StatusMovedPermanently)
		})
	} else {
		h.Routes(r)
	}

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"lang", lang,
		"image_model", v.GetString("image-model"),
		"prompt_style", promptStyle,
		"base_path", basePath,
	)
	return http.ListenAndServe(addr, r)
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.SeedTemplates(render.DefaultTemplates()); err != nil {
		return fmt.Errorf("seed templates: %w", err)
	}

	m, err := db.GetMaterial(v.GetInt64("material-id"))
	if err != nil {
		return fmt.Errorf("load material: %w", err)
	}

	renderer := render.NewRenderer(db)
	paginator := &render.Paginator{
		BrandName:  v.GetString("brand-name"),
		FooterText: v.GetString("footer-text"),
	}
	// CLI export never waits for image generation; slide decks export
	// without illustrations.
	orchestrator := imagegen.NewOrchestrator(nil, imagegen.StyleIllustration)
	pdfEncoder := export.NewPDFEncoder(export.DefaultPDFOptions(), v.GetString("chrome-path"))
	svc := export.NewService(renderer, paginator, orchestrator, pdfEncoder)

	ctx := context.Background()
	var artifact *export.Artifact
	switch format := export.Format(strings.ToLower(v.GetString("format"))); format {
	case export.FormatPDF:
		artifact, err = svc.ToPDF(ctx, m)
	case export.FormatDOCX:
		artifact, err = svc.ToWord(ctx, m)
	case export.FormatPPTX:
		artifact, err = svc.ToPPT(ctx, m)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return fmt.Errorf("export material %d: %w", m.ID, err)
	}
	if artifact.Incomplete {
		slog.Warn("export finished with unresolved resources", "material", m.ID)
	}

	outPath := v.GetString("output")
	if outPath == "" {
		outPath = artifact.Filename
	}
	if err := os.WriteFile(outPath, artifact.Data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	slog.Info("exported material", "material", m.ID, "format", v.GetString("format"), "path", outPath, "bytes", len(artifact.Data))
	return nil
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
		return fmt.Errorf("admin password is required: set --admin-password flag or LESSONPRESS_ADMIN_PASSWORD env var")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	_, err = db.CreateUser(model.User{
		Username:     "admin",
		DisplayName:  "Administrator",
		PasswordHash: string(hash),
		Role:         model.UserRoleAdmin,
		Active:       true,
	})
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	slog.Info("seeded default admin user", "username", "admin")
	return nil
}
