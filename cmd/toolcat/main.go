package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pbaille/toolcat/internal/api"
	"github.com/pbaille/toolcat/internal/archive"
	"github.com/pbaille/toolcat/internal/catalog"
	"github.com/pbaille/toolcat/internal/config"
	"github.com/pbaille/toolcat/internal/domain"
	"github.com/pbaille/toolcat/internal/fetcher"
	"github.com/pbaille/toolcat/internal/filter"
	"github.com/pbaille/toolcat/internal/forms"
	"github.com/pbaille/toolcat/internal/store"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	dbPath string
	driver string
	dsn    string
)

func main() {
	// Default database location
	home, _ := os.UserHomeDir()
	defaultDB := filepath.Join(home, ".toolcat", "toolcat.db")

	rootCmd := &cobra.Command{
		Use:          "toolcat",
		Short:        "Directory of AI tools with faceted filtering",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "sqlite database path")
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "", "store driver: sqlite3, pgx or memory (default $TOOLCAT_DRIVER or sqlite3)")
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "database DSN, overrides --db")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(reviewsCmd())
	rootCmd.AddCommand(reviewCmd())
	rootCmd.AddCommand(subscribeCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(vocabCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies the persistent flags on top
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("driver") {
		cfg.Driver = driver
	}
	switch {
	case dsn != "":
		cfg.DSN = dsn
	case cmd.Flags().Changed("db") || (cfg.DSN == "" && cfg.Driver == store.DriverSQLite):
		cfg.DSN = dbPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// app bundles what every command needs
type app struct {
	cfg     *config.Config
	vocab   *config.Vocabulary
	catalog *catalog.Service
	close   func() error
}

func openApp(cmd *cobra.Command, opts ...catalog.Option) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	vocab, err := cfg.LoadVocabulary()
	if err != nil {
		return nil, err
	}

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	arch, err := newArchiver(cmd.Context(), cfg)
	if err != nil {
		closeStore()
		return nil, err
	}
	opts = append(opts, catalog.WithArchiver(arch))
	if cfg.FetchDescriptions {
		opts = append(opts, catalog.WithDescriber(fetcher.New(cfg.FetchTimeout)))
	}

	return &app{
		cfg:     cfg,
		vocab:   vocab,
		catalog: catalog.New(st, opts...),
		close:   closeStore,
	}, nil
}

func openStore(cfg *config.Config) (domain.RecordStore, func() error, error) {
	if cfg.Driver == "memory" {
		return store.NewMemory(), func() error { return nil }, nil
	}

	if cfg.Driver == store.DriverSQLite {
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(cfg.DSN), 0755); err != nil {
			return nil, nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	s, err := store.New(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

func newArchiver(ctx context.Context, cfg *config.Config) (catalog.Archiver, error) {
	switch cfg.Archive {
	case config.ArchiveDir:
		return archive.NewDir(cfg.ArchiveDir), nil
	case config.ArchiveS3:
		return archive.NewS3(ctx, archive.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			Prefix:    cfg.S3Prefix,
			PathStyle: cfg.S3Endpoint != "",
		})
	}
	return archive.Nop{}, nil
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			metrics := api.NewMetrics()
			a, err := openApp(cmd, catalog.WithObserver(metrics))
			if err != nil {
				return err
			}
			// Note: don't defer a.close() as server runs indefinitely

			if cmd.Flags().Changed("addr") {
				a.cfg.Addr = addr
			}
			server := api.New(a.catalog, a.vocab, metrics, a.cfg.Addr)
			return server.Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "server address (default $TOOLCAT_ADDR)")
	return cmd
}

func listCmd() *cobra.Command {
	var (
		functions, roles     []string
		useCase, level       string
		search               string
		gdpr, residency, act bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tools matching the given filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			selected := map[filter.Dimension][]string{
				filter.Functions: functions,
				filter.Roles:     roles,
			}
			if useCase != "" {
				selected[filter.UseCases] = []string{useCase}
			}
			if level != "" {
				selected[filter.TechnicalLevels] = []string{level}
			}

			state := filter.Default()
			vocab := a.vocab.ByDimension()
			for _, d := range filter.Dimensions() {
				for _, v := range selected[d] {
					if hint := suggest(v, vocab[d]); hint != "" {
						fmt.Fprintf(os.Stderr, "unknown %s %q, did you mean %q?\n", d, v, hint)
					}
					if !state.Values(d).Has(v) {
						state = state.ToggleValue(d, v)
					}
				}
			}
			for f, on := range map[filter.Flag]bool{filter.GDPR: gdpr, filter.DataResidency: residency, filter.AIAct: act} {
				if on {
					state = state.ToggleCompliance(f)
				}
			}
			state = state.SetSearchText(search)

			entries, err := a.catalog.LoadEntries(cmd.Context())
			if err != nil {
				return err
			}
			result := filter.Apply(entries, state)

			if len(result) == 0 {
				fmt.Println("No matching tools.")
				return nil
			}
			for _, e := range result {
				fmt.Printf("%-8s  %-24s  %s\n", shortID(e.ID), truncate(e.Name, 24), strings.Join(e.Functions, ", "))
			}
			fmt.Printf("\n%d of %d tools\n", len(result), len(entries))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&functions, "function", "f", nil, "business function (repeatable)")
	cmd.Flags().StringSliceVarP(&roles, "role", "r", nil, "role (repeatable)")
	cmd.Flags().StringVar(&useCase, "use-case", "", "use case")
	cmd.Flags().StringVar(&level, "level", "", "technical level")
	cmd.Flags().StringVarP(&search, "search", "q", "", "substring of the tool name")
	cmd.Flags().BoolVar(&gdpr, "gdpr", false, "only GDPR compliant tools")
	cmd.Flags().BoolVar(&residency, "data-residency", false, "only tools with EU data residency")
	cmd.Flags().BoolVar(&act, "ai-act", false, "only AI Act compliant tools")
	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show tool details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			e, err := a.catalog.Entry(cmd.Context(), args[0])
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("tool not found: %s", args[0])
			}
			if err != nil {
				return err
			}

			fmt.Printf("ID:        %s\n", e.ID)
			fmt.Printf("Name:      %s\n", e.Name)
			if e.Website != "" {
				fmt.Printf("Website:   %s\n", e.Website)
			}
			fmt.Printf("Functions: %s\n", strings.Join(e.Functions, ", "))
			fmt.Printf("Roles:     %s\n", strings.Join(e.Roles, ", "))
			fmt.Printf("Use case:  %s\n", e.UseCase)
			fmt.Printf("Level:     %s\n", e.TechnicalLevel)
			fmt.Printf("GDPR: %s  Data residency: %s  AI Act: %s\n",
				yesNo(e.GDPRCompliant), yesNo(e.DataResidency), yesNo(e.AIActCompliant))
			if e.Company != nil {
				fmt.Printf("Company:   %s", e.Company.Name)
				if e.Company.Location != "" {
					fmt.Printf(" (%s)", e.Company.Location)
				}
				fmt.Println()
			}
			if e.Description != "" {
				fmt.Printf("\n%s\n", e.Description)
			}
			return nil
		},
	}
}

func reviewsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reviews [id]",
		Short: "Show the reviews of a tool, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			thread, err := a.catalog.Reviews(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(thread) == 0 {
				fmt.Println("No reviews yet. Use 'toolcat review' to add one.")
				return nil
			}
			for _, r := range thread {
				fmt.Printf("%s  %s, %s\n", stars(r.Rating), r.AuthorName, humanize.Time(r.CreatedAt))
				fmt.Printf("  %s\n", truncate(r.Text, 200))
			}
			return nil
		},
	}
}

func reviewCmd() *cobra.Command {
	var (
		author string
		rating int
	)

	cmd := &cobra.Command{
		Use:   "review [id] [text]",
		Short: "Add a review to a tool",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			r, err := a.catalog.SubmitReview(cmd.Context(), forms.ReviewInput{
				ToolID:     args[0],
				Text:       strings.Join(args[1:], " "),
				AuthorName: author,
				Rating:     rating,
			})
			if err != nil {
				return err
			}

			if r.Local {
				fmt.Printf("Store unavailable, review kept for this session: %s\n", shortID(r.ID))
				return nil
			}
			fmt.Printf("Added review: %s\n", shortID(r.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "author name (default Anonymous)")
	cmd.Flags().IntVar(&rating, "rating", 0, "rating from 1 to 5 (default 5)")
	return cmd
}

func subscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe [email]",
		Short: "Subscribe an email to the newsletter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			sub, err := a.catalog.Subscribe(cmd.Context(), forms.SubscriptionInput{Email: args[0]})
			if errors.Is(err, domain.ErrConflict) {
				fmt.Println("Already subscribed.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("Subscribed %s\n", sub.Email)
			return nil
		},
	}
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file.yaml]",
		Short: "Import catalog records from a YAML list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := readRecords(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			n, err := a.catalog.Import(cmd.Context(), recs)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d of %d records\n", n, len(recs))
			return nil
		},
	}
}

func vocabCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vocab",
		Short: "Print the filter vocabulary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			vocab, err := cfg.LoadVocabulary()
			if err != nil {
				return err
			}

			byDim := vocab.ByDimension()
			for _, d := range filter.Dimensions() {
				fmt.Printf("%s:\n", d)
				for _, v := range byDim[d] {
					fmt.Printf("  - %s\n", v)
				}
			}
			return nil
		},
	}
}

// readRecords decodes a YAML list of catalog records
func readRecords(path string) ([]domain.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var raw []map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	recs := make([]domain.Record, len(raw))
	for i, m := range raw {
		recs[i] = timestampsToStrings(m).(map[string]any)
	}
	return recs, nil
}

// timestampsToStrings formats YAML timestamps as RFC 3339 strings, the form
// the store assigns, so imported and stored records read the same
func timestampsToStrings(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, item := range x {
			x[k] = timestampsToStrings(item)
		}
		return x
	case []any:
		for i, item := range x {
			x[i] = timestampsToStrings(item)
		}
		return x
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	}
	return v
}

// suggest returns the closest vocabulary value when v is not part of it
func suggest(v string, vocab []string) string {
	for _, known := range vocab {
		if known == v {
			return ""
		}
	}
	matches := fuzzy.Find(v, vocab)
	if len(matches) == 0 {
		return ""
	}
	sort.Stable(matches)
	return matches[0].Str
}

func stars(rating int) string {
	n := min(max(rating, 0), 5)
	return strings.Repeat("*", n) + strings.Repeat(".", 5-n)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func truncate(s string, max int) string {
	// Replace newlines with spaces for display
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
