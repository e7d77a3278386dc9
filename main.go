package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Candra0x6/BusinessScap-Maps/browser"
	"github.com/Candra0x6/BusinessScap-Maps/config"
	"github.com/Candra0x6/BusinessScap-Maps/db"
	"github.com/Candra0x6/BusinessScap-Maps/enrich"
	"github.com/Candra0x6/BusinessScap-Maps/export"
	"github.com/Candra0x6/BusinessScap-Maps/filter"
	"github.com/Candra0x6/BusinessScap-Maps/keywords"
	"github.com/Candra0x6/BusinessScap-Maps/models"
	"github.com/Candra0x6/BusinessScap-Maps/notify"
	"github.com/Candra0x6/BusinessScap-Maps/scheduler"
	"github.com/Candra0x6/BusinessScap-Maps/scraper"
	"github.com/Candra0x6/BusinessScap-Maps/sheets"
)

var version = "dev"

var (
	configPath      string
	keywordsPath    string
	keywordFlags    []string
	parallel        int
	showUI          bool
	outputDir       string
	spreadsheetURL  string
	credentialsPath string
	jsonOut         string
	enrichLimit     int
)

func main() {
	// Optional .env for DB/Sheets/Telegram credentials
	godotenv.Load()

	rootCmd := &cobra.Command{
		Use:     "maps-scraper",
		Short:   "Scrape business listings from Google Maps by keyword",
		Version: version,
		Long: `maps-scraper searches Google Maps for each keyword, scrolls the
results panel until it stops growing, and extracts name, description,
website and phone from every listing's detail panel.

Results land in one Excel workbook per keyword; Postgres, Google Sheets
and Telegram notifications are enabled through environment variables.`,
		Example: `  # Scrape keywords from a CSV file (first column, header skipped)
  maps-scraper scrape --keywords keywords.csv

  # Scrape two keywords with three parallel browsers
  maps-scraper scrape -k "coffee shop jakarta" -k "barber bandung" --parallel 3

  # Combine all per-keyword workbooks into one
  maps-scraper merge

  # Crawl stored business websites for contact emails
  maps-scraper enrich --limit 50`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "Output directory (overrides config)")

	rootCmd.AddCommand(scrapeCmd(), mergeCmd(), analyzeCmd(), exportJSONCmd(), filterWebsitesCmd(), enrichCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape business listings for a batch of keywords",
		RunE:  runScrape,
	}
	cmd.Flags().StringVar(&keywordsPath, "keywords", "", "CSV file with keywords in the first column")
	cmd.Flags().StringSliceVarP(&keywordFlags, "keyword", "k", nil, "Keyword to scrape (can be used multiple times)")
	cmd.Flags().IntVar(&parallel, "parallel", 1, "Number of parallel browser workers")
	cmd.Flags().BoolVar(&showUI, "showui", false, "Show browser UI (disable headless mode)")
	cmd.Flags().StringVar(&spreadsheetURL, "spreadsheet", "", "Google Sheets URL to write results to")
	cmd.Flags().StringVar(&credentialsPath, "credentials", "", "Path to Google service account credentials JSON file (or use GOOGLE_SHEETS_CREDENTIALS env var)")
	return cmd
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(configPath)
	if outputDir != "" {
		cfg.Output.Directory = outputDir
	}
	if showUI {
		cfg.Browser.Headless = false
	}

	closeLog := setupLogging(cfg)
	defer closeLog()

	kws := append([]string{}, keywordFlags...)
	if keywordsPath != "" {
		loaded, err := keywords.Load(keywordsPath)
		if err != nil {
			return err
		}
		kws = append(kws, loaded...)
	}
	if len(kws) == 0 {
		return fmt.Errorf("no keywords given: use --keyword or --keywords")
	}

	batchID := uuid.NewString()
	log.Printf("Batch %s: %d keyword(s)\n", batchID, len(kws))

	sinks, cleanup := buildSinks(cfg, batchID)
	defer cleanup()

	recordFilter := filter.NewFilter(&cfg.Filters)

	// Each invocation owns a whole browser, so parallel workers never
	// share Chrome state.
	run := func(keyword string) ([]models.BusinessRecord, scraper.Stats, error) {
		b, err := browser.New(&cfg.Browser)
		if err != nil {
			return nil, scraper.Stats{}, err
		}
		defer func() {
			if err := b.Close(); err != nil {
				log.Printf("Warning: Failed to close browser: %v\n", err)
			}
		}()

		sess, err := b.NewSession()
		if err != nil {
			return nil, scraper.Stats{}, err
		}
		defer sess.Close()

		records, stats, err := scraper.NewOrchestrator(sess, &cfg.Scraper).Run(keyword)
		return recordFilter.ApplyFilters(records), stats, err
	}

	summaries := scheduler.NewScheduler(cfg, run, sinks...).Run(kws, parallel)

	fmt.Println("\nBatch finished:")
	fmt.Println("===============")
	for _, s := range summaries {
		fmt.Printf("%-40s %-10s %4d records, %d skipped, %s\n",
			s.Keyword, s.Status, s.Records, s.Skipped, s.Duration.Round(time.Second))
	}

	return nil
}

// buildSinks assembles the output sinks for a batch: Excel always, the
// others only when their credentials are configured. The returned
// cleanup closes whatever was opened.
func buildSinks(cfg *config.Config, batchID string) ([]scheduler.Sink, func()) {
	sinks := []scheduler.Sink{&excelSink{cfg: cfg}}
	cleanup := func() {}

	if db.Configured() {
		database, err := db.NewDB()
		if err != nil {
			log.Printf("Warning: Database configured but unreachable, skipping DB sink: %v\n", err)
		} else {
			sinks = append(sinks, newDBSink(database, batchID))
			cleanup = func() { database.Close() }
		}
	}

	sheetURL := spreadsheetURL
	if sheetURL == "" {
		sheetURL = cfg.Sheets.SpreadsheetURL
	}
	creds := credentialsPath
	if creds == "" {
		creds = cfg.Sheets.CredentialsPath
	}
	if sheetURL != "" {
		spreadsheetID := sheets.ExtractSpreadsheetID(sheetURL)
		if spreadsheetID == "" {
			log.Printf("Warning: Could not extract spreadsheet ID from URL: %s\n", sheetURL)
		} else if writer, err := sheets.NewWriter(spreadsheetID, creds); err != nil {
			log.Printf("Warning: Failed to initialize Google Sheets writer: %v\n", err)
		} else {
			sinks = append(sinks, &sheetsSink{writer: writer})
		}
	}

	notifier, err := notify.NewNotifier()
	if err != nil {
		log.Printf("Warning: Failed to initialize Telegram notifier: %v\n", err)
	} else if notifier != nil {
		sinks = append(sinks, &notifySink{notifier: notifier, batchID: batchID})
	}

	return sinks, cleanup
}

type excelSink struct {
	cfg *config.Config
}

func (s *excelSink) Name() string { return "excel" }

func (s *excelSink) KeywordStarted(keyword string) error { return nil }

func (s *excelSink) WriteKeyword(summary models.KeywordSummary, records []models.BusinessRecord) error {
	if len(records) == 0 {
		return nil
	}
	_, err := export.WriteWorkbook(s.cfg.Output.Directory, summary.Keyword, records)
	return err
}

func (s *excelSink) WriteBatch(summaries []models.KeywordSummary) error {
	if !s.cfg.Output.GenerateSummary {
		return nil
	}
	_, err := export.WriteSummary(s.cfg.Output.Directory, summaries)
	return err
}

type dbSink struct {
	db      *db.DB
	batchID string

	mu   sync.Mutex
	runs map[string]int
}

func newDBSink(database *db.DB, batchID string) *dbSink {
	return &dbSink{db: database, batchID: batchID, runs: map[string]int{}}
}

func (s *dbSink) Name() string { return "database" }

// KeywordStarted opens the run row and marks it in progress, so a batch
// that dies mid-keyword leaves a trace instead of nothing.
func (s *dbSink) KeywordStarted(keyword string) error {
	run, err := s.db.CreateRun(s.batchID, keyword)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	if err := s.db.UpdateRunStatus(run.ID, db.StatusInProgress); err != nil {
		return fmt.Errorf("failed to mark run in progress: %w", err)
	}

	s.mu.Lock()
	s.runs[keyword] = run.ID
	s.mu.Unlock()
	return nil
}

func (s *dbSink) WriteKeyword(summary models.KeywordSummary, records []models.BusinessRecord) error {
	s.mu.Lock()
	runID, ok := s.runs[summary.Keyword]
	delete(s.runs, summary.Keyword)
	s.mu.Unlock()

	if !ok {
		// Start hook failed earlier; recover with a fresh row.
		run, err := s.db.CreateRun(s.batchID, summary.Keyword)
		if err != nil {
			return fmt.Errorf("failed to create run: %w", err)
		}
		runID = run.ID
	}

	if err := s.db.SaveBusinesses(runID, records); err != nil {
		return err
	}
	return s.db.FinishRun(runID, summary.Status, summary.Records,
		summary.Attempted, summary.Skipped, summary.Duration)
}

func (s *dbSink) WriteBatch(summaries []models.KeywordSummary) error { return nil }

type sheetsSink struct {
	writer *sheets.Writer
}

func (s *sheetsSink) Name() string { return "sheets" }

func (s *sheetsSink) KeywordStarted(keyword string) error { return nil }

func (s *sheetsSink) WriteKeyword(summary models.KeywordSummary, records []models.BusinessRecord) error {
	if len(records) == 0 {
		return nil
	}
	// Timestamp suffix keeps repeated runs of a keyword from colliding
	sheetName := fmt.Sprintf("%s %s", summary.Keyword, time.Now().Format("0102_150405"))
	_, sheetID, err := s.writer.CreateSheetAndWriteRecords(sheetName, summary.Keyword, records)
	if err != nil {
		return err
	}
	log.Printf("Sheet for %q: %s\n", summary.Keyword, s.writer.SheetURL(sheetID))
	return nil
}

func (s *sheetsSink) WriteBatch(summaries []models.KeywordSummary) error { return nil }

type notifySink struct {
	notifier *notify.Notifier
	batchID  string
}

func (s *notifySink) Name() string { return "telegram" }

func (s *notifySink) KeywordStarted(keyword string) error { return nil }

func (s *notifySink) WriteKeyword(summary models.KeywordSummary, records []models.BusinessRecord) error {
	s.notifier.KeywordDone(summary)
	return nil
}

func (s *notifySink) WriteBatch(summaries []models.KeywordSummary) error {
	s.notifier.BatchDone(s.batchID, summaries)
	return nil
}

func mergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge",
		Short: "Combine all per-keyword workbooks into one workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := export.Merge(resolveDir())
			if err != nil {
				return err
			}
			fmt.Printf("Merged workbook written to %s\n", path)
			return nil
		},
	}
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Report record counts and website/phone coverage per keyword",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := export.Analyze(resolveDir())
			if err != nil {
				return err
			}

			fmt.Printf("%-40s %8s %10s %10s\n", "Keyword", "Records", "Website", "Phone")
			fmt.Printf("%-40s %8s %10s %10s\n", "-------", "-------", "-------", "-----")
			for _, cov := range report.Keywords {
				fmt.Printf("%-40s %8d %9.1f%% %9.1f%%\n",
					cov.Keyword, cov.Records, cov.WebsitePct(), cov.PhonePct())
			}
			fmt.Printf("%-40s %8d %9.1f%% %9.1f%%\n",
				"TOTAL", report.Total.Records, report.Total.WebsitePct(), report.Total.PhonePct())
			return nil
		},
	}
}

func exportJSONCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-json",
		Short: "Export all workbooks to a single JSON file keyed by keyword",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := export.ExportJSON(resolveDir(), jsonOut)
			if err != nil {
				return err
			}
			fmt.Printf("JSON export written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&jsonOut, "out", "", "Output file path (default <output dir>/businesses.json)")
	return cmd
}

func filterWebsitesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "filter-websites",
		Short: "Write one workbook containing only records that have a website",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := export.FilterWebsites(resolveDir())
			if err != nil {
				return err
			}
			fmt.Printf("Filtered workbook written to %s\n", path)
			return nil
		},
	}
}

func enrichCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Crawl stored business websites for contact emails",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !db.Configured() {
				return fmt.Errorf("enrichment needs the database: set DATABASE_URL or DB_HOST")
			}

			cfg := loadConfig(configPath)
			database, err := db.NewDB()
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close()

			enriched, err := enrich.EnrichStored(database, enrich.New(&cfg.Enrich), enrichLimit)
			if err != nil {
				return err
			}
			fmt.Printf("Enriched %d businesses with emails\n", enriched)
			return nil
		},
	}
	cmd.Flags().IntVar(&enrichLimit, "limit", 100, "Maximum number of businesses to enrich")
	return cmd
}

// resolveDir returns the workbook directory for post-processing
// commands: the --output override, otherwise the configured one.
func resolveDir() string {
	if outputDir != "" {
		return outputDir
	}
	return loadConfig(configPath).Output.Directory
}

// loadConfig loads configuration from file or returns defaults
func loadConfig(configPath string) *config.Config {
	if _, err := os.Stat(configPath); err != nil {
		log.Println("Config file not found. Using default configuration.")
		return config.GetDefaultConfig()
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config file: %v. Using defaults.\n", err)
		return config.GetDefaultConfig()
	}
	return cfg
}

// setupLogging tees the standard logger into the configured log file so
// long batches leave a trail next to their workbooks.
func setupLogging(cfg *config.Config) func() {
	if cfg.Output.LogFile == "" {
		return func() {}
	}
	if err := os.MkdirAll(cfg.Output.Directory, 0755); err != nil {
		log.Printf("Warning: Failed to create output directory: %v\n", err)
		return func() {}
	}

	path := filepath.Join(cfg.Output.Directory, cfg.Output.LogFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("Warning: Failed to open log file %s: %v\n", path, err)
		return func() {}
	}

	log.SetOutput(io.MultiWriter(os.Stdout, f))
	return func() {
		log.SetOutput(os.Stdout)
		f.Close()
	}
}
