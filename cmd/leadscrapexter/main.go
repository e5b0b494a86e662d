// cmd/leadscrapexter/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/valpere/LeadScrapexter/internal/browser"
	"github.com/valpere/LeadScrapexter/internal/config"
	"github.com/valpere/LeadScrapexter/internal/monitoring"
	"github.com/valpere/LeadScrapexter/internal/output"
	"github.com/valpere/LeadScrapexter/internal/session"
	"github.com/valpere/LeadScrapexter/internal/store"
	"github.com/valpere/LeadScrapexter/internal/utils"
	"github.com/valpere/LeadScrapexter/pkg/types"
)

// Version information (set by build flags)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

const defaultConfigFile = "leadscrapexter.yaml"

// main handles CLI arguments and routes to the command handlers.
func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "extract":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Error: target required\n")
			fmt.Fprintf(os.Stderr, "Usage: leadscrapexter extract <url|file>\n")
			os.Exit(1)
		}
		runExtract(os.Args[2])

	case "merge":
		runMerge()

	case "saved":
		runSaved()

	case "clear":
		runClear()

	case "export":
		kind := "leads"
		if len(os.Args) > 2 && os.Args[2] != "" && os.Args[2][0] != '-' {
			kind = os.Args[2]
		}
		runExport(kind)

	case "profiles":
		runProfiles(os.Args[2:])

	case "validate":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Error: config file required\n")
			fmt.Fprintf(os.Stderr, "Usage: leadscrapexter validate <config.yaml>\n")
			os.Exit(1)
		}
		validateConfig(os.Args[2])

	case "template":
		printTemplate()

	case "version", "--version":
		printVersion()

	case "help", "--help", "-h":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command '%s'\n", command)
		printUsage()
		os.Exit(1)
	}
}

// runExtract performs one extraction pass against a URL or a local HTML
// file and prints a summary of the leads found.
func runExtract(target string) {
	settings, logger := loadEnvironment()

	st := openStore(settings, logger)
	defer st.Close()

	metrics := monitoring.NewMetrics()
	ctx := context.Background()

	if settings.Monitoring.Enabled {
		server := monitoring.NewServer(metrics, []monitoring.HealthCheck{
			{Name: "store", Check: func(ctx context.Context) error {
				_, err := st.Saved(ctx)
				return err
			}},
		}, logger)
		go func() {
			if err := server.ListenAndServe(ctx, settings.Monitoring.Address); err != nil {
				logger.Errorf("monitoring server: %v", err)
			}
		}()
	}

	source, cleanup := newPageSource(target, settings, logger)
	defer cleanup()

	runner := session.NewRunner(settings, source, st, metrics, logger)
	result, err := runner.Run(ctx, target)
	if err != nil {
		fatalf("extraction failed: %v", err)
	}

	printResultSummary(result)
}

// runMerge folds the last pass's results into the saved state.
func runMerge() {
	settings, logger := loadEnvironment()

	st := openStore(settings, logger)
	defer st.Close()

	ctx := context.Background()
	result, err := st.Results(ctx)
	if err != nil {
		fatalf("failed to load results: %v", err)
	}
	if result.TotalLeads() == 0 {
		fmt.Println("No results to merge; run 'extract' first.")
		return
	}

	saved, err := st.AppendResults(ctx, result)
	if err != nil {
		fatalf("merge failed: %v", err)
	}

	fmt.Println("Merged results into saved leads:")
	printCounts(saved.Counts())
}

// runSaved prints the saved lead counts.
func runSaved() {
	settings, logger := loadEnvironment()

	st := openStore(settings, logger)
	defer st.Close()

	saved, err := st.Saved(context.Background())
	if err != nil {
		fatalf("failed to load saved leads: %v", err)
	}
	printCounts(saved.Counts())
}

// runClear empties the saved lead state.
func runClear() {
	settings, logger := loadEnvironment()

	st := openStore(settings, logger)
	defer st.Close()

	if err := st.ClearSaved(context.Background()); err != nil {
		fatalf("failed to clear saved leads: %v", err)
	}
	fmt.Println("Saved leads cleared.")
}

// runExport writes saved leads or profiles through the configured sink.
func runExport(kind string) {
	settings, logger := loadEnvironment()

	st := openStore(settings, logger)
	defer st.Close()

	ctx := context.Background()
	manager := output.NewManager(settings.Export, nil, logger)

	switch kind {
	case "leads":
		saved, err := st.Saved(ctx)
		if err != nil {
			fatalf("failed to load saved leads: %v", err)
		}
		if err := manager.ExportLeads(saved); err != nil {
			fatalf("export failed: %v", err)
		}
	case "profiles":
		profiles, err := st.SavedProfiles(ctx)
		if err != nil {
			fatalf("failed to load profiles: %v", err)
		}
		if err := manager.ExportProfiles(profiles); err != nil {
			fatalf("export failed: %v", err)
		}
	default:
		fatalf("unknown export kind '%s' (use 'leads' or 'profiles')", kind)
	}

	if settings.Export.Format == "postgres" {
		fmt.Printf("Exported %s to PostgreSQL table '%s'\n", kind, settings.Export.Table)
	} else {
		fmt.Printf("Exported %s to %s\n", kind, settings.Export.File)
	}
}

// runProfiles lists, deletes, or clears saved profile records.
func runProfiles(args []string) {
	settings, logger := loadEnvironment()

	st := openStore(settings, logger)
	defer st.Close()

	ctx := context.Background()

	action := "list"
	if len(args) > 0 {
		action = args[0]
	}

	switch action {
	case "list":
		profiles, err := st.SavedProfiles(ctx)
		if err != nil {
			fatalf("failed to load profiles: %v", err)
		}
		if len(profiles) == 0 {
			fmt.Println("No saved profiles.")
			return
		}
		for _, p := range profiles {
			name := p.FullName
			if name == "" {
				name = "(unknown)"
			}
			fmt.Printf("%-10s %-30s %s\n", p.Platform.DisplayName(), name, p.ProfileURL)
		}

	case "delete":
		if len(args) < 2 {
			fatalf("usage: leadscrapexter profiles delete <profile-url>")
		}
		if err := st.DeleteProfile(ctx, args[1]); err != nil {
			fatalf("failed to delete profile: %v", err)
		}
		fmt.Println("Profile deleted.")

	case "clear":
		if err := st.ClearProfiles(ctx); err != nil {
			fatalf("failed to clear profiles: %v", err)
		}
		fmt.Println("Profiles cleared.")

	default:
		fatalf("unknown profiles action '%s' (use 'list', 'delete', or 'clear')", action)
	}
}

// validateConfig loads a configuration file and reports whether it is valid.
func validateConfig(path string) {
	settings, err := config.LoadFromFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Configuration file '%s' is valid\n", path)
	if hasFlag("-v") || hasFlag("--verbose") {
		fmt.Printf("  Countries: %v\n", settings.SelectedCountries)
		fmt.Printf("  Session timeout: %s\n", settings.Session.Timeout)
		fmt.Printf("  Store: %s\n", settings.Store.Path)
		fmt.Printf("  Export: %s -> %s\n", settings.Export.Format, settings.Export.File)
	}
}

// printTemplate emits a default configuration file to stdout.
func printTemplate() {
	data, err := yaml.Marshal(config.DefaultSettings())
	if err != nil {
		fatalf("failed to marshal template: %v", err)
	}
	fmt.Print(string(data))
}

// loadEnvironment resolves settings and a logger: --config takes
// precedence, then the default config file if present, then defaults.
func loadEnvironment() (config.Settings, utils.Logger) {
	path := flagValue("--config")
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}

	settings := config.DefaultSettings()
	if path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			fatalf("failed to load configuration: %v", err)
		}
		settings = *loaded
	}

	logger := utils.NewLoggerWithLevel(utils.ParseLogLevel(settings.Logging.Level))
	return settings, logger
}

func openStore(settings config.Settings, logger utils.Logger) store.Store {
	st, err := store.NewSQLiteStore(settings.Store.Path, logger)
	if err != nil {
		fatalf("failed to open store: %v", err)
	}
	return st
}

// newPageSource returns a file-backed source for local HTML files and a
// headless browser for everything else.
func newPageSource(target string, settings config.Settings, logger utils.Logger) (session.PageSource, func()) {
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		return fileSource{}, func() {}
	}

	cfg := browser.DefaultConfig()
	cfg.Timeout = settings.Session.BrowserTimeout.ToDuration()
	snapshotter := browser.NewSnapshotter(cfg, logger)
	return snapshotter, func() { snapshotter.Close() }
}

// fileSource loads snapshots from local HTML files without a browser.
type fileSource struct{}

func (fileSource) Snapshot(ctx context.Context, target string) (*browser.Snapshot, error) {
	return browser.SnapshotFile(target)
}

func printResultSummary(result types.ExtractionResult) {
	if result.TimedOut {
		fmt.Println("⚠ Extraction pass timed out; partial results will be saved in the background.")
		return
	}

	fmt.Printf("Extraction complete: %d leads\n", result.TotalLeads())
	fmt.Printf("  Emails:         %d (%d rejected)\n", len(result.Emails), len(result.InvalidEmails))
	fmt.Printf("  Phones:         %d (%d filtered)\n", len(result.Phones), result.PhonesFiltered)
	fmt.Printf("  Social links:   %d\n", len(result.SocialLinks))
	fmt.Printf("  SERP LinkedIn:  %d\n", len(result.SERPLinkedIn))

	for _, link := range result.BestLinks {
		fmt.Printf("  %-10s %s\n", link.Platform.DisplayName()+":", link.CanonicalURL)
	}
}

func printCounts(counts map[string]int) {
	fmt.Printf("  Emails:         %d\n", counts["emails"])
	fmt.Printf("  Phones:         %d\n", counts["phones"])
	fmt.Printf("  Social links:   %d\n", counts["social_links"])
	fmt.Printf("  SERP LinkedIn:  %d\n", counts["serp_linkedin"])
}

// hasFlag checks if a flag is present in the command line arguments.
func hasFlag(flag string) bool {
	for _, arg := range os.Args {
		if arg == flag {
			return true
		}
	}
	return false
}

// flagValue returns the value following a flag, or empty.
func flagValue(flag string) string {
	for i, arg := range os.Args {
		if arg == flag && i+1 < len(os.Args) {
			return os.Args[i+1]
		}
	}
	return ""
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// printUsage displays help information.
func printUsage() {
	fmt.Println("LeadScrapexter - Contact Lead Extraction Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  leadscrapexter extract <url|file>       Run one extraction pass against a page")
	fmt.Println("  leadscrapexter merge                    Merge the last results into saved leads")
	fmt.Println("  leadscrapexter saved                    Show saved lead counts")
	fmt.Println("  leadscrapexter clear                    Clear saved leads")
	fmt.Println("  leadscrapexter export [leads|profiles]  Export saved data via the configured sink")
	fmt.Println("  leadscrapexter profiles [list|delete <url>|clear]")
	fmt.Println("                                          Manage saved profile records")
	fmt.Println("  leadscrapexter validate <config.yaml>   Validate a configuration file")
	fmt.Println("  leadscrapexter template                 Print a default configuration file")
	fmt.Println("  leadscrapexter version                  Show version information")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config <file>                         Configuration file (default: leadscrapexter.yaml)")
	fmt.Println("  -v, --verbose                           Verbose output for validate")
}

// printVersion displays version information.
func printVersion() {
	fmt.Printf("LeadScrapexter %s\n", version)
	fmt.Printf("Build time: %s\n", buildTime)
	fmt.Printf("Git commit: %s\n", gitCommit)
}
