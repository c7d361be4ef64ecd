package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/PentesterFlow/LocalScan/internal/cache"
	"github.com/PentesterFlow/LocalScan/internal/history"
	"github.com/PentesterFlow/LocalScan/internal/logger"
	"github.com/PentesterFlow/LocalScan/internal/output"
	"github.com/PentesterFlow/LocalScan/internal/shutdown"
	"github.com/PentesterFlow/LocalScan/pkg/scanner"
)

var (
	version = "1.0.0"

	// Global flags
	configFile string
	verbose    bool
	debug      bool

	// Scan flags
	host         string
	port         int
	apiPort      int
	token        string
	safeMode     bool
	autoContinue bool
	timeout      int
	rateLimit    float64
	wordlistFile string
	outputFile   string
	noCache      bool
	noHistory    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "localscan",
		Short: "LocalScan - Local Web Application Vulnerability Scanner",
		Long: `LocalScan - A vulnerability scanner for web applications you run yourself.

Discovers routes through wordlist probing, robots.txt, and page links, then
runs a sequence of vulnerability checks against the discovered surface.
Built for localhost targets; it backs off when the target rate limits.`,
		Version: version,
	}

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a local web application",
		Long:  "Discover routes on the target and run all vulnerability checks.",
		RunE:  runScan,
	}

	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the route cache",
	}

	cacheClearCmd := &cobra.Command{
		Use:   "clear [target]",
		Short: "Clear cached routes",
		Long:  "Clear cached routes for one target URL, or everything when no target is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCacheClear,
	}

	historyCmd := &cobra.Command{
		Use:   "history [target]",
		Short: "Show past scan summaries",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHistory,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Debug mode")

	// Scan flags
	scanCmd.Flags().StringVar(&host, "host", "localhost", "Target host")
	scanCmd.Flags().IntVarP(&port, "port", "p", 0, "Target port (required)")
	scanCmd.Flags().IntVar(&apiPort, "api-port", 0, "Separate API port, if the backend runs on its own origin")
	scanCmd.Flags().StringVar(&token, "token", "", "Bearer token added to every request")
	scanCmd.Flags().BoolVar(&safeMode, "safe-mode", true, "Skip destructive and high-volume checks")
	scanCmd.Flags().BoolVar(&autoContinue, "auto-continue", false, "Keep scanning past repeated rate limiting without prompting")
	scanCmd.Flags().IntVarP(&timeout, "timeout", "t", 10, "Request timeout in seconds")
	scanCmd.Flags().Float64VarP(&rateLimit, "rate-limit", "r", 50, "Requests per second")
	scanCmd.Flags().StringVarP(&wordlistFile, "wordlist", "w", "", "Custom wordlist file (default: built-in)")
	scanCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write JSON report to file")
	scanCmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore the route cache for this run")
	scanCmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this run in scan history")
	scanCmd.MarkFlagRequired("port")

	rootCmd.AddCommand(scanCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	config := scanner.DefaultConfig()

	if configFile != "" {
		fileConfig, err := scanner.LoadFromFile(configFile)
		if err != nil {
			return err
		}
		config = fileConfig
	}

	// Command-line flags take precedence over the config file
	if cmd.Flags().Changed("host") || config.Host == "" {
		config.Host = host
	}
	if cmd.Flags().Changed("port") {
		config.Port = port
	}
	if cmd.Flags().Changed("api-port") {
		config.APIPort = apiPort
	}
	if cmd.Flags().Changed("token") {
		config.Token = token
	}
	if cmd.Flags().Changed("safe-mode") {
		config.SafeMode = safeMode
	}
	if cmd.Flags().Changed("auto-continue") {
		config.AutoContinue = autoContinue
	}
	if cmd.Flags().Changed("timeout") {
		config.Timeout = time.Duration(timeout) * time.Second
	}
	if cmd.Flags().Changed("rate-limit") {
		config.RequestsPerSecond = rateLimit
	}
	if wordlistFile != "" {
		config.WordlistPath = wordlistFile
	}
	if outputFile != "" {
		config.OutputPath = outputFile
	}
	if noCache {
		config.NoCache = true
	}
	if config.HistoryPath == "" && !noHistory {
		config.HistoryPath = history.DefaultPath()
	}
	if noHistory {
		config.HistoryPath = ""
	}
	config.Verbose = verbose
	config.Debug = debug

	log := newLogger()
	logger.SetGlobal(log)

	reporter := output.NewConsoleReporter(os.Stdout)
	s, err := scanner.New(config, nil, reporter, log.WithComponent("scanner"))
	if err != nil {
		return err
	}

	handler := shutdown.New(shutdown.Config{
		OnShutdownStart: func() {
			fmt.Fprintf(os.Stderr, "\nReceived interrupt signal, stopping...\n")
		},
	})

	fmt.Printf("LocalScan v%s - scanning %s\n\n", version, config.BaseURL())

	result, err := s.Run(handler.Context())
	if err != nil {
		return err
	}

	reporter.Summary(result.Report)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	store := cache.Open(cache.DefaultPath(), newLogger().WithComponent("cache"))

	target := ""
	if len(args) == 1 {
		target = args[0]
	}
	store.Clear(target)

	if target == "" {
		fmt.Println("Route cache cleared")
	} else {
		fmt.Printf("Route cache cleared for %s\n", target)
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := history.Open(history.DefaultPath())
	if err != nil {
		return err
	}
	defer store.Close()

	target := ""
	if len(args) == 1 {
		target = args[0]
	}

	records, err := store.List(target)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No scan history")
		return nil
	}

	for _, rec := range records {
		fmt.Printf("%s  %-28s  routes=%-4d findings=%-3d duration=%s\n",
			rec.StartedAt.Local().Format("2006-01-02 15:04:05"),
			rec.Target, rec.Routes, rec.Findings,
			rec.Duration.Round(time.Millisecond))
	}
	return nil
}

func newLogger() *logger.Logger {
	level := logger.InfoLevel
	if verbose {
		level = logger.DebugLevel
	}
	if debug {
		level = logger.DebugLevel
	}

	return logger.New(logger.Config{
		Level:  level,
		Pretty: true,
		Output: os.Stderr,
	})
}
