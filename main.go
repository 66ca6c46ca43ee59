package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/atotto/clipboard"
	gitignore "github.com/monochromegane/go-gitignore"
	progressbar "github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Output
	totalOnly       bool
	outputFile      string
	copyToClipboard bool
	pdfOutputFile   string

	// Filtering
	excludePatterns string
	noIgnore        bool
	maxSizeBytes    int64
	maxDepth        int

	// Processing
	numThreads int

	// Token counting
	tokenizerType  string
	tokenizerModel string
	tokenizerFile  string

	// Interactive mode
	interactiveMode bool

	cfgFile string
)

// version is the application version, set via ldflags.
var version string = "dev" // Default for local builds

var rootCmd = &cobra.Command{
	Use:   "ctxfit [TARGET]",
	Short: "ctxfit estimates how many LLM tokens a codebase consumes.",
	Long: `ctxfit counts the tokens a source tree would occupy in an LLM context
window, broken down by file extension and technology, and compares the
total against the context sizes of popular models.

TARGET may be a local directory, a Git repository URL (cloned into a
temporary directory) or a web page URL (fetched and converted to
Markdown). It defaults to the current directory.`,
	Version:      version,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runCount,
}

func runCount(cmd *cobra.Command, args []string) error {
	quiet := totalOnly

	// Resolve the target: argument, interactive pick, or cwd.
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	if interactiveMode {
		picked, err := pickDirectory()
		if err != nil {
			return fmt.Errorf("interactive selection: %w", err)
		}
		if picked == "" {
			// User aborted the picker.
			return nil
		}
		target = picked
	}

	excludeGlobs, err := parseExcludeGlobs(excludePatterns)
	if err != nil {
		return err
	}

	// Build the classifier from the built-in table plus any user overlay.
	mappings := defaultExtensions
	overlay, overlaySrc, err := loadExtensionOverlay()
	if err != nil {
		return fmt.Errorf("extension overlay: %w", err)
	}
	if len(overlay) > 0 {
		if !quiet {
			fmt.Printf("Loaded %d extension mappings from %s\n", len(overlay), overlaySrc)
		}
		mappings = mergeExtensions(mappings, overlay)
	}
	classifier, err := NewClassifier(mappings)
	if err != nil {
		return fmt.Errorf("extension table: %w", err)
	}
	if err := validateWindows(contextWindows); err != nil {
		return fmt.Errorf("context window table: %w", err)
	}

	// A run never starts without a working tokenizer.
	tokenizer, err := newTokenizer(TokenizerConfig{
		Type:  tokenizerType,
		Model: tokenizerModel,
		File:  tokenizerFile,
		Quiet: quiet,
	})
	if err != nil {
		return fmt.Errorf("initializing tokenizer: %w", err)
	}
	defer tokenizer.Close()

	root, cleanup, err := resolveTarget(target, quiet)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := Options{
		Workers:      numThreads,
		ExcludeGlobs: excludeGlobs,
		MaxFileSize:  maxSizeBytes,
		MaxDepth:     maxDepth,
	}
	if !noIgnore {
		opts.Ignore = loadIgnoreMatcher(root, quiet)
	}

	var bar *progressbar.ProgressBar
	if !quiet {
		workers := numThreads
		if workers <= 0 {
			workers = runtime.NumCPU()
		}
		fmt.Printf("Using %d worker(s) for token counting.\n", workers)

		bar = progressbar.NewOptions64(-1,
			progressbar.OptionSetDescription("Counting tokens"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionShowCount(),
		)
		opts.Progress = func(FileRecord) { _ = bar.Add(1) }
	}

	report, err := NewAggregator(classifier, tokenizer, opts).Run(ctx, root)
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return err
	}

	if totalOnly {
		// Bare total on stdout, nothing else.
		fmt.Println(report.Total)
		return nil
	}

	rendered := renderReport(report)
	switch {
	case pdfOutputFile != "":
		if err := writePDFReport(report, target, pdfOutputFile); err != nil {
			return err
		}
		fmt.Printf("Report saved to %s\n", pdfOutputFile)
	case outputFile != "":
		if err := os.WriteFile(outputFile, []byte(rendered), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", outputFile, err)
		}
		fmt.Printf("Report saved to %s\n", outputFile)
	case copyToClipboard:
		if err := clipboard.WriteAll(rendered); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not write to clipboard: %v\n", err)
			fmt.Print(rendered)
		} else {
			fmt.Println("Report copied to clipboard.")
		}
	default:
		fmt.Print(rendered)
	}

	if len(report.Errors) > 0 {
		fmt.Fprint(os.Stderr, renderErrors(report.Errors))
	}
	return nil
}

// resolveTarget turns the user's target into a local directory to walk.
// Remote targets are materialized in a temporary directory; the returned
// cleanup removes it.
func resolveTarget(target string, quiet bool) (string, func(), error) {
	noop := func() {}

	if info, err := os.Stat(target); err == nil {
		if !info.IsDir() {
			return "", noop, fmt.Errorf("%s is a file, not a directory", target)
		}
		if !quiet {
			fmt.Printf("Analyzing local directory: %s\n", target)
		}
		return target, noop, nil
	}

	if isGitURL(target) {
		if !quiet {
			fmt.Printf("Cloning repository: %s\n", target)
		}
		progress := io.Writer(io.Discard)
		if !quiet {
			progress = os.Stderr
		}
		dir, err := cloneRepo(target, progress)
		if err != nil {
			return "", noop, err
		}
		return dir, func() { _ = os.RemoveAll(dir) }, nil
	}

	if isWebURL(target) {
		if !quiet {
			fmt.Printf("Fetching web page: %s\n", target)
		}
		dir, err := fetchWebPage(target)
		if err != nil {
			return "", noop, err
		}
		return dir, func() { _ = os.RemoveAll(dir) }, nil
	}

	return "", noop, fmt.Errorf("cannot access %s: not a local directory, repository URL or web page", target)
}

// parseExcludeGlobs splits a comma-separated pattern list and validates
// every pattern up front.
func parseExcludeGlobs(patterns string) ([]string, error) {
	if patterns == "" {
		return nil, nil
	}
	var globs []string
	for _, g := range strings.Split(patterns, ",") {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if _, err := filepath.Match(g, "probe"); err != nil {
			return nil, fmt.Errorf("invalid glob pattern '%s': %w", g, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// loadIgnoreMatcher parses the root .gitignore if one exists.
func loadIgnoreMatcher(root string, quiet bool) gitignore.IgnoreMatcher {
	gitIgnorePath := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(gitIgnorePath); err != nil {
		return nil
	}
	matcher, err := gitignore.NewGitIgnore(gitIgnorePath)
	if err != nil {
		if !quiet {
			fmt.Fprintf(os.Stderr, "Warning: could not parse .gitignore file %s: %v\n", gitIgnorePath, err)
		}
		return nil
	}
	return matcher
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is $HOME/.config/ctxfit/config.toml)")

	// Output
	rootCmd.Flags().BoolVar(&totalOnly, "total", false, "Print only the total token count")
	viper.BindPFlag("total", rootCmd.Flags().Lookup("total"))
	rootCmd.Flags().StringVarP(&outputFile, "file", "f", "", "Save the report to the specified file")
	viper.BindPFlag("file", rootCmd.Flags().Lookup("file"))
	rootCmd.Flags().BoolVarP(&copyToClipboard, "clipboard", "c", false, "Copy the report to the clipboard")
	viper.BindPFlag("clipboard", rootCmd.Flags().Lookup("clipboard"))
	rootCmd.Flags().StringVar(&pdfOutputFile, "pdf", "", "Save the report as a PDF")
	viper.BindPFlag("pdf", rootCmd.Flags().Lookup("pdf"))

	// Filtering
	rootCmd.Flags().StringVarP(&excludePatterns, "exclude", "e", "", "Additional name patterns to exclude (comma-separated)")
	viper.BindPFlag("exclude", rootCmd.Flags().Lookup("exclude"))
	rootCmd.Flags().BoolVar(&noIgnore, "no-ignore", false, "Don't respect the root .gitignore file")
	viper.BindPFlag("no_ignore", rootCmd.Flags().Lookup("no-ignore"))
	rootCmd.Flags().Int64VarP(&maxSizeBytes, "max-size", "s", 0, "Maximum file size in bytes (0 for no limit)")
	viper.BindPFlag("max_size", rootCmd.Flags().Lookup("max-size"))
	rootCmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Maximum directory depth to traverse (0 for no limit)")
	viper.BindPFlag("max_depth", rootCmd.Flags().Lookup("max-depth"))

	// Processing
	rootCmd.Flags().IntVarP(&numThreads, "threads", "t", 0, "Number of worker threads (0 for one per CPU)")
	viper.BindPFlag("threads", rootCmd.Flags().Lookup("threads"))

	// Token counting
	rootCmd.Flags().StringVar(&tokenizerType, "tokenizer", "tiktoken", "Tokenizer to use: tiktoken, huggingface or estimate")
	viper.BindPFlag("tokenizer", rootCmd.Flags().Lookup("tokenizer"))
	rootCmd.Flags().StringVar(&tokenizerModel, "model", "", "Model name for the tokenizer (e.g. gpt-4o, gpt2)")
	viper.BindPFlag("model", rootCmd.Flags().Lookup("model"))
	rootCmd.Flags().StringVar(&tokenizerFile, "tokenizer-file", "", "Path to a local tokenizer.json (huggingface only)")
	viper.BindPFlag("tokenizer_file", rootCmd.Flags().Lookup("tokenizer-file"))

	// Interactive mode
	rootCmd.Flags().BoolVar(&interactiveMode, "interactive", false, "Pick the directory to analyze with a fuzzy finder")
	viper.BindPFlag("interactive", rootCmd.Flags().Lookup("interactive"))

	viper.SetDefault("total", false)
	viper.SetDefault("exclude", "")
	viper.SetDefault("no_ignore", false)
	viper.SetDefault("max_size", 0)
	viper.SetDefault("max_depth", 0)
	viper.SetDefault("threads", 0)
	viper.SetDefault("tokenizer", "tiktoken")
	viper.SetDefault("model", "")
	viper.SetDefault("interactive", false)
}

// initConfig reads the config file and environment, then back-fills any
// flag the user did not set explicitly.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(filepath.Join(home, ".config", "ctxfit"))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("CTXFIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := viper.ReadInConfig(); err == nil {
		if !viper.GetBool("total") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
		fmt.Fprintf(os.Stderr, "Error reading config file: %s\n", err)
	}

	syncFlags()
}

// syncFlags copies config/env values into flag variables that were not
// set on the command line. Flags keep the highest precedence.
func syncFlags() {
	flags := rootCmd.Flags()
	if !flags.Changed("total") {
		totalOnly = viper.GetBool("total")
	}
	if !flags.Changed("file") {
		outputFile = viper.GetString("file")
	}
	if !flags.Changed("clipboard") {
		copyToClipboard = viper.GetBool("clipboard")
	}
	if !flags.Changed("pdf") {
		pdfOutputFile = viper.GetString("pdf")
	}
	if !flags.Changed("exclude") {
		excludePatterns = viper.GetString("exclude")
	}
	if !flags.Changed("no-ignore") {
		noIgnore = viper.GetBool("no_ignore")
	}
	if !flags.Changed("max-size") {
		maxSizeBytes = viper.GetInt64("max_size")
	}
	if !flags.Changed("max-depth") {
		maxDepth = viper.GetInt("max_depth")
	}
	if !flags.Changed("threads") {
		numThreads = viper.GetInt("threads")
	}
	if !flags.Changed("tokenizer") {
		tokenizerType = viper.GetString("tokenizer")
	}
	if !flags.Changed("model") {
		tokenizerModel = viper.GetString("model")
	}
	if !flags.Changed("tokenizer-file") {
		tokenizerFile = viper.GetString("tokenizer_file")
	}
	if !flags.Changed("interactive") {
		interactiveMode = viper.GetBool("interactive")
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
