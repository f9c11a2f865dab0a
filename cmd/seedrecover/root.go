package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/TheMichaelB/seedrecover/internal/config"
	"github.com/TheMichaelB/seedrecover/internal/events"
)

var rootCmd = &cobra.Command{
	Use:   "seedrecover",
	Short: "Recover MetaMask seed phrases from browser extension storage",
	Long: `seedrecover finds MetaMask vaults in Chromium-family browser profiles,
decrypts them with the wallet password and prints the secret recovery phrase.

Everything happens locally. Nothing is sent over the network.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

var (
	cfgFile    string
	logLevel   string
	jsonOutput bool
	quiet      bool
	noColor    bool

	cfg    *config.Config
	logger *events.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Config file (default searches ./seedrecover.*, ~/.config/seedrecover)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"Only log errors")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable colored output")
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.NewLoader(cfgFile).Load()
	if err != nil {
		return err
	}

	if logLevel != "" {
		cfg.Log.Level = strings.ToLower(logLevel)
	}
	if quiet {
		cfg.Log.Level = "error"
	}
	if noColor || jsonOutput {
		cfg.Log.Color = false
		color.NoColor = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logger, err = events.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	events.SetDefault(logger)

	return nil
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// readPassword prompts without echo on a terminal and reads one line
// from stdin otherwise.
func readPassword(prompt string) (string, error) {
	if !stdinIsTerminal() {
		return readLine(stdin)
	}
	fd := int(os.Stdin.Fd())

	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	return string(password), nil
}

// Shared so that consecutive prompts read consecutive lines.
var stdin = bufio.NewReader(os.Stdin)

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Output helpers. Status goes to stderr so stdout stays clean for phrases
// and JSON.

func printSuccess(format string, args ...interface{}) {
	if quiet {
		return
	}
	color.New(color.FgGreen).Fprintf(os.Stderr, format+"\n", args...)
}

func printInfo(format string, args ...interface{}) {
	if quiet {
		return
	}
	color.New(color.FgCyan).Fprintf(os.Stderr, format+"\n", args...)
}

func printWarning(format string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(os.Stderr, format+"\n", args...)
}

func printError(format string, args ...interface{}) {
	color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, format+"\n", args...)
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		printError("encode output: %v", err)
	}
}
