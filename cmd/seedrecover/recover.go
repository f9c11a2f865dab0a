package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/TheMichaelB/seedrecover/internal/crypto"
	"github.com/TheMichaelB/seedrecover/internal/keyring"
	"github.com/TheMichaelB/seedrecover/internal/locator"
	"github.com/TheMichaelB/seedrecover/internal/models"
	"github.com/TheMichaelB/seedrecover/internal/recovery"
)

var recoverCmd = &cobra.Command{
	Use:   "recover [paths...]",
	Short: "Decrypt a vault and recover its seed phrase",
	Long: `Recover extracts the MetaMask vault from the given storage files or
directories, decrypts it with the wallet password and reports the seed phrase.

Without paths, the installed browser profiles are searched. The phrase is
masked unless --output or --write is given.`,
	Example: `  seedrecover recover
  seedrecover recover ~/backup/Local\ Extension\ Settings/nkbihfbeogaeaoehlefnkodbefgpgknn
  seedrecover recover 000005.ldb --output`,
	RunE: runRecover,
}

var (
	recoverPassword      string
	recoverOutput        bool
	recoverWrite         string
	recoverAllCandidates bool
)

func init() {
	rootCmd.AddCommand(recoverCmd)

	recoverCmd.Flags().StringVarP(&recoverPassword, "password", "p", "",
		"Wallet password (will prompt if not provided)")
	recoverCmd.Flags().BoolVarP(&recoverOutput, "output", "o", false,
		"Print the recovered phrase to stdout")
	recoverCmd.Flags().StringVar(&recoverWrite, "write", "",
		"Write the recovered phrase to a file (mode 0600)")
	recoverCmd.Flags().BoolVar(&recoverAllCandidates, "all-candidates", false,
		"Try every vault in a file, not only the first")
}

func runRecover(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if recoverAllCandidates {
		cfg.Recovery.AllCandidates = true
	}

	paths, err := candidatePaths(ctx, args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return models.NewError(models.KindNotFound, "locate",
			fmt.Errorf("no browser storage found; pass a path explicitly: %w", models.ErrNotFound))
	}
	logger.WithField("candidates", len(paths)).Info("Searching for vault")

	if recoverPassword == "" {
		recoverPassword, err = readPassword("Wallet password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
	}

	svc := recovery.NewService(cfg, crypto.NewProvider(), logger)
	vault, err := svc.RecoverPaths(ctx, paths, recoverPassword)
	if err != nil {
		if jsonOutput {
			printJSON(map[string]interface{}{
				"success": false,
				"kind":    models.KindOf(err).String(),
				"error":   err.Error(),
			})
		}
		return err
	}
	defer vault.Wipe()

	phrase := vault.Phrase()
	checksumErr := keyring.Validate(phrase)

	if recoverWrite != "" {
		if err := os.WriteFile(recoverWrite, []byte(phrase+"\n"), 0600); err != nil {
			return fmt.Errorf("write phrase: %w", err)
		}
	}

	if jsonOutput {
		result := map[string]interface{}{
			"success":        true,
			"origin":         vault.Origin,
			"strategy":       vault.Strategy,
			"words":          keyring.WordCount(phrase),
			"checksum_valid": checksumErr == nil,
		}
		if recoverOutput {
			result["mnemonic"] = phrase
		}
		printJSON(result)
		return nil
	}

	printSuccess("Vault recovered from %s", vault.Origin)
	printInfo("   Strategy: %s", vault.Strategy)
	printInfo("   Phrase:   %s (%d words)", maskPhrase(phrase), keyring.WordCount(phrase))
	if checksumErr != nil {
		printWarning("   The phrase fails BIP-39 validation; check it before use")
	}
	if recoverWrite != "" {
		printInfo("   Written to %s", recoverWrite)
	}
	if recoverOutput {
		fmt.Println(phrase)
	}

	return nil
}

// candidatePaths expands explicit arguments, or searches the browser
// profiles when there are none.
func candidatePaths(ctx context.Context, args []string) ([]string, error) {
	loc := locator.New(&cfg.Locator, logger)

	var (
		candidates []models.Candidate
		err        error
	)
	if len(args) > 0 {
		candidates, err = loc.Expand(ctx, args)
	} else {
		candidates, err = loc.Locate(ctx)
	}
	if err != nil {
		return nil, models.NewError(models.KindNotFound, "locate", err)
	}

	paths := make([]string, 0, len(candidates))
	for _, c := range candidates {
		paths = append(paths, c.Path)
	}
	return paths, nil
}

// maskPhrase shows only the first and last words.
func maskPhrase(phrase string) string {
	words := strings.Fields(phrase)
	switch len(words) {
	case 0:
		return ""
	case 1, 2:
		return strings.Repeat("**** ", len(words)-1) + "****"
	}

	masked := make([]string, len(words))
	for i := range words {
		masked[i] = "****"
	}
	masked[0] = words[0]
	masked[len(words)-1] = words[len(words)-1]
	return strings.Join(masked, " ")
}
