package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/TheMichaelB/seedrecover/internal/crypto"
	"github.com/TheMichaelB/seedrecover/internal/recovery"
)

var scanCmd = &cobra.Command{
	Use:   "scan [paths...]",
	Short: "List vaults without decrypting them",
	Long: `Scan reads browser storage and lists every MetaMask vault it finds,
with the extraction strategy and whether the vault is encrypted.

No password is needed. Vault contents are never printed.`,
	Example: `  seedrecover scan
  seedrecover scan ./profile-backup --json`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

// scanEntry is the printable part of a finding.
type scanEntry struct {
	Origin    string `json:"origin"`
	Format    string `json:"format"`
	Strategy  string `json:"strategy"`
	Encrypted bool   `json:"encrypted"`
	IVBytes   int    `json:"iv_bytes,omitempty"`
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	paths, err := candidatePaths(ctx, args)
	if err != nil {
		return err
	}

	svc := recovery.NewService(cfg, crypto.NewProvider(), logger)
	findings, err := svc.Scan(ctx, paths)
	if err != nil {
		return err
	}

	entries := make([]scanEntry, 0, len(findings))
	for _, f := range findings {
		entries = append(entries, newScanEntry(f))
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"inputs": len(paths),
			"vaults": entries,
		})
		return nil
	}

	if len(entries) == 0 {
		printWarning("No vaults found in %d inputs", len(paths))
		return nil
	}

	printSuccess("Found %d vault(s) in %d inputs", len(entries), len(paths))
	for _, e := range entries {
		state := "encrypted"
		if !e.Encrypted {
			state = "cleartext"
		}
		fmt.Printf("  %-10s %-20s %s\n", state, e.Strategy, e.Origin)
	}

	return nil
}

func newScanEntry(f recovery.Finding) scanEntry {
	e := scanEntry{
		Origin:    f.Origin,
		Format:    string(f.Format),
		Strategy:  string(f.Strategy),
		Encrypted: f.Encrypted,
	}
	if f.Encrypted {
		if decoded, err := crypto.DecodeVault(f.Vault.Normalized()); err == nil {
			e.IVBytes = len(decoded.Nonce)
		}
	}
	return e
}
