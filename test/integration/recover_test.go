//go:build integration
// +build integration

package integration_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/seedrecover/internal/crypto"
	"github.com/TheMichaelB/seedrecover/internal/locator"
	"github.com/TheMichaelB/seedrecover/internal/models"
	"github.com/TheMichaelB/seedrecover/internal/recovery"
	"github.com/TheMichaelB/seedrecover/test/testutil"
)

// Every fixture lives in its own browser profile; the locator finds them
// and each password opens exactly its own vault.
func TestLocateAndRecoverIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	base := t.TempDir()
	var roots []locator.BrowserRoot
	for _, fx := range testutil.Fixtures {
		root := filepath.Join(base, fx.Browser)
		fx.Write(t, root)
		roots = append(roots, locator.BrowserRoot{Browser: fx.Browser, Dir: root})
	}

	cfg := testutil.TestConfig(t)
	logger, capture := testutil.NewTestLogger()

	candidates, err := locator.NewWithRoots(&cfg.Locator, roots, logger).Locate(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, candidates)

	var paths []string
	for _, c := range candidates {
		paths = append(paths, c.Path)
	}

	svc := recovery.NewService(cfg, crypto.NewProvider(), logger)

	// The cleartext profile opens under any password, so it must be the
	// last root searched.
	require.Equal(t, "", testutil.Fixtures[len(testutil.Fixtures)-1].Password)

	for _, fx := range testutil.Fixtures {
		if fx.Password == "" {
			continue
		}
		t.Run(fx.Name, func(t *testing.T) {
			got, err := svc.RecoverPaths(context.Background(), paths, fx.Password)
			require.NoError(t, err)
			assert.Equal(t, fx.Mnemonic, got.Phrase())
		})
	}

	t.Run("scan lists every vault", func(t *testing.T) {
		findings, err := svc.Scan(context.Background(), paths)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(findings), len(testutil.Fixtures))

		var cleartext int
		for _, f := range findings {
			if !f.Encrypted {
				cleartext++
			}
		}
		assert.GreaterOrEqual(t, cleartext, 1)
	})

	t.Run("wrong password", func(t *testing.T) {
		cfg := testutil.TestConfig(t)
		cfg.Locator.Browsers = []string{"chrome"}
		chromeOnly, err := locator.NewWithRoots(&cfg.Locator, roots, logger).Locate(context.Background())
		require.NoError(t, err)

		var chromePaths []string
		for _, c := range chromeOnly {
			chromePaths = append(chromePaths, c.Path)
		}

		_, err = recovery.NewService(cfg, crypto.NewProvider(), logger).
			RecoverPaths(context.Background(), chromePaths, "not the password")
		assert.ErrorIs(t, err, models.ErrDecryptFailed)
	})

	for _, fx := range testutil.Fixtures {
		if fx.Password != "" {
			assert.NotContains(t, capture.String(), fx.Password)
		}
		assert.NotContains(t, capture.String(), fx.Mnemonic)
	}
}
