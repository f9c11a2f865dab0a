package recovery_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/seedrecover/internal/config"
	"github.com/TheMichaelB/seedrecover/internal/crypto"
	"github.com/TheMichaelB/seedrecover/internal/crypto/testdata"
	"github.com/TheMichaelB/seedrecover/internal/events"
	"github.com/TheMichaelB/seedrecover/internal/models"
	"github.com/TheMichaelB/seedrecover/internal/recovery"
	"github.com/TheMichaelB/seedrecover/internal/storage"
	"github.com/TheMichaelB/seedrecover/test/testutil"
)

var (
	windowsMnemonic  = testutil.Fixtures[0].Mnemonic
	chromium94Phrase = testutil.Fixtures[2].Mnemonic
	preV3Mnemonic    = testutil.Fixtures[3].Mnemonic
)

func newService(t *testing.T) *recovery.Service {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.TempDir = t.TempDir()
	logger := events.NewTestLogger(events.DebugLevel, "json", io.Discard)
	return recovery.NewService(cfg, crypto.NewProvider(), logger)
}

var (
	keyringPlaintext = testutil.KeyringPlaintext
	keyringLog       = testutil.KeyringLog
	fragmentLog      = testutil.FragmentLog
)

func sealVault(t *testing.T, password string, plaintext []byte) *models.EncryptedVault {
	return testutil.SealVault(t, password, plaintext)
}

func writeFile(t *testing.T, path string, data []byte) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestRecoverPaths_Fixtures(t *testing.T) {
	strategies := map[testutil.Layout]models.Strategy{
		testutil.LayoutKeyringLog: models.StrategyKeyringController,
		testutil.LayoutFragments:  models.StrategyFragmented,
		testutil.LayoutLevelDB:    models.StrategyKeyringController,
		testutil.LayoutWalletSeed: models.StrategyWalletSeed,
	}

	for _, fx := range testutil.Fixtures {
		t.Run(fx.Name, func(t *testing.T) {
			path := fx.Write(t, filepath.Join(t.TempDir(), fx.Name))
			svc := newService(t)

			got, err := svc.RecoverPaths(context.Background(), []string{path}, fx.Password)
			require.NoError(t, err)

			assert.Equal(t, fx.Mnemonic, got.Phrase())
			assert.Equal(t, models.HDKeyTreeType, got.Type)
			assert.Equal(t, strategies[fx.Layout], got.Strategy)

			wantOrigin := path
			if fx.Layout == testutil.LayoutLevelDB {
				wantOrigin = path + "#data"
			}
			assert.Equal(t, wantOrigin, got.Origin)
		})
	}
}

func TestRecoverPaths_Ordering(t *testing.T) {
	base := t.TempDir()

	good := sealVault(t, "right", keyringPlaintext(windowsMnemonic, false))
	noVault := writeFile(t, filepath.Join(base, "a.log"), []byte("nothing to see"))
	wrong := writeFile(t, filepath.Join(base, "b.log"), keyringLog(sealVault(t, "other", keyringPlaintext(windowsMnemonic, false))))
	right := writeFile(t, filepath.Join(base, "c.log"), keyringLog(good))
	missing := filepath.Join(base, "missing.log")

	t.Run("first success wins", func(t *testing.T) {
		got, err := newService(t).RecoverPaths(context.Background(), []string{missing, noVault, wrong, right}, "right")
		require.NoError(t, err)
		assert.Equal(t, right, got.Origin)
	})

	t.Run("first real error is returned", func(t *testing.T) {
		_, err := newService(t).RecoverPaths(context.Background(), []string{noVault, wrong, missing}, "right")
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrDecryptFailed)
		assert.Contains(t, err.Error(), wrong)
	})

	t.Run("nothing found", func(t *testing.T) {
		_, err := newService(t).RecoverPaths(context.Background(), []string{noVault, missing}, "right")
		require.Error(t, err)
		assert.True(t, models.IsNotFound(err))
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := newService(t).RecoverPaths(ctx, []string{right}, "right")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, models.KindFatal, models.KindOf(err))
	})
}

func TestRecoverBlob_AllCandidates(t *testing.T) {
	wrong := sealVault(t, "other", keyringPlaintext(windowsMnemonic, false))
	right := sealVault(t, "right", keyringPlaintext(chromium94Phrase, false))
	blob := storage.Blob{
		Origin: "mixed.log",
		Data:   append(keyringLog(wrong), fragmentLog(right)...),
	}

	t.Run("first vault only", func(t *testing.T) {
		_, err := newService(t).RecoverBlob(context.Background(), blob, "right")
		assert.ErrorIs(t, err, models.ErrDecryptFailed)
	})

	t.Run("every vault", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Recovery.AllCandidates = true
		svc := recovery.NewService(cfg, crypto.NewProvider(), events.NewTestLogger(events.DebugLevel, "json", io.Discard))

		got, err := svc.RecoverBlob(context.Background(), blob, "right")
		require.NoError(t, err)
		assert.Equal(t, chromium94Phrase, got.Phrase())
		assert.Equal(t, models.StrategyFragmented, got.Strategy)
		assert.Equal(t, "mixed.log", got.Origin)
	})

	t.Run("no vault", func(t *testing.T) {
		_, err := newService(t).RecoverBlob(context.Background(), storage.Blob{Origin: "x", Data: []byte("x")}, "right")
		assert.True(t, models.IsNotFound(err))
	})
}

func TestDecryptVault(t *testing.T) {
	svc := newService(t)
	recorded := testdata.Chromium108

	t.Run("recorded vault", func(t *testing.T) {
		got, err := svc.DecryptVault(&models.EncryptedVault{
			Data: recorded.Data, IV: recorded.IV, Salt: recorded.Salt,
			Strategy: models.StrategyDirectJSON,
		}, recorded.Password)
		require.NoError(t, err)
		assert.Equal(t, recorded.Mnemonic, got.Phrase())
		assert.Equal(t, "m/44'/60'/0'/0", got.Data.HDPath)
		require.NotNil(t, got.Data.NumberOfAccounts)
		assert.Equal(t, uint32(1), *got.Data.NumberOfAccounts)
	})

	t.Run("quoted fields are normalized", func(t *testing.T) {
		got, err := svc.DecryptVault(&models.EncryptedVault{
			Data: `"` + recorded.Data + `"`, IV: `"` + recorded.IV + `"`, Salt: `"` + recorded.Salt + `"`,
			Strategy: models.StrategyKeyringController,
		}, recorded.Password)
		require.NoError(t, err)
		assert.Equal(t, recorded.Mnemonic, got.Phrase())
	})

	t.Run("cleartext passes through", func(t *testing.T) {
		got, err := svc.DecryptVault(&models.EncryptedVault{
			Data: preV3Mnemonic, Strategy: models.StrategyWalletSeed,
		}, "ignored")
		require.NoError(t, err)
		assert.Equal(t, preV3Mnemonic, got.Phrase())
		assert.Equal(t, models.StrategyWalletSeed, got.Strategy)
	})

	t.Run("mnemonic shaped data skips decryption", func(t *testing.T) {
		got, err := svc.DecryptVault(&models.EncryptedVault{
			Data: preV3Mnemonic, IV: "aXY=", Salt: "c2FsdA==", Strategy: models.StrategyDirectJSON,
		}, "ignored")
		require.NoError(t, err)
		assert.Equal(t, preV3Mnemonic, got.Phrase())
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.DecryptVault(&models.EncryptedVault{
			Data: recorded.Data, IV: recorded.IV, Salt: recorded.Salt,
		}, "wrong")
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrDecryptFailed)
		assert.Equal(t, models.KindDecryptFailed, models.KindOf(err))
	})

	t.Run("bad base64", func(t *testing.T) {
		_, err := svc.DecryptVault(&models.EncryptedVault{
			Data: "not base64!", IV: recorded.IV, Salt: recorded.Salt,
		}, recorded.Password)
		assert.ErrorIs(t, err, models.ErrMalformedBlob)
	})

	t.Run("bad nonce length", func(t *testing.T) {
		_, err := svc.DecryptVault(&models.EncryptedVault{
			Data: recorded.Data, IV: base64.StdEncoding.EncodeToString([]byte("short")), Salt: recorded.Salt,
		}, recorded.Password)
		assert.ErrorIs(t, err, models.ErrMalformedBlob)
	})

	t.Run("no hd keyring", func(t *testing.T) {
		v := sealVault(t, "pw", []byte(`[{"type":"Simple Key Pair","data":["0xabc"]}]`))
		_, err := svc.DecryptVault(v, "pw")
		assert.ErrorIs(t, err, models.ErrUnexpectedPlaintext)
	})

	t.Run("nil vault", func(t *testing.T) {
		_, err := svc.DecryptVault(nil, "pw")
		assert.ErrorIs(t, err, models.ErrFatal)
	})
}

func TestDeriveKey(t *testing.T) {
	svc := newService(t)

	for _, v := range testdata.KeyVectors {
		t.Run(v.Name, func(t *testing.T) {
			salt, err := base64.StdEncoding.DecodeString(v.Salt)
			require.NoError(t, err)

			key, err := svc.DeriveKey(v.Password, salt)
			require.NoError(t, err)
			assert.Equal(t, v.Key, hex.EncodeToString(key))
		})
	}
}

func TestExtractVault(t *testing.T) {
	svc := newService(t)
	v := sealVault(t, "pw", keyringPlaintext(windowsMnemonic, false))

	got, err := svc.ExtractVault(keyringLog(v))
	require.NoError(t, err)
	assert.Equal(t, models.StrategyKeyringController, got.Strategy)
	assert.Equal(t, v.Data, got.Normalized().Data)

	_, err = svc.ExtractVault([]byte("plain"))
	assert.True(t, models.IsNotFound(err))
}

func TestDecryptVault_ProviderCalls(t *testing.T) {
	logger, _ := testutil.NewTestLogger()

	t.Run("cleartext never derives a key", func(t *testing.T) {
		provider := testutil.NewMockProvider()
		svc := recovery.NewService(testutil.TestConfig(t), provider, logger)

		got, err := svc.DecryptVault(&models.EncryptedVault{Data: preV3Mnemonic}, "pw")
		require.NoError(t, err)
		assert.Equal(t, preV3Mnemonic, got.Phrase())
		provider.AssertNotCalled(t, "DeriveKey", mock.Anything, mock.Anything)
	})

	t.Run("key and plaintext handed through", func(t *testing.T) {
		v := sealVault(t, "pw", keyringPlaintext(windowsMnemonic, false))
		key := bytes.Repeat([]byte{1}, crypto.KeySize)

		provider := testutil.NewMockProvider()
		provider.On("DeriveKey", "pw", mock.Anything).Return(key, nil).Once()
		provider.On("DecryptData", mock.Anything, mock.Anything, key).
			Return(keyringPlaintext(chromium94Phrase, true), nil).Once()

		svc := recovery.NewService(testutil.TestConfig(t), provider, logger)
		got, err := svc.DecryptVault(v, "pw")
		require.NoError(t, err)
		assert.Equal(t, chromium94Phrase, got.Phrase())
		provider.AssertExpectations(t)
	})

	t.Run("derive failure is fatal", func(t *testing.T) {
		v := sealVault(t, "pw", keyringPlaintext(windowsMnemonic, false))

		provider := testutil.NewMockProvider()
		provider.On("DeriveKey", "pw", mock.Anything).Return(nil, assert.AnError)

		svc := recovery.NewService(testutil.TestConfig(t), provider, logger)
		_, err := svc.DecryptVault(v, "pw")
		require.Error(t, err)
		assert.Equal(t, models.KindFatal, models.KindOf(err))
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestRecoverBlob_ChecksumWarning(t *testing.T) {
	logger, capture := testutil.NewTestLogger()
	svc := recovery.NewService(testutil.TestConfig(t), crypto.NewProvider(), logger)

	phrase := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon"
	blob := storage.Blob{Origin: "seed.log", Data: testutil.WalletSeedLog(phrase)}

	got, err := svc.RecoverBlob(context.Background(), blob, "")
	require.NoError(t, err)
	assert.Equal(t, phrase, got.Phrase())

	assert.Contains(t, capture.String(), "fails BIP-39 validation")
	assert.NotContains(t, capture.String(), "abandon")
}
