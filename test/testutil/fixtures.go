package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/TheMichaelB/seedrecover/internal/config"
	"github.com/TheMichaelB/seedrecover/internal/crypto"
	"github.com/TheMichaelB/seedrecover/internal/crypto/testdata"
	"github.com/TheMichaelB/seedrecover/internal/models"
)

// Layout is how a fixture's vault is laid out on disk.
type Layout int

const (
	// LayoutKeyringLog is a raw log record holding the state document.
	LayoutKeyringLog Layout = iota

	// LayoutFragments is a vault split across log records.
	LayoutFragments

	// LayoutLevelDB is a real LevelDB directory with the state under "data".
	LayoutLevelDB

	// LayoutWalletSeed is a pre-v3 cleartext seed record.
	LayoutWalletSeed
)

// Fixture is a browser profile holding one wallet vault.
type Fixture struct {
	Name     string
	Browser  string
	File     string // Relative to the extension directory
	Password string
	Mnemonic string
	Layout   Layout

	// Recorded is set for vaults captured from a real extension.
	Recorded *models.EncryptedVault
}

// Fixtures are the reference profiles. Their phrases are valid BIP-39
// mnemonics.
var Fixtures = []Fixture{
	{
		Name:     "chrome-windows-1",
		Browser:  "chrome",
		File:     "000005.ldb",
		Password: "t0b1m4ru",
		Mnemonic: "dolphin peanut amateur party differ tomorrow clean coconut when spatial hard trigger",
		Layout:   LayoutKeyringLog,
	},
	{
		Name:     "chromium-108.0_5359.98_4.10.24.2",
		Browser:  "chromium",
		File:     "000003.log",
		Password: testdata.Chromium108.Password,
		Mnemonic: testdata.Chromium108.Mnemonic,
		Layout:   LayoutFragments,
		Recorded: &models.EncryptedVault{
			Data: testdata.Chromium108.Data,
			IV:   testdata.Chromium108.IV,
			Salt: testdata.Chromium108.Salt,
		},
	},
	{
		Name:     "chromium-94.0.4606.81_10.3.0",
		Browser:  "brave",
		Password: "aePaf7aequukoo6lahraitheemu6pein",
		Mnemonic: "very follow angry proof column rail smile intact broom chicken lens earth",
		Layout:   LayoutLevelDB,
	},
	{
		Name:     "chromium-90-0.4430.72_2.14.1",
		Browser:  "edge",
		File:     "000003.log",
		Password: "",
		Mnemonic: "speed accuse odor ordinary exercise truly outer mask arrest life sibling height",
		Layout:   LayoutWalletSeed,
	},
}

// KeyringPlaintext renders a decrypted keyring list whose HD keyring holds
// mnemonic, as text or as an array of byte values.
func KeyringPlaintext(mnemonic string, asBytes bool) []byte {
	value := fmt.Sprintf("%q", mnemonic)
	if asBytes {
		codes := make([]string, len(mnemonic))
		for i := 0; i < len(mnemonic); i++ {
			codes[i] = fmt.Sprint(mnemonic[i])
		}
		value = "[" + strings.Join(codes, ",") + "]"
	}
	return []byte(`[{"type":"Simple Key Pair","data":[]},` +
		`{"type":"HD Key Tree","data":{"mnemonic":` + value + `,"numberOfAccounts":1,"hdPath":"m/44'/60'/0'/0"}}]`)
}

// SealVault encrypts plaintext under password with a fixed salt.
func SealVault(t testing.TB, password string, plaintext []byte) *models.EncryptedVault {
	t.Helper()
	salt := bytes.Repeat([]byte{0x5a}, crypto.SaltSize)
	v, err := crypto.EncryptWithSalt(crypto.NewProvider(), password, salt, plaintext)
	require.NoError(t, err)
	return v
}

// StateDocument is the extension state JSON with the vault as a string.
func StateDocument(v *models.EncryptedVault) string {
	return fmt.Sprintf(`{"KeyringController":{"vault":"{\"data\":\"%s\",\"iv\":\"%s\",\"salt\":\"%s\"}"},"PreferencesController":{}}`,
		v.Data, v.IV, v.Salt)
}

// KeyringLog wraps the state document in log record framing.
func KeyringLog(v *models.EncryptedVault) []byte {
	return []byte("\x01\x00\xffMETAMASK\x00data\x0f" + StateDocument(v))
}

// FragmentLog mimics a vault split across records of a log-structured store.
func FragmentLog(v *models.EncryptedVault) []byte {
	return []byte(fmt.Sprintf("\x00\x07\xfe\xffKeyring1 \x03\x00junk"+
		`{\"data\":\"%s\",\"iv\":\"%s\",\"salt\":\"%s\"}`+"\x00\x02tail",
		v.Data, v.IV, v.Salt))
}

// WalletSeedLog is a pre-v3 record with the seed in cleartext.
func WalletSeedLog(mnemonic string) []byte {
	return []byte("\x00\x01" + `{"wallet-seed":"` + mnemonic + `\n","config":{"provider":{}}}` + "\x00")
}

// Vault returns the encrypted vault of the fixture.
func (f Fixture) Vault(t testing.TB) *models.EncryptedVault {
	if f.Recorded != nil {
		return f.Recorded
	}
	return SealVault(t, f.Password, KeyringPlaintext(f.Mnemonic, f.Layout == LayoutLevelDB))
}

// ExtensionDir is where the fixture lives under a browser root.
func (f Fixture) ExtensionDir(root string) string {
	return filepath.Join(root, "Default", "Local Extension Settings", config.ChromeStoreID)
}

// Write lays the fixture out under root and returns the path to hand to the
// recovery service.
func (f Fixture) Write(t testing.TB, root string) string {
	t.Helper()
	dir := f.ExtensionDir(root)
	require.NoError(t, os.MkdirAll(dir, 0700))

	switch f.Layout {
	case LayoutLevelDB:
		db, err := leveldb.OpenFile(dir, nil)
		require.NoError(t, err)
		require.NoError(t, db.Put([]byte("data"), []byte(StateDocument(f.Vault(t))), nil))
		require.NoError(t, db.Close())
		return dir

	case LayoutFragments:
		return writeFile(t, filepath.Join(dir, f.File), FragmentLog(f.Vault(t)))

	case LayoutWalletSeed:
		return writeFile(t, filepath.Join(dir, f.File), WalletSeedLog(f.Mnemonic))

	default:
		return writeFile(t, filepath.Join(dir, f.File), KeyringLog(f.Vault(t)))
	}
}

func writeFile(t testing.TB, path string, data []byte) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}
