package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TheMichaelB/seedrecover/internal/crypto"
	"github.com/TheMichaelB/seedrecover/internal/keyring"
	"github.com/TheMichaelB/seedrecover/internal/models"
)

var encryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypt data into a vault",
	Long: `Encrypt seals the input with a password using the extension's vault format
(PBKDF2-SHA256, AES-256-GCM) and writes the {"data","iv","salt"} JSON.

With --mnemonic the input is treated as a seed phrase and wrapped in an
HD keyring list first, producing a vault that recover can open.`,
	Example: `  echo "$PHRASE" | seedrecover encrypt --mnemonic --out vault.json
  seedrecover encrypt --in keyrings.json -p secret`,
	Args: cobra.NoArgs,
	RunE: runEncrypt,
}

var (
	encryptIn       string
	encryptOut      string
	encryptPassword string
	encryptMnemonic bool
)

func init() {
	rootCmd.AddCommand(encryptCmd)

	encryptCmd.Flags().StringVar(&encryptIn, "in", "",
		"Input file (default stdin)")
	encryptCmd.Flags().StringVar(&encryptOut, "out", "",
		"Output file (default stdout)")
	encryptCmd.Flags().StringVarP(&encryptPassword, "password", "p", "",
		"Vault password (will prompt if not provided)")
	encryptCmd.Flags().BoolVar(&encryptMnemonic, "mnemonic", false,
		"Treat the input as a seed phrase")
}

func runEncrypt(cmd *cobra.Command, args []string) error {
	input, err := readInput(encryptIn)
	if err != nil {
		return err
	}
	defer crypto.Wipe(input)

	plaintext := input
	if encryptMnemonic {
		plaintext, err = keyringList(string(input))
		if err != nil {
			return err
		}
		defer crypto.Wipe(plaintext)
	}

	if encryptPassword == "" {
		if encryptIn == "" && !stdinIsTerminal() {
			return errors.New("stdin carries the input; pass --password")
		}
		if encryptPassword, err = confirmPassword(); err != nil {
			return err
		}
	}

	vault, err := crypto.Encrypt(crypto.NewProvider(), encryptPassword, plaintext)
	if err != nil {
		return models.NewError(models.KindFatal, "encrypt", err)
	}

	out, err := crypto.Marshal(vault)
	if err != nil {
		return err
	}
	out = append(out, '\n')

	if encryptOut == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(encryptOut, out, 0600); err != nil {
		return fmt.Errorf("write vault: %w", err)
	}
	logger.WithField("path", encryptOut).Info("Vault written")
	printSuccess("Vault written to %s", encryptOut)

	return nil
}

func readInput(path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("input is empty")
	}
	return data, nil
}

// keyringList wraps a phrase in the keyring list the extension encrypts.
func keyringList(phrase string) ([]byte, error) {
	phrase = strings.Join(strings.Fields(phrase), " ")
	if err := keyring.Validate(phrase); err != nil {
		printWarning("Input fails BIP-39 validation; encrypting anyway")
	}

	entry, err := keyring.Synthesize(phrase)
	if err != nil {
		return nil, err
	}
	return json.Marshal([]*models.KeyringEntry{entry})
}

func confirmPassword() (string, error) {
	password, err := readPassword("New vault password: ")
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	again, err := readPassword("Repeat password: ")
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if password != again {
		return "", errors.New("passwords do not match")
	}
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	return password, nil
}
