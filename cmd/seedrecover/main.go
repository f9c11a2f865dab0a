package main

import (
	"os"

	"github.com/TheMichaelB/seedrecover/internal/models"
)

// Process exit codes, one per error kind.
const (
	exitOK                  = 0
	exitFatal               = 1
	exitNotFound            = 2
	exitDecryptFailed       = 3
	exitMalformedBlob       = 4
	exitUnexpectedPlaintext = 5
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !jsonOutput {
			printError("Error: %v", err)
		}
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	switch models.KindOf(err) {
	case models.KindNotFound:
		return exitNotFound
	case models.KindDecryptFailed:
		return exitDecryptFailed
	case models.KindMalformedBlob:
		return exitMalformedBlob
	case models.KindUnexpectedPlaintext:
		return exitUnexpectedPlaintext
	default:
		return exitFatal
	}
}
