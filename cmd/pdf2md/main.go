// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdf2md CLI, which converts a PDF
// to Markdown using Mistral OCR and saves the extracted images beside it.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdf2md/internal/convert"
	"github.com/pdiddy/pdf2md/internal/ocr"
	"github.com/pdiddy/pdf2md/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const usageLine = "Usage: pdf2md <file.pdf>"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI with args and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		reportError(stderr, err)
		return 1
	}
	return 0
}

// newRootCmd builds the command tree. The root command itself performs
// the conversion.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "pdf2md <file.pdf>",
		Short: "Convert a PDF to Markdown using Mistral OCR",
		Long: `pdf2md uploads a PDF to the Mistral OCR service, saves the images it
extracts into <name>_images/ next to the PDF, and writes <name>.md with
image links pointing at the saved files.

The API key is read from MISTRAL_API_KEY (a .env file in the working
directory or .secrets/mistral-api-key also work).`,
		Args:          exactlyOnePDF,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0])
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().String("config", "", "config file (default: ./pdf2md.yaml or ~/.config/pdf2md/pdf2md.yaml)")
	root.PersistentFlags().String("log-level", types.DefaultLogLevel, "log level: debug, info, warn, error")
	root.PersistentFlags().String("log-format", "console", "log format: console or json")
	root.Flags().String("model", types.DefaultModel, "OCR model identifier")
	root.Flags().Bool("frontmatter", false, "prepend YAML frontmatter describing the conversion")
	root.Flags().Duration("timeout", 0, "timeout for each provider request (0 waits indefinitely)")

	root.AddCommand(newVersionCmd())
	return root
}

func exactlyOnePDF(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return &convert.Error{
			Kind: convert.KindUsage,
			Op:   "args",
			Err:  fmt.Errorf("expected exactly one PDF path, got %d arguments", len(args)),
		}
	}
	return nil
}

// reportError prints the single-line diagnostic for err.
func reportError(w io.Writer, err error) {
	if convert.KindOf(err) == convert.KindUsage {
		fmt.Fprintln(w, usageLine)
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	switch {
	case errors.Is(err, types.ErrMissingAPIKey):
		fmt.Fprintln(w, "Please set it with: export MISTRAL_API_KEY='your-api-key'")
	case ocr.IsUnauthorized(err):
		fmt.Fprintln(w, "The provider rejected the credential; check MISTRAL_API_KEY.")
	}
}
