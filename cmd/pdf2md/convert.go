// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pdiddy/pdf2md/internal/convert"
	"github.com/pdiddy/pdf2md/internal/logging"
	"github.com/pdiddy/pdf2md/internal/ocr"
)

// runConvert resolves and validates the configuration, then converts
// pdfPath. The credential is checked before the file is looked at.
func runConvert(cmd *cobra.Command, pdfPath string) error {
	cfg, err := loadConfig(cmd, zerolog.Nop())
	if err != nil {
		return &convert.Error{Kind: convert.KindConfig, Op: "configure", Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return &convert.Error{Kind: convert.KindConfig, Op: "configure", Err: err}
	}

	log, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return &convert.Error{Kind: convert.KindConfig, Op: "configure", Err: err}
	}

	client, err := ocr.NewClient(cfg.OCR)
	if err != nil {
		return &convert.Error{Kind: convert.KindConfig, Op: "configure", Err: err}
	}

	pipeline, err := convert.New(client, cfg, log)
	if err != nil {
		return err
	}

	res, err := pipeline.Convert(cmd.Context(), pdfPath)
	if err != nil {
		log.Debug().Err(err).Str("kind", convert.KindOf(err).String()).Msg("conversion failed")
		return err
	}
	if len(res.Unresolved) > 0 {
		log.Warn().Int("count", len(res.Unresolved)).Msg("some image references were left unresolved")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Conversion complete. Result saved to: %s\n", res.OutputPath)
	return nil
}
