package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-intake/pkg/answers"
	"github.com/goliatone/go-intake/pkg/contract"
	"github.com/goliatone/go-intake/pkg/engine"
	"github.com/goliatone/go-intake/pkg/payment"
	"github.com/goliatone/go-intake/pkg/renderers/tui"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		page       string
		submission string
		fresh      bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Walk the form interactively in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), cmd.OutOrStdout(), page, submission, fresh)
		},
	}
	cmd.Flags().StringVar(&page, "page", "", "page code to start on")
	cmd.Flags().StringVar(&submission, "submission", "", "write the submitted payload to this file instead of stdout")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "clear stored answers before starting")
	return cmd
}

func (a *app) run(ctx context.Context, out io.Writer, page, submission string, fresh bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	processor, err := payment.NewProcessor(a.cfg.Payment.Processor, a.cfg.Payment.SecretKey)
	if err != nil {
		return err
	}

	// The contract is built once the config is known; the hook only runs
	// after Open returns.
	var doc *openapi3.T
	hook := func(ctx context.Context, submitted answers.Answers) error {
		if doc != nil {
			if err := contract.CheckPayload(doc, submitted); err != nil {
				return err
			}
		}
		return writeSubmission(out, submission, submitted)
	}

	if fresh {
		if err := a.clearAnswers(ctx); err != nil {
			return err
		}
	}
	sess, err := a.openSession(ctx, page, engine.WithSubmitHook(hook))
	if err != nil {
		return err
	}
	defer sess.Close()

	if cfg := sess.engine.Config(); cfg != nil {
		built, err := contract.Build(cfg)
		if err != nil {
			a.logger.Warn("submission contract unavailable", zap.Error(err))
		} else {
			doc = built
		}
	}

	runner := tui.NewRunner(
		tui.WithPromptDriver(tui.NewSurveyDriver(out)),
		tui.WithLocale(a.cfg.Locale),
		tui.WithProcessor(processor),
		tui.WithCurrency(a.cfg.Payment.Currency),
		tui.WithLogger(a.logger),
	)
	err = runner.Run(ctx, sess.engine)
	switch {
	case errors.Is(err, tui.ErrQuit), errors.Is(err, tui.ErrAborted):
		fmt.Fprintln(out, "Answers saved. Run again to resume.")
		return nil
	default:
		return err
	}
}

func writeSubmission(out io.Writer, path string, submitted answers.Answers) error {
	payload, err := contract.Payload(submitted)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	data = append(data, '\n')
	if path == "" {
		_, err = out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write submission: %w", err)
	}
	return nil
}
