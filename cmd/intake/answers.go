package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newAnswersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "answers",
		Short: "Inspect or clear stored answers",
	}

	var asJSON bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Print stored answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, closer, err := openStore(ctx, a.cfg.Store, a.logger)
			if err != nil {
				return err
			}
			defer closer.Close()

			stored, err := store.Load(ctx)
			if err != nil {
				return fmt.Errorf("load answers: %w", err)
			}
			out := cmd.OutOrStdout()
			if asJSON {
				data, err := json.MarshalIndent(stored.Payload(), "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}
			if len(stored) == 0 {
				_, err = fmt.Fprintln(out, "No answers stored.")
				return err
			}
			for _, code := range stored.Codes() {
				fmt.Fprintf(out, "%s: %s\n", code, stored[code])
			}
			return nil
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove stored answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.clearAnswers(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Stored answers cleared.")
			return err
		},
	}

	cmd.AddCommand(show, clearCmd)
	return cmd
}

func (a *app) clearAnswers(ctx context.Context) error {
	store, closer, err := openStore(ctx, a.cfg.Store, a.logger)
	if err != nil {
		return err
	}
	defer closer.Close()
	if err := store.Clear(ctx); err != nil {
		return fmt.Errorf("clear answers: %w", err)
	}
	return nil
}
