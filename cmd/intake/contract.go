package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-intake/pkg/answers"
	"github.com/goliatone/go-intake/pkg/contract"
)

func newContractCmd(a *app) *cobra.Command {
	var (
		format string
		output string
		check  bool
	)
	cmd := &cobra.Command{
		Use:   "contract",
		Short: "Print the OpenAPI document describing the submission payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := a.openSession(ctx, "")
			if err != nil {
				return err
			}
			defer sess.Close()

			cfg := sess.engine.Config()
			if cfg == nil {
				return sess.engine.Err()
			}
			doc, err := contract.Build(cfg)
			if err != nil {
				return err
			}
			if err := contract.Validate(ctx, doc); err != nil {
				return err
			}
			if check {
				stored := answers.LoadOrEmpty(ctx, sess.store, a.logger)
				if err := contract.CheckPayload(doc, stored); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "Stored answers match the submission contract.")
				return err
			}
			data, err := contract.Marshal(doc, format)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, data)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&check, "check", false, "validate stored answers against the contract instead of printing it")
	return cmd
}
