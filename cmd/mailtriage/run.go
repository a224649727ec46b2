package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mailtriage/internal/model"
	"mailtriage/internal/report"
	"mailtriage/internal/repository"
	"mailtriage/internal/service"
	"mailtriage/pkg/db"
)

func runCmd() *cobra.Command {
	var (
		input   string
		format  string
		strict  bool
		persist bool
		width   int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process a batch of emails and print the summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("unknown format %q (table|json)", format)
			}

			emails, err := readEmails(input)
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, closeSvc, err := a.services()
			if err != nil {
				return err
			}
			defer closeSvc()

			var opts []service.BatchOption
			if strict {
				opts = append(opts, service.WithStrictPrecheck())
			}
			if persist {
				pool, err := db.NewConnection(ctx, a.cfg.DB, a.logger)
				if err != nil {
					return err
				}
				defer pool.Close()

				repo := repository.NewOutcomeRepository(pool)
				if err := repo.EnsureSchema(ctx); err != nil {
					return err
				}
				opts = append(opts, service.WithRecorder(repo))
			}

			checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			a.checkGenerator(checkCtx)
			cancel()

			runner := service.NewBatchRunner(a.pipeline(svc), a.logger, opts...)
			outcomes, runErr := runner.Run(ctx, emails)

			out := cmd.OutOrStdout()
			if format == "json" {
				err = report.WriteJSON(out, outcomes)
			} else {
				err = report.WriteTable(out, outcomes, width)
			}
			if err != nil {
				return err
			}

			if runErr != nil {
				a.logger.Error("Batch stopped", zap.Int("processed", len(outcomes)), zap.Error(runErr))
				return runErr
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "JSON file with an array of emails (default: built-in samples)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table or json")
	cmd.Flags().BoolVar(&strict, "strict", false, "abort the batch on the first invalid email")
	cmd.Flags().BoolVar(&persist, "persist", false, "store outcomes in PostgreSQL")
	cmd.Flags().IntVar(&width, "width", report.DefaultResponseWidth, "truncate responses in the table to this many characters (0 = no limit)")
	return cmd
}

// readEmails loads a JSON array of emails, or the built-in samples when
// path is empty.
func readEmails(path string) ([]model.Email, error) {
	if path == "" {
		return model.SampleEmails(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	var emails []model.Email
	if err := json.Unmarshal(data, &emails); err != nil {
		return nil, fmt.Errorf("parse input %s: %w", path, err)
	}
	return emails, nil
}
