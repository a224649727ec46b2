package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"mailtriage/internal/config"
	"mailtriage/internal/repository"
	"mailtriage/pkg/db"
	"mailtriage/pkg/logger"
)

func outcomeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "outcome <email-id>",
		Short: "Show the stored outcome of one email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configEnv, configDir)
			if err != nil {
				return err
			}
			log := logger.NewLogger(cfg.Log.Development, cfg.Log.Level)
			defer log.Sync()

			pool, err := db.NewConnection(cmd.Context(), cfg.DB, log)
			if err != nil {
				return err
			}
			defer pool.Close()

			stored, err := repository.NewOutcomeRepository(pool).FindByID(cmd.Context(), args[0])
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("no outcome stored for email %s", args[0])
			}
			if err != nil {
				return err
			}
			return writeStored(cmd.OutOrStdout(), stored)
		},
	}
}

func writeStored(w io.Writer, s *repository.StoredOutcome) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"id", s.ID},
		{"email_id", s.Sender},
		{"success", strconv.FormatBool(s.Success)},
		{"classification", string(s.Category)},
		{"response_sent", s.Response},
		{"stage", s.Stage},
		{"error", s.ErrorText},
		{"trace_id", s.TraceID},
		{"stored_at", s.CreatedAt.Format(time.RFC3339)},
	}
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		if _, err := fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}
