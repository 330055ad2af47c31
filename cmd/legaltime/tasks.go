package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/makarovada/legal-time/internal/access"
	"github.com/makarovada/legal-time/internal/application"
	"github.com/makarovada/legal-time/internal/jobs"
)

var defaultActivityTypes = []string{
	"Consultation",
	"Correspondence",
	"Document preparation",
	"Court hearing",
	"Client meeting",
	"Document review",
	"Phone call",
	"Negotiations",
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			status, err := a.storage.MigrationStatus(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date: %d migration(s) applied\n", len(status.Applied))
			return nil
		},
	}
}

func newSeedCommand() *cobra.Command {
	var (
		name       string
		email      string
		activities []string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the first administrator and the default activity types",
		Long: "Creates an admin account unless the email is already registered and adds any missing default activity types.\n" +
			"The admin password is read from LEGALTIME_ADMIN_PASSWORD.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			password := os.Getenv("LEGALTIME_ADMIN_PASSWORD")
			if strings.TrimSpace(password) == "" {
				return fmt.Errorf("LEGALTIME_ADMIN_PASSWORD must be set")
			}

			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			admin, err := a.employees.Bootstrap(cmd.Context(), application.EmployeeInput{
				Name:     name,
				Email:    email,
				Role:     string(access.RoleAdmin),
				Password: password,
			})
			switch {
			case err == nil:
				fmt.Fprintf(out, "created admin %s (%s)\n", admin.Email, admin.ID)
			case errors.Is(err, application.ErrConflict):
				fmt.Fprintf(out, "admin %s already exists\n", email)
			default:
				return err
			}

			created, err := a.activityTypes.EnsureDefaults(cmd.Context(), activities)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "created %d activity type(s)\n", created)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "admin-name", "Administrator", "Display name of the admin account")
	cmd.Flags().StringVar(&email, "admin-email", "admin@legaltime.local", "Email of the admin account")
	cmd.Flags().StringSliceVar(&activities, "activity", defaultActivityTypes, "Activity type to ensure (repeatable)")
	return cmd
}

func newRecalculateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recalculate-rates",
		Short: "Re-resolve the billing rate of every time entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.timeEntries.RecalculateRates(cmd.Context(), jobs.SystemPrincipal)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "examined %d, updated %d\n", result.Examined, result.Updated)
			return nil
		},
	}
}

func newCalendarSweepCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "calendar-sweep",
		Short: "Push unsynced time entries of every linked employee to their calendar",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.calendar.Enabled() {
				return application.ErrCalendarUnavailable
			}
			result, err := a.calendar.SweepAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "synced %d of %d, failed %d\n", result.Synced, result.Total, result.Failed)
			return nil
		},
	}
}
