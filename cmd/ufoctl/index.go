package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/ufotracker/internal/logger"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the sighting search index",
}

var indexCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the search index if it does not exist",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			created, err := a.docs.EnsureIndex(ctx)
			if err != nil {
				return fmt.Errorf("create index: %w", err)
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "index %s created\n", a.docs.Index())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "index %s already exists\n", a.docs.Index())
			}
			return nil
		})
	},
}

var indexDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drop the search index",
	RunE: func(cmd *cobra.Command, _ []string) error {
		deleteDocs, _ := cmd.Flags().GetBool("delete-docs")
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if err := a.docs.DropIndex(ctx, deleteDocs); err != nil {
				return fmt.Errorf("drop index: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "index %s dropped\n", a.docs.Index())
			return nil
		})
	},
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Re-index every catalog record",
	Long: `rebuild ensures the index exists and rewrites every catalog record
into it, page by page. Use it after "index drop --delete-docs".`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		pageSize, _ := cmd.Flags().GetInt("page-size")
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if _, err := a.docs.EnsureIndex(ctx); err != nil {
				return fmt.Errorf("create index: %w", err)
			}
			n, err := a.sightings.Reindex(ctx, pageSize)
			if err != nil {
				return fmt.Errorf("reindex after %d records: %w", n, err)
			}
			logpkg.FromContext(ctx).Info("Reindex completed", zap.Int("records", n))
			fmt.Fprintf(cmd.OutOrStdout(), "%d records indexed into %s\n", n, a.docs.Index())
			return nil
		})
	},
}

func init() {
	indexDropCmd.Flags().Bool("delete-docs", false, "also delete the indexed hashes")
	indexRebuildCmd.Flags().Int("page-size", 200, "records per pipelined write")

	indexCmd.AddCommand(indexCreateCmd, indexDropCmd, indexRebuildCmd)
	rootCmd.AddCommand(indexCmd)
}
