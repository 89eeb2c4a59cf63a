package main

import (
	"github.com/spf13/cobra"

	"apielec/internal/auth"
	"apielec/internal/db"
	"apielec/internal/importer"
	"apielec/internal/logging"
)

var (
	readonlyUser string
	readonlyPass string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the schema, seed API users, and optionally a read-only role",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := logging.New()

		dbConn, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		if err := db.RunMigrations(ctx, dbConn, sqlDir); err != nil {
			return err
		}
		logger.Info("schema applied", "dir", sqlDir)

		userStore := auth.NewStore(dbConn)
		if err := userStore.SeedFromFile(ctx, usersPath); err != nil {
			return err
		}
		logger.Info("users seeded", "path", usersPath)

		if readonlyUser != "" {
			im := importer.New(dbConn, table, logger)
			if err := im.CreateReadOnlyUser(ctx, readonlyUser, readonlyPass); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&readonlyUser, "readonly-user", "", "read-only role to create for the query service")
	initCmd.Flags().StringVar(&readonlyPass, "readonly-pass", "", "password for the read-only role")
}
