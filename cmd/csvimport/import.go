package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"apielec/internal/importer"
	"apielec/internal/logging"
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Load a CSV export into the consumption table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("'%s' file does not exist", path)
		}

		ctx := cmd.Context()
		logger := logging.New()

		dbConn, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		im := importer.New(dbConn, table, logger)
		rows, err := im.ImportFile(ctx, path)
		if err != nil {
			return err
		}
		fmt.Printf("OK - CSV (%d lines) successfully imported to %s\n", rows, table)
		return nil
	},
}
