package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ingham-physics/auscat-util/internal/storage"
	"github.com/ingham-physics/auscat-util/internal/table"
)

var (
	csvBucket  string
	csvKey     string
	csvCleanup bool
	csvPrefix  string
)

var csvCmd = &cobra.Command{
	Use:   "csv",
	Short: "Bulk CSV import and export via COPY",
}

var csvImportCmd = &cobra.Command{
	Use:   "import [script-file] [csv-file]",
	Short: "Stream a CSV file into the database through a COPY command",
	Long: `Stream CSV data through the COPY ... FROM STDIN command in the script
file. With --bucket and --key the CSV is read from object storage instead of
the local path (the csv-file argument is then omitted); --cleanup deletes the
staged object after a successful import.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, err := loadRunner()
		if err != nil {
			return err
		}

		var rows int64
		if csvBucket != "" {
			if csvKey == "" {
				return fmt.Errorf("--key is required with --bucket")
			}
			store, err := storage.NewS3Store(cmd.Context(), csvBucket)
			if err != nil {
				return err
			}
			rows, err = runner.ImportCSVFromStore(cmd.Context(), args[0], store, csvKey)
			if err != nil {
				return err
			}
			if csvCleanup {
				if err := store.Delete(cmd.Context(), csvKey); err != nil {
					return err
				}
			}
		} else {
			if len(args) < 2 {
				return fmt.Errorf("provide a csv-file argument or --bucket/--key")
			}
			rows, err = runner.ImportCSV(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
		}

		NewOutputter(viper.GetString("output_format")).PrintSuccess(
			fmt.Sprintf("imported %d rows", rows))
		return nil
	},
}

var csvExportCmd = &cobra.Command{
	Use:   "export [script-file] [csv-file]",
	Short: "Stream a COPY command's output into a CSV file",
	Long: `Stream the output of the COPY ... TO STDOUT command in the script file
into a CSV file. With --bucket and --key the CSV is written to object storage
instead of the local path (the csv-file argument is then omitted).`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, err := loadRunner()
		if err != nil {
			return err
		}

		var rows int64
		if csvBucket != "" {
			if csvKey == "" {
				return fmt.Errorf("--key is required with --bucket")
			}
			store, err := storage.NewS3Store(cmd.Context(), csvBucket)
			if err != nil {
				return err
			}
			rows, err = runner.ExportCSVToStore(cmd.Context(), args[0], store, csvKey)
			if err != nil {
				return err
			}
		} else {
			if len(args) < 2 {
				return fmt.Errorf("provide a csv-file argument or --bucket/--key")
			}
			rows, err = runner.ExportCSV(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
		}

		NewOutputter(viper.GetString("output_format")).PrintSuccess(
			fmt.Sprintf("exported %d rows", rows))
		return nil
	},
}

var csvLoadCmd = &cobra.Command{
	Use:   "load [csv-file] [table]",
	Short: "Bulk-load a CSV file into an existing table",
	Long: `Read a CSV file (header row required) and COPY its rows into an existing
table. The rows are re-staged through a temporary CSV that is cleaned up
afterwards; a failed load removes the staged file immediately.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, err := loadRunner()
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		tbl, err := table.ReadCSV(f)
		f.Close()
		if err != nil {
			return err
		}

		staged := filepath.Join(os.TempDir(),
			fmt.Sprintf("auscat-load-%d.csv", time.Now().UnixNano()))
		defer os.Remove(staged)
		if err := runner.TableToCSVLoad(cmd.Context(), tbl, staged, args[1]); err != nil {
			return err
		}

		NewOutputter(viper.GetString("output_format")).PrintSuccess(
			fmt.Sprintf("loaded %d rows into %s", tbl.NumRows(), args[1]))
		return nil
	},
}

var csvObjectsCmd = &cobra.Command{
	Use:   "objects",
	Short: "List staged CSV objects in the bucket",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if csvBucket == "" {
			return fmt.Errorf("--bucket is required")
		}
		store, err := storage.NewS3Store(cmd.Context(), csvBucket)
		if err != nil {
			return err
		}
		keys, err := store.List(cmd.Context(), csvPrefix)
		if err != nil {
			return err
		}
		for _, key := range keys {
			fmt.Println(key)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(csvCmd)
	csvCmd.AddCommand(csvImportCmd)
	csvCmd.AddCommand(csvExportCmd)
	csvCmd.AddCommand(csvLoadCmd)
	csvCmd.AddCommand(csvObjectsCmd)

	csvCmd.PersistentFlags().StringVar(&csvBucket, "bucket", "", "S3 bucket for staged CSVs")
	csvCmd.PersistentFlags().StringVar(&csvKey, "key", "", "S3 object key for staged CSVs")
	csvImportCmd.Flags().BoolVar(&csvCleanup, "cleanup", false,
		"delete the staged object after a successful import")
	csvObjectsCmd.Flags().StringVar(&csvPrefix, "prefix", "", "only list keys under this prefix")
}
