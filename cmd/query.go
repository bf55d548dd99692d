package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ingham-physics/auscat-util/internal/table"
)

var querySQL string

var queryCmd = &cobra.Command{
	Use:   "query [script-file]",
	Short: "Run a query and print the result",
	Long: `Run a query against the configured database and print the result set.

Only the first statement of a script file is executed; anything after the
first ";" is ignored.

Examples:
  auscat query summary.sql --db-config db.yaml -o csv
  auscat query --sql "SELECT count(*) FROM patients"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if querySQL == "" && len(args) == 0 {
			return fmt.Errorf("provide a script file or --sql")
		}

		runner, err := loadRunner()
		if err != nil {
			return err
		}

		var result *table.Table
		if querySQL != "" {
			result, err = runner.QueryInline(cmd.Context(), querySQL)
		} else {
			result, err = runner.QueryToTable(cmd.Context(), args[0])
		}
		if err != nil {
			return err
		}

		return NewOutputter(viper.GetString("output_format")).PrintResult(result)
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVar(&querySQL, "sql", "", "literal SQL query instead of a script file")
}
