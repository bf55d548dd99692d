package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ingham-physics/auscat-util/internal/sanitize"
)

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize [directory]...",
	Short: "Strip connection credentials from Pentaho project files",
	Long: `For every Pentaho data integration file (*.ktr, *.kjb) in the given
directories, remove embedded connection elements and rewrite the file in
place. The edit is destructive; run it only on files tracked by version
control.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := sanitize.Sanitize(cmd.Context(), args)
		if err != nil {
			return err
		}

		out := NewOutputter(viper.GetString("output_format"))
		if report.FilesScanned == 0 {
			out.PrintWarning("no project files found")
			return nil
		}
		return out.PrintObject(report)
	},
}

func init() {
	rootCmd.AddCommand(sanitizeCmd)
}
