package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ingham-physics/auscat-util/internal/logger"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "auscat",
	Short: "Helper utilities for the AusCAT ETL pipelines",
	Long: `auscat bundles the helper operations the ETL pipelines shell out to:
running SQL script files against PostgreSQL, bulk CSV import/export, SPARQL
queries and updates against a triplestore, and stripping connection
credentials from Pentaho project files.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cliConfig, err := LoadConfig()
		if err != nil {
			return err
		}
		if err := ValidateConfig(cliConfig); err != nil {
			return err
		}
		if err := logger.Init(cliConfig.LogLevel); err != nil {
			return err
		}
		return InitLogger(cliConfig.LogLevel, cliConfig.LogFormat)
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.auscat/config.yaml)")
	rootCmd.PersistentFlags().String("db-config", "dbconfig.yaml", "database connection YAML file")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "output format (table|json|yaml|csv)")
	viper.BindPFlag("db_config", rootCmd.PersistentFlags().Lookup("db-config"))
	viper.BindPFlag("output_format", rootCmd.PersistentFlags().Lookup("output"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home + "/.auscat")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("AUSCAT")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config", viper.ConfigFileUsed())
	}
}
