package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ingham-physics/auscat-util/internal/sparql"
)

var sparqlGraph string

var sparqlCmd = &cobra.Command{
	Use:   "sparql",
	Short: "Query and update a SPARQL triplestore",
}

var sparqlQueryCmd = &cobra.Command{
	Use:   "query [query-file]",
	Short: "Run a SPARQL query and print the bindings as a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sparqlClient()
		if err != nil {
			return err
		}
		result, err := client.QueryFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return NewOutputter(viper.GetString("output_format")).PrintResult(result)
	},
}

var sparqlXMLCmd = &cobra.Command{
	Use:   "xml [query-file]",
	Short: "Run a SPARQL query and print the raw XML results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sparqlClient()
		if err != nil {
			return err
		}
		queryText, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		body, err := client.QueryXML(cmd.Context(), string(queryText))
		if err != nil {
			return err
		}
		fmt.Println(body)
		return nil
	},
}

var sparqlJSONCmd = &cobra.Command{
	Use:   "json [query-file]",
	Short: "Run a SPARQL query and print the raw JSON results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sparqlClient()
		if err != nil {
			return err
		}
		queryText, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		body, err := client.QueryJSON(cmd.Context(), string(queryText))
		if err != nil {
			return err
		}
		fmt.Println(string(body))
		return nil
	},
}

var sparqlClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all triples, or only those in --graph",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sparqlClient()
		if err != nil {
			return err
		}
		if err := client.Clear(cmd.Context(), sparqlGraph); err != nil {
			return err
		}
		out := NewOutputter(viper.GetString("output_format"))
		if sparqlGraph == "" {
			out.PrintSuccess("repository cleared")
		} else {
			out.PrintSuccess(fmt.Sprintf("graph %s cleared", sparqlGraph))
		}
		return nil
	},
}

var sparqlInsertCmd = &cobra.Command{
	Use:   "insert [triples-file]",
	Short: "Insert serialized triples, optionally into --graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sparqlClient()
		if err != nil {
			return err
		}
		if err := client.Insert(cmd.Context(), args[0], sparqlGraph); err != nil {
			return err
		}
		NewOutputter(viper.GetString("output_format")).PrintSuccess(
			fmt.Sprintf("inserted triples from %s", args[0]))
		return nil
	},
}

var sparqlCreateRepoCmd = &cobra.Command{
	Use:   "create-repo",
	Short: "Provision the configured repository on the endpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sparqlClient()
		if err != nil {
			return err
		}
		if err := client.CreateRepository(cmd.Context()); err != nil {
			return err
		}
		NewOutputter(viper.GetString("output_format")).PrintSuccess(
			fmt.Sprintf("repository %s created", viper.GetString("repository")))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sparqlCmd)
	sparqlCmd.AddCommand(sparqlQueryCmd)
	sparqlCmd.AddCommand(sparqlXMLCmd)
	sparqlCmd.AddCommand(sparqlJSONCmd)
	sparqlCmd.AddCommand(sparqlClearCmd)
	sparqlCmd.AddCommand(sparqlInsertCmd)
	sparqlCmd.AddCommand(sparqlCreateRepoCmd)

	sparqlCmd.PersistentFlags().String("endpoint", "", "SPARQL query endpoint URL")
	sparqlCmd.PersistentFlags().String("update-endpoint", "", "SPARQL update endpoint URL")
	sparqlCmd.PersistentFlags().String("repository", "", "repository identifier")
	sparqlCmd.PersistentFlags().StringVar(&sparqlGraph, "graph", "", "named graph IRI")
	viper.BindPFlag("endpoint", sparqlCmd.PersistentFlags().Lookup("endpoint"))
	viper.BindPFlag("update_endpoint", sparqlCmd.PersistentFlags().Lookup("update-endpoint"))
	viper.BindPFlag("repository", sparqlCmd.PersistentFlags().Lookup("repository"))
}

// sparqlClient builds a client from flags and config.
func sparqlClient() (*sparql.Client, error) {
	endpoint := sparql.Endpoint{
		QueryURL:   viper.GetString("endpoint"),
		UpdateURL:  viper.GetString("update_endpoint"),
		Repository: viper.GetString("repository"),
	}
	if endpoint.QueryURL == "" {
		return nil, fmt.Errorf("no SPARQL endpoint configured")
	}
	if endpoint.UpdateURL == "" {
		endpoint.UpdateURL = endpoint.QueryURL
	}
	return sparql.NewClient(endpoint), nil
}
