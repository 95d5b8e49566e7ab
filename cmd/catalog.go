package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"CVForgeBot/model"
)

var catalogFile string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the form fields in question order",
	Long: `Print the effective field catalog. With --file a custom catalog YAML is
validated and printed instead of the configured one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := catalogFile
		if path == "" {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			path = cfg.Catalog.Path
		}

		catalog, err := model.LoadCatalog(path)
		if err != nil {
			return err
		}
		return printCatalog(cmd, catalog)
	},
}

func printCatalog(cmd *cobra.Command, catalog *model.Catalog) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tFIELD\tSECTION\tREQUIRED\tPROMPT")
	for _, f := range catalog.Fields() {
		required := ""
		if !f.Skippable {
			required = "yes"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", f.Order+1, f.Name, f.Section, required, f.Prompt)
	}
	return w.Flush()
}

func init() {
	catalogCmd.Flags().StringVarP(&catalogFile, "file", "f", "", "catalog YAML to validate")
	rootCmd.AddCommand(catalogCmd)
}
