package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pricewatch.GO/upstream"
)

var catalogsCmd = &cobra.Command{
	Use:   "catalogs:list",
	Short: "List the catalogs the upstream service exposes",
	Run: func(cmd *cobra.Command, args []string) {
		catalogs, err := upstream.New().Catalogs(context.Background())
		if err != nil {
			fmt.Printf("Failed to list catalogs: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%-6s %-32s %12s %10s\n", "ID", "NAME", "CATEGORIES", "PRODUCTS")
		for _, c := range catalogs {
			fmt.Printf("%-6d %-32s %12d %10d\n", c.ID, c.Name, c.CategoriesCount, c.ProductsCount)
		}
	},
}

func init() {
	rootCmd.AddCommand(catalogsCmd)
}
