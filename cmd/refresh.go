package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pricewatch.GO/catalog"
	"pricewatch.GO/upstream"
)

var (
	refreshCatalogName string
	refreshCategoryID  int
)

var refreshCategoryCmd = &cobra.Command{
	Use:   "refresh:category",
	Short: "Re-run the competitor search for every product in a category, one at a time",
	Run: func(cmd *cobra.Command, args []string) {
		if refreshCatalogName == "" || refreshCategoryID == 0 {
			fmt.Println("Both --catalog and --id are required")
			os.Exit(1)
		}
		client := upstream.New()
		ctx := context.Background()

		catalogID, err := resolveCatalogID(ctx, client, refreshCatalogName)
		if err != nil {
			fmt.Printf("Failed to resolve catalog: %v\n", err)
			os.Exit(1)
		}

		tree, err := client.Categories(ctx, refreshCatalogName)
		if err != nil {
			fmt.Printf("Failed to load categories: %v\n", err)
			os.Exit(1)
		}
		node := catalog.FindByID(tree, refreshCategoryID)
		if node == nil {
			fmt.Printf("Category %d not found in catalog %s\n", refreshCategoryID, refreshCatalogName)
			os.Exit(1)
		}

		// products are not shipped with the plain tree, fetch them
		withProducts, err := client.CategoriesWithProducts(ctx, catalogID, catalog.CollectLeafIDs([]*catalog.Category{node}))
		if err != nil {
			fmt.Printf("Failed to load products: %v\n", err)
			os.Exit(1)
		}

		total, failed := 0, 0
		start := time.Now()
		for _, cat := range withProducts {
			for _, p := range catalog.CollectProducts(cat) {
				if p.PartNumber == "" {
					continue
				}
				sources, err := client.RefreshProduct(ctx, p.PartNumber)
				if err != nil {
					fmt.Printf("  [fail] %s: %v\n", p.PartNumber, err)
					failed++
					continue
				}
				fmt.Printf("  [ok]   %s: %d sources\n", p.PartNumber, len(sources))
				total++
			}
		}
		client.InvalidateCatalog(refreshCatalogName)
		fmt.Printf("Refreshed %d products (%d failed) in %s\n", total, failed, time.Since(start).Round(time.Second))
	},
}

var refreshProductCmd = &cobra.Command{
	Use:   "refresh:product [part_number]",
	Short: "Re-run the competitor search for one product",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := upstream.New()
		sources, err := client.RefreshProduct(context.Background(), args[0])
		if err != nil {
			fmt.Printf("Refresh failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s: %d sources\n", args[0], len(sources))
		for _, s := range sources {
			fmt.Printf("  %-24s %10.2f  %s\n", s.SourceName, s.RetailPrice, s.URL)
		}
	},
}

// resolveCatalogID maps a catalog name to the id the products endpoint
// is keyed by.
func resolveCatalogID(ctx context.Context, client *upstream.Client, name string) (int, error) {
	catalogs, err := client.Catalogs(ctx)
	if err != nil {
		return 0, err
	}
	for _, c := range catalogs {
		if c.Name == name {
			return c.ID, nil
		}
	}
	return 0, fmt.Errorf("catalog %s not found", name)
}

func init() {
	refreshCategoryCmd.Flags().StringVarP(&refreshCatalogName, "catalog", "c", "", "Catalog name")
	refreshCategoryCmd.Flags().IntVarP(&refreshCategoryID, "id", "i", 0, "Category id")
	rootCmd.AddCommand(refreshCategoryCmd)
	rootCmd.AddCommand(refreshProductCmd)
}
