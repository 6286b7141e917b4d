package config

// GetAuthSkipperPaths returns a list of paths to skip authentication for
func GetAuthSkipperPaths() []string {
	// Public paths (dashboard shell and read-only catalog data, no auth)
	return []string{"/", "/api/catalogs", "/api/price-types", "/graphql"}
}
