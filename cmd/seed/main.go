// Command seed fills a database with a demo storefront: an admin account,
// the curated catalog, generated reviews, demo orders and public content.
// Running it twice leaves existing data untouched.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
