// Command migrate manages the postgres schema.
//
//	migrate up                 apply pending migrations
//	migrate down               roll back everything
//	migrate steps -1           roll back the last migration
//	migrate goto 3             move to version 3
//	migrate version            print the applied version
//	migrate status             applied, latest and pending versions
//	migrate force 2            mark version 2 as applied and clean
//	migrate create add_badges  write the next up/down pair into --dir
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
