// Command oaslint runs rule catalogs against OpenAPI documents.
package main

import (
	"os"

	"github.com/erraggy/oaslint/cmd/oaslint/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
