// tabwarden is a browser productivity daemon: it accounts distraction time,
// runs a points economy and nudges you back to work.
package main

import (
	"os"

	"github.com/corey/tabwarden/cmd/tabwarden/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
