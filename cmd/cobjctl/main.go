package main

import (
	"fmt"
	"os"

	"github.com/ericfisherdev/cobjpanel/cmd/cobjctl/app"
)

func main() {
	cmd := app.New()
	cmd.SetArgs(os.Args[1:])
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		os.Exit(1)
	}
}
