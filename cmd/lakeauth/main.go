package main

import (
	"os"

	"lakeauth/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
