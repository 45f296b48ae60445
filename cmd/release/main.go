package main

import (
	"fmt"
	"os"

	"github.com/danieljhkim/release/internal/channel"
	"github.com/danieljhkim/release/internal/cli"
)

var version = "dev"

func main() {
	cli.SetVersion(version)

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err))
		channel.Exit()
	}
}
