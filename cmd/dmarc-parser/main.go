// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/dmarctools/dmarc-parser/internal/cli"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(cli.Execute(version))
}
