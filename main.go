package main

import (
	"github.com/lehigh-university-libraries/ddimport/cmd"

	// Register format plugins
	_ "github.com/lehigh-university-libraries/ddimport/format/ddi"
)

func main() {
	cmd.Execute()
}
