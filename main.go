package main

import (
	// Bundle zone data so Europe/Rome resolves even on hosts without a tzdb.
	_ "time/tzdata"

	"github.com/dltmtt/viaggiatreno-api/cmd"
)

func main() {
	cmd.Execute()
}
