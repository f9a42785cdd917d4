// Command qkhe exports a QKan project database into a HYSTEM-EXTRAN model
// database.
//
//	qkhe export --config run.json
//	qkhe validate --config run.json
//	qkhe init-template vorlage.idbf
//
// Settings come from the run file, then .env files and QKHE_* variables,
// then command line flags.
package main

import (
	"fmt"
	"os"

	// register all target backends with the storage registry.
	_ "qkhe/internal/storage/all"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
