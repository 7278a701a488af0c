// Command planner projects a balance sheet from the terminal.
//
//	planner project --items sheet.json --years 20 --format markdown
//	planner kinds
//	planner years-to --dob 1975-04-30 --age 67
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
