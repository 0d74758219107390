// Command solaredge queries the SolarEdge monitoring API.
package main

import (
	"context"
	"fmt"
	"os"

	_ "time/tzdata" // site time zones must resolve without system zoneinfo

	"github.com/huangsam/solaredge/cmd"
)

func main() {
	if err := cmd.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
