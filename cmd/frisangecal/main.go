// frisangecal converts the Frisange waste collection calendar (PDF) into
// an iCalendar file of reminder events.
package main

import (
	"os"

	"frisangecal/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
