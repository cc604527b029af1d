// The main package for the event crawler executable.
package main

import (
	"github.com/eventoscl/crawler/cmd"
)

func main() {
	cmd.Execute()
}
