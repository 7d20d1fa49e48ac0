package main

import (
	"os"

	"github.com/dszqbsm/pocextractor/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
