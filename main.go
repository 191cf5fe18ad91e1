package main

import (
	"os"

	"github.com/yaklabco/stitch/cmd/stitch"
)

func main() {
	os.Exit(stitch.Main())
}
