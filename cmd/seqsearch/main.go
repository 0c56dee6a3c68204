package main

import (
	"os"

	"github.com/viant/sqlite-seq/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
