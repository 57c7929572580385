package main

import (
	"os"

	"github.com/kingsejong-lang/kingsejong-lang/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
