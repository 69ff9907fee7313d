package main

import (
	"os"

	localmemcmder "github.com/NickSmet/mcp-local-memory/cmd/localmem"
)

func main() {
	cmd := localmemcmder.NewLocalmemCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
