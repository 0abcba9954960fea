package main

import (
	"os"

	memostackcmder "github.com/papercomputeco/memostack/cmd/memostack"
)

func main() {
	cmd := memostackcmder.NewMemostackCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
