package main

import (
	"os"

	"volunteerhub/command"
)

func main() {
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}
