package main

import (
	"os"

	"github.com/quizdash/quizdash/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
