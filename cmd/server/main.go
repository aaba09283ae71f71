package main

import (
	"fmt"
	"os"

	"acr/internal/app/server"
)

func main() {
	if err := server.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
