package main

import (
	"os"

	"github.com/MQasim39/career-dashboard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
