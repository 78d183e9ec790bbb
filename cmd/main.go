package main

import (
	"os"

	"github.com/soundprediction/investorlens/cmd/investorlens"
)

func main() {
	if err := investorlens.Execute(); err != nil {
		os.Exit(1)
	}
}
