package main

import (
	"log"

	"github.com/samuelfneumann/discreteq/cmd"
)

func main() {
	if err := cmd.RootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}
