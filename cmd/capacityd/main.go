package main

import (
	"log"

	"github.com/xz1/capacity-prediction/pkg/api"
)

func main() {
	if err := api.Serve(); err != nil {
		log.Fatal(err)
	}
}
