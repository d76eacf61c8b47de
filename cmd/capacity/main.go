package main

import (
	"github.com/xz1/capacity-prediction/pkg/cli"
)

func main() {
	cli.Execute()
}
