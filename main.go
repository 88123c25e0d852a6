package main

import (
	"github.com/Rorical/QuickPane/cmd"
)

func main() {
	cmd.Execute()
}
