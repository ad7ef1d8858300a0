package main

import (
	"github.com/haekelise/hausmeister/cmd"
)

func main() {
	cmd.Execute()
}
