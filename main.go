package main

import (
	"djradar/cmd"
)

func main() {
	cmd.Execute()
}
