package main

import "github.com/elchinm/attendance-gate/cmd"

func main() {
	cmd.Execute()
}
