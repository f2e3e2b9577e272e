package main

import "github.com/spachava753/toolbridge/cmd"

func main() {
	cmd.Execute()
}
