package main

import "talentreach/cmd"

func main() {
	cmd.Execute()
}
