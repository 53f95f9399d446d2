package main

import "github.com/ademuri/not-wrapped/cmd"

func main() {
	cmd.Execute()
}
