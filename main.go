// Package main is the entry point for the mockfn CLI.
package main

import "github.com/EugenEistrach/mockfn/cmd"

func main() {
	cmd.Execute()
}
