/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/tamriel-io/goesp/cmd/goesp/cmd"
)

func main() {
	cmd.Execute()
}
