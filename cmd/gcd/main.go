/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/opengcd/gcd/cmd/gcd/cmd"
)

func main() {
	cmd.Execute()
}
