// Package main is the entry point for the gbk CLI.
package main

import "github.com/glambook/glambook-cli/internal/cli"

func main() {
	cli.Execute()
}
