// Package main provides the entry point for reportctl.
package main

import "hotelstats/internal/cli"

func main() {
	cli.Execute()
}
