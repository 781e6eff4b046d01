package main

import "fx-rates-pipeline/internal/cli"

func main() {
	cli.Execute()
}
