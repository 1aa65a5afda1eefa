package main

import "github.com/jarredhawkins/gremlin-scripts/internal/cli"

func main() {
	cli.Execute()
}
