// cmd/brainsgraph/main.go
package main

import "brainsgraph/cmd"

func main() {
	cmd.Execute()
}
