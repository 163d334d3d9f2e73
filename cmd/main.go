// cmd/main.go
package main

import cmd "github.com/mwiater/benchdash/cmd/benchdash"

// main starts the benchdash CLI by delegating to the cobra root command
// defined in the benchdash package.
func main() {
	cmd.Execute()
}
