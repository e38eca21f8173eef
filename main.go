/*
Copyright © 2026 pydeploy authors
*/
package main

import (
	"pydeploy/cmd"
)

func main() {
	cmd.Execute()
}
