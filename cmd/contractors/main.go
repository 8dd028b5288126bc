// cmd/contractors/main.go
package main

import (
	"github.com/law-makers/contractors/internal/cli"
)

func main() {
	// Signal handling and app initialization happen inside cli.Execute
	cli.Execute()
}
