package main

import (
	"fmt"
	"os"
	"strings"

	"postboard/service"
)

// CliVersion is the released version of the postboard binary.
const CliVersion = "1.0.0"

// exit is replaced in tests.
var exit = os.Exit

func main() {
	RealMain()
}

// RealMain dispatches os.Args to the command handlers and exits with their code.
func RealMain() {
	if len(os.Args) < 2 {
		exit(service.HandleCommand(nil))
		return
	}

	switch strings.ToLower(os.Args[1]) {
	case "version", "--version", "-v":
		fmt.Printf("postboard version %s\n", CliVersion)
		exit(0)
	default:
		exit(service.HandleCommand(os.Args[1:]))
	}
}
