package main

import (
	"fmt"
	"os"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(run(DefaultEnv()))
}

// run dispatches the top-level command and returns the process exit code.
func run(env *Environment) int {
	args := env.Args
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	switch args[1] {
	case "convert":
		return runConvertCmd(args[2:], env)
	case "doctor":
		return runDoctorCmd(args[2:], env)
	case "completion":
		if err := runCompletion(args[2:], env); err != nil {
			fmt.Fprintln(env.Stderr, err)
			return exitCodeFor(err)
		}
		return ExitSuccess
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "doc2pdf %s\n", Version)
		return ExitSuccess
	case "help", "--help", "-h":
		runHelp(args[2:], env)
		return ExitSuccess
	default:
		// A bare path works too: "doc2pdf ./docs" converts.
		return runConvertCmd(args[1:], env)
	}
}
