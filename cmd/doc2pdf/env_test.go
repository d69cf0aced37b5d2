package main

import (
	"os"
	"testing"
	"time"
)

func TestDefaultEnv(t *testing.T) {
	t.Parallel()

	env := DefaultEnv()

	t.Run("Now returns real time", func(t *testing.T) {
		before := time.Now()
		got := env.Now()
		after := time.Now()

		if got.Before(before) || got.After(after) {
			t.Errorf("Now() = %v, should be between %v and %v", got, before, after)
		}
	})

	t.Run("Stdout is os.Stdout", func(t *testing.T) {
		if env.Stdout != os.Stdout {
			t.Error("Stdout should be os.Stdout")
		}
	})

	t.Run("Stderr is os.Stderr", func(t *testing.T) {
		if env.Stderr != os.Stderr {
			t.Error("Stderr should be os.Stderr")
		}
	})

	t.Run("Getenv reads the process environment", func(t *testing.T) {
		if env.Getenv == nil {
			t.Fatal("Getenv should not be nil")
		}
		if got := env.Getenv("PATH"); got != os.Getenv("PATH") {
			t.Errorf("Getenv(PATH) = %q, want the process value", got)
		}
	})

	t.Run("Args mirror os.Args", func(t *testing.T) {
		if len(env.Args) != len(os.Args) {
			t.Errorf("Args length = %d, want %d", len(env.Args), len(os.Args))
		}
	})
}
