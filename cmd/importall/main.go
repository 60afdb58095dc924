// Master import: runs the data-import commands one at a time with a fixed
// per-command timeout, stopping at the first failure and propagating its
// exit code.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/nbowman189/vitruvian/pkg/logger"
)

var defaultSteps = []string{
	"vitruvian-healthkit -export export.xml -log content/checkins.md",
	"vitruvian-render -in content/checkins.md -html content/checkins.html",
}

func main() {
	timeoutSec := flag.Int("timeout", 120, "Per-command timeout in seconds")
	flag.Parse()

	log, err := logger.New(os.Getenv("APP_MODE"))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	steps := flag.Args()
	if len(steps) == 0 {
		steps = defaultSteps
	}

	for i, step := range steps {
		argv := strings.Fields(step)
		if len(argv) == 0 {
			continue
		}

		log.Info("running step", "n", i+1, "of", len(steps), "cmd", step)
		start := time.Now()

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*timeoutSec)*time.Second)
		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		err := cmd.Run()
		cancel()

		if err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				log.Error("step timed out", "cmd", step, "timeout_s", *timeoutSec)
				os.Exit(1)
			}

			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				log.Error("step failed", "cmd", step, "exit_code", exitErr.ExitCode())
				os.Exit(exitErr.ExitCode())
			}
			log.Error("step failed to start", "cmd", step, "err", err)
			os.Exit(1)
		}

		log.Info("step done", "cmd", argv[0], "duration", time.Since(start).Round(time.Millisecond).String())
	}
}
