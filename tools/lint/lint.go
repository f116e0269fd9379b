package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

type step struct {
	title string
	cmd   string
	args  []string
}

func runCommand(cmd string, args []string) error {
	command := exec.Command(cmd, args...)
	command.Stdout = os.Stdout
	command.Stderr = os.Stderr
	if err := command.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", cmd, strings.Join(args, " "), err)
	}
	return nil
}

func main() {
	skipTests := flag.Bool("skip-tests", false, "only format and lint")
	skipInstall := flag.Bool("skip-install", false, "use staticcheck and gofumpt from PATH")
	flag.Parse()

	steps := []step{
		{"go fmt", "go", []string{"fmt", "./..."}},
		{"go vet", "go", []string{"vet", "./..."}},
		{"golangci-lint", "golangci-lint", []string{"run", "./..."}},
	}
	if !*skipInstall {
		steps = append(steps,
			step{"install staticcheck", "go", []string{"install", "honnef.co/go/tools/cmd/staticcheck@latest"}},
			step{"install gofumpt", "go", []string{"install", "mvdan.cc/gofumpt@latest"}},
		)
	}
	steps = append(steps,
		step{"staticcheck", "staticcheck", []string{"./..."}},
		step{"gofumpt", "gofumpt", []string{"-l", "-w", "."}},
	)
	if !*skipTests {
		steps = append(steps, step{"tests (race)", "go", []string{"test", "-race", "-count=1", "./..."}})
	}

	var failed []string
	for _, s := range steps {
		fmt.Printf("Running %s...\n", s.title)
		if err := runCommand(s.cmd, s.args); err != nil {
			fmt.Println(err)
			failed = append(failed, s.title)
		}
	}

	if len(failed) > 0 {
		fmt.Printf("Failed: %s\n", strings.Join(failed, ", "))
		os.Exit(1)
	}
	fmt.Println("All checks completed!")
}
