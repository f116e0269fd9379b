package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bodrovis/ternary/apierr"
)

var version = "0.1.0"

// flags shared by every request command.
type flags struct {
	format         string
	connectTimeout time.Duration
	timeout        time.Duration
	noRedirect     bool
	insecure       bool
	noCheck        bool
	basic          string
	digest         string
	selectPath     string
	configPath     string
	envFile        string
	verbose        bool
	noColor        bool
	data           []string
	headers        []string
}

// NewRootCmd builds the command tree writing to stdout and stderr.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:     "ternary",
		Short:   "Send HTTP calls and check success/status conventions in JSON replies",
		Version: version,
		Long: `ternary sends one HTTP call and prints the reply body.

JSON replies carrying "success": false or a "status" other than 200 are
reported as service errors with their error.message and error.code.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&f.format, "format", "json", "Body format for put, patch and delete (json, form, multipart)")
	pf.DurationVar(&f.connectTimeout, "connect-timeout", 0, "Connect timeout (default from config, 5s)")
	pf.DurationVarP(&f.timeout, "timeout", "t", 0, "Overall timeout (default from config, 30s)")
	pf.BoolVar(&f.noRedirect, "no-redirect", false, "Do not follow redirects")
	pf.BoolVarP(&f.insecure, "insecure", "k", false, "Skip TLS certificate verification")
	pf.BoolVar(&f.noCheck, "no-check", false, "Do not check success/status in the reply")
	pf.StringVar(&f.basic, "basic", "", "Basic auth credentials as user:pass")
	pf.StringVar(&f.digest, "digest", "", "Digest auth credentials as user:pass")
	pf.StringVarP(&f.selectPath, "select", "s", "", "Print only the value at this gjson path")
	pf.StringVar(&f.configPath, "config", "", "YAML config file")
	pf.StringVar(&f.envFile, "env-file", "", ".env file to load (default: search from the working directory)")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "Log every call at debug level")
	pf.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	pf.StringArrayVarP(&f.data, "data", "d", nil, "Param as key=value, key=@path reads a file (repeatable)")
	pf.StringArrayVarP(&f.headers, "header", "H", nil, `Header as "Name: value" (repeatable)`)

	for _, method := range []string{"get", "post", "put", "patch", "delete"} {
		root.AddCommand(newRequestCmd(method, f))
	}
	return root
}

// Execute runs the CLI with os.Args and returns the process exit code.
func Execute() int {
	root := NewRootCmd(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		var se *apierr.ServiceError
		if !errors.As(err, &se) {
			// service errors are already printed with their code
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return 1
	}
	return 0
}
