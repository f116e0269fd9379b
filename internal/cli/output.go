package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fatih/color"

	"github.com/bodrovis/ternary/apierr"
	"github.com/bodrovis/ternary/client"
)

type colorScheme struct {
	StatusOK    *color.Color
	StatusWarn  *color.Color
	StatusError *color.Color
	Error       *color.Color
	Dim         *color.Color
}

func newColorScheme(noColor bool) *colorScheme {
	s := &colorScheme{
		StatusOK:    color.New(color.FgGreen, color.Bold),
		StatusWarn:  color.New(color.FgYellow, color.Bold),
		StatusError: color.New(color.FgRed, color.Bold),
		Error:       color.New(color.FgRed),
		Dim:         color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{s.StatusOK, s.StatusWarn, s.StatusError, s.Error, s.Dim} {
			c.DisableColor()
		}
	}
	return s
}

func (s *colorScheme) status(code int) *color.Color {
	switch {
	case code >= 500:
		return s.StatusError
	case code >= 400:
		return s.StatusWarn
	default:
		return s.StatusOK
	}
}

// printResponse writes the status line to stderr and the body (or the
// selected value) to stdout, so stdout stays pipeable.
func printResponse(stdout, stderr io.Writer, s *colorScheme, resp *client.Response, path string) error {
	code := resp.StatusCode()
	s.status(code).Fprintf(stderr, "%d %s\n", code, http.StatusText(code))

	if path != "" {
		v := resp.Get(path)
		if !v.Exists() {
			return fmt.Errorf("select: nothing at %q", path)
		}
		_, err := fmt.Fprintln(stdout, v.String())
		return err
	}

	body := resp.Bytes()
	var pretty bytes.Buffer
	if json.Indent(&pretty, body, "", "  ") == nil {
		body = pretty.Bytes()
	}
	if _, err := stdout.Write(body); err != nil {
		return err
	}
	if len(body) > 0 && body[len(body)-1] != '\n' {
		_, err := io.WriteString(stdout, "\n")
		return err
	}
	return nil
}

func printServiceError(w io.Writer, s *colorScheme, se *apierr.ServiceError) {
	s.Error.Fprintf(w, "service error %d: %s\n", se.Code, se.Error())
	if st := se.Status(); st != 0 {
		s.Dim.Fprintf(w, "  %s (HTTP %d)\n", se.URL, st)
	}
}
