package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bodrovis/ternary/apierr"
	"github.com/bodrovis/ternary/client"
	"github.com/bodrovis/ternary/config"
)

func newRequestCmd(method string, f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   method + " URL",
		Short: fmt.Sprintf("Send a %s request to URL", strings.ToUpper(method)),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), method, args[0], f)
		},
	}
}

func run(ctx context.Context, stdout, stderr io.Writer, method, url string, f *flags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	scheme := newColorScheme(f.noColor)

	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	logger := newLogger(stderr, cfg, f.noColor)

	req, err := client.New(client.WithConfig(cfg), client.WithLogger(logger))
	if err != nil {
		return err
	}
	if req, err = configure(req, f); err != nil {
		return err
	}

	params, err := parseData(f.data, req.BodyFormat() == client.FormatMultipart)
	if err != nil {
		return err
	}

	var resp *client.Response
	switch method {
	case "get":
		resp, err = req.Get(ctx, url, params)
	case "post":
		resp, err = req.Post(ctx, url, params)
	case "put":
		resp, err = req.Put(ctx, url, params)
	case "patch":
		resp, err = req.Patch(ctx, url, params)
	case "delete":
		resp, err = req.Delete(ctx, url, params)
	default:
		return fmt.Errorf("unsupported method %q", method)
	}
	if err != nil {
		if se, ok := apierr.AsServiceError(err); ok {
			printServiceError(stderr, scheme, se)
		}
		return err
	}
	return printResponse(stdout, stderr, scheme, resp, f.selectPath)
}

// loadConfig layers defaults, the YAML file, TERNARY_* variables and flags.
func loadConfig(f *flags) (config.Config, error) {
	if f.envFile != "" {
		if err := config.LoadDotEnv(f.envFile); err != nil {
			return config.Config{}, fmt.Errorf("load env file: %w", err)
		}
	} else {
		_ = config.LoadDotEnv()
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if f.connectTimeout < 0 || f.timeout < 0 {
		return config.Config{}, errors.New("timeouts cannot be negative")
	}
	cfg = cfg.Merge(config.Config{
		ConnectTimeout: f.connectTimeout,
		RequestTimeout: f.timeout,
		Insecure:       f.insecure,
		NoRedirect:     f.noRedirect,
	})
	if f.verbose {
		cfg.LogLevel = "debug"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "ternary/" + version
	}
	return cfg, nil
}

func configure(req *client.PendingRequest, f *flags) (*client.PendingRequest, error) {
	switch strings.ToLower(f.format) {
	case "", "json":
		req = req.AsJSON()
	case "form", "form_params":
		req = req.AsFormParams()
	case "multipart":
		req = req.AsMultipart()
	default:
		return nil, fmt.Errorf("unknown format %q (want json, form or multipart)", f.format)
	}

	for _, h := range f.headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid header %q, want \"Name: value\"", h)
		}
		req = req.WithHeader(strings.TrimSpace(name), strings.TrimSpace(value))
	}

	if f.basic != "" && f.digest != "" {
		return nil, errors.New("--basic and --digest are mutually exclusive")
	}
	if f.basic != "" {
		user, pass, _ := strings.Cut(f.basic, ":")
		req = req.WithBasicAuth(user, pass)
	}
	if f.digest != "" {
		user, pass, _ := strings.Cut(f.digest, ":")
		req = req.WithDigestAuth(user, pass)
	}
	if f.noCheck {
		req = req.WithoutCheckResponse()
	}
	return req.BeforeSending(client.RequestID("")), nil
}

// parseData turns key=value pairs into params. A repeated key becomes a
// list. key=@path becomes a file part in multipart mode and the file's
// contents otherwise.
func parseData(pairs []string, multipart bool) (client.Params, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(client.Params, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid data %q, want key=value", pair)
		}

		var value any = raw
		if path, isFile := strings.CutPrefix(raw, "@"); isFile {
			if multipart {
				value = client.FileFromPath(path)
			} else {
				b, err := os.ReadFile(path)
				if err != nil {
					return nil, fmt.Errorf("read %s: %w", key, err)
				}
				value = string(b)
			}
		}

		switch prev := params[key].(type) {
		case nil:
			params[key] = value
		case []any:
			params[key] = append(prev, value)
		default:
			params[key] = []any{prev, value}
		}
	}
	return params, nil
}

func newLogger(w io.Writer, cfg config.Config, noColor bool) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: w, NoColor: noColor, TimeFormat: "15:04:05"}
	return zerolog.New(out).Level(cfg.Level()).With().Timestamp().Logger()
}
