package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"quipt/internal/client"
	"syscall"

	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "quipt-upload:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	var (
		apiURL      string
		token       string
		file        string
		contentType string
	)

	flags := pflag.NewFlagSet("quipt-upload", pflag.ContinueOnError)
	flags.StringVar(&apiURL, "api", "http://localhost:8080", "quipt API base URL")
	flags.StringVar(&token, "token", os.Getenv("QUIPT_TOKEN"), "bearer token (defaults to $QUIPT_TOKEN)")
	flags.StringVarP(&file, "file", "f", "", "video file to upload")
	flags.StringVar(&contentType, "content-type", "", "content type (defaults to one derived from the file extension)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if file == "" && flags.NArg() == 1 {
		file = flags.Arg(0)
	}
	if file == "" {
		return errors.New("--file is required")
	}
	if token == "" {
		return errors.New("--token or QUIPT_TOKEN is required")
	}

	resolved, err := client.ContentType(file, contentType)
	if err != nil {
		return err
	}

	result, err := client.New(apiURL, token, nil).Upload(ctx, file, resolved)
	if err != nil {
		return err
	}

	if result.Duplicate {
		fmt.Fprintf(stdout, "duplicate %s\n", result.ID)
		return nil
	}
	fmt.Fprintf(stdout, "uploaded %s\n", result.ID)
	return nil
}
