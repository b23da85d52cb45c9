package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/shodgson/prosemirror-numbering/internal/config"
	"github.com/shodgson/prosemirror-numbering/internal/render"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Convert a document and number its list items",
	Long: `Render reads a document (HTML, Markdown or JSON), renumbers its list
items and writes it as HTML, Markdown, JSON or Notion blocks. The document is
read from stdin when no file is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().String("from", "", "input format: html, markdown or json (default from the file extension)")
	renderCmd.Flags().String("to", "html", "output format: html, markdown, json or notion")
	renderCmd.Flags().StringP("out", "o", "", "output file (default stdout)")
	renderCmd.Flags().Bool("watch", false, "render again each time the input file changes")
	renderCmd.Flags().Bool("tight", false, "render Markdown list items without blank lines between them")
	_ = viper.BindPFlag("render.tight_lists", renderCmd.Flags().Lookup("tight"))
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	r, err := render.New(cfg.Render)
	if err != nil {
		return err
	}

	var input string
	if len(args) > 0 {
		input = args[0]
	}
	fromName, _ := cmd.Flags().GetString("from")
	from := render.FormatOf(input)
	if fromName != "" {
		if from, err = render.ParseFormat(fromName); err != nil {
			return err
		}
	}
	toName, _ := cmd.Flags().GetString("to")
	to, err := render.ParseFormat(toName)
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")

	run := func() error {
		data, err := readInput(cmd.InOrStdin(), input)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := r.Convert(from, to, data, &buf); err != nil {
			return err
		}
		if out == "" {
			_, err = cmd.OutOrStdout().Write(buf.Bytes())
			return err
		}
		if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
		slog.Info("rendered", "input", input, "output", out, "from", from, "to", to)
		return nil
	}
	if err := run(); err != nil {
		return err
	}

	watch, _ := cmd.Flags().GetBool("watch")
	if !watch {
		return nil
	}
	if input == "" {
		return fmt.Errorf("--watch needs an input file")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	slog.Info("watching", "file", input)
	return render.Watch(ctx, input, run)
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
