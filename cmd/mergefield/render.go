package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-mergefield/pkg/mergefield"
)

type renderFlags struct {
	data     string
	schema   string
	output   string
	imageDir string
	keyword  string
	sequence string
	lenient  bool
	watch    bool
}

func newRenderCmd() *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render <template.docx>",
		Short: "Render a template with data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := newRenderJob(args[0], f, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if !f.watch {
				return job.run()
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return job.watch(ctx)
		},
	}

	cmd.Flags().StringVarP(&f.data, "data", "d", "", "YAML or JSON data file")
	cmd.Flags().StringVar(&f.schema, "schema", "", "JSON schema (JSON or YAML) the data must satisfy")
	cmd.Flags().StringVarP(&f.output, "output", "o", "output.docx", `Output file, "-" for stdout`)
	cmd.Flags().StringVar(&f.imageDir, "image-dir", "", "Directory <img> sources are resolved in (default: the template's directory)")
	cmd.Flags().StringVar(&f.keyword, "keyword", "", "Field code that marks template commands (default MERGEFIELD)")
	cmd.Flags().StringVar(&f.sequence, "caption-sequence", "", "SEQ name used to number image captions (default Figure)")
	cmd.Flags().BoolVar(&f.lenient, "lenient-styles", false, "Accept rich-text styles missing from the template")
	cmd.Flags().BoolVarP(&f.watch, "watch", "w", false, "Render again whenever the template, data or schema changes")
	return cmd
}

// renderJob renders one template to one output.
type renderJob struct {
	template string
	flags    renderFlags
	engine   *mergefield.Engine
	stdout   io.Writer
}

func newRenderJob(template string, f renderFlags, stdout io.Writer) (*renderJob, error) {
	if f.watch && f.output == "-" {
		return nil, fmt.Errorf("--watch needs an output file")
	}

	config := mergefield.GetGlobalConfig()
	if f.keyword != "" {
		config.FieldKeyword = f.keyword
	}
	if f.sequence != "" {
		config.CaptionSequence = f.sequence
	}
	if f.lenient {
		config.StrictStyles = false
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	imageDir := f.imageDir
	if imageDir == "" {
		imageDir = filepath.Dir(template)
	}
	engine := mergefield.New(
		mergefield.WithConfig(config),
		mergefield.WithDefaultRenderOptions(mergefield.WithImageProviders(
			mergefield.DataURIImages(),
			mergefield.FileImages(imageDir),
		)),
	)
	return &renderJob{template: template, flags: f, engine: engine, stdout: stdout}, nil
}

func (j *renderJob) run() error {
	data, err := loadData(j.flags.data)
	if err != nil {
		return err
	}
	if j.flags.schema != "" {
		if err := validateData(j.flags.schema, data); err != nil {
			return err
		}
	}

	tmpl, err := j.engine.PrepareFile(j.template)
	if err != nil {
		return err
	}
	out, err := tmpl.Render(data)
	if err != nil {
		return err
	}

	if j.flags.output == "-" {
		_, err = io.Copy(j.stdout, out)
		return err
	}
	return writeFile(j.flags.output, out)
}

// writeFile replaces path with the content of r through a temporary file in
// the same directory.
func writeFile(path string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".mergefield-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// inputs lists the files a watch reacts to.
func (j *renderJob) inputs() []string {
	var files []string
	for _, f := range []string{j.template, j.flags.data, j.flags.schema} {
		if f != "" {
			files = append(files, f)
		}
	}
	return files
}

func (j *renderJob) watch(ctx context.Context) error {
	j.report(j.run())
	return watchFiles(ctx, j.inputs(), func(name string) {
		mergefield.Info("%s changed, rendering %s", name, j.flags.output)
		j.report(j.run())
	})
}

// report logs the outcome of a render in watch mode.
func (j *renderJob) report(err error) {
	if err != nil {
		mergefield.WithField("template", j.template).Error("render failed: %v", err)
		return
	}
	mergefield.Info("wrote %s", j.flags.output)
}
