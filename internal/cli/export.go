package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Rokon-556/recipe-gen/pkg/errutils"
	"github.com/Rokon-556/recipe-gen/pkg/export"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type exportOptions struct {
	manifest string
	outDir   string
	folder   bool
}

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export --manifest FILE",
		Short: "Download recipe images into one archive",
		Long: `Download every image listed in a manifest and save the successful ones
as a single zip archive. Images that fail are listed by step number.

The manifest is YAML or JSON:

  recipe_name: Pad Thai
  brand_name: Acme
  images:
    - image_url: https://example.com/1.png
      step_number: 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.manifest, "manifest", "m", "", "manifest file listing the images to export")
	cmd.Flags().StringVar(&opts.outDir, "out", "", "save into this directory instead of the configured storage")
	cmd.Flags().BoolVar(&opts.folder, "folder", false, "place images in a folder named after the recipe inside the archive")
	_ = cmd.MarkFlagRequired("manifest")

	return cmd
}

func runExport(cmd *cobra.Command, opts exportOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.folder {
		cfg.Export.ArchiveFolder = true
	}

	req, err := loadManifest(opts.manifest)
	if err != nil {
		return err
	}

	exp, err := newExporter(cfg, opts.outDir)
	if err != nil {
		return err
	}
	manager, err := newHookManager(cfg)
	if err != nil {
		return err
	}
	attachHooks(exp, manager)

	res, err := exp.ExportAll(cmd.Context(), req)
	printBatchResult(cmd.OutOrStdout(), res)
	return err
}

// loadManifest reads an export request from a YAML or JSON file.
func loadManifest(path string) (export.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return export.Request{}, fmt.Errorf("failed to read manifest: %w", err)
	}

	var req export.Request
	if err := yaml.Unmarshal(data, &req); err != nil {
		return export.Request{}, errutils.NewValidationError("manifest", fmt.Sprintf("failed to parse %s: %v", path, err))
	}
	if strings.TrimSpace(req.CollectionName) == "" {
		return export.Request{}, errutils.NewValidationError("recipe_name", "is required")
	}
	return req, nil
}

func printBatchResult(w io.Writer, res export.BatchResult) {
	if res.Location != "" {
		_, _ = fmt.Fprintf(w, "Saved %d image(s) to %s\n", len(res.Saved), res.Location)
	}
	printFailures(w, res.Failures)
}
