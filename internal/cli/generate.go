package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Rokon-556/recipe-gen/internal/logger"
	"github.com/Rokon-556/recipe-gen/pkg/errutils"
	"github.com/Rokon-556/recipe-gen/pkg/fsutil"
	"github.com/Rokon-556/recipe-gen/pkg/recipe"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type generateOptions struct {
	brand       string
	cuisine     string
	ingredients []string
	steps       []string
	export      bool
	outDir      string
	manifestOut string
}

// NewGenerateCmd creates the generate command.
func NewGenerateCmd() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate NAME",
		Short: "Generate recipe images with the recipe service",
		Long: `Ask the recipe service for a recipe and its images.

With --cuisine the service generates the ingredient list, one image per
ingredient, one image per --step and a picture of the finished dish.
With --ingredient (repeatable, name:quantity:unit) only the final image is
generated from the given ingredients.`,
		Example: `  recipe-gen generate "Pad Thai" --brand Acme --cuisine latin --export
  recipe-gen generate Toast --brand Acme --ingredient bread:2:slices --ingredient butter`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.brand, "brand", "", "brand name used in exported file names")
	cmd.Flags().StringVar(&opts.cuisine, "cuisine", "", "cuisine of the recipe (chinese, japanese, latin, italian, continental, indian)")
	cmd.Flags().StringArrayVar(&opts.ingredients, "ingredient", nil, "ingredient as name:quantity:unit (repeatable)")
	cmd.Flags().StringArrayVar(&opts.steps, "step", nil, "preparation step to illustrate (repeatable, in order)")
	cmd.Flags().BoolVar(&opts.export, "export", false, "export all generated images into an archive")
	cmd.Flags().StringVar(&opts.outDir, "out", "", "save the archive into this directory instead of the configured storage")
	cmd.Flags().StringVar(&opts.manifestOut, "manifest-out", "", "write an export manifest for the generated images to this file")
	cmd.MarkFlagsMutuallyExclusive("cuisine", "ingredient")
	cmd.MarkFlagsMutuallyExclusive("step", "ingredient")

	return cmd
}

func runGenerate(cmd *cobra.Command, name string, opts generateOptions) error {
	if opts.cuisine == "" && len(opts.ingredients) == 0 {
		return errutils.NewValidationError("cuisine", "either --cuisine or --ingredient is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newRecipeClient(cfg)
	if err != nil {
		return err
	}
	builder := recipe.NewBuilder(client, cfg.Export.MaxConcurrent)

	var r recipe.Recipe
	if len(opts.ingredients) > 0 {
		ingredients := make([]recipe.Ingredient, 0, len(opts.ingredients))
		for _, s := range opts.ingredients {
			ing, err := recipe.ParseIngredient(s)
			if err != nil {
				return err
			}
			ingredients = append(ingredients, ing)
		}
		r, err = builder.BuildManualRecipe(cmd.Context(), name, opts.brand, ingredients)
	} else {
		cuisine, parseErr := recipe.ParseCuisine(opts.cuisine)
		if parseErr != nil {
			return parseErr
		}
		r, err = builder.BuildRecipe(cmd.Context(), name, opts.brand, cuisine, opts.steps)
	}
	if err != nil {
		return err
	}
	logger.Info("Recipe generated", logger.Fields{"recipe": r.Name, "id": r.ID, "steps": len(r.Steps)})

	out := cmd.OutOrStdout()
	printRecipe(out, r)

	if opts.manifestOut != "" {
		if err := writeManifest(opts.manifestOut, r); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "Manifest written to %s\n", opts.manifestOut)
	}

	if !opts.export {
		return nil
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

	res, err := exp.ExportAll(cmd.Context(), r.ExportRequest())
	printBatchResult(out, res)
	return err
}

func printRecipe(w io.Writer, r recipe.Recipe) {
	req := r.ExportRequest()
	labels := make([]string, 0, len(req.Items))
	for _, ing := range r.Ingredients {
		labels = append(labels, ing.String())
	}
	labels = append(labels, "final dish")
	for _, s := range r.Steps {
		labels = append(labels, fmt.Sprintf("step %d: %s", s.Number, s.Description))
	}

	rows := make([][]string, 0, len(req.Items))
	for i, item := range req.Items {
		url := item.SourceLocator
		if url == "" {
			url = "-"
		}
		rows = append(rows, []string{strconv.Itoa(item.SequencePosition), labels[i], url})
	}
	_, _ = fmt.Fprintf(w, "%s (%s)\n", r.Name, r.ID)
	_, _ = fmt.Fprintln(w, renderTable([]string{"STEP", "ITEM", "IMAGE URL"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft}))
}

func writeManifest(path string, r recipe.Recipe) error {
	data, err := yaml.Marshal(r.ExportRequest())
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := fsutil.EnsureFileDir(path); err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, data, fsutil.FileModeDefault)
}
