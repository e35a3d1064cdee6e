package cli

import (
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ironsheep/image-loader-mcp/internal/loader"
)

func newTransformCmd(a *app) *cobra.Command {
	var steps string

	cmd := &cobra.Command{
		Use:   "transform <input> <output>",
		Short: "Apply transform steps to an image through the cache",
		Long: `Transform loads <input>, applies the --steps pipeline and writes the result
to <output> (format chosen by extension). The result is stored in the configured
cache, so repeating the command with the same file and steps is a cache hit.`,
		Example: `  image-loader-mcp transform in.jpg thumb.png --steps '[{"op":"crop_center","width":128,"height":128},{"op":"round_corners","radius":16}]'`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := parseSteps(steps)
			if err != nil {
				return err
			}
			req, err := loader.NewRequest(args[0], pipeline)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			l, store, err := a.newLoader(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			res, err := l.Load(ctx, req)
			if err != nil {
				return err
			}
			defer res.Raster.Release()

			if err := imaging.Save(res.Raster.Image(), args[1]); err != nil {
				return fmt.Errorf("write %s: %w", args[1], err)
			}

			a.logger.Debug("transformed", "key", res.Key, "from_cache", res.FromCache,
				"budget_in_use", humanize.IBytes(uint64(l.Engine().Budget().InUse())))

			source := "computed"
			if res.FromCache {
				source = "cached"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %dx%d %s\n", res.Key, res.Raster.Width(), res.Raster.Height(), source)
			return nil
		},
	}

	cmd.Flags().StringVarP(&steps, "steps", "s", "", "JSON step list")
	return cmd
}
