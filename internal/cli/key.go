package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-loader-mcp/internal/descriptor"
	"github.com/ironsheep/image-loader-mcp/internal/loader"
	"github.com/ironsheep/image-loader-mcp/internal/transform"
)

func newKeyCmd(a *app) *cobra.Command {
	var (
		kind      string
		steps     string
		canonical bool
	)

	cmd := &cobra.Command{
		Use:   "key <data>",
		Short: "Print the cache key of a string, URL or file",
		Example: `  image-loader-mcp key abc
  image-loader-mcp key --kind url "https://example.com/a.png?w=10"
  image-loader-mcp key --kind file photo.jpg --steps '[{"op":"crop_center","width":64,"height":64}]'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps != "" && kind != "file" {
				return errors.New("--steps requires --kind file")
			}

			var data descriptor.Canonical
			switch kind {
			case "string":
				data = descriptor.String(args[0])
			case "url":
				u, err := descriptor.ParseURL(args[0])
				if err != nil {
					return err
				}
				data = u
			case "file":
				pipeline, err := parseSteps(steps)
				if err != nil {
					return err
				}
				req, err := loader.NewRequest(args[0], pipeline)
				if err != nil {
					return err
				}
				data = req
			default:
				return fmt.Errorf("unknown kind %q (want string, url or file)", kind)
			}
			d, err := descriptor.New(data)
			if err != nil {
				return err
			}
			a.logger.Debug("computed key", "descriptor", d.String())

			out := cmd.OutOrStdout()
			if canonical {
				fmt.Fprintln(out, data.CanonicalString())
			}
			fmt.Fprintln(out, d.Key())
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "string", "how to interpret data: string, url or file")
	cmd.Flags().StringVar(&steps, "steps", "", "JSON step list (file kind only)")
	cmd.Flags().BoolVar(&canonical, "canonical", false, "also print the canonical form")
	return cmd
}

// parseSteps decodes and validates a JSON step list. Empty input is an empty
// pipeline.
func parseSteps(s string) (transform.Pipeline, error) {
	if s == "" {
		return nil, nil
	}
	var p transform.Pipeline
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, fmt.Errorf("invalid --steps: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid --steps: %w", err)
	}
	return p, nil
}
