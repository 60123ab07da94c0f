// Command bramble inspects bramble engine configuration.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/phanxgames/bramble"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool
	root := &cobra.Command{
		Use:           "bramble",
		Short:         "Inspect bramble engine configuration",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			bramble.SetDebugMode(debug)
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	root.AddCommand(
		newValidateCmd(),
		newPoolCmd(),
	)
	return root
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "validate [config]",
		Short:   "Load a YAML or JSON engine config and report problems",
		Example: "bramble validate game.yaml",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bramble.LoadConfigFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %dx%d, %d layers", cfg.Title, cfg.Width, cfg.Height, cfg.Layers)
			if len(cfg.CameraFixedLayers) > 0 {
				fmt.Fprintf(out, ", camera-fixed %v", cfg.CameraFixedLayers)
			}
			fmt.Fprintf(out, ", frame delay %d\n", cfg.FrameDelay)
			for _, s := range cfg.Sheets {
				fmt.Fprintf(out, "  sheet %s: %s (%dx%d)\n", s.Name, s.Path, s.TileWidth, s.TileHeight)
			}
			return nil
		},
	}
}

func newPoolCmd() *cobra.Command {
	var view, tile string
	cmd := &cobra.Command{
		Use:     "pool",
		Short:   "Print the tilemap primitive pool size for a viewport",
		Example: "bramble pool --view 320x240 --tile 16x16",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vw, vh, err := parseSize(view)
			if err != nil {
				return errors.Wrap(err, "--view")
			}
			tw, th, err := parseSize(tile)
			if err != nil {
				return errors.Wrap(err, "--tile")
			}
			n := bramble.PoolSize(float64(vw), float64(vh), tw, th)
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&view, "view", "320x240", "viewport size in pixels")
	cmd.Flags().StringVar(&tile, "tile", "16x16", "tile size in pixels")
	return cmd
}

// parseSize parses "WxH" into two positive integers.
func parseSize(s string) (w, h int, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, errors.Errorf("size %q is not WxH", s)
	}
	if w, err = strconv.Atoi(ws); err != nil {
		return 0, 0, errors.Wrapf(err, "size %q", s)
	}
	if h, err = strconv.Atoi(hs); err != nil {
		return 0, 0, errors.Wrapf(err, "size %q", s)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, errors.Errorf("size %q must be positive", s)
	}
	return w, h, nil
}
