package command

import (
	"fmt"
	"text/tabwriter"

	"github.com/frantjc/alticon"
	"github.com/frantjc/alticon/internal/alticonblob"
	"github.com/frantjc/alticon/internal/config"
	"github.com/frantjc/alticon/internal/iconset"
	"github.com/frantjc/alticon/ios"
	"github.com/spf13/cobra"
)

// NewAlticon returns the root command for
// alticon which acts as its CLI entrypoint.
func NewAlticon() *cobra.Command {
	cmd := SetCommon(&cobra.Command{
		Use:   "alticon",
		Short: "Keep an Xcode project's alternate app icons in sync",
	}, alticon.SemVer())

	cmd.AddCommand(newSync(), newDiscover(), newSizes())

	return cmd
}

func newSync() *cobra.Command {
	var (
		cfgFile string
		flags   = config.New()
		cmd     = &cobra.Command{
			Use:   "sync",
			Short: "Synchronize icon sets, Info.plist and project.pbxproj with the source images",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				var (
					ctx = cmd.Context()
					log = alticon.LoggerFrom(ctx)
					cfg = config.New()
				)

				if cfgFile != "" {
					if err := cfg.Load(cfgFile); err != nil {
						return err
					}
				}

				if err := cfg.ParseEnv(); err != nil {
					return err
				}

				for name, dst := range map[string]*string{
					"icons":      &cfg.Icons,
					"assets":     &cfg.Assets,
					"info-plist": &cfg.InfoPlist,
					"pbxproj":    &cfg.PBXProj,
					"primary":    &cfg.Primary,
				} {
					if cmd.Flags().Changed(name) {
						*dst = cmd.Flag(name).Value.String()
					}
				}

				if cmd.Flags().Changed("mode") {
					cfg.Mode = ios.Mode(cmd.Flag("mode").Value.String())
				}

				if err := cfg.Validate(); err != nil {
					return err
				}

				opts := &alticon.SyncOpts{
					Mode:            cfg.Mode,
					AssetsDir:       cfg.Assets,
					InfoPlist:       cfg.InfoPlist,
					PBXProj:         cfg.PBXProj,
					PrimaryIconName: cfg.Primary,
				}

				if cfg.Mode != alticon.ModeRemoveAll {
					log.V(1).Info("opening bucket " + cfg.Icons)
					bucket, err := alticonblob.OpenBucket(ctx, cfg.Icons)
					if err != nil {
						return err
					}
					defer bucket.Close()

					opts.Sources = bucket
				}

				report, err := alticon.Sync(ctx, opts)
				if err != nil {
					return err
				}

				for _, name := range report.AlternateIconNames {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}

				return nil
			},
		}
	)

	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "YAML file to read configuration from")
	cmd.Flags().StringVar(&flags.Icons, "icons", "", "Directory or blob URL holding the source images")
	cmd.Flags().StringVar(&flags.Assets, "assets", "", "Asset catalog holding the icon sets")
	cmd.Flags().StringVar(&flags.InfoPlist, "info-plist", "", "Info.plist to register alternate icons in")
	cmd.Flags().StringVar(&flags.PBXProj, "pbxproj", "", "project.pbxproj or .xcodeproj to patch build settings in")
	cmd.Flags().StringVar((*string)(&flags.Mode), "mode", string(flags.Mode), "One of add, replace or remove-all")
	cmd.Flags().StringVar(&flags.Primary, "primary", flags.Primary, "Name of the primary icon set")

	return cmd
}

func newDiscover() *cobra.Command {
	return &cobra.Command{
		Use:   "discover ASSETS",
		Short: "List the icon sets in an asset catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs, err := iconset.Discover(args[0])
			if err != nil {
				return err
			}

			for _, dir := range dirs {
				fmt.Fprintln(cmd.OutOrStdout(), dir)
			}

			return nil
		},
	}
}

func newSizes() *cobra.Command {
	return &cobra.Command{
		Use:   "sizes",
		Short: "List the icon sizes that every icon set is resampled to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SIZE\tSCALE\tPIXELS\tFILENAME")

			for _, size := range ios.AppIconSizes() {
				w, h, err := size.Pixels()
				if err != nil {
					return err
				}

				var (
					scale    = size.Scale
					filename = size.Filename()
				)
				if size.IsSource() {
					scale = "-"
					filename = "(source)"
				}

				fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%s\n", size.Size(), scale, w, h, filename)
			}

			return tw.Flush()
		},
	}
}
