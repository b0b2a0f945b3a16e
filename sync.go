package alticon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/frantjc/alticon/internal/alticonerr"
	"github.com/frantjc/alticon/internal/iconset"
	"github.com/frantjc/alticon/ios"
	"github.com/frantjc/alticon/pbxproj"
	"github.com/google/uuid"
	"github.com/opencontainers/go-digest"
	"gocloud.dev/blob"
)

type Mode = ios.Mode

const (
	ModeAdd       = ios.ModeAdd
	ModeReplace   = ios.ModeReplace
	ModeRemoveAll = ios.ModeRemoveAll
)

func ParseMode(s string) (Mode, error) {
	return ios.ParseMode(s)
}

const (
	DefaultPrimaryIconName = "AppIcon"
)

// SyncOpts are the inputs to a synchronization run.
type SyncOpts struct {
	Mode Mode
	// Sources holds the source images, one per alternate icon.
	// It is not read in ModeRemoveAll.
	Sources *blob.Bucket
	// AssetsDir is the asset catalog that holds the icon sets,
	// e.g. "Seasons/Assets.xcassets".
	AssetsDir string
	// InfoPlist is the path to the app's Info.plist.
	InfoPlist string
	// PBXProj is the path to the project's project.pbxproj.
	PBXProj string
	// PrimaryIconName names the app's primary icon set, which is never
	// removed and never registered as an alternate icon. Defaults to AppIcon.
	PrimaryIconName string
}

// Report describes the state of the project after a successful run.
type Report struct {
	RunID              string                   `json:"runID"`
	Mode               Mode                     `json:"mode"`
	AlternateIconNames []string                 `json:"alternateIconNames"`
	IconSets           []string                 `json:"iconSets"`
	Digests            map[string]digest.Digest `json:"digests"`
}

func validate(opts *SyncOpts) error {
	if opts == nil {
		return alticonerr.New(alticonerr.KindInputValidation, fmt.Errorf("nil sync options"))
	}

	switch opts.Mode {
	case ModeAdd, ModeReplace:
		if opts.Sources == nil {
			return alticonerr.New(alticonerr.KindInputValidation, fmt.Errorf("mode %s requires source images", opts.Mode))
		}
	case ModeRemoveAll:
	default:
		return alticonerr.New(alticonerr.KindInputValidation, fmt.Errorf("invalid mode %q", opts.Mode))
	}

	for flag, path := range map[string]string{
		"assets dir": opts.AssetsDir,
		"Info.plist": opts.InfoPlist,
		"pbxproj":    opts.PBXProj,
	} {
		if path == "" {
			return alticonerr.New(alticonerr.KindInputValidation, fmt.Errorf("%s is required", flag))
		}
	}

	return nil
}

// Sync brings the icon sets in opts.AssetsDir, the alternate icon registry in
// opts.InfoPlist and the build settings in opts.PBXProj into the state that
// opts.Mode describes. It stops at the first error, leaving what earlier stages
// wrote in place; every stage is idempotent, so the run can be repeated once
// the error is resolved.
func Sync(ctx context.Context, opts *SyncOpts) (*Report, error) {
	if err := validate(opts); err != nil {
		return nil, err
	}

	var (
		primary = opts.PrimaryIconName
		report  = &Report{
			RunID: uuid.NewString(),
			Mode:  opts.Mode,
		}
		log = LoggerFrom(ctx).WithValues("run", report.RunID, "mode", opts.Mode)
	)
	if primary == "" {
		primary = DefaultPrimaryIconName
	}
	ctx = WithLogger(ctx, log)

	stage := func(name string, fn func() error) error {
		log.V(1).Info("starting stage", "stage", name)

		if err := fn(); err != nil {
			log.Error(err, "stage failed", "stage", name, "kind", alticonerr.KindOf(err))
			return fmt.Errorf("%s: %w", name, err)
		}

		return nil
	}

	var names []string

	if opts.Mode == ModeReplace || opts.Mode == ModeRemoveAll {
		if err := stage("cleanup", func() error {
			_, err := iconset.Cleanup(ctx, opts.AssetsDir, primary)
			return err
		}); err != nil {
			return nil, err
		}
	}

	if opts.Mode == ModeReplace || opts.Mode == ModeAdd {
		if err := stage("materialize", func() error {
			_, err := iconset.Materialize(ctx, opts.Mode, opts.Sources, opts.AssetsDir)
			return err
		}); err != nil {
			return nil, err
		}

		if err := stage("resync", func() error {
			dirs, err := iconset.Discover(opts.AssetsDir)
			if err != nil {
				return err
			}

			log.Info("resyncing icon sets", "count", len(dirs))

			return iconset.ResyncAll(ctx, dirs)
		}); err != nil {
			return nil, err
		}

		if err := stage("collect", func() (err error) {
			names, err = iconset.SourceStems(ctx, opts.Sources, primary)
			return err
		}); err != nil {
			return nil, err
		}
	}

	if err := stage("registry", func() (err error) {
		report.AlternateIconNames, err = ios.EditAlternateIcons(ctx, opts.Mode, names, opts.InfoPlist, primary)
		return err
	}); err != nil {
		return nil, err
	}

	if err := stage("build settings", func() error {
		_, err := pbxproj.PatchFile(ctx, report.AlternateIconNames, opts.PBXProj)
		return err
	}); err != nil {
		return nil, err
	}

	if err := stage("report", func() (err error) {
		report.IconSets, report.Digests, err = digests(opts)
		return err
	}); err != nil {
		return nil, err
	}

	log.Info("synchronized alternate icons", "names", report.AlternateIconNames)

	return report, nil
}

// digests returns the digest of every artifact that Sync manages,
// keyed by its path.
func digests(opts *SyncOpts) ([]string, map[string]digest.Digest, error) {
	dirs, err := iconset.Discover(opts.AssetsDir)
	if err != nil {
		return nil, nil, err
	}

	var (
		names = []string{}
		paths = []string{opts.InfoPlist, opts.PBXProj}
		dgsts = map[string]digest.Digest{}
	)
	for _, dir := range dirs {
		names = append(names, iconset.Name(dir))
		paths = append(paths, filepath.Join(dir, ios.ContentsJSONName))
	}

	for _, path := range paths {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, alticonerr.New(alticonerr.KindFilesystem, err)
		}

		dgsts[path] = digest.FromBytes(b)
	}

	return names, dgsts, nil
}
