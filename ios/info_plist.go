package ios

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/frantjc/alticon/internal/alticonerr"
	"github.com/frantjc/alticon/internal/alticonutil"
	"github.com/go-logr/logr"
	"howett.net/plist"
)

const (
	InfoPlistName = "Info.plist"
)

const (
	KeyCFBundleIcons          = "CFBundleIcons"
	KeyCFBundleIconsIPad      = "CFBundleIcons~ipad"
	KeyCFBundlePrimaryIcon    = "CFBundlePrimaryIcon"
	KeyCFBundleAlternateIcons = "CFBundleAlternateIcons"
	KeyCFBundleIconFiles      = "CFBundleIconFiles"
	KeyCFBundleIconName       = "CFBundleIconName"
	KeyUIPrerenderedIcon      = "UIPrerenderedIcon"
)

// Info is the subset of an Info.plist that describes the app's icons.
type Info struct {
	CFBundleDisplayName string `plist:"CFBundleDisplayName"`
	CFBundleIdentifier  string `plist:"CFBundleIdentifier"`
	CFBundleName        string `plist:"CFBundleName"`
	CFBundleIcons       *Icons `plist:"CFBundleIcons"`
}

type Icons struct {
	CFBundlePrimaryIcon    *PrimaryIcon             `plist:"CFBundlePrimaryIcon"`
	CFBundleAlternateIcons map[string]AlternateIcon `plist:"CFBundleAlternateIcons"`
}

type PrimaryIcon struct {
	CFBundleIconFiles []string `plist:"CFBundleIconFiles"`
	CFBundleIconName  string   `plist:"CFBundleIconName"`
}

type AlternateIcon struct {
	CFBundleIconFiles []string `plist:"CFBundleIconFiles"`
	UIPrerenderedIcon bool     `plist:"UIPrerenderedIcon"`
}

// AlternateIconNames returns the sorted names of i's alternate icons.
func (i *Info) AlternateIconNames() []string {
	names := []string{}

	if i.CFBundleIcons != nil {
		for name := range i.CFBundleIcons.CFBundleAlternateIcons {
			names = append(names, name)
		}
	}

	slices.Sort(names)
	return names
}

func ReadInfo(name string) (*Info, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}

	info := &Info{}
	if err = plist.NewDecoder(bytes.NewReader(b)).Decode(info); err != nil {
		return nil, err
	}

	return info, nil
}

// EditAlternateIcons rewrites the alternate icon registry of the Info.plist
// at name according to mode and returns the registry's final names, sorted.
// Every key other than the registry is written back unchanged, in the
// Info.plist's original format.
func EditAlternateIcons(ctx context.Context, mode Mode, names []string, name, primary string) ([]string, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, alticonerr.New(alticonerr.KindMetadataParse, fmt.Errorf("read %s: %w", name, err))
	}

	b, finalNames, err := EditAlternateIconsPlist(ctx, mode, names, b, primary)
	if err != nil {
		return nil, err
	}

	if err = alticonutil.WriteBytes(name, b, 0o644); err != nil {
		return nil, alticonerr.New(alticonerr.KindMetadataWrite, fmt.Errorf("write %s: %w", name, err))
	}

	return finalNames, nil
}

// EditAlternateIconsPlist is EditAlternateIcons for an in-memory Info.plist.
func EditAlternateIconsPlist(ctx context.Context, mode Mode, names []string, b []byte, primary string) ([]byte, []string, error) {
	tree := map[string]any{}

	format, err := plist.Unmarshal(b, &tree)
	if err != nil {
		return nil, nil, alticonerr.New(alticonerr.KindMetadataParse, fmt.Errorf("parse %s: %w", InfoPlistName, err))
	}

	finalNames, err := EditAlternateIconsTree(ctx, mode, names, tree, primary)
	if err != nil {
		return nil, nil, err
	}

	out, err := plist.MarshalIndent(tree, format, "\t")
	if err != nil {
		return nil, nil, alticonerr.New(alticonerr.KindMetadataWrite, fmt.Errorf("encode %s: %w", InfoPlistName, err))
	}

	if format != plist.BinaryFormat && !bytes.HasSuffix(out, []byte("\n")) {
		out = append(out, '\n')
	}

	return out, finalNames, nil
}

// EditAlternateIconsTree edits a decoded Info.plist in place. The
// CFBundleIcons~ipad registry is kept in step when the Info.plist has one.
func EditAlternateIconsTree(ctx context.Context, mode Mode, names []string, tree map[string]any, primary string) ([]string, error) {
	switch mode {
	case ModeAdd, ModeReplace, ModeRemoveAll:
	default:
		return nil, fmt.Errorf("invalid mode %q", mode)
	}

	finalNames, err := editIcons(ctx, mode, names, tree, KeyCFBundleIcons, primary)
	if err != nil {
		return nil, err
	}

	if _, ok := tree[KeyCFBundleIconsIPad]; ok {
		if _, err := editIcons(ctx, mode, names, tree, KeyCFBundleIconsIPad, primary); err != nil {
			return nil, err
		}
	}

	return finalNames, nil
}

func editIcons(ctx context.Context, mode Mode, names []string, tree map[string]any, key, primary string) ([]string, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("key", key)

	icons, err := dict(tree, key)
	if err != nil {
		return nil, err
	}

	primaryIcon, err := dict(icons, KeyCFBundlePrimaryIcon)
	if err != nil {
		return nil, err
	}

	if _, ok := primaryIcon[KeyCFBundleIconFiles]; !ok {
		primaryIcon[KeyCFBundleIconFiles] = []any{primary}
	}

	if _, ok := primaryIcon[KeyCFBundleIconName]; !ok {
		primaryIcon[KeyCFBundleIconName] = primary
	}

	alternateIcons, err := dict(icons, KeyCFBundleAlternateIcons)
	if err != nil {
		return nil, err
	}

	switch mode {
	case ModeReplace:
		alternateIcons = map[string]any{}
		for _, name := range names {
			alternateIcons[name] = newAlternateIcon(name)
		}
	case ModeAdd:
		for _, name := range names {
			if _, ok := alternateIcons[name]; ok {
				log.Info("skipping alternate icon already in registry", "name", name)
				continue
			}

			alternateIcons[name] = newAlternateIcon(name)
			log.V(1).Info("added alternate icon", "name", name)
		}
	case ModeRemoveAll:
		alternateIcons = map[string]any{}
	}

	icons[KeyCFBundleAlternateIcons] = alternateIcons

	finalNames := make([]string, 0, len(alternateIcons))
	for name := range alternateIcons {
		finalNames = append(finalNames, name)
	}
	slices.Sort(finalNames)

	log.Info("edited alternate icon registry", "count", len(finalNames), "names", finalNames)

	return finalNames, nil
}

func newAlternateIcon(name string) map[string]any {
	return map[string]any{
		KeyCFBundleIconFiles: []any{name},
		KeyUIPrerenderedIcon: false,
	}
}

// dict returns the dictionary at parent[key], creating it if absent.
func dict(parent map[string]any, key string) (map[string]any, error) {
	v, ok := parent[key]
	if !ok {
		d := map[string]any{}
		parent[key] = d
		return d, nil
	}

	d, ok := v.(map[string]any)
	if !ok {
		return nil, alticonerr.New(alticonerr.KindMetadataParse, fmt.Errorf("%s is a %T, not a dictionary", key, v))
	}

	return d, nil
}
