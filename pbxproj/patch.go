package pbxproj

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/frantjc/alticon/internal/alticonerr"
	"github.com/frantjc/alticon/internal/alticonutil"
	"github.com/go-logr/logr"
)

const (
	// ProjectName is the name of the build configuration
	// file inside of an .xcodeproj.
	ProjectName = "project.pbxproj"
)

const (
	KeyIncludeAllAppIconAssets = "ASSETCATALOG_COMPILER_INCLUDE_ALL_APPICON_ASSETS"
	KeyAlternateAppIconNames   = "ASSETCATALOG_COMPILER_ALTERNATE_APPICON_NAMES"
)

var (
	buildSettingsStart = regexp.MustCompile(`^\s*buildSettings\s*=\s*\{`)
	managedKey         = regexp.MustCompile(`^\s*"?(` + KeyIncludeAllAppIconAssets + `|` + KeyAlternateAppIconNames + `)"?\s*=`)
)

type line struct {
	text   []byte
	ending []byte
}

func (l line) indent() []byte {
	return l.text[:len(l.text)-len(bytes.TrimLeft(l.text, " \t"))]
}

func (l line) raw() []byte {
	return append(append([]byte{}, l.text...), l.ending...)
}

// splitLines splits b into lines, keeping each line's ending
// ("\n", "\r\n" or none for the last line) so it can be reproduced exactly.
func splitLines(b []byte) []line {
	lines := []line{}

	for len(b) > 0 {
		i := bytes.IndexByte(b, '\n')
		if i < 0 {
			lines = append(lines, line{text: b})
			break
		}

		text, ending := b[:i], b[i:i+1]
		if i > 0 && b[i-1] == '\r' {
			text, ending = b[:i-1], b[i-1:i+1]
		}

		lines = append(lines, line{text: text, ending: ending})
		b = b[i+1:]
	}

	return lines
}

// scanner tracks nesting depth through pbxproj text,
// ignoring everything inside of quoted strings and comments.
type scanner struct {
	depth     int
	inString  bool
	escaped   bool
	inComment bool
}

// visit calls fn with each byte of text that is outside of quoted strings
// and comments, stopping at a line comment or when fn returns false.
func (s *scanner) visit(text []byte, fn func(int, byte) bool) {
	for i := 0; i < len(text); i++ {
		c := text[i]

		switch {
		case s.inComment:
			if c == '*' && i+1 < len(text) && text[i+1] == '/' {
				s.inComment = false
				i++
			}
		case s.inString:
			switch {
			case s.escaped:
				s.escaped = false
			case c == '\\':
				s.escaped = true
			case c == '"':
				s.inString = false
			}
		case c == '"':
			s.inString = true
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			s.inComment = true
			i++
		case c == '/' && i+1 < len(text) && text[i+1] == '/':
			return
		default:
			if !fn(i, c) {
				return
			}
		}
	}
}

// scan consumes text and returns the index of the '}' that
// brought the brace depth back to zero, or -1.
func (s *scanner) scan(text []byte) int {
	end := -1

	s.visit(text, func(i int, c byte) bool {
		switch c {
		case '{':
			s.depth++
		case '}':
			s.depth--
			if s.depth == 0 {
				end = i
				return false
			}
		}

		return true
	})

	return end
}

// terminator consumes text and returns the index of the ';' that ends
// a setting, skipping those inside of a parenthesized list, or -1.
func (s *scanner) terminator(text []byte) int {
	end := -1

	s.visit(text, func(i int, c byte) bool {
		switch c {
		case '(':
			s.depth++
		case ')':
			s.depth--
		case ';':
			if s.depth <= 0 {
				end = i
				return false
			}
		}

		return true
	})

	return end
}

// Quote renders names as the quoted, space-separated value of
// ASSETCATALOG_COMPILER_ALTERNATE_APPICON_NAMES.
func Quote(names []string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(strings.Join(names, " ")) + `"`
}

func managedLines(indent, ending []byte, names []string) []line {
	return []line{
		{
			text:   fmt.Appendf(append([]byte{}, indent...), "%s = YES;", KeyIncludeAllAppIconAssets),
			ending: ending,
		},
		{
			text:   fmt.Appendf(append([]byte{}, indent...), "%s = %s;", KeyAlternateAppIconNames, Quote(names)),
			ending: ending,
		},
	}
}

// statementEnd returns the line and offset of the ';' that terminates the
// setting starting at lines[from], which may span several lines when its
// value is a parenthesized list. It does not look past to.
func statementEnd(lines []line, from, to int) (int, int, bool) {
	s := &scanner{}

	for k := from; k < to; k++ {
		if j := s.terminator(lines[k].text); j >= 0 {
			return k, j, true
		}
	}

	return 0, 0, false
}

// Patch sets the two alternate app icon build settings in every buildSettings
// block of the pbxproj in b, replacing any previous declaration of them inside
// of the block. Every other byte of b is preserved. It returns the patched
// pbxproj and the number of blocks patched.
func Patch(names []string, b []byte) ([]byte, int, error) {
	var (
		lines  = splitLines(b)
		out    = new(bytes.Buffer)
		blocks = 0
	)
	out.Grow(len(b) + 256)

	for i := 0; i < len(lines); i++ {
		loc := buildSettingsStart.FindIndex(lines[i].text)
		if loc == nil {
			out.Write(lines[i].raw())
			continue
		}

		var (
			open    = loc[1] - 1
			s       = &scanner{}
			end     = -1
			closeAt = -1
		)
		for j := i; j < len(lines); j++ {
			text := lines[j].text
			if j == i {
				text = text[open:]
			}

			if k := s.scan(text); k >= 0 {
				end = j
				closeAt = k
				if j == i {
					closeAt += open
				}
				break
			}
		}

		if end < 0 {
			return nil, 0, alticonerr.New(alticonerr.KindBuildFileRead, fmt.Errorf("unterminated buildSettings block at line %d", i+1))
		}

		blocks++

		if end == i {
			// An empty block written on one line, "buildSettings = {};".
			if inner := bytes.TrimSpace(lines[i].text[open+1 : closeAt]); len(inner) > 0 {
				return nil, 0, alticonerr.New(alticonerr.KindBuildFileRead, fmt.Errorf("unsupported single-line buildSettings block at line %d", i+1))
			}

			var (
				indent = lines[i].indent()
				ending = lines[i].ending
			)
			if len(ending) == 0 {
				ending = []byte("\n")
			}

			out.Write(lines[i].text[:open+1])
			out.Write(ending)
			for _, l := range managedLines(append(append([]byte{}, indent...), '\t'), ending, names) {
				out.Write(l.raw())
			}
			out.Write(indent)
			out.Write(lines[i].text[closeAt:])
			out.Write(lines[i].ending)
			continue
		}

		out.Write(lines[i].raw())

		var indent []byte
		for k := i + 1; k < end; k++ {
			if managedKey.Match(lines[k].text) {
				last, semi, ok := statementEnd(lines, k, end)
				if !ok {
					return nil, 0, alticonerr.New(alticonerr.KindBuildFileRead, fmt.Errorf("unterminated setting at line %d", k+1))
				}

				// Anything after the setting on its last line is kept.
				if rest := bytes.TrimSpace(lines[last].text[semi+1:]); len(rest) > 0 {
					if indent == nil {
						indent = lines[k].indent()
					}

					out.Write(lines[k].indent())
					out.Write(rest)
					out.Write(lines[last].ending)
				}

				k = last
				continue
			}

			if indent == nil && len(bytes.TrimSpace(lines[k].text)) > 0 {
				indent = lines[k].indent()
			}

			out.Write(lines[k].raw())
		}

		if indent == nil {
			indent = append(append([]byte{}, lines[i].indent()...), '\t')
		}

		ending := lines[end].ending
		if len(ending) == 0 {
			ending = lines[i].ending
		}

		for _, l := range managedLines(indent, ending, names) {
			out.Write(l.raw())
		}

		out.Write(lines[end].raw())
		i = end
	}

	return out.Bytes(), blocks, nil
}

// PatchFile is Patch for the pbxproj at name. The file is replaced
// atomically, and only if patching changed it.
func PatchFile(ctx context.Context, names []string, name string) (int, error) {
	log := logr.FromContextOrDiscard(ctx)

	b, err := os.ReadFile(name)
	if err != nil {
		return 0, alticonerr.New(alticonerr.KindBuildFileRead, fmt.Errorf("read %s: %w", name, err))
	}

	patched, blocks, err := Patch(names, b)
	if err != nil {
		return 0, fmt.Errorf("patch %s: %w", name, err)
	}

	if blocks == 0 {
		log.Info("no buildSettings blocks found", "name", name)
		return 0, nil
	}

	if bytes.Equal(b, patched) {
		log.V(1).Info("build settings already up to date", "name", name, "blocks", blocks)
		return blocks, nil
	}

	if err = alticonutil.WriteBytes(name, patched, 0o644); err != nil {
		return 0, alticonerr.New(alticonerr.KindBuildFileWrite, fmt.Errorf("write %s: %w", name, err))
	}

	log.Info("patched build settings", "blocks", blocks, KeyAlternateAppIconNames, Quote(names))

	return blocks, nil
}
