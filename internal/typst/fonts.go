package typst

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Font is a single discovered font file.
type Font struct {
	Path string
}

var fontExtensions = map[string]bool{
	".ttf": true,
	".otf": true,
	".ttc": true,
	".otc": true,
}

// ScanSystemFonts enumerates font files from the platform font locations
// plus any extra directories. It walks the filesystem on every call, so a
// font installed between two document generations is picked up by the next
// one. The result is sorted by path to give a stable index.
func ScanSystemFonts(extra ...string) []Font {
	var fonts []Font
	for _, dir := range append(systemFontDirs(), extra...) {
		filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return nil
			}
			if fontExtensions[strings.ToLower(filepath.Ext(path))] {
				fonts = append(fonts, Font{Path: path})
			}
			return nil
		})
	}
	sort.Slice(fonts, func(i, j int) bool { return fonts[i].Path < fonts[j].Path })
	return fonts
}

// FontDirs returns the unique parent directories of a font set, preserving
// the enumeration order.
func FontDirs(fonts []Font) []string {
	return lo.Uniq(lo.Map(fonts, func(f Font, _ int) string {
		return filepath.Dir(f.Path)
	}))
}

func systemFontDirs() []string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/System/Library/Fonts",
			"/Library/Fonts",
			filepath.Join(home, "Library", "Fonts"),
		}
	case "windows":
		windir := os.Getenv("WINDIR")
		if windir == "" {
			windir = `C:\Windows`
		}
		return []string{filepath.Join(windir, "Fonts")}
	default:
		return []string{
			"/usr/share/fonts",
			"/usr/local/share/fonts",
			filepath.Join(home, ".local", "share", "fonts"),
			filepath.Join(home, ".fonts"),
		}
	}
}
