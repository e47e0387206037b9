// Package resources handles embedded resources for the application.
package resources

import (
	"bytes"
	"embed"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed icons
var embeddedFiles embed.FS

// GetIconData returns the raw icon data as bytes for use with system tray.
func GetIconData() ([]byte, error) {
	iconData, err := embeddedFiles.ReadFile("icons/xscribe.png")
	if err != nil {
		iconData, err = embeddedFiles.ReadFile("icons/fallback.png")
		if err != nil {
			return nil, err
		}
	}
	return iconData, nil
}

// GetRedIconData returns a red-tinted version of the icon for the
// recording state.
func GetRedIconData() ([]byte, error) {
	iconData, err := GetIconData()
	if err != nil {
		return nil, err
	}

	img, err := png.Decode(bytes.NewReader(iconData))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	redIcon := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			r8 := uint8(r >> 8)
			g8 := uint8(g >> 8)
			b8 := uint8(b >> 8)
			a8 := uint8(a >> 8)
			redIcon.Set(x, y, color.RGBA{
				R: r8,
				G: uint8(float32(g8) * 0.5),
				B: uint8(float32(b8) * 0.5),
				A: a8,
			})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, redIcon); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExtractIcon extracts the application icon to targetPath.
func ExtractIcon(targetPath string) error {
	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return err
	}
	iconData, err := GetIconData()
	if err != nil {
		return err
	}
	return os.WriteFile(targetPath, iconData, 0o644)
}

// ExtractDesktopFile extracts the desktop entry file to targetPath,
// pointing its Exec= line at execPath.
func ExtractDesktopFile(targetPath, execPath string) error {
	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return err
	}

	desktopData, err := embeddedFiles.ReadFile("desktop/xscribe.desktop")
	if err != nil {
		desktopData = []byte(`[Desktop Entry]
Type=Application
Name=xscribe
Comment=Real-time voice dictation
Exec=` + execPath + `
Icon=xscribe
Terminal=false
Categories=Utility;Audio;`)
	} else {
		desktopData = []byte(replaceExecPath(string(desktopData), execPath))
	}

	return os.WriteFile(targetPath, desktopData, 0o644)
}

func replaceExecPath(content, execPath string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "Exec=") {
			lines[i] = "Exec=" + execPath
			break
		}
	}
	return strings.Join(lines, "\n")
}

// ListEmbeddedFiles returns every embedded file's path.
func ListEmbeddedFiles() ([]string, error) {
	var files []string
	err := fs.WalkDir(embeddedFiles, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
