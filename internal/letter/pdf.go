package letter

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var chromiumCandidates = []string{
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
}

// findChromium returns the first chromium-like binary on PATH, or the
// explicit override when one is configured.
func findChromium(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	for _, name := range chromiumCandidates {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no chromium binary found (tried %s)", strings.Join(chromiumCandidates, ", "))
}

// RenderPDF prints the rendered letter HTML to a PDF with headless
// chromium. The HTML is staged in a temp file since chromium needs a
// file URL.
func RenderPDF(html, outPath, chromiumPath string) error {
	bin, err := findChromium(chromiumPath)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "letter-*.html")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(html); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	cmd := exec.Command(bin,
		"--headless",
		"--disable-gpu",
		"--no-sandbox",
		"--no-pdf-header-footer",
		"--print-to-pdf="+outPath,
		"file://"+tmp.Name(),
	)
	var errBuf bytes.Buffer
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("chromium print-to-pdf: %w: %s", err, strings.TrimSpace(errBuf.String()))
	}

	if fi, err := os.Stat(outPath); err != nil || fi.Size() == 0 {
		return fmt.Errorf("chromium produced no PDF at %s", outPath)
	}
	return nil
}
