package letter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ResumeText extracts plain text from a resume PDF using pdftotext.
func ResumeText(ctx context.Context, pdfPath string) (string, error) {
	if _, err := os.Stat(pdfPath); err != nil {
		return "", fmt.Errorf("resume: %w", err)
	}

	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", pdfPath, "-")
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext: %w: %s", err, strings.TrimSpace(errBuf.String()))
	}

	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", fmt.Errorf("pdftotext produced no text for %s", pdfPath)
	}
	return text, nil
}
