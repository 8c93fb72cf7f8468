package recording

import (
	"fmt"
	"os/exec"
	"strings"
)

// VideoResolution asks ffprobe for the resolution of an encoded video,
// as "WxH". Used to verify render output after encoding.
func VideoResolution(path string) (string, error) {
	cmd := exec.Command("ffprobe", "-v", "error", "-select_streams", "v:0",
		"-show_entries", "stream=width,height", "-of", "csv=s=x:p=0", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffprobe failed for %s: %w", path, err)
	}
	return strings.TrimSpace(string(out)), nil
}
