package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/gopxl/beep/wav"
)

// Export writes recipe r as a 16-bit stereo WAV at rate, scaled by volume
func Export(w io.WriteSeeker, r Recipe, rate int, volume float64) error {
	buf, err := renderBuffer(r, rate)
	if err != nil {
		return err
	}
	s := newVolume(buf.Streamer(0, buf.Len()), volume)
	if err := wav.Encode(w, s, audioFormat(rate)); err != nil {
		return fmt.Errorf("encode %q: %w", r.Name, err)
	}
	return nil
}

// ExportFile writes recipe r to path, replacing any existing file
func ExportFile(path string, r Recipe, rate int, volume float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Export(f, r, rate, volume); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
