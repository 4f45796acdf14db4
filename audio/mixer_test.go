package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a goroutine-safe write target
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
	err error
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return 0, b.err
	}
	return b.buf.Write(p)
}

func (b *syncBuffer) Close() error { return nil }

func (b *syncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf.Bytes()...)
}

func (b *syncBuffer) fail(err error) {
	b.mu.Lock()
	b.err = err
	b.mu.Unlock()
}

// TestFloatToBytes verifies interleaving, limiting and clipping
func TestFloatToBytes(t *testing.T) {
	in := [][2]float64{{0.5, -0.5}, {2.0, -2.0}, {0, 0}}
	out := make([]byte, len(in)*4)
	floatToBytes(in, out)

	sample := func(i, ch int) int16 {
		return int16(binary.LittleEndian.Uint16(out[i*4+ch*2:]))
	}

	half, knee := 0.5, 0.8
	if got, want := sample(0, 0), int16(half*32767); got != want {
		t.Errorf("Expected %d below knee, got %d", want, got)
	}
	if got, want := sample(0, 1), int16(-half*32767); got != want {
		t.Errorf("Expected %d on right channel, got %d", want, got)
	}
	if got := sample(1, 0); got <= int16(knee*32767) || got == 32767 {
		t.Errorf("Expected soft-limited value between knee and full scale, got %d", got)
	}
	if got := sample(1, 1); got >= int16(-knee*32767) {
		t.Errorf("Expected negative soft limit, got %d", got)
	}
	if sample(2, 0) != 0 || sample(2, 1) != 0 {
		t.Error("Expected silence to encode as zero")
	}
}

// TestMixerWritesSound verifies a queued streamer reaches the output
func TestMixerWritesSound(t *testing.T) {
	out := &syncBuffer{}
	m := NewMixer(out, 8000)
	m.Start()
	defer m.Stop()

	if !m.Play(&monoStreamer{buf: floatBuffer{0.5, 0.5, 0.5, 0.5}}) {
		t.Fatal("Expected Play to queue")
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		data := out.Bytes()
		for i := 0; i+1 < len(data); i += 2 {
			if data[i] != 0 || data[i+1] != 0 {
				played, _ := m.GetStats()
				if played != 1 {
					t.Errorf("Expected 1 played, got %d", played)
				}
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Expected non-silent output")
}

// TestMixerPipeError verifies write failures are reported once and stop the loop
func TestMixerPipeError(t *testing.T) {
	out := &syncBuffer{}
	out.fail(errors.New("broken pipe"))

	m := NewMixer(out, 8000)
	m.Start()

	select {
	case err := <-m.Errors():
		if !errors.Is(err, ErrPipeClosed) {
			t.Errorf("Expected ErrPipeClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected pipe error")
	}
	m.Stop()

	if m.Play(&monoStreamer{buf: floatBuffer{1}}) {
		t.Error("Expected Play after Stop to be rejected")
	}
}

// TestMixerStopWithoutStart verifies Stop does not block on an idle mixer
func TestMixerStopWithoutStart(t *testing.T) {
	m := NewMixer(&syncBuffer{}, 8000)
	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked")
	}
}
