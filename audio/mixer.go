package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/focus-alarm/constant"
	"github.com/lixenwraith/focus-alarm/core"
)

// Mixer sums queued streamers and writes 16-bit stereo PCM to a pipe on a fixed tick
type Mixer struct {
	output io.Writer
	rate   int

	playQueue chan beep.Streamer
	stopChan  chan struct{}
	started   atomic.Bool
	stopped   atomic.Bool
	done      chan struct{}

	// Accessed only by mix goroutine
	active []beep.Streamer

	// Stats
	statsMu sync.Mutex
	played  uint64
	dropped uint64

	// Error signaling
	errChan chan error
}

// NewMixer creates a mixer writing to out at rate
func NewMixer(out io.Writer, rate int) *Mixer {
	return &Mixer{
		output:    out,
		rate:      rate,
		playQueue: make(chan beep.Streamer, constant.AudioPlayQueueSize),
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
		active:    make([]beep.Streamer, 0, 8),
		errChan:   make(chan error, 1),
	}
}

// Start begins the mixing loop
func (m *Mixer) Start() {
	if m.started.CompareAndSwap(false, true) {
		core.Go(m.loop)
	}
}

// Stop signals the mixer to halt and waits for the loop to exit
func (m *Mixer) Stop() {
	if m.stopped.CompareAndSwap(false, true) {
		close(m.stopChan)
	}
	if m.started.Load() {
		<-m.done
	}
}

// Play queues a streamer, returns false if the queue is full or the mixer stopped
func (m *Mixer) Play(s beep.Streamer) bool {
	if m.stopped.Load() {
		return false
	}

	select {
	case m.playQueue <- s:
		return true
	default:
		m.statsMu.Lock()
		m.dropped++
		m.statsMu.Unlock()
		return false
	}
}

// Errors returns channel for pipe errors
func (m *Mixer) Errors() <-chan error {
	return m.errChan
}

// loop is the main mixing goroutine
func (m *Mixer) loop() {
	defer close(m.done)

	ticker := time.NewTicker(constant.AudioBufferDuration)
	defer ticker.Stop()

	samplesPerTick := beep.SampleRate(m.rate).N(constant.AudioBufferDuration)
	mixBuf := make([][2]float64, samplesPerTick)
	scratch := make([][2]float64, samplesPerTick)
	outBytes := make([]byte, samplesPerTick*constant.AudioBytesPerFrame)

	for {
		select {
		case <-m.stopChan:
			return

		case s := <-m.playQueue:
			m.add(s)
			// Drain additional queued requests
			m.drainQueue(4)

		case <-ticker.C:
			clear(mixBuf)
			if len(m.active) > 0 {
				m.active = m.mixActive(mixBuf, scratch)
			}
			// Silence is written too, keeping the pipe alive
			floatToBytes(mixBuf, outBytes)

			if _, err := m.output.Write(outBytes); err != nil {
				select {
				case m.errChan <- fmt.Errorf("%w: %v", ErrPipeClosed, err):
				default:
				}
				return
			}
		}
	}
}

func (m *Mixer) add(s beep.Streamer) {
	m.active = append(m.active, s)
	m.statsMu.Lock()
	m.played++
	m.statsMu.Unlock()
}

// drainQueue processes up to n additional queued requests
func (m *Mixer) drainQueue(n int) {
	for i := 0; i < n; i++ {
		select {
		case s := <-m.playQueue:
			m.add(s)
		default:
			return
		}
	}
}

// mixActive streams every active sound into buf, returns sounds that have not drained
func (m *Mixer) mixActive(buf, scratch [][2]float64) []beep.Streamer {
	remaining := m.active[:0]

	for _, s := range m.active {
		filled := 0
		drained := false
		for filled < len(scratch) {
			n, ok := s.Stream(scratch[filled:])
			for j := filled; j < filled+n; j++ {
				buf[j][0] += scratch[j][0]
				buf[j][1] += scratch[j][1]
			}
			filled += n
			if !ok {
				drained = true
				break
			}
		}
		if !drained {
			remaining = append(remaining, s)
		}
	}

	return remaining
}

// floatToBytes converts stereo float samples to interleaved int16 LE bytes
// Applies soft limiting before hard clip
func floatToBytes(in [][2]float64, out []byte) {
	for i, frame := range in {
		for ch, v := range frame {
			binary.LittleEndian.PutUint16(out[i*4+ch*2:], uint16(limitSample(v)))
		}
	}
}

// limitSample soft-limits above the knee, then hard clips to int16
func limitSample(v float64) int16 {
	knee := constant.SoftLimitKnee
	if v > knee {
		v = knee + (1-knee)*(1.0-1.0/(1.0+(v-knee)*5.0))
	} else if v < -knee {
		v = -knee - (1-knee)*(1.0-1.0/(1.0+(-v-knee)*5.0))
	}

	if v > 1.0 {
		v = 1.0
	} else if v < -1.0 {
		v = -1.0
	}
	return int16(v * 32767)
}

// GetStats returns played and dropped counts
func (m *Mixer) GetStats() (played, dropped uint64) {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	return m.played, m.dropped
}
