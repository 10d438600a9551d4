// Copyright 2026 The vbsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Package audio plays the values plotted on a board as sound.
//
package audio

import (
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/iclabs/vbsim/board"
	"github.com/pkg/errors"
)

const (
	// DefaultSampleRate is the playback sample rate in Hz.
	DefaultSampleRate = 8000
	// BufferSize is the number of samples buffered ahead of playback.
	BufferSize = 4096
)

// A Monitor is a board that plays one of its plot channels as unsigned 8
// bits samples, one sample per plotted point. All board.Board calls are
// forwarded to the monitored board.
//
type Monitor struct {
	board.Board

	// Channel is the index of the monitored plot channel: the Nth call to
	// Plot following a call to Cycle.
	Channel int

	mu     sync.Mutex
	ring   []uint8
	r, n   int
	last   uint8
	ch     int
	player *oto.Player
}

func newMonitor(b board.Board, size int) *Monitor {
	return &Monitor{Board: b, ring: make([]uint8, size), last: 0x80}
}

// Open starts audio playback for the given board's plots.
//
func Open(b board.Board, sampleRate int) (*Monitor, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatUnsignedInt8,
	})
	if err != nil {
		return nil, errors.Wrap(err, "audio")
	}
	<-ready
	m := newMonitor(b, BufferSize)
	m.player = ctx.NewPlayer(m)
	m.player.Play()
	return m, nil
}

// Plot implements board.Board.
//
func (m *Monitor) Plot(v, min, max int) {
	m.Board.Plot(v, min, max)
	if m.ch == m.Channel {
		m.push(sample(v, min, max))
	}
	m.ch++
}

// Cycle implements board.Board.
//
func (m *Monitor) Cycle(n int) {
	m.ch = 0
	m.Board.Cycle(n)
}

func sample(v, min, max int) uint8 {
	if max <= min {
		return 0x80
	}
	if v < min {
		v = min
	} else if v > max {
		v = max
	}
	return uint8((v - min) * 255 / (max - min))
}

// push adds a sample. The oldest sample is dropped when the buffer is full.
//
func (m *Monitor) push(s uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := (m.r + m.n) % len(m.ring)
	m.ring[w] = s
	if m.n < len(m.ring) {
		m.n++
	} else {
		m.r = (m.r + 1) % len(m.ring)
	}
}

// Read implements io.Reader for the audio player. When no samples are
// available, the last sample is repeated.
//
func (m *Monitor) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range p {
		if m.n > 0 {
			m.last = m.ring[m.r]
			m.r = (m.r + 1) % len(m.ring)
			m.n--
		}
		p[i] = m.last
	}
	return len(p), nil
}

// Close stops playback and closes the monitored board.
//
func (m *Monitor) Close() error {
	var err error
	if m.player != nil {
		err = m.player.Close()
		m.player = nil
	}
	if berr := m.Board.Close(); berr != nil {
		return berr
	}
	return errors.Wrap(err, "audio")
}
