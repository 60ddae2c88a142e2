package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// note is one step of a melody. A zero frequency is a rest.
type note struct {
	freq  float64
	beats float64
}

// score is a looping melody at a fixed tempo.
type score struct {
	bpm   float64
	duty  float64 // Square wave duty cycle
	notes []note
}

func (s score) beat() time.Duration {
	return time.Duration(float64(time.Minute) / s.bpm)
}

// Length returns the duration of one pass through the melody.
func (s score) Length() time.Duration {
	var total float64
	for _, n := range s.notes {
		total += n.beats
	}
	return time.Duration(total * float64(s.beat()))
}

// melody streams a score as a pulse wave forever.
type melody struct {
	rate    beep.SampleRate
	score   score
	lengths []int // Samples per note

	index    int
	position int
	phase    float64
}

// newMelody renders s at rate. The streamer never drains.
func newMelody(s score, rate beep.SampleRate) *melody {
	m := &melody{rate: rate, score: s}
	beat := s.beat()
	for _, n := range s.notes {
		samples := rate.N(time.Duration(n.beats * float64(beat)))
		m.lengths = append(m.lengths, max(samples, 1))
	}
	return m
}

// release is the tail of each note that fades to silence.
const release = 0.15

func (m *melody) Stream(samples [][2]float64) (n int, ok bool) {
	if len(m.score.notes) == 0 {
		for i := range samples {
			samples[i] = [2]float64{}
		}
		return len(samples), true
	}

	for i := range samples {
		cur := m.score.notes[m.index]
		length := m.lengths[m.index]

		var val float64
		if cur.freq > 0 {
			if m.phase < m.score.duty {
				val = 1
			} else {
				val = -1
			}

			// Fade the end of each note so repeated pitches stay distinct.
			progress := float64(m.position) / float64(length)
			if progress > 1-release {
				val *= (1 - progress) / release
			}

			m.phase += cur.freq / float64(m.rate)
			m.phase -= math.Floor(m.phase)
		}

		samples[i][0] = val
		samples[i][1] = val

		m.position++
		if m.position >= length {
			m.position = 0
			m.phase = 0
			m.index = (m.index + 1) % len(m.score.notes)
		}
	}
	return len(samples), true
}

func (m *melody) Err() error { return nil }

// Note frequencies in Hz.
const (
	rest = 0.0
	a3   = 220.00
	c4   = 261.63
	d4   = 293.66
	e4   = 329.63
	f4   = 349.23
	g4   = 392.00
	a4   = 440.00
	b4   = 493.88
	c5   = 523.25
	d5   = 587.33
	e5   = 659.25
)

// scores holds the two battle themes.
var scores = map[Track]score{
	// Bouncy major theme for 5 and 4 kyu.
	TrackNormal: {
		bpm:  144,
		duty: 0.5,
		notes: []note{
			{c4, 0.5}, {e4, 0.5}, {g4, 0.5}, {c5, 0.5},
			{g4, 0.5}, {e4, 0.5}, {g4, 1},
			{f4, 0.5}, {a4, 0.5}, {c5, 0.5}, {a4, 0.5},
			{g4, 1}, {rest, 1},
			{e4, 0.5}, {g4, 0.5}, {c5, 0.5}, {e5, 0.5},
			{d5, 0.5}, {b4, 0.5}, {g4, 1},
			{a4, 0.5}, {g4, 0.5}, {e4, 0.5}, {d4, 0.5},
			{c4, 1.5}, {rest, 0.5},
		},
	},
	// Driving minor theme for 3 kyu and above.
	TrackBoss: {
		bpm:  168,
		duty: 0.25,
		notes: []note{
			{a3, 0.5}, {a3, 0.5}, {e4, 0.5}, {a3, 0.5},
			{f4, 0.5}, {e4, 0.5}, {d4, 0.5}, {e4, 0.5},
			{a3, 0.5}, {a3, 0.5}, {c4, 0.5}, {d4, 0.5},
			{e4, 1}, {rest, 1},
			{a4, 0.5}, {g4, 0.5}, {f4, 0.5}, {e4, 0.5},
			{d4, 0.5}, {e4, 0.5}, {f4, 0.5}, {d4, 0.5},
			{e4, 0.5}, {c4, 0.5}, {b4, 0.5}, {a4, 0.5},
			{a3, 1.5}, {rest, 0.5},
		},
	},
}
