// Package audio generates and plays the app's sound effects and
// speech clips. PCM is 16-bit little-endian stereo at 44100 Hz
// throughout; one audio device context serves the whole process.
package audio

import "math"

const (
	// SampleRate is the fixed output rate for every generated buffer.
	SampleRate = 44100
	// ChannelCount is fixed stereo output.
	ChannelCount = 2
	// BytesPerSample is 16-bit samples.
	BytesPerSample = 2
)

// masterGain keeps effect volume well under speech volume.
const masterGain = 0.03

// KnockPCM renders the door-knock effect: two short square-wave thumps
// at 180 Hz, the second starting 0.25s after the first.
func KnockPCM() []byte {
	const (
		freq     = 180.0
		gap      = 0.25
		hitLen   = 0.15
		total    = gap + hitLen
		attack   = 0.010
		decayEnd = 0.120
	)

	frames := int(total * SampleRate)
	buf := make([]byte, frames*ChannelCount*BytesPerSample)

	renderHit := func(startSec float64) {
		start := int(startSec * SampleRate)
		for i := 0; i < int(hitLen*SampleRate); i++ {
			frame := start + i
			if frame >= frames {
				break
			}
			t := float64(i) / SampleRate
			g := envelope(t, 0.001, 0.2, attack, 0.0001, decayEnd)
			sample := square(freq, t) * g * masterGain / 0.2
			writeFrame(buf, frame, sample)
		}
	}

	renderHit(0)
	renderHit(gap)
	return buf
}

// melodyNotes is the workshop jingle: C5 E5 D5 C5 A4 C5.
var melodyNotes = []float64{523.25, 659.25, 587.33, 523.25, 440.00, 523.25}

// MelodyPCM renders one pass of the looping background melody, six
// triangle-wave quarter notes at 60 BPM.
func MelodyPCM() []byte {
	const (
		noteLen  = 1.0
		attack   = 0.020
		decayEnd = 0.5
	)

	frames := int(float64(len(melodyNotes)) * noteLen * SampleRate)
	buf := make([]byte, frames*ChannelCount*BytesPerSample)

	for n, freq := range melodyNotes {
		start := int(float64(n) * noteLen * SampleRate)
		for i := 0; i < int(noteLen*SampleRate); i++ {
			frame := start + i
			if frame >= frames {
				break
			}
			t := float64(i) / SampleRate
			g := envelope(t, 0.0001, 0.18, attack, 0.0001, decayEnd)
			sample := triangle(freq, t) * g * masterGain / 0.18
			writeFrame(buf, frame, sample)
		}
	}
	return buf
}

// envelope ramps exponentially from start to peak over the attack
// window, then decays exponentially toward floor by decayEnd. Past
// decayEnd the gain holds at floor.
func envelope(t, start, peak, attack, floor, decayEnd float64) float64 {
	if t < attack {
		return start * math.Pow(peak/start, t/attack)
	}
	if t < decayEnd {
		return peak * math.Pow(floor/peak, (t-attack)/(decayEnd-attack))
	}
	return floor
}

func square(freq, t float64) float64 {
	if math.Mod(freq*t, 1.0) < 0.5 {
		return 1.0
	}
	return -1.0
}

func triangle(freq, t float64) float64 {
	phase := math.Mod(freq*t, 1.0)
	return 4*math.Abs(phase-0.5) - 1
}

// writeFrame stores one sample into both channels of a frame.
func writeFrame(buf []byte, frame int, sample float64) {
	v := int16(math.Max(-1, math.Min(1, sample)) * math.MaxInt16)
	offset := frame * ChannelCount * BytesPerSample
	for ch := 0; ch < ChannelCount; ch++ {
		buf[offset+ch*BytesPerSample] = byte(v)
		buf[offset+ch*BytesPerSample+1] = byte(v >> 8)
	}
}
