package audio

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/hajimehoshi/go-mp3"
	"github.com/hajimehoshi/oto/v2"
)

// Session owns the process-wide audio device. The underlying device
// context can only be created once per process, so a single Session
// must be shared.
type Session struct {
	mu      sync.Mutex
	ctx     *oto.Context
	enabled bool

	musicStop chan struct{}
	musicDone chan struct{}
}

// NewSession opens the audio device. When no device is available the
// session stays usable and every play call becomes a no-op.
func NewSession() *Session {
	ctx, ready, err := oto.NewContext(SampleRate, ChannelCount, BytesPerSample)
	if err != nil {
		return &Session{}
	}

	select {
	case <-ready:
	case <-time.After(3 * time.Second):
		return &Session{}
	}
	return &Session{ctx: ctx, enabled: true}
}

// Enabled reports whether an audio device was opened.
func (s *Session) Enabled() bool { return s.enabled }

// PlayKnock plays the door-knock effect and blocks until it finishes.
func (s *Session) PlayKnock() {
	s.playPCM(KnockPCM())
}

// StartMusic begins looping the background melody. Starting an already
// playing loop is a no-op.
func (s *Session) StartMusic() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled || s.musicStop != nil {
		return
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	s.musicStop = stop
	s.musicDone = done

	pcm := MelodyPCM()
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
			}
			s.playPCMInterruptible(pcm, stop)
		}
	}()
}

// StopMusic halts the melody loop. Stopping idle music is a no-op.
func (s *Session) StopMusic() {
	s.mu.Lock()
	stop, done := s.musicStop, s.musicDone
	s.musicStop, s.musicDone = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// MusicPlaying reports whether the melody loop is running.
func (s *Session) MusicPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.musicStop != nil
}

// PlayClip decodes an MP3 clip and plays it to completion.
func (s *Session) PlayClip(mp3Data []byte) error {
	if !s.enabled {
		return nil
	}

	decoder, err := mp3.NewDecoder(bytes.NewReader(mp3Data))
	if err != nil {
		return fmt.Errorf("decode clip: %w", err)
	}

	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return fmt.Errorf("read clip: %w", err)
	}
	if decoder.SampleRate() != SampleRate {
		pcm = Resample(pcm, decoder.SampleRate(), SampleRate)
	}

	s.playPCM(pcm)
	return nil
}

// Close stops any playback and releases the device.
func (s *Session) Close() {
	s.StopMusic()
}

func (s *Session) playPCM(pcm []byte) {
	s.playPCMInterruptible(pcm, nil)
}

func (s *Session) playPCMInterruptible(pcm []byte, stop <-chan struct{}) {
	if !s.enabled || len(pcm) == 0 {
		return
	}

	player := s.ctx.NewPlayer(bytes.NewReader(pcm))
	defer player.Close()
	player.Play()

	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
	for player.IsPlaying() {
		select {
		case <-stop:
			return
		case <-tick.C:
		}
	}
}

// Resample converts 16-bit stereo PCM between sample rates using
// linear interpolation.
func Resample(pcm []byte, from, to int) []byte {
	if from == to || from <= 0 || to <= 0 {
		return pcm
	}

	frameSize := ChannelCount * BytesPerSample
	inFrames := len(pcm) / frameSize
	if inFrames == 0 {
		return nil
	}

	outFrames := int(int64(inFrames) * int64(to) / int64(from))
	out := make([]byte, outFrames*frameSize)

	readSample := func(frame, ch int) float64 {
		offset := frame*frameSize + ch*BytesPerSample
		return float64(int16(uint16(pcm[offset]) | uint16(pcm[offset+1])<<8))
	}

	for i := 0; i < outFrames; i++ {
		pos := float64(i) * float64(from) / float64(to)
		left := int(pos)
		frac := pos - float64(left)
		right := left + 1
		if right >= inFrames {
			right = inFrames - 1
		}

		for ch := 0; ch < ChannelCount; ch++ {
			v := readSample(left, ch)*(1-frac) + readSample(right, ch)*frac
			sample := int16(math.Round(v))
			offset := i*frameSize + ch*BytesPerSample
			out[offset] = byte(sample)
			out[offset+1] = byte(sample >> 8)
		}
	}
	return out
}
