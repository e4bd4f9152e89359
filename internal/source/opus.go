/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package source

import (
	"bytes"
	"fmt"
	"io"

	"github.com/faiface/beep"
	"github.com/hraban/opus"
)

// opusHeadProbe covers the Ogg header pages preceding the OpusHead
// packet in any conforming file.
const opusHeadProbe = 512

// opusStreamer incrementally decodes an ogg/opus byte stream. Opus
// always decodes at 48kHz; mono input is upmixed to both channels.
type opusStreamer struct {
	stream   *opus.Stream
	channels int
	pcm      []float32
	buffer   [][2]float64
	err      error
}

// opusChannels reads the channel count out of the OpusHead packet
// (byte 9, right after the magic and the version byte). Returns 0 when
// no OpusHead is found in the probed prefix.
func opusChannels(prefix []byte) int {
	i := bytes.Index(prefix, []byte("OpusHead"))
	if i < 0 || i+10 > len(prefix) {
		return 0
	}
	return int(prefix[i+9])
}

func decodeOpus(r io.Reader) (beep.Streamer, beep.Format, error) {
	prefix := make([]byte, opusHeadProbe)
	n, _ := io.ReadFull(r, prefix)
	prefix = prefix[:n]

	channels := opusChannels(prefix)
	if channels != 1 && channels != 2 {
		return nil, beep.Format{}, fmt.Errorf("unsupported opus channel count %d", channels)
	}

	st, err := opus.NewStream(io.MultiReader(bytes.NewReader(prefix), r))
	if err != nil {
		return nil, beep.Format{}, err
	}
	format := beep.Format{
		SampleRate:  48000,
		NumChannels: 2,
		Precision:   2,
	}
	return &opusStreamer{
		stream:   st,
		channels: channels,
		pcm:      make([]float32, 5760*2),
	}, format, nil
}

func (o *opusStreamer) Stream(samples [][2]float64) (int, bool) {
	filled := 0

	for filled < len(samples) {
		if len(o.buffer) == 0 {
			n, err := o.stream.ReadFloat32(o.pcm)
			if err != nil {
				if err != io.EOF {
					o.err = err
				}
				return filled, filled > 0
			}

			o.fill(n)
		}

		n := copy(samples[filled:], o.buffer)
		o.buffer = o.buffer[n:]
		filled += n
	}

	return filled, true
}

// fill de-interleaves n decoded frames from pcm into the sample
// buffer, upmixing mono input to both channels.
func (o *opusStreamer) fill(n int) {
	for i := 0; i < n; i++ {
		if o.channels == 1 {
			s := float64(o.pcm[i])
			o.buffer = append(o.buffer, [2]float64{s, s})
		} else {
			o.buffer = append(o.buffer, [2]float64{
				float64(o.pcm[i*2]),
				float64(o.pcm[i*2+1]),
			})
		}
	}
}

func (o *opusStreamer) Err() error { return o.err }
