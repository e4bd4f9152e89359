/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package source

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

var (
	ErrDecodeFailed      = errors.New("decode failed")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrNotSeekable       = errors.New("source is not seekable")
)

// Kind tags the source variant so ownership and cache invalidation stay
// in one place instead of behind interface dispatch.
type Kind int

const (
	KindLocal Kind = iota
	KindStream
	KindCached
)

// Source produces a finite, forward-only sequence of interleaved
// samples from a local file, a live network stream, or a cached buffer
// slice.
type Source struct {
	Kind     Kind
	Locator  string
	Format   beep.Format
	Streamer beep.Streamer

	Seeker beep.StreamSeekCloser
	closer io.Closer
}

// Close releases the decoder and the underlying byte stream.
func (s *Source) Close() {
	if s.Seeker != nil {
		s.Seeker.Close()
	}
	if s.closer != nil {
		s.closer.Close()
	}
}

// SeekTo positions a local source at position_ms by seeking the decoder
// to the recomputed frame offset. Stream and cached sources reject it.
func (s *Source) SeekTo(positionMs int64) error {
	if s.Kind != KindLocal || s.Seeker == nil {
		return ErrNotSeekable
	}
	frame := FrameAt(positionMs, s.Format.SampleRate)
	if max := s.Seeker.Len(); frame > max {
		frame = max
	}
	if err := s.Seeker.Seek(frame); err != nil {
		return fmt.Errorf("seek to %dms: %w", positionMs, err)
	}
	return nil
}

// FrameAt converts a millisecond position to a sample-frame offset.
func FrameAt(positionMs int64, rate beep.SampleRate) int {
	return int(positionMs * int64(rate) / 1000)
}

// OpenLocal decodes a random-access local file picked by extension.
func OpenLocal(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", os.ErrNotExist, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".opus" {
		st, format, err := decodeOpus(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: %s: %v", ErrDecodeFailed, path, err)
		}
		return &Source{
			Kind:     KindLocal,
			Locator:  path,
			Format:   format,
			Streamer: st,
			closer:   f,
		}, nil
	}

	seeker, format, err := decodeByExt(ext, f)
	if err != nil {
		f.Close()
		if errors.Is(err, ErrUnsupportedFormat) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrDecodeFailed, path, err)
	}
	return &Source{
		Kind:     KindLocal,
		Locator:  path,
		Format:   format,
		Streamer: seeker,
		Seeker:   seeker,
		closer:   f,
	}, nil
}

// OpenStream probes and decodes directly on a live HTTP body. The
// transport is sequential-only; playback can start immediately but the
// result never supports seeking.
func OpenStream(locator, url string, client *http.Client) (*Source, error) {
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	ext := formatHint(url, resp.Header.Get("Content-Type"))
	if ext == ".opus" {
		st, format, err := decodeOpus(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %s: %v", ErrDecodeFailed, url, err)
		}
		return &Source{
			Kind:     KindStream,
			Locator:  locator,
			Format:   format,
			Streamer: st,
			closer:   resp.Body,
		}, nil
	}

	seeker, format, err := decodeByExt(ext, resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrDecodeFailed, url, err)
	}
	return &Source{
		Kind:     KindStream,
		Locator:  locator,
		Format:   format,
		Streamer: seeker,
		Seeker:   seeker,
		closer:   resp.Body,
	}, nil
}

func decodeByExt(ext string, rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext {
	case ".mp3":
		return mp3.Decode(rc)
	case ".flac":
		return flac.Decode(rc)
	case ".wav":
		return wav.Decode(rc)
	case ".ogg", ".oga":
		return vorbis.Decode(rc)
	default:
		return nil, beep.Format{}, ErrUnsupportedFormat
	}
}

// formatHint prefers the Content-Type header, falling back to the URL
// extension.
func formatHint(url, contentType string) string {
	switch {
	case strings.Contains(contentType, "mpeg"):
		return ".mp3"
	case strings.Contains(contentType, "flac"):
		return ".flac"
	case strings.Contains(contentType, "wav"):
		return ".wav"
	case strings.Contains(contentType, "opus"):
		return ".opus"
	case strings.Contains(contentType, "ogg"):
		return ".ogg"
	}
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	return strings.ToLower(filepath.Ext(url))
}
