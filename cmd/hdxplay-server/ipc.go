/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"

	"hdxplay/internal/engine"
	"hdxplay/internal/library"
	"hdxplay/internal/media"
	"hdxplay/internal/state"
	"hdxplay/pkg/proto"
)

// ===============================
// Control lock
// ===============================

// One connection at a time holds the control lock. Everyone else is an
// observer: read-only verbs work, control verbs get ERR CONTROL_LOCKED.
var (
	controlOwner net.Conn
	ownerEvents  <-chan state.Event
	ownerDone    chan struct{}
	controlMu    sync.Mutex
)

func isOwner(c net.Conn) bool {
	controlMu.Lock()
	defer controlMu.Unlock()
	return controlOwner == c
}

func claimOwner(c net.Conn, eng *engine.Engine) bool {
	controlMu.Lock()
	defer controlMu.Unlock()
	if controlOwner == c {
		return true
	}
	if controlOwner != nil {
		return false
	}
	controlOwner = c
	ownerEvents = eng.Events()
	ownerDone = make(chan struct{})
	go forwardEvents(c, ownerEvents, ownerDone)
	return true
}

func releaseOwner(c net.Conn, eng *engine.Engine) {
	controlMu.Lock()
	defer controlMu.Unlock()
	if controlOwner != c {
		return
	}
	controlOwner = nil
	close(ownerDone)
	eng.DropEvents(ownerEvents)
	ownerEvents = nil
	_ = eng.Stop()
}

// forwardEvents streams engine events to the owner as "EVENT {json}"
// lines until the subscription is dropped.
func forwardEvents(c net.Conn, events <-chan state.Event, done chan struct{}) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			j, err := json.Marshal(toWireEvent(ev))
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(c, "EVENT %s\n", j); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// ===============================
// Wire shapes
// ===============================

type wireEvent struct {
	Type        string           `json:"type"`
	Track       *proto.WireTrack `json:"track,omitempty"`
	PositionMs  int64            `json:"position_ms,omitempty"`
	ElapsedMs   int64            `json:"elapsed_ms,omitempty"`
	Error       string           `json:"error,omitempty"`
	Recoverable bool             `json:"recoverable,omitempty"`
	State       *proto.WireState `json:"state,omitempty"`
}

func eventTypeName(t state.EventType) string {
	switch t {
	case state.EventStateChanged:
		return proto.EventStateChanged
	case state.EventTrackChanged:
		return proto.EventTrackChanged
	case state.EventPositionChanged:
		return proto.EventPositionChanged
	case state.EventPlaybackError:
		return proto.EventPlaybackError
	case state.EventTrackCompleted:
		return proto.EventTrackCompleted
	case state.EventPlaylistCompleted:
		return proto.EventPlaylistCompleted
	case state.EventSeekCompleted:
		return proto.EventSeekCompleted
	case state.EventDeviceReady:
		return proto.EventDeviceReady
	case state.EventDeviceFailed:
		return proto.EventDeviceFailed
	default:
		return "UNKNOWN"
	}
}

func toWireTrack(t *media.Track) *proto.WireTrack {
	if t == nil {
		return nil
	}
	return &proto.WireTrack{
		ID:         t.ID,
		Title:      t.Title,
		Artist:     t.Artist,
		Album:      t.Album,
		DurationMs: t.DurationMs,
		Path:       t.Path,
	}
}

func toWireState(s state.PlayerState) proto.WireState {
	w := proto.WireState{
		Playing:    s.IsPlaying,
		PositionMs: s.PositionMs,
		Volume:     s.Volume,
		Repeat:     s.Repeat.String(),
		Shuffle:    s.Shuffle,
	}
	if s.CurrentTrack != nil {
		w.TrackID = s.CurrentTrack.ID
		w.Title = s.CurrentTrack.Title
		w.Artist = s.CurrentTrack.Artist
	}
	return w
}

func toWireEvent(ev state.Event) wireEvent {
	w := wireEvent{
		Type:        eventTypeName(ev.Type),
		Track:       toWireTrack(ev.Track),
		PositionMs:  ev.PositionMs,
		ElapsedMs:   ev.Elapsed.Milliseconds(),
		Recoverable: ev.Recoverable,
	}
	if ev.Err != nil {
		w.Error = ev.Err.Error()
	}
	if ev.State != nil {
		ws := toWireState(*ev.State)
		w.State = &ws
	}
	return w
}

// ===============================
// IPC server
// ===============================

func startIPC(eng *engine.Engine, socketPath string) {
	_ = os.Remove(socketPath)
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		slog.Error("ipc listen failed", "socket", socketPath, "error", err)
		os.Exit(1)
	}
	defer ln.Close()
	slog.Info("ipc listening", "socket", socketPath)

	shutdown := make(chan struct{})
	var shutdownOnce sync.Once
	requestShutdown := func() {
		shutdownOnce.Do(func() { close(shutdown) })
	}
	go func() {
		<-shutdown
		ln.Close()
	}()

	for {
		c, err := ln.Accept()
		if err != nil {
			select {
			case <-shutdown:
				return
			default:
				continue
			}
		}
		go handleConn(c, eng, requestShutdown)
	}
}

func writeLine(c net.Conn, s string) {
	_, _ = c.Write([]byte(s + "\n"))
}

func writeJSON(c net.Conn, v interface{}) {
	j, err := json.Marshal(v)
	if err != nil {
		writeLine(c, "ERR INTERNAL")
		return
	}
	_, _ = c.Write(append(j, '\n'))
}

func handleConn(c net.Conn, eng *engine.Engine, requestShutdown func()) {
	defer func() {
		releaseOwner(c, eng)
		c.Close()
	}()

	sc := bufio.NewScanner(c)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, " ", 2)
		cmd := strings.ToUpper(parts[0])
		arg := ""
		if len(parts) == 2 {
			arg = strings.TrimSpace(parts[1])
		}

		// Read-only verbs, no control lock needed.
		switch cmd {

		case proto.VerbAbout:
			writeLine(c, fmt.Sprintf("%s V.%s", proto.ServerName, proto.Version))
			continue

		case proto.VerbPing:
			writeLine(c, "Pong")
			continue

		case proto.VerbWhoami:
			if isOwner(c) {
				writeLine(c, "OWNER")
			} else {
				writeLine(c, "OBSERVER")
			}
			continue

		case proto.VerbStatus:
			writeJSON(c, toWireState(eng.State()))
			continue

		case proto.VerbList:
			tracks := eng.Tracks()
			if len(tracks) == 0 {
				writeLine(c, "NO PLAYLIST YET")
				continue
			}
			out := make([]proto.WireTrack, 0, len(tracks))
			for i := range tracks {
				out = append(out, *toWireTrack(&tracks[i]))
			}
			writeJSON(c, out)
			continue
		}

		// Everything below mutates playback: take the control lock.
		if !claimOwner(c, eng) {
			writeLine(c, "ERR CONTROL_LOCKED")
			continue
		}

		switch cmd {

		case proto.VerbLoadDir:
			if arg == "" {
				writeLine(c, "ERR ARG")
				continue
			}
			tracks, err := library.Scan(arg)
			if err != nil {
				writeLine(c, "ERR DIR_NOT_FOUND")
				continue
			}
			if err := eng.LoadPlaylist(tracks); err != nil {
				writeLine(c, "ERR EMPTY_DIR")
				continue
			}
			writeLine(c, fmt.Sprintf("OK %d tracks", len(tracks)))

		case proto.VerbPlay:
			var err error
			if arg == "" {
				err = eng.PlayCurrent()
			} else {
				var id int64
				id, err = strconv.ParseInt(arg, 10, 64)
				if err != nil {
					writeLine(c, "ERR ARG")
					continue
				}
				err = eng.Play(id)
			}
			if err != nil {
				writeLine(c, "ERR "+err.Error())
				continue
			}
			writeLine(c, "Playing")

		case proto.VerbPause:
			if err := eng.Pause(); err != nil {
				writeLine(c, "ERR "+err.Error())
				continue
			}
			writeLine(c, "Paused")

		case proto.VerbResume:
			if err := eng.Resume(); err != nil {
				writeLine(c, "ERR "+err.Error())
				continue
			}
			writeLine(c, "Resume Playing")

		case proto.VerbStop:
			if err := eng.Stop(); err != nil {
				writeLine(c, "ERR "+err.Error())
				continue
			}
			writeLine(c, "Stopped")

		case proto.VerbSeek:
			ms, err := strconv.ParseInt(arg, 10, 64)
			if err != nil || ms < 0 {
				writeLine(c, "ERR ARG")
				continue
			}
			if err := eng.Seek(ms); err != nil {
				writeLine(c, "ERR "+err.Error())
				continue
			}
			writeLine(c, "Seeked")

		case proto.VerbNext:
			if err := eng.Next(); err != nil {
				writeLine(c, "ERR "+err.Error())
				continue
			}
			writeLine(c, "Jump")

		case proto.VerbPrev:
			if err := eng.Previous(); err != nil {
				writeLine(c, "ERR "+err.Error())
				continue
			}
			writeLine(c, "Jump Back")

		case proto.VerbVolume:
			v, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				writeLine(c, "ERR ARG")
				continue
			}
			if err := eng.SetVolume(v); err != nil {
				writeLine(c, "ERR "+err.Error())
				continue
			}
			writeLine(c, "Volume Set")

		case proto.VerbRepeat:
			switch strings.ToLower(arg) {
			case "off", "all", "one":
				mode := media.ParseRepeatMode(strings.ToLower(arg))
				eng.SetRepeatMode(mode)
				writeLine(c, "Repeat "+mode.String())
			default:
				writeLine(c, "ERR ARG")
			}

		case proto.VerbShuffle:
			switch strings.ToLower(arg) {
			case "on", "1", "true":
				eng.SetShuffle(true)
				writeLine(c, "Shuffle On")
			case "off", "0", "false":
				eng.SetShuffle(false)
				writeLine(c, "Shuffle Off")
			default:
				writeLine(c, "ERR ARG")
			}

		case proto.VerbShutdown:
			writeLine(c, "Bye")
			requestShutdown()
			return

		default:
			writeLine(c, "ERR UNKNOWN")
		}
	}
}
