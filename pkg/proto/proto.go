/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package proto

const (
	// === IDENTITY & VERSIONING ===
	Version    = "1.0.0"
	ServerName = "HDXPlay-Server"

	// === IPC VERBS (read-only, any connection) ===
	VerbAbout  = "ABOUT"
	VerbPing   = "PING"
	VerbWhoami = "WHOAMI"
	VerbStatus = "STATUS"
	VerbList   = "LIST"

	// === IPC VERBS (control, owner only) ===
	VerbLoadDir  = "LOAD-DIR"
	VerbPlay     = "PLAY"
	VerbPause    = "PAUSE"
	VerbResume   = "RESUME"
	VerbStop     = "STOP"
	VerbSeek     = "SEEK"
	VerbNext     = "NEXT"
	VerbPrev     = "PREV"
	VerbVolume   = "VOLUME"
	VerbRepeat   = "REPEAT"
	VerbShuffle  = "SHUFFLE"
	VerbShutdown = "SHUTDOWN"

	// === EVENT TYPES (sent to the owner as "EVENT {json}") ===
	EventStateChanged      = "STATE_CHANGED"
	EventTrackChanged      = "TRACK_CHANGED"
	EventPositionChanged   = "POSITION_CHANGED"
	EventPlaybackError     = "PLAYBACK_ERROR"
	EventTrackCompleted    = "TRACK_COMPLETED"
	EventPlaylistCompleted = "PLAYLIST_COMPLETED"
	EventSeekCompleted     = "SEEK_COMPLETED"
	EventDeviceReady       = "AUDIO_DEVICE_READY"
	EventDeviceFailed      = "AUDIO_DEVICE_FAILED"
)

// WireState is the JSON shape written in reply to STATUS and carried
// inside STATE_CHANGED events.
type WireState struct {
	Playing    bool    `json:"playing"`
	TrackID    int64   `json:"track_id"`
	Title      string  `json:"title,omitempty"`
	Artist     string  `json:"artist,omitempty"`
	PositionMs int64   `json:"position_ms"`
	Volume     float64 `json:"volume"`
	Repeat     string  `json:"repeat"`
	Shuffle    bool    `json:"shuffle"`
}

// WireTrack is the JSON shape of one playlist entry in a LIST reply.
type WireTrack struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist,omitempty"`
	Album      string `json:"album,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
	Path       string `json:"path"`
}
