/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"hdxplay/internal/source"
	"hdxplay/pkg/proto"
)

const (
	app_name   = "HDXPlay-Probe"
	usage_text = "Usage: hdxplay-probe -in (audio file) [-out (WAV path)]"
)

// Decodes any supported input through the same codec path the player
// uses. Without -out it just reports the format; with -out it renders
// the decoded PCM to a 16-bit WAV for inspection.
func main() {
	inPath := flag.String("in", "", "input audio file")
	outPath := flag.String("out", "", "optional WAV output path")
	flag.Parse()

	if *inPath == "" {
		fmt.Printf("%s V.%s\n", app_name, proto.Version)
		fmt.Println(usage_text)
		return
	}

	src, err := source.OpenLocal(*inPath)
	if err != nil {
		fmt.Println("[Error] Decode failed:", err)
		os.Exit(1)
	}
	defer src.Close()

	fmt.Printf("[Probe] %s\n", *inPath)
	fmt.Printf("[Probe] sample_rate=%d channels=%d precision=%d seekable=%v\n",
		src.Format.SampleRate, src.Format.NumChannels, src.Format.Precision,
		src.Seeker != nil)

	if *outPath == "" {
		return
	}

	frames, err := render(src, *outPath)
	if err != nil {
		fmt.Println("[Error] Render failed:", err)
		os.Exit(1)
	}
	fmt.Printf("[Success] Wrote %d frames to %s\n", frames, *outPath)
}

func render(src *source.Source, outPath string) (int, error) {
	f, err := os.Create(outPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	rate := int(src.Format.SampleRate)
	enc := wav.NewEncoder(f, rate, 16, 2, 1)

	var (
		total   int
		samples [512][2]float64
	)
	for {
		n, ok := src.Streamer.Stream(samples[:])
		if n > 0 {
			buf := &audio.IntBuffer{
				Format:         &audio.Format{NumChannels: 2, SampleRate: rate},
				Data:           make([]int, 0, n*2),
				SourceBitDepth: 16,
			}
			for _, s := range samples[:n] {
				buf.Data = append(buf.Data, toInt16(s[0]), toInt16(s[1]))
			}
			if err := enc.Write(buf); err != nil {
				return total, err
			}
			total += n
		}
		if !ok {
			break
		}
	}
	return total, enc.Close()
}

func toInt16(v float64) int {
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	return int(v * 32767)
}
