/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"hdxplay/pkg/proto"
)

const app_name = "HDXPlay-Client"

func main() {
	socketPath := flag.String("socket", "/tmp/hdxplay.sock", "server socket path")
	flag.Parse()

	fmt.Printf("\n%s V.%s\n", app_name, proto.Version)

	conn, err := net.Dial("unix", *socketPath)
	if err != nil {
		fmt.Println("CONNECT ERROR:", err)
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Println("CONNECTED")
	fmt.Println("Type IPC command, press Enter")
	fmt.Println(`Type "QUIT" to exit`)
	fmt.Println()

	rl, err := readline.NewEx(&readline.Config{
		Prompt: "hdxplay> ",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem(proto.VerbAbout),
			readline.PcItem(proto.VerbPing),
			readline.PcItem(proto.VerbWhoami),
			readline.PcItem(proto.VerbStatus),
			readline.PcItem(proto.VerbList),
			readline.PcItem(proto.VerbLoadDir),
			readline.PcItem(proto.VerbPlay),
			readline.PcItem(proto.VerbPause),
			readline.PcItem(proto.VerbResume),
			readline.PcItem(proto.VerbStop),
			readline.PcItem(proto.VerbSeek),
			readline.PcItem(proto.VerbNext),
			readline.PcItem(proto.VerbPrev),
			readline.PcItem(proto.VerbVolume),
			readline.PcItem(proto.VerbRepeat,
				readline.PcItem("off"),
				readline.PcItem("all"),
				readline.PcItem("one"),
			),
			readline.PcItem(proto.VerbShuffle,
				readline.PcItem("on"),
				readline.PcItem("off"),
			),
			readline.PcItem(proto.VerbShutdown),
			readline.PcItem("QUIT"),
		),
	})
	if err != nil {
		fmt.Println("READLINE ERROR:", err)
		os.Exit(1)
	}
	defer rl.Close()

	// Server → stdout. Events and replies share one line stream.
	go func() {
		sc := bufio.NewScanner(conn)
		for sc.Scan() {
			fmt.Println("RECV:", sc.Text())
		}
		fmt.Println("SOCKET CLOSED")
		os.Exit(0)
	}()

	for {
		line, err := rl.Readline()
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "QUIT") {
			fmt.Println("Bye.")
			return
		}
		if _, err := conn.Write([]byte(line + "\n")); err != nil {
			fmt.Println("WRITE ERROR:", err)
			os.Exit(1)
		}
	}
}
