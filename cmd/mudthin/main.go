// Command mudthin is the thin-client deployment shape (spec §1): it carries
// none of the engine state (codec, rules, Lua runtime) — that all lives on
// the mudserver it connects to — and is just the terminal flow/cmdbar
// renderer (C10) bridged across the framed protocol (C9) instead of to a
// local event engine.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/thyth/mudcore/internal/conf"
	"github.com/thyth/mudcore/internal/event"
	"github.com/thyth/mudcore/internal/ui"
	"github.com/thyth/mudcore/internal/wireproto"
)

func main() {
	confFile := flag.String("conf-file", "mud.toml", "path to the TOML configuration file")
	flag.Parse()

	cfg, err := conf.Load(*confFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mudthin: %v\n", err)
		os.Exit(1)
	}
	if cfg.Client.ServerAddr == "" {
		fmt.Fprintln(os.Stderr, "mudthin: client.server_addr is required")
		os.Exit(1)
	}

	conn, err := net.Dial("tcp", cfg.Client.ServerAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mudthin: connect %s: %v\n", cfg.Client.ServerAddr, err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := wireproto.ClientAuth(conn, cfg.Client.ServerPass); err != nil {
		fmt.Fprintf(os.Stderr, "mudthin: authentication failed: %v\n", err)
		os.Exit(1)
	}

	events := make(chan event.Event, 64)
	outputs := make(chan event.Output, 64)

	go relayToServer(conn, events)
	go relayFromServer(conn, outputs)

	scriptPrefix := rune('.')
	for _, r := range cfg.Term.ScriptPrefix {
		scriptPrefix = r
		break
	}
	histLines := cfg.Term.HistoryLines
	if histLines < 1 {
		histLines = 200
	}
	maxLines := cfg.Term.MaxLines
	if maxLines < 1 {
		maxLines = 5000
	}

	raw, err := ui.AcquireRawTerm()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mudthin: raw terminal mode: %v\n", err)
	}
	defer raw.Restore()

	model := ui.New(outputs, events, maxLines, true, scriptPrefix, histLines)
	if _, err := ui.NewProgram(model).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "mudthin: ui: %v\n", err)
	}
}

// relayToServer forwards the submitted command/script lines among the
// UI-emitted Events as framed Text packets (spec §4.9), and closes the
// connection on quit. Resize and mouse events stay local: the server has no
// use for them since it renders nothing itself.
func relayToServer(conn net.Conn, events <-chan event.Event) {
	for ev := range events {
		switch ev.Kind {
		case event.KindUserOutput:
			if err := wireproto.TextPacket(ev.UserOutputText).WriteTo(conn); err != nil {
				return
			}
		case event.KindQuit:
			_ = conn.Close()
			return
		}
	}
}

// relayFromServer reads framed packets off conn and turns Text/Lines
// packets into Outputs the renderer displays; Err stops the relay after
// surfacing the message, and any read failure ends the session.
func relayFromServer(conn net.Conn, outputs chan<- event.Output) {
	defer close(outputs)
	for {
		pkt, err := wireproto.ReadFrom(conn)
		if err != nil {
			return
		}
		switch pkt.Kind {
		case wireproto.KindText:
			outputs <- event.Output{ToUIText: pkt.Text}
		case wireproto.KindLines:
			for _, l := range pkt.Lines {
				outputs <- event.Output{ToUIText: l.Content}
			}
		case wireproto.KindErr:
			outputs <- event.Output{ToUIText: fmt.Sprintf("[server error: %s]\n", pkt.Text)}
			return
		}
	}
}
