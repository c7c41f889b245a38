// Command mudserver is the proxy deployment shape (spec §1): it owns the
// world connection and the event engine (codec, flow, rules, Lua runtime)
// exactly as mudclient does, but renders nowhere locally — instead it
// listens for a thin client (mudthin) over the framed, authenticated
// protocol in spec §4.9 and relays rendered lines and outbound commands
// across that link.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/thyth/mudcore/internal/codec"
	"github.com/thyth/mudcore/internal/conf"
	"github.com/thyth/mudcore/internal/event"
	"github.com/thyth/mudcore/internal/flow"
	"github.com/thyth/mudcore/internal/logging"
	"github.com/thyth/mudcore/internal/rules"
	"github.com/thyth/mudcore/internal/script"
	"github.com/thyth/mudcore/internal/telnet"
	"github.com/thyth/mudcore/internal/wireproto"
)

func main() {
	confFile := flag.String("conf-file", "mud.toml", "path to the TOML configuration file")
	flag.Parse()

	cfg, err := conf.Load(*confFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mudserver: %v\n", err)
		os.Exit(1)
	}
	if cfg.World.Addr == "" || cfg.Server.Port == 0 {
		fmt.Fprintln(os.Stderr, "mudserver: world.addr and server.port are required")
		os.Exit(1)
	}

	log := openLog(cfg.Server.DebugFile)

	worldConn, err := net.Dial("tcp", cfg.World.Addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mudserver: connect %s: %v\n", cfg.World.Addr, err)
		os.Exit(1)
	}
	defer worldConn.Close()

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.Port))
	if err != nil {
		fmt.Fprintf(os.Stderr, "mudserver: listen :%d: %v\n", cfg.Server.Port, err)
		os.Exit(1)
	}
	defer ln.Close()

	worldLog := openRawLog(cfg.Server.LogFile)
	if worldLog != nil {
		defer worldLog.Close()
	}

	srv := newServer(log, cfg, worldLog)
	srv.run(worldConn, ln)
}

func openLog(path string) *logging.Logger {
	if path == "" {
		return logging.New(os.Stderr, logging.LevelInfo)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return logging.New(os.Stderr, logging.LevelInfo)
	}
	return logging.New(f, logging.LevelDebug)
}

// openRawLog opens server.log_file, the raw world transcript named in spec
// §6 (append-only, flushed on each write).
func openRawLog(path string) *os.File {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil
	}
	return f
}

type server struct {
	log   *logging.Logger
	cdc   *codec.Codec
	flow  *flow.Flow
	cache *rules.TriggerCache

	triggers *rules.Triggers
	aliases  *rules.Aliases
	timers   *rules.Timers
	vars     *event.Vars

	engine *event.Engine
	lua    *script.Runtime

	events   chan event.Event
	outputs  chan event.Output
	toServer chan []byte

	pass    string
	logAnsi bool
	rawLog  *os.File

	clientMu sync.Mutex
	client   net.Conn
}

func newServer(log *logging.Logger, cfg conf.Config, rawLog *os.File) *server {
	maxLines := cfg.Term.MaxLines
	if maxLines < 1 {
		maxLines = 5000
	}
	s := &server{
		log:      log,
		cdc:      codec.New(),
		flow:     flow.NewFlow(maxLines, 80, true),
		cache:    rules.NewTriggerCache(10),
		triggers: rules.NewTriggers(),
		aliases:  rules.NewAliases(),
		timers:   rules.NewTimers(),
		vars:     event.NewVars(),
		events:   make(chan event.Event, 64),
		outputs:  make(chan event.Output, 64),
		toServer: make(chan []byte, 64),
		pass:     cfg.Server.Pass,
		logAnsi:  cfg.Server.LogAnsi,
		rawLog:   rawLog,
	}
	s.engine = event.NewEngine(log, s.cdc, s.flow, s.cache, s.triggers, s.aliases, s.timers,
		s.vars, cfg.Term.Delim(), cfg.Term.IgnoreEmpty, cfg.Term.SendEmptyCmd)
	s.lua = script.New(s.engine, s.vars)
	s.engine.SetScriptHost(s.lua)
	return s
}

func (s *server) run(worldConn net.Conn, ln net.Listener) {
	defer s.lua.Close()

	go s.worldReader(worldConn)
	go s.worldWriter(worldConn)
	go s.timerThread()
	go s.enginePump()

	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go s.acceptClient(conn)
	}
}

// acceptClient authenticates a connecting thin client (spec §4.9, §8
// scenario S7) and, on success, becomes the active client connection,
// displacing any prior one (mudserver serves one thin client at a time).
func (s *server) acceptClient(conn net.Conn) {
	if err := wireproto.ServerAuth(conn, s.pass); err != nil {
		s.log.Warnf("client auth failed from %s: %v", conn.RemoteAddr(), err)
		conn.Close()
		return
	}
	s.clientMu.Lock()
	prev := s.client
	s.client = conn
	s.clientMu.Unlock()
	if prev != nil {
		prev.Close()
	}
	s.log.Infof("client authenticated from %s", conn.RemoteAddr())

	for {
		pkt, err := wireproto.ReadFrom(conn)
		if err != nil {
			s.clientMu.Lock()
			if s.client == conn {
				s.client = nil
			}
			s.clientMu.Unlock()
			return
		}
		if pkt.Kind == wireproto.KindText {
			s.events <- event.Event{Kind: event.KindUserOutput, UserOutputKind: event.OutputCmd, UserOutputText: pkt.Text}
		}
	}
}

// sendToClient writes pkt to the active client connection, if any, dropping
// it silently when no client is attached (spec's proxy mode tolerates a
// world session outliving any particular client attachment).
func (s *server) sendToClient(pkt wireproto.Packet) {
	s.clientMu.Lock()
	conn := s.client
	s.clientMu.Unlock()
	if conn == nil {
		return
	}
	if err := pkt.WriteTo(conn); err != nil {
		s.log.Warnf("write to client: %v", err)
	}
}

func (s *server) worldReader(conn net.Conn) {
	r := telnet.NewReader(conn, 4096)
	for {
		ev, err := r.Recv()
		if err != nil {
			s.events <- event.Event{Kind: event.KindWorldDisconnected}
			return
		}
		switch ev.Kind {
		case telnet.Text:
			if s.logAnsi {
				s.logRaw(ev.Data)
			}
			s.events <- event.Event{Kind: event.KindWorldBytes, WorldBytes: ev.Data}
		case telnet.DataToSend:
			s.toServer <- ev.Data
		case telnet.Disconnected:
			s.events <- event.Event{Kind: event.KindWorldDisconnected}
			return
		}
	}
}

// logRaw appends the untouched inbound bytes to server.log_file
// (server.log_ansi). Called from the world-reader goroutine, before any
// decoding, so the transcript preserves escape sequences exactly as sent.
func (s *server) logRaw(raw []byte) {
	if s.rawLog == nil {
		return
	}
	_, _ = s.rawLog.Write(raw)
}

// logLine appends one decoded display line to server.log_file when log_ansi
// is off: the escape sequences are already stripped by the parser, leaving
// span content only. Called from the engine pump, which owns the decoded
// line stream.
func (s *server) logLine(text string) {
	if s.rawLog == nil || s.logAnsi {
		return
	}
	_, _ = s.rawLog.WriteString(text)
}

func (s *server) worldWriter(conn net.Conn) {
	for b := range s.toServer {
		if _, err := conn.Write(b); err != nil {
			s.log.Warnf("world write: %v", err)
			return
		}
	}
}

func (s *server) timerThread() {
	for {
		tm, ok := s.timers.OnSchedule()
		if !ok {
			continue
		}
		s.events <- event.Event{Kind: event.KindTimerFired, TimerName: tm.Name}
	}
}

func (s *server) enginePump() {
	for ev := range s.events {
		if ev.Kind == event.KindQuit {
			// toServer stays open: worldReader also writes telnet negotiation
			// replies to it and keeps running until the world socket closes.
			return
		}
		for _, out := range s.engine.HandleEvent(ev) {
			if out.ToServer != "" {
				encoded, err := s.cdc.Encode(out.ToServer)
				if err != nil {
					s.sendToClient(wireproto.ErrPacket(fmt.Sprintf("encode error: %v", err)))
					continue
				}
				s.toServer <- encoded
				continue
			}
			s.logLine(out.ToUIText)
			s.sendToClient(wireproto.TextPacket(out.ToUIText))
		}
	}
}
