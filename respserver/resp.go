// Package respserver is the RESP protocol front end for cmd/edisd: it
// turns redcon wire commands into message.Command values, routes them
// through a Dispatcher, and translates native Go reply values back onto
// the wire. The wire protocol parser and command dispatcher both live
// outside the keyspace actor itself.
package respserver

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/guateandrew/edis/core"
	"github.com/guateandrew/edis/log"
	"github.com/guateandrew/edis/message"
	"github.com/tidwall/redcon"
)

// Dispatcher routes one command to the shard named by dbIndex.
type Dispatcher interface {
	Dispatch(dbIndex int, cmd *message.Command, caller core.ReplySink) (interface{}, error)
	NumShards() int
}

// blockingCommands park the caller on the dispatcher's blocking registry
// instead of answering immediately; the RESP layer must detach the
// connection for these so other clients' pushes can wake it later.
var blockingCommands = map[string]bool{
	"BLPOP":      true,
	"BRPOP":      true,
	"BRPOPLPUSH": true,
}

// blockingTimeoutIndex names the argument each blocking command carries its
// timeout in, mirroring core/blocking_cmds.go's own parsing so the RESP
// front end's wait and the actor's internal waiter deadline agree.
var blockingTimeoutIndex = map[string]int{
	"BLPOP":      -1,
	"BRPOP":      -1,
	"BRPOPLPUSH": 2,
}

// blockingTimeoutDeadline computes the same absolute deadline
// core.parseBlockDeadline would, so the RESP layer's own wait actually
// expires instead of blocking forever on cmd.Deadline == nil.
func blockingTimeoutDeadline(cmd *message.Command) *time.Time {
	idx, ok := blockingTimeoutIndex[cmd.Cmd]
	if !ok {
		return nil
	}
	if idx < 0 {
		idx = len(cmd.Args) + idx
	}
	if idx < 0 || idx >= len(cmd.Args) {
		return nil
	}
	seconds, err := strconv.ParseFloat(string(cmd.Args[idx]), 64)
	if err != nil || seconds <= 0 {
		return nil
	}
	deadline := time.Now().Add(time.Duration(seconds * float64(time.Second)))
	return &deadline
}

// RespServer is the TCP front end: host/port, an underlying redcon.Server,
// and a handler that owns all protocol-level bookkeeping (SELECT, MULTI/EXEC).
type RespServer struct {
	host       string
	port       int
	dispatcher Dispatcher
	server     *redcon.Server
	stopChan   chan struct{}
}

// New returns a RespServer that routes every accepted command through
// dispatcher.
func New(host string, port int, dispatcher Dispatcher) *RespServer {
	return &RespServer{
		host:       host,
		port:       port,
		dispatcher: dispatcher,
		stopChan:   make(chan struct{}),
	}
}

// connState is the per-connection protocol state redcon.Conn.Context holds:
// the selected database index and any in-flight MULTI queue.
type connState struct {
	db      int
	inMulti bool
	queued  []*message.Command
}

// ListenAndServe starts accepting connections; it blocks until Shutdown.
func (s *RespServer) ListenAndServe() error {
	s.server = redcon.NewServerNetwork(
		"tcp",
		fmt.Sprintf("%s:%d", s.host, s.port),
		s.handler,
		func(conn redcon.Conn) bool {
			conn.SetContext(&connState{})
			return true
		},
		nil,
	)

	err := s.server.ListenAndServe()
	if err == nil {
		<-s.stopChan
		return nil
	}
	return err
}

// Stop closes the listener without waiting for in-flight connections.
func (s *RespServer) Stop() error {
	return s.server.Close()
}

// Shutdown gracefully shuts the server down.
func (s *RespServer) Shutdown() error {
	defer close(s.stopChan)
	return s.Stop()
}

func (s *RespServer) handler(conn redcon.Conn, command redcon.Command) {
	if len(command.Args) == 0 {
		return
	}

	name := strings.ToUpper(string(command.Args[0]))
	switch name {
	case "QUIT":
		conn.WriteString("OK")
		conn.Close()
		return
	}

	state, _ := conn.Context().(*connState)
	if state == nil {
		state = &connState{}
		conn.SetContext(state)
	}

	cmd := &message.Command{Cmd: name, Args: command.Args[1:]}
	log.Debugf("respserver: received %s", cmd.Cmd)

	switch name {
	case "SELECT":
		s.handleSelect(conn, state, cmd)
		return
	case "MULTI":
		state.inMulti = true
		state.queued = nil
		conn.WriteString("OK")
		return
	case "DISCARD":
		if !state.inMulti {
			conn.WriteError("ERR DISCARD without MULTI")
			return
		}
		state.inMulti = false
		state.queued = nil
		conn.WriteString("OK")
		return
	case "EXEC":
		if !state.inMulti {
			conn.WriteError("ERR EXEC without MULTI")
			return
		}
		cmd = &message.Command{Cmd: "EXEC", Batch: state.queued}
		state.inMulti = false
		state.queued = nil
	default:
		if state.inMulti {
			state.queued = append(state.queued, cmd)
			conn.WriteString("QUEUED")
			return
		}
	}

	if blockingCommands[cmd.Cmd] {
		s.handleBlocking(conn, state.db, cmd)
		return
	}

	result, err := s.dispatcher.Dispatch(state.db, cmd, nil)
	writeReply(conn, result, err)
}

func (s *RespServer) handleSelect(conn redcon.Conn, state *connState, cmd *message.Command) {
	if len(cmd.Args) != 1 {
		conn.WriteError("ERR wrong number of arguments for 'select' command")
		return
	}
	idx, err := strconv.Atoi(string(cmd.Args[0]))
	if err != nil || idx < 0 || idx >= s.dispatcher.NumShards() {
		conn.WriteError("ERR DB index is out of range")
		return
	}
	state.db = idx
	conn.WriteString("OK")
}

// handleBlocking detaches conn and runs the command on a dedicated
// goroutine, so a suspended caller consumes no actor stack time and the
// actor continues serving others. Once the reply is ready (or the command
// never blocked at all), the connection resumes its normal per-command loop.
func (s *RespServer) handleBlocking(conn redcon.Conn, dbIndex int, cmd *message.Command) {
	cmd.Deadline = blockingTimeoutDeadline(cmd)

	dconn := conn.Detach()
	go func() {
		defer dconn.Close()

		sink := newReplySink(dconn.NetConn())
		result, err := s.dispatcher.Dispatch(dbIndex, cmd, sink)
		switch {
		case err != nil:
			writeReply(dconn, nil, err)
		case result == message.Suspended:
			reply, werr := sink.wait(cmd.Deadline)
			writeReply(dconn, reply, werr)
		default:
			writeReply(dconn, result, nil)
		}
		dconn.Flush()

		s.serveDetached(dconn, dbIndex)
	}()
}

// serveDetached keeps handling whatever further commands arrive on a
// detached connection, so a client that pipelines past a blocking command
// isn't cut off.
func (s *RespServer) serveDetached(dconn redcon.DetachedConn, dbIndex int) {
	state := &connState{db: dbIndex}
	for {
		cmd, err := dconn.ReadCommand()
		if err != nil {
			return
		}
		if len(cmd.Args) == 0 {
			continue
		}
		s.handler(detachedAsConn{dconn, state}, cmd)
		if err := dconn.Flush(); err != nil {
			return
		}
	}
}

// detachedAsConn adapts a redcon.DetachedConn plus its saved connState
// back into the plain redcon.Conn interface handler expects, so the
// post-detach loop can reuse the same dispatch logic.
type detachedAsConn struct {
	redcon.DetachedConn
	state *connState
}

func (d detachedAsConn) Context() interface{}    { return d.state }
func (d detachedAsConn) SetContext(v interface{}) {}

// replySink implements core.ReplySink for a parked RESP client: Deliver is
// non-blocking (a size-1 buffered channel), and Alive polls the raw
// connection with a short read deadline -- a best-effort liveness check.
type replySink struct {
	nc net.Conn
	ch chan deliverMsg
}

type deliverMsg struct {
	reply interface{}
	err   error
}

func newReplySink(nc net.Conn) *replySink {
	return &replySink{nc: nc, ch: make(chan deliverMsg, 1)}
}

func (s *replySink) Deliver(reply interface{}, err error) {
	select {
	case s.ch <- deliverMsg{reply, err}:
	default:
	}
}

func (s *replySink) Alive() bool {
	_ = s.nc.SetReadDeadline(time.Now().Add(time.Millisecond))
	_, err := s.nc.Read(make([]byte, 1))
	_ = s.nc.SetReadDeadline(time.Time{})
	if err == nil {
		return true
	}
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return true
	}
	return false
}

const livenessPollInterval = 200 * time.Millisecond

// wait blocks until a reply is delivered, the deadline elapses (returning
// message.Undefined), or the client is found to be gone.
func (s *replySink) wait(deadline *time.Time) (interface{}, error) {
	for {
		wait := livenessPollInterval
		if deadline != nil {
			remaining := time.Until(*deadline)
			if remaining <= 0 {
				return message.Undefined, nil
			}
			if remaining < wait {
				wait = remaining
			}
		}

		select {
		case msg := <-s.ch:
			return msg.reply, msg.err
		case <-time.After(wait):
			if deadline != nil && !time.Now().Before(*deadline) {
				return message.Undefined, nil
			}
			if !s.Alive() {
				return nil, fmt.Errorf("respserver: client disconnected while blocked")
			}
		}
	}
}

// writeReply translates a core reply value into a RESP wire reply.
func writeReply(conn redcon.Conn, result interface{}, err error) {
	if err != nil {
		conn.WriteError(errorMessage(err))
		return
	}

	switch v := result.(type) {
	case nil:
		conn.WriteNull()
	case message.OKType:
		conn.WriteString("OK")
	case message.UndefinedType:
		conn.WriteNull()
	case message.SuspendedType:
		// handleBlocking consumes this case before writeReply normally
		// sees it; a stray Suspended still writes a null, not a protocol
		// error.
		conn.WriteNull()
	case bool:
		if v {
			conn.WriteInt(1)
		} else {
			conn.WriteInt(0)
		}
	case int64:
		conn.WriteInt64(v)
	case int:
		conn.WriteInt(v)
	case float64:
		conn.WriteBulkString(strconv.FormatFloat(v, 'f', -1, 64))
	case string:
		conn.WriteBulkString(v)
	case []byte:
		if v == nil {
			conn.WriteNull()
		} else {
			conn.WriteBulk(v)
		}
	case [][]byte:
		conn.WriteArray(len(v))
		for _, b := range v {
			if b == nil {
				conn.WriteNull()
			} else {
				conn.WriteBulk(b)
			}
		}
	case []interface{}:
		conn.WriteArray(len(v))
		for _, e := range v {
			writeReply(conn, e, nil)
		}
	case []core.ExecReply:
		conn.WriteArray(len(v))
		for _, r := range v {
			writeReply(conn, r.Value, r.Err)
		}
	default:
		conn.WriteError(fmt.Sprintf("ERR unsupported reply type %T", v))
	}
}

// errorMessage maps a core error kind to a RESP error line.
func errorMessage(err error) string {
	switch err {
	case core.ErrWrongType:
		return "WRONGTYPE operation against a key holding the wrong kind of value"
	default:
		return "ERR " + err.Error()
	}
}
