// FILE: lixenwraith/sqllog/compat/tcp_ingest.go
package compat

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/gnet/v2"

	"github.com/lixenwraith/sqllog"
)

// defaultMaxLineBytes bounds an unterminated line before the connection is dropped
const defaultMaxLineBytes = 1 << 20

// TCPIngest is a gnet event handler for the line protocol "alias<TAB>sql\n".
// Each line is written as "sql\n" to the alias' logger through a writer
// cached per connection.
type TCPIngest struct {
	gnet.BuiltinEventEngine

	registry     *sqllog.Registry
	diag         sqllog.Diagnostics
	maxLineBytes int

	mu     sync.Mutex
	eng    gnet.Engine
	booted bool

	Lines     atomic.Uint64
	Malformed atomic.Uint64
	Failed    atomic.Uint64
}

// connState holds the writers one connection has used
type connState struct {
	writers map[string]*sqllog.Writer
}

// NewTCPIngest creates a TCP ingest handler backed by registry
func NewTCPIngest(registry *sqllog.Registry, diag sqllog.Diagnostics) *TCPIngest {
	if diag == nil {
		diag = sqllog.NopDiagnostics()
	}
	return &TCPIngest{
		registry:     registry,
		diag:         diag,
		maxLineBytes: defaultMaxLineBytes,
	}
}

// OnBoot records the engine so Stop can shut it down
func (t *TCPIngest) OnBoot(eng gnet.Engine) gnet.Action {
	t.mu.Lock()
	t.eng = eng
	t.booted = true
	t.mu.Unlock()
	return gnet.None
}

// OnOpen attaches an empty writer cache to the connection
func (t *TCPIngest) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	c.SetContext(&connState{writers: make(map[string]*sqllog.Writer)})
	return nil, gnet.None
}

// OnClose releases the connection's cached writers
func (t *TCPIngest) OnClose(c gnet.Conn, _ error) gnet.Action {
	if st, ok := c.Context().(*connState); ok {
		for _, w := range st.writers {
			_ = w.Close()
		}
	}
	return gnet.None
}

// OnTraffic consumes every complete line in the inbound buffer
func (t *TCPIngest) OnTraffic(c gnet.Conn) gnet.Action {
	buf, err := c.Peek(-1)
	if err != nil {
		return gnet.Close
	}

	st, _ := c.Context().(*connState)
	consumed := 0
	for {
		idx := bytes.IndexByte(buf[consumed:], '\n')
		if idx < 0 {
			break
		}
		t.handleLine(st, buf[consumed:consumed+idx])
		consumed += idx + 1
	}
	if consumed > 0 {
		_, _ = c.Discard(consumed)
	}

	if len(buf)-consumed > t.maxLineBytes {
		t.Malformed.Add(1)
		t.diag.Warn("tcp ingest line too long, closing connection", "remote", c.RemoteAddr().String())
		return gnet.Close
	}
	return gnet.None
}

// Stop shuts the engine down. It is a no-op before the engine has booted.
func (t *TCPIngest) Stop(ctx context.Context) error {
	t.mu.Lock()
	eng, booted := t.eng, t.booted
	t.mu.Unlock()
	if !booted {
		return nil
	}
	return eng.Stop(ctx)
}

// handleLine writes one protocol line
func (t *TCPIngest) handleLine(st *connState, line []byte) {
	alias, sql, ok := ParseLine(line)
	if !ok {
		t.Malformed.Add(1)
		t.diag.Warn("tcp ingest malformed line", "bytes", len(line), "line", messageSanitizer.Preview(string(line), 80))
		return
	}
	t.Lines.Add(1)

	w, err := t.writerFor(st, alias)
	if err == nil {
		_, err = w.WriteString(sql + "\n")
	}
	if err != nil {
		t.Failed.Add(1)
		t.diag.Warn("tcp ingest write failed", "target", aliasSanitizer.Sanitize(alias), "error", err)
	}
}

// writerFor returns the connection's writer for alias, creating it on first use
func (t *TCPIngest) writerFor(st *connState, alias string) (*sqllog.Writer, error) {
	if st != nil {
		if w, ok := st.writers[alias]; ok {
			return w, nil
		}
	}
	l, err := t.registry.Logger(sqllog.Target{Alias: alias})
	if err != nil {
		return nil, err
	}
	w := l.NewWriter()
	if st != nil {
		st.writers[alias] = w
	}
	return w, nil
}

// ParseLine splits "alias<TAB>sql" with an optional trailing CR.
// Both parts must be non-empty.
func ParseLine(line []byte) (alias, sql string, ok bool) {
	line = bytes.TrimSuffix(line, []byte{'\r'})
	i := bytes.IndexByte(line, '\t')
	if i <= 0 || i == len(line)-1 {
		return "", "", false
	}
	return string(line[:i]), string(line[i+1:]), true
}
