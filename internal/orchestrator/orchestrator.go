// Package orchestrator manages the lifecycle of lml's container
// processes: one persistent child per configured runtime, talked to over
// newline-delimited JSON with sentinel-prefixed stdout replies. The
// request/reply pump here is grounded on the same pattern an LSP client
// uses to drive a language server subprocess, adapted from a
// Content-Length-framed protocol to lml's simpler line-sentinel one.
package orchestrator

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/qrailibs/lmlang/internal/config"
	"github.com/qrailibs/lmlang/internal/values"
)

const (
	sentinelReady  = "__READY__"
	sentinelResult = "__RESULT__"
	sentinelError  = "__ERROR__"
)

// request is the newline-delimited JSON payload written to a worker's
// stdin: the raw embedded code plus the evaluated attribute context.
type request struct {
	Code    string         `json:"code"`
	Context map[string]any `json:"context"`
}

// container is one persistent worker: a running child process fronted by
// a serialized request/reply channel. Only one request may be in flight
// at a time, enforced by mu.
type container struct {
	name    string
	cmd     *exec.Cmd
	writer  io.WriteCloser
	stdout  *bufio.Reader
	mu      sync.Mutex
	workDir string
}

// Orchestrator owns every configured container's process, workspace
// directory, and IPC channel.
type Orchestrator struct {
	ProjectDir string
	containers map[string]*container
}

// New creates an Orchestrator that will materialize containers under
// <projectDir>/.lml/<runtime>/.
func New(projectDir string) *Orchestrator {
	return &Orchestrator{ProjectDir: projectDir, containers: make(map[string]*container)}
}

// Init spawns every configured container, writes its dependency manifest,
// invokes its package manager, and waits for its __READY__ marker. If any
// container fails, every container started so far is destroyed before
// Init returns the error.
func (o *Orchestrator) Init(ctx context.Context, cfg *config.Config) error {
	for name, cc := range cfg.Containers {
		c, err := o.startContainer(ctx, name, cc)
		if err != nil {
			o.Destroy(context.Background())
			return fmt.Errorf("starting container %q: %w", name, err)
		}
		o.containers[name] = c
	}
	return nil
}

func (o *Orchestrator) startContainer(ctx context.Context, name string, cc config.ContainerConfig) (*container, error) {
	workDir := filepath.Join(o.ProjectDir, ".lml", cc.Runtime, name)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, err
	}

	if err := writeManifest(workDir, cc); err != nil {
		return nil, err
	}
	if err := installDependencies(ctx, workDir, cc); err != nil {
		return nil, err
	}

	scriptPath, err := writeWorkerScript(workDir, cc.Runtime)
	if err != nil {
		return nil, err
	}

	cmd, err := workerCommand(ctx, cc.Runtime, scriptPath)
	if err != nil {
		return nil, err
	}
	cmd.Dir = workDir

	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	c := &container{
		name:    name,
		cmd:     cmd,
		writer:  stdinPipe,
		stdout:  bufio.NewReader(stdoutPipe),
		workDir: workDir,
	}

	if err := c.awaitReady(); err != nil {
		_ = cmd.Process.Kill()
		return nil, err
	}
	return c, nil
}

func (c *container) awaitReady() error {
	for {
		line, err := c.stdout.ReadString('\n')
		if err != nil {
			return fmt.Errorf("container exited before becoming ready: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == sentinelReady {
			return nil
		}
		// informational log line: passed through to the host's stdout
		fmt.Fprintln(os.Stdout, line)
	}
}

// Execute submits code to the named container with the evaluated
// attribute bag as context, and returns the decoded JSON result. It
// implements interp.ContainerRunner.
func (o *Orchestrator) Execute(ctx context.Context, name, code string, attrs map[string]values.Value) (any, error) {
	c, ok := o.containers[name]
	if !ok {
		return nil, fmt.Errorf("no container configured named %q", name)
	}
	return c.execute(ctx, code, attrs)
}

func (c *container) execute(ctx context.Context, code string, attrs map[string]values.Value) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := requestID() // correlates this call's log lines; not sent on the wire

	reqCtx := make(map[string]any, len(attrs))
	for k, v := range attrs {
		reqCtx[k] = unwrap(v)
	}

	payload, err := json.Marshal(request{Code: code, Context: reqCtx})
	if err != nil {
		return nil, err
	}
	if _, err := c.writer.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("writing to container %q (request %s): %w", c.name, id, err)
	}

	type readResult struct {
		line string
		err  error
	}
	done := make(chan readResult, 1)
	go func() {
		for {
			line, err := c.stdout.ReadString('\n')
			if err != nil {
				done <- readResult{line: line, err: err}
				return
			}
			trimmed := strings.TrimRight(line, "\r\n")
			if strings.HasPrefix(trimmed, sentinelResult) || strings.HasPrefix(trimmed, sentinelError) {
				done <- readResult{line: line}
				return
			}
			// informational log line: passed through to the host's stdout
			fmt.Fprintln(os.Stdout, trimmed)
		}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("reading from container %q: %w", c.name, r.err)
		}
		line := strings.TrimRight(r.line, "\r\n")
		switch {
		case strings.HasPrefix(line, sentinelResult):
			var result any
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, sentinelResult)), &result); err != nil {
				return nil, fmt.Errorf("decoding result from container %q: %w", c.name, err)
			}
			return result, nil
		case strings.HasPrefix(line, sentinelError):
			return nil, fmt.Errorf("container %q: %s", c.name, strings.TrimPrefix(line, sentinelError))
		default:
			return nil, fmt.Errorf("container %q: unexpected reply line %q", c.name, line)
		}
	}
}

// unwrap converts a lml runtime value into a plain Go value suitable for
// JSON encoding in a container request's context.
func unwrap(v values.Value) any {
	switch v.Kind {
	case values.KindStr:
		return v.Str
	case values.KindInt:
		return v.Int
	case values.KindDbl:
		return v.Dbl
	case values.KindBool:
		return v.Bool
	case values.KindNil:
		return nil
	case values.KindArray:
		out := make([]any, len(v.Arr.Elements))
		for i, el := range v.Arr.Elements {
			out[i] = unwrap(el)
		}
		return out
	case values.KindObject:
		out := make(map[string]any, v.Obj.Len())
		for _, k := range v.Obj.Keys() {
			fv, _ := v.Obj.Get(k)
			out[k] = unwrap(fv)
		}
		return out
	default:
		return v.Payload
	}
}

// Destroy terminates every running container, giving each a grace period
// to exit before force-killing it.
func (o *Orchestrator) Destroy(ctx context.Context) {
	for _, c := range o.containers {
		c.destroy()
	}
	o.containers = make(map[string]*container)
}

func (c *container) destroy() {
	if c.writer != nil {
		_ = c.writer.Close()
	}
	done := make(chan error, 1)
	go func() { done <- c.cmd.Wait() }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		if c.cmd.Process != nil {
			_ = c.cmd.Process.Kill()
		}
	}
}

// requestID generates the id execute puts into its write-failure error to
// correlate it with a container call, grounded on the nextID pattern an
// LSP client uses to tag outgoing requests.
func requestID() string { return uuid.NewString() }
