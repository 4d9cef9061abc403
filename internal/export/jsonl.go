package export

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"tickframe/internal/core"
)

// JSONL writes one JSON object per line: a "run" header, then per exported
// tick a "tick" summary followed by its "entity" lines.
type JSONL struct {
	w      *bufio.Writer
	enc    *json.Encoder
	closer io.Closer

	// tick stages one tick's lines so a failed tick leaves nothing behind.
	tick    bytes.Buffer
	tickEnc *json.Encoder
}

type jsonlRun struct {
	Type    string                 `json:"type"`
	Name    string                 `json:"name"`
	Started time.Time              `json:"started"`
	Params  map[string]paramValues `json:"params,omitempty"`
}

type paramValues map[string]string

type jsonlTick struct {
	Type string `json:"type"`
	Summary
}

type jsonlEntity struct {
	Type string `json:"type"`
	Record
}

// NewJSONL writes to w. Close does not close w.
func NewJSONL(w io.Writer) *JSONL {
	bw := bufio.NewWriter(w)
	j := &JSONL{w: bw, enc: json.NewEncoder(bw)}
	j.tickEnc = json.NewEncoder(&j.tick)
	return j
}

// CreateJSONL creates (or truncates) the file at path.
func CreateJSONL(path string) (*JSONL, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create export file: %w", err)
	}
	j := NewJSONL(f)
	j.closer = f
	return j, nil
}

func (j *JSONL) Begin(_ context.Context, meta RunMeta) error {
	return j.enc.Encode(jsonlRun{Type: "run", Name: meta.Name, Started: meta.Started.UTC(), Params: groupValues(meta.Params)})
}

// Write appends a tick and its entities. The tick is staged in memory and
// reaches the writer only once every line has encoded.
func (j *JSONL) Write(ctx context.Context, sum Summary, records []Record) error {
	j.tick.Reset()
	if err := j.stage(ctx, sum, records); err != nil {
		j.tick.Reset()
		return err
	}
	if _, err := j.w.Write(j.tick.Bytes()); err != nil {
		return err
	}
	return j.w.Flush()
}

func (j *JSONL) stage(ctx context.Context, sum Summary, records []Record) error {
	if err := j.tickEnc.Encode(jsonlTick{Type: "tick", Summary: sum}); err != nil {
		return err
	}
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := j.tickEnc.Encode(jsonlEntity{Type: "entity", Record: r}); err != nil {
			return err
		}
	}
	return nil
}

func (j *JSONL) Close() error {
	err := j.w.Flush()
	if j.closer != nil {
		if cerr := j.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func groupValues(ps core.ParameterSnapshot) map[string]paramValues {
	if len(ps.Groups) == 0 {
		return nil
	}
	out := make(map[string]paramValues, len(ps.Groups))
	for _, g := range ps.Groups {
		vals := make(paramValues, len(g.Params))
		for _, p := range g.Params {
			vals[p.Key] = p.Value
		}
		out[g.Name] = vals
	}
	return out
}
