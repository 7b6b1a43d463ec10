package metrics

import (
	"context"
	"io"
	"time"

	"github.com/reoring/relaxavro"
	"github.com/reoring/relaxavro/jsontree"
	"github.com/reoring/relaxavro/schema"
)

// Decoder wraps a relaxavro.Decoder and records every decode and encode call.
type Decoder struct {
	d *relaxavro.Decoder
	m *Metrics
}

// Instrument returns d with decode and encode calls recorded on m.
func (m *Metrics) Instrument(d *relaxavro.Decoder) *Decoder {
	return &Decoder{d: d, m: m}
}

// Schema returns the record schema of the wrapped decoder.
func (d *Decoder) Schema() *schema.Schema { return d.d.Schema() }

// Mode returns the mode of the wrapped decoder.
func (d *Decoder) Mode() relaxavro.Mode { return d.d.Mode() }

// Decode forwards to the wrapped decoder.
func (d *Decoder) Decode(ctx context.Context, data []byte) (*relaxavro.Record, error) {
	start := time.Now()
	rec, err := d.d.Decode(ctx, data)
	d.observe(time.Since(start), err)
	return rec, err
}

// DecodeReader forwards to the wrapped decoder.
func (d *Decoder) DecodeReader(ctx context.Context, r io.Reader) (*relaxavro.Record, error) {
	start := time.Now()
	rec, err := d.d.DecodeReader(ctx, r)
	d.observe(time.Since(start), err)
	return rec, err
}

// DecodeNode forwards to the wrapped decoder.
func (d *Decoder) DecodeNode(ctx context.Context, n *jsontree.Node) (*relaxavro.Record, error) {
	start := time.Now()
	rec, err := d.d.DecodeNode(ctx, n)
	d.observe(time.Since(start), err)
	return rec, err
}

// Encode forwards to the wrapped decoder.
func (d *Decoder) Encode(r *relaxavro.Record) ([]byte, error) {
	out, err := d.d.Encode(r)
	d.m.encodes.WithLabelValues(d.Schema().FullName(), outcome(err)).Inc()
	return out, err
}

func (d *Decoder) observe(elapsed time.Duration, err error) {
	name, mode := d.Schema().FullName(), d.Mode().String()
	d.m.duration.WithLabelValues(name, mode).Observe(elapsed.Seconds())
	d.m.decodes.WithLabelValues(name, mode, outcome(err)).Inc()
	if err != nil {
		code := "unknown"
		if de, ok := relaxavro.AsDecodeError(err); ok {
			code = de.Code
		}
		d.m.failures.WithLabelValues(name, code).Inc()
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
