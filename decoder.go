package relaxavro

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/reoring/relaxavro/jsontree"
	"github.com/reoring/relaxavro/schema"
)

// Decoder converts JSON documents into records of one schema and back. A
// Decoder is immutable once New returns and safe for concurrent use.
type Decoder struct {
	schema    *schema.Schema
	mode      Mode
	registry  *Registry
	reader    *reader
	encoder   *encoder
	normalize bool
	logger    *zap.Logger
}

// Option configures a Decoder.
type Option func(*options)

type options struct {
	mode        Mode
	conversions []Conversion
	strategy    PrimitiveStrategy
	logger      *zap.Logger
	normalize   bool
}

// WithMode selects strict, relaxed (the default) or enhanced decoding.
func WithMode(m Mode) Option { return func(o *options) { o.mode = m } }

// WithConversions layers additional logical type conversions over the
// built-in ones. See NewRegistry for the merge rules.
func WithConversions(cs ...Conversion) Option {
	return func(o *options) { o.conversions = append(o.conversions, cs...) }
}

// WithStrategy replaces the primitive strategy the mode would select.
func WithStrategy(s PrimitiveStrategy) Option { return func(o *options) { o.strategy = s } }

// WithLogger sets the logger used for relaxed fallback debug entries.
func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

// WithNormalizer toggles the field alignment pass run before reading
// (enabled by default).
func WithNormalizer(enabled bool) Option { return func(o *options) { o.normalize = enabled } }

// New builds a decoder for the record schema s.
func New(s *schema.Schema, opts ...Option) (*Decoder, error) {
	if s == nil {
		return nil, ErrNilSchema
	}
	if s.Type != schema.Record {
		return nil, ErrRecordSchemaRequired
	}
	o := options{mode: ModeRelaxed, normalize: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.strategy == nil {
		o.strategy = StrategyFor(o.mode, o.logger)
	}
	reg := NewRegistry(o.mode, o.conversions...)
	d := &Decoder{
		schema:    s,
		mode:      o.mode,
		registry:  reg,
		reader:    &reader{strategy: o.strategy, registry: reg, relaxed: o.mode != ModeStrict},
		encoder:   &encoder{registry: reg},
		normalize: o.normalize,
		logger:    o.logger,
	}
	d.logger.Debug("decoder ready",
		zap.String("schema", s.FullName()),
		zap.Stringer("mode", o.mode),
		zap.Strings("logical_types", reg.LogicalTypes()),
	)
	return d, nil
}

// Schema returns the record schema.
func (d *Decoder) Schema() *schema.Schema { return d.schema }

// Mode returns the decoding mode.
func (d *Decoder) Mode() Mode { return d.mode }

// Registry returns the decoder's conversion table.
func (d *Decoder) Registry() *Registry { return d.registry }

// Decode parses data and decodes it into a record.
func (d *Decoder) Decode(ctx context.Context, data []byte) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, err := jsontree.Parse(data)
	if err != nil {
		return nil, parseError(err)
	}
	return d.DecodeNode(ctx, n)
}

// DecodeReader reads the whole document from r and decodes it.
func (d *Decoder) DecodeReader(ctx context.Context, r io.Reader) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, err := jsontree.ParseReader(r)
	if err != nil {
		return nil, parseError(err)
	}
	return d.DecodeNode(ctx, n)
}

// DecodeNode decodes an already parsed tree. n is not modified.
func (d *Decoder) DecodeNode(ctx context.Context, n *jsontree.Node) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.normalize {
		n = Normalize(n, d.schema)
	}
	v, err := d.reader.read(d.schema, n, nil)
	if err != nil {
		return nil, err
	}
	return v.(*Record), nil
}

// EncodeNode writes r as its canonical JSON tree.
func (d *Decoder) EncodeNode(r *Record) (*jsontree.Node, error) {
	return d.encoder.write(d.schema, r, nil)
}

// Encode writes r as canonical JSON.
func (d *Decoder) Encode(r *Record) ([]byte, error) {
	n, err := d.EncodeNode(r)
	if err != nil {
		return nil, err
	}
	return jsontree.Marshal(n)
}

// DecodeToRecord decodes data against s with a one-off Decoder.
func DecodeToRecord(ctx context.Context, data []byte, s *schema.Schema, opts ...Option) (*Record, error) {
	d, err := New(s, opts...)
	if err != nil {
		return nil, err
	}
	return d.Decode(ctx, data)
}

// EncodeToJSON writes r as canonical JSON using r's schema.
func EncodeToJSON(r *Record, opts ...Option) ([]byte, error) {
	if r == nil {
		return nil, errors.New("relaxavro: nil record")
	}
	d, err := New(r.Schema(), opts...)
	if err != nil {
		return nil, err
	}
	return d.Encode(r)
}

func parseError(err error) error {
	return &DecodeError{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err}
}
