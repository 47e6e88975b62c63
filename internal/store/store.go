package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/skycat/blobstore"
	"github.com/hupe1980/skycat/internal/record"
	"github.com/hupe1980/skycat/internal/zone"
	"github.com/hupe1980/skycat/manifest"
	"github.com/hupe1980/skycat/model"
)

// DefaultOpenConcurrency bounds parallel zone validation in Open.
const DefaultOpenConcurrency = 16

// Options configures Open.
type Options struct {
	Logger *slog.Logger
	// OpenConcurrency bounds how many zones are validated at once.
	OpenConcurrency int
	// VerifyIndexes additionally loads every index and checks each bucket
	// against the zone data. It reads all index files.
	VerifyIndexes bool
	// OnSkipped is called when ReadBucket drops corrupt records.
	OnSkipped func(addr model.Address, skipped int, err error)
}

// Record is a raw record together with its running number.
type Record struct {
	Number model.RunningNumber
	Raw    record.Raw
}

// Store reads records from the zone files of one catalog.
type Store struct {
	m       manifest.Manifest
	grid    zone.Grid
	decoder *record.Decoder
	index   *zone.Index
	zones   []zoneFile // zones[z-1]
	opts    Options
	logger  *slog.Logger
	closed  atomic.Bool
}

type zoneFile struct {
	name    string
	blob    blobstore.Blob
	records uint64
}

// Open validates and opens every zone of the catalog described by m.
// It fails on the first zone that is missing or inconsistent.
func Open(ctx context.Context, blobs blobstore.BlobStore, m manifest.Manifest, opts Options) (*Store, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.OpenConcurrency <= 0 {
		opts.OpenConcurrency = DefaultOpenConcurrency
	}

	s := &Store{
		m:       m,
		grid:    zone.NewGrid(m),
		decoder: record.NewDecoder(m),
		index:   zone.NewIndex(blobs, m),
		zones:   make([]zoneFile, m.Zones),
		opts:    opts,
		logger:  opts.Logger,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.OpenConcurrency)
	for i := range s.zones {
		z := model.ZoneID(i + 1)
		g.Go(func() error {
			zf, err := s.openZone(gctx, blobs, z)
			if err != nil {
				return err
			}
			s.zones[i] = zf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		_ = s.closeBlobs()
		return nil, err
	}
	return s, nil
}

func (s *Store) openZone(ctx context.Context, blobs blobstore.BlobStore, z model.ZoneID) (zoneFile, error) {
	name := s.m.DataName(z)
	blob, err := blobs.Open(ctx, name)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			err = ErrMissingZone
		}
		return zoneFile{}, &ZoneError{Zone: z, File: name, Err: err}
	}

	fail := func(file string, err error) (zoneFile, error) {
		_ = blob.Close()
		return zoneFile{}, &ZoneError{Zone: z, File: file, Err: err}
	}

	size := blob.Size()
	if size%int64(s.m.Record.Size) != 0 {
		return fail(name, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrCorruptZone, size, s.m.Record.Size))
	}
	if records := size / int64(s.m.Record.Size); records > model.MaxRunningNumber {
		return fail(name, fmt.Errorf("%w: %d records, identifiers allow at most %d", ErrCorruptZone, records, model.MaxRunningNumber))
	}

	loc, err := s.index.Probe(ctx, z)
	if err != nil {
		return fail(indexFile(s.m, z, loc), translateIndexError(err))
	}

	if s.opts.VerifyIndexes {
		t, err := s.index.Table(ctx, z)
		if err != nil {
			return fail(loc.Name, translateIndexError(err))
		}
		if err := t.Validate(size, s.m.Record.Size); err != nil {
			return fail(loc.Name, translateIndexError(err))
		}
	}

	return zoneFile{name: name, blob: blob, records: uint64(size) / uint64(s.m.Record.Size)}, nil
}

func indexFile(m manifest.Manifest, z model.ZoneID, loc zone.Located) string {
	if loc.Name != "" {
		return loc.Name
	}
	return m.IndexName(z)
}

func translateIndexError(err error) error {
	switch {
	case errors.Is(err, zone.ErrMissingIndex):
		return fmt.Errorf("%w: %w", ErrMissingZone, err)
	case errors.Is(err, zone.ErrCorruptIndex):
		return fmt.Errorf("%w: %w", ErrCorruptIndex, err)
	case errors.Is(err, zone.ErrOutOfRange):
		return fmt.Errorf("%w: %w", ErrOutOfRange, err)
	default:
		return err
	}
}

// Manifest returns the catalog layout.
func (s *Store) Manifest() manifest.Manifest { return s.m }

// Grid returns the zone/bucket grid.
func (s *Store) Grid() zone.Grid { return s.grid }

// Decoder returns the record decoder.
func (s *Store) Decoder() *record.Decoder { return s.decoder }

// Index returns the zone index.
func (s *Store) Index() *zone.Index { return s.index }

// Records returns the number of records in zone z.
func (s *Store) Records(z model.ZoneID) (uint64, error) {
	zf, err := s.zone(z)
	if err != nil {
		return 0, err
	}
	return zf.records, nil
}

func (s *Store) zone(z model.ZoneID) (*zoneFile, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if !s.grid.ValidZone(z) {
		return nil, fmt.Errorf("%w: zone %d not in [1, %d]", ErrOutOfRange, z, s.grid.Zones())
	}
	return &s.zones[z-1], nil
}

// ReadRaw reads record rn (1-based) of zone z.
func (s *Store) ReadRaw(ctx context.Context, z model.ZoneID, rn model.RunningNumber) (record.Raw, error) {
	zf, err := s.zone(z)
	if err != nil {
		return record.Raw{}, err
	}
	if rn < 1 || uint64(rn) > zf.records {
		return record.Raw{}, fmt.Errorf("%w: running number %d not in [1, %d] of zone %d", ErrOutOfRange, rn, zf.records, z)
	}

	size := s.m.Record.Size
	buf := make([]byte, size)
	if err := blobstore.ReadFull(ctx, zf.blob, buf, int64(rn-1)*int64(size)); err != nil {
		return record.Raw{}, &ZoneError{Zone: z, File: zf.name, Err: err}
	}

	raw, err := s.decoder.Decode(buf)
	if err != nil {
		return record.Raw{}, &ZoneError{Zone: z, File: zf.name, Err: err}
	}
	return raw, nil
}

// ReadRawMany reads several records of zone z, in the order given.
func (s *Store) ReadRawMany(ctx context.Context, z model.ZoneID, rns []model.RunningNumber) ([]record.Raw, error) {
	out := make([]record.Raw, 0, len(rns))
	for _, rn := range rns {
		raw, err := s.ReadRaw(ctx, z, rn)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

// ReadBucket reads and decodes every record of one cell with a single read.
// Corrupt records are skipped; the read fails only if all of them are corrupt.
func (s *Store) ReadBucket(ctx context.Context, addr model.Address) ([]Record, error) {
	zf, err := s.zone(addr.Zone)
	if err != nil {
		return nil, err
	}

	offset, count, err := s.index.AddressRange(ctx, addr)
	if err != nil {
		return nil, &ZoneError{Zone: addr.Zone, File: s.m.IndexName(addr.Zone), Err: translateIndexError(err)}
	}
	if count == 0 {
		return nil, nil
	}

	size := uint64(s.m.Record.Size)
	end := offset + uint64(count)*size
	if offset%size != 0 || end > uint64(zf.blob.Size()) {
		return nil, &ZoneError{Zone: addr.Zone, File: zf.name, Err: fmt.Errorf(
			"%w: bucket %d spans [%d, %d) of %d bytes", ErrCorruptIndex, addr.Bucket, offset, end, zf.blob.Size())}
	}

	buf := make([]byte, end-offset)
	if err := blobstore.ReadFull(ctx, zf.blob, buf, int64(offset)); err != nil {
		return nil, &ZoneError{Zone: addr.Zone, File: zf.name, Err: err}
	}

	first := model.RunningNumber(offset/size) + 1
	out := make([]Record, 0, count)
	var (
		skipped  int
		firstErr error
	)
	for i := range int(count) {
		raw, err := s.decoder.Decode(buf[uint64(i)*size:])
		if err != nil {
			skipped++
			if firstErr == nil {
				firstErr = fmt.Errorf("record %d: %w", first+model.RunningNumber(i), err)
			}
			continue
		}
		out = append(out, Record{Number: first + model.RunningNumber(i), Raw: raw})
	}

	if skipped > 0 {
		s.skipped(addr, skipped, firstErr)
		if len(out) == 0 {
			return nil, &ZoneError{Zone: addr.Zone, File: zf.name, Err: firstErr}
		}
	}
	return out, nil
}

func (s *Store) skipped(addr model.Address, n int, err error) {
	if s.opts.OnSkipped != nil {
		s.opts.OnSkipped(addr, n, err)
		return
	}
	s.logger.Warn("skipped corrupt records",
		slog.String("cell", addr.String()),
		slog.Int("skipped", n),
		slog.Any("error", err),
	)
}

// Close releases all zone files. It is idempotent.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.closeBlobs()
}

func (s *Store) closeBlobs() error {
	var errs []error
	for i := range s.zones {
		if b := s.zones[i].blob; b != nil {
			if err := b.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
