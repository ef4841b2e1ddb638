package symgo

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/symgo/hasher"
	"github.com/hupe1980/symgo/internal/conv"
	"github.com/hupe1980/symgo/internal/fs"
	"github.com/hupe1980/symgo/internal/hash"
)

// osFS is swapped by tests to inject write faults into SaveToFile.
var osFS = fs.Default

// CompressionType defines the compression algorithm used for snapshot blocks.
type CompressionType uint8

const (
	// CompressionNone indicates no compression.
	CompressionNone CompressionType = 0
	// CompressionLZ4 indicates LZ4 block compression (fast, lighter ratio).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD indicates ZSTD block compression (better ratio).
	CompressionZSTD CompressionType = 2
)

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

const (
	snapshotMagic   = 0x53594D47 // "SYMG"
	snapshotVersion = 1

	snapshotHeaderSize = 16
	blockHeaderSize    = 8
)

type snapshotOptions struct {
	compression CompressionType
}

// SnapshotOption configures snapshot writing.
type SnapshotOption func(*snapshotOptions)

// WithCompression selects the compression algorithm for snapshot blocks.
// The default is CompressionZSTD.
func WithCompression(c CompressionType) SnapshotOption {
	return func(o *snapshotOptions) {
		o.compression = c
	}
}

func applySnapshotOptions(optFns []SnapshotOption) snapshotOptions {
	o := snapshotOptions{
		compression: CompressionZSTD,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// WriteSnapshot writes the table's contents to w.
//
// A snapshot records string content, the shard count, and the hasher name.
// Loading it with ReadSnapshot and a matching hasher rebuilds a table in
// which every string maps to the same raw Symbol value it had in this table.
//
// Concurrent interns during the write are allowed; the snapshot captures a
// per-shard point-in-time view and strings interned while it runs may or may
// not be included.
//
// Format:
// Magic (4 bytes)
// Version (4 bytes)
// Checksum (4 bytes) - CRC32-C of payload
// PayloadLength (4 bytes)
// Payload:
//
//	HasherName (string)
//	ShardCount (4 bytes)
//	Compression (1 byte)
//	Blocks, one per shard...
//	  UncompressedSize (4 bytes)
//	  CompressedSize (4 bytes) - 0 means stored uncompressed
//	  Data (bytes)
//
// Each block decompresses to the shard's strings in local-index order:
// Count (4 bytes), then per string Length (4 bytes) followed by the bytes.
func (t *SymbolTable) WriteSnapshot(ctx context.Context, w io.Writer, optFns ...SnapshotOption) error {
	opts := applySnapshotOptions(optFns)
	start := time.Now()

	symbols, written, err := t.writeSnapshot(ctx, w, opts)
	duration := time.Since(start)

	t.metrics.RecordSnapshotSave(duration, err)
	t.logger.LogSnapshotSave(ctx, symbols, written, duration, err)
	return err
}

func (t *SymbolTable) writeSnapshot(ctx context.Context, w io.Writer, opts snapshotOptions) (symbols int, written int64, err error) {
	if opts.compression > CompressionZSTD {
		return 0, 0, fmt.Errorf("unsupported compression: %d", opts.compression)
	}
	hasherName := t.hasher.Name()
	nameLen, err := conv.IntToUint16(len(hasherName))
	if err != nil {
		return 0, 0, fmt.Errorf("hasher name too long: %w", err)
	}

	views := make([][]string, len(t.shards))
	for i := range t.shards {
		views[i] = t.shards[i].View()
		symbols += len(views[i])
	}

	// Encode and compress shard blocks in parallel; shards are independent.
	blocks := make([][]byte, len(views))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range views {
		g.Go(func() error {
			encoded, err := encodeShardBlock(views[i])
			if err != nil {
				return fmt.Errorf("encode shard %d: %w", i, err)
			}
			block, err := compressBlock(encoded, opts.compression)
			if err != nil {
				return fmt.Errorf("compress shard %d: %w", i, err)
			}
			blocks[i] = block
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return symbols, 0, err
	}

	payloadSize := 2 + len(hasherName) + 4 + 1
	for _, b := range blocks {
		payloadSize += len(b)
	}
	payload := make([]byte, 0, payloadSize)
	payload = binary.LittleEndian.AppendUint16(payload, nameLen)
	payload = append(payload, hasherName...)
	payload = binary.LittleEndian.AppendUint32(payload, uint32(len(t.shards)))
	payload = append(payload, byte(opts.compression))
	for _, b := range blocks {
		payload = append(payload, b...)
	}

	payloadLen, err := conv.IntToUint32(len(payload))
	if err != nil {
		return symbols, 0, fmt.Errorf("snapshot payload too large: %w", err)
	}

	header := make([]byte, snapshotHeaderSize)
	binary.LittleEndian.PutUint32(header[0:4], snapshotMagic)
	binary.LittleEndian.PutUint32(header[4:8], snapshotVersion)
	binary.LittleEndian.PutUint32(header[8:12], hash.CRC32C(payload))
	binary.LittleEndian.PutUint32(header[12:16], payloadLen)

	if _, err := w.Write(header); err != nil {
		return symbols, 0, err
	}
	if _, err := w.Write(payload); err != nil {
		return symbols, 0, err
	}
	return symbols, int64(snapshotHeaderSize + len(payload)), nil
}

// encodeShardBlock encodes a shard's strings in local-index order.
func encodeShardBlock(strs []string) ([]byte, error) {
	size := 4
	for _, s := range strs {
		size += 4 + len(s)
	}
	buf := make([]byte, 0, size)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(strs)))
	for _, s := range strs {
		// Lengths are framed as uint32; a string that cannot be is
		// unrepresentable in the format.
		n, err := conv.IntToUint32(len(s))
		if err != nil {
			return nil, fmt.Errorf("string too long: %w", err)
		}
		buf = binary.LittleEndian.AppendUint32(buf, n)
		buf = append(buf, s...)
	}
	return buf, nil
}

// ReadSnapshot reads a snapshot from r and returns the rebuilt table.
//
// The snapshot decides the shard count; passing a conflicting WithNumShards
// fails with ErrShardCountMismatch. The hasher is resolved from the recorded
// name via hasher.ByName unless WithHasher supplies one: a supplied hasher
// whose Name matches is used as-is (this is how custom-seeded or custom
// hashers round-trip), one whose Name differs fails with ErrHasherMismatch.
// With the same hasher and shard count as the writing table, every string
// maps to the raw Symbol value it had when the snapshot was written.
func ReadSnapshot(ctx context.Context, r io.Reader, optFns ...Option) (*SymbolTable, error) {
	opts := applyOptions(optFns)
	start := time.Now()

	t, symbols, err := readSnapshot(ctx, r, opts, optFns)
	duration := time.Since(start)

	opts.metricsCollector.RecordSnapshotLoad(duration, err)
	opts.logger.LogSnapshotLoad(ctx, symbols, duration, err)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func readSnapshot(ctx context.Context, r io.Reader, opts options, optFns []Option) (*SymbolTable, int, error) {
	header := make([]byte, snapshotHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, 0, translateSnapshotError(err)
	}

	magic := binary.LittleEndian.Uint32(header[0:4])
	if magic != snapshotMagic {
		return nil, 0, fmt.Errorf("%w: invalid magic: %x", ErrCorruptSnapshot, magic)
	}
	version := binary.LittleEndian.Uint32(header[4:8])
	if version != snapshotVersion {
		return nil, 0, fmt.Errorf("unsupported snapshot version: %d", version)
	}
	checksum := binary.LittleEndian.Uint32(header[8:12])
	length := binary.LittleEndian.Uint32(header[12:16])

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, 0, translateSnapshotError(err)
	}
	if hash.CRC32C(payload) != checksum {
		return nil, 0, fmt.Errorf("%w: checksum mismatch", ErrCorruptSnapshot)
	}

	pr := newPayloadReader(payload)
	hasherName := pr.readString()
	shardCount := pr.readUint32()
	compression := CompressionType(pr.readByte())
	if pr.err != nil {
		return nil, 0, translateSnapshotError(pr.err)
	}
	if shardCount < 1 || shardCount > MaxShardCount {
		return nil, 0, fmt.Errorf("%w: shard count %d out of range", ErrCorruptSnapshot, shardCount)
	}
	if compression > CompressionZSTD {
		return nil, 0, fmt.Errorf("%w: unknown compression: %d", ErrCorruptSnapshot, compression)
	}

	if opts.numShardsSet && opts.numShards != int(shardCount) {
		return nil, 0, fmt.Errorf("%w: snapshot has %d shards, table configured for %d", ErrShardCountMismatch, shardCount, opts.numShards)
	}

	h := opts.hasher
	if h.Name() != hasherName {
		if opts.hasherSet {
			return nil, 0, fmt.Errorf("%w: snapshot written with %q, table configured for %q", ErrHasherMismatch, hasherName, h.Name())
		}
		var ok bool
		h, ok = hasher.ByName(hasherName)
		if !ok {
			return nil, 0, fmt.Errorf("%w: %q", ErrUnknownHasher, hasherName)
		}
	}

	blocks := make([][]byte, shardCount)
	for i := 0; i < int(shardCount); i++ {
		blocks[i] = pr.readBlock()
	}
	if pr.err != nil {
		return nil, 0, translateSnapshotError(pr.err)
	}
	if pr.pos != len(pr.buf) {
		return nil, 0, fmt.Errorf("%w: %d trailing bytes", ErrCorruptSnapshot, len(pr.buf)-pr.pos)
	}

	ctor := make([]Option, 0, len(optFns)+2)
	ctor = append(ctor, optFns...)
	ctor = append(ctor, WithNumShards(int(shardCount)), WithHasher(h))
	t, err := New(ctor...)
	if err != nil {
		return nil, 0, err
	}

	// Shards load in parallel; block i interns into shard i only, so the
	// goroutines touch disjoint locks and per-shard insertion order is
	// preserved. That order is what keeps raw Symbol values stable.
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range blocks {
		g.Go(func() error {
			data, err := decompressBlock(blocks[i], compression)
			if err != nil {
				return fmt.Errorf("%w: shard %d: %w", ErrCorruptSnapshot, i, err)
			}
			strs, err := decodeShardBlock(data)
			if err != nil {
				return translateSnapshotError(fmt.Errorf("shard %d: %w", i, err))
			}
			for _, s := range strs {
				sym, isNew, err := t.intern(s)
				if err != nil {
					return translateSnapshotError(err)
				}
				if !isNew {
					return fmt.Errorf("%w: duplicate string in shard %d", ErrCorruptSnapshot, i)
				}
				if si := t.shardOf(sym); si != uint32(i) {
					return fmt.Errorf("%w: shard %d holds content that hashes to shard %d", ErrHasherMismatch, i, si)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return t, t.Len(), nil
}

// decodeShardBlock decodes an uncompressed shard block into its strings.
func decodeShardBlock(block []byte) ([]string, error) {
	if len(block) < 4 {
		return nil, io.ErrUnexpectedEOF
	}
	count := binary.LittleEndian.Uint32(block)
	pos := 4

	// Every entry needs at least a length prefix; reject counts the block
	// cannot possibly hold before allocating for them.
	if uint64(count)*4 > uint64(len(block)-pos) {
		return nil, io.ErrUnexpectedEOF
	}

	strs := make([]string, 0, count)
	for i := 0; i < int(count); i++ {
		if pos+4 > len(block) {
			return nil, io.ErrUnexpectedEOF
		}
		n, err := conv.Uint32ToInt(binary.LittleEndian.Uint32(block[pos:]))
		if err != nil {
			return nil, io.ErrUnexpectedEOF
		}
		pos += 4
		if pos+n > len(block) {
			return nil, io.ErrUnexpectedEOF
		}
		strs = append(strs, string(block[pos:pos+n]))
		pos += n
	}
	if pos != len(block) {
		return nil, fmt.Errorf("%d trailing block bytes", len(block)-pos)
	}
	return strs, nil
}

type payloadReader struct {
	buf []byte
	pos int
	err error
}

func newPayloadReader(b []byte) *payloadReader {
	return &payloadReader{buf: b}
}

func (p *payloadReader) readByte() byte {
	if p.err != nil {
		return 0
	}
	if p.pos+1 > len(p.buf) {
		p.err = io.ErrUnexpectedEOF
		return 0
	}
	v := p.buf[p.pos]
	p.pos++
	return v
}

func (p *payloadReader) readUint32() uint32 {
	if p.err != nil {
		return 0
	}
	if p.pos+4 > len(p.buf) {
		p.err = io.ErrUnexpectedEOF
		return 0
	}
	v := binary.LittleEndian.Uint32(p.buf[p.pos:])
	p.pos += 4
	return v
}

func (p *payloadReader) readString() string {
	if p.err != nil {
		return ""
	}
	if p.pos+2 > len(p.buf) {
		p.err = io.ErrUnexpectedEOF
		return ""
	}
	l := binary.LittleEndian.Uint16(p.buf[p.pos:])
	p.pos += 2

	if p.pos+int(l) > len(p.buf) {
		p.err = io.ErrUnexpectedEOF
		return ""
	}
	s := string(p.buf[p.pos : p.pos+int(l)])
	p.pos += int(l)
	return s
}

// readBlock returns one framed block, header included, advancing past it.
func (p *payloadReader) readBlock() []byte {
	if p.err != nil {
		return nil
	}
	if p.pos+blockHeaderSize > len(p.buf) {
		p.err = io.ErrUnexpectedEOF
		return nil
	}
	uncompressedSize := binary.LittleEndian.Uint32(p.buf[p.pos:])
	compressedSize := binary.LittleEndian.Uint32(p.buf[p.pos+4:])

	stored := compressedSize
	if stored == 0 {
		stored = uncompressedSize
	}
	size, err := conv.Uint32ToInt(stored)
	if err != nil {
		p.err = io.ErrUnexpectedEOF
		return nil
	}
	end := p.pos + blockHeaderSize + size
	if end > len(p.buf) {
		p.err = io.ErrUnexpectedEOF
		return nil
	}
	b := p.buf[p.pos:end]
	p.pos = end
	return b
}

// compressBlock compresses a block using the specified algorithm.
// Format: [UncompressedSize uint32][CompressedSize uint32][Data...]
// If CompressedSize == 0, the block is stored uncompressed.
func compressBlock(data []byte, compressionType CompressionType) ([]byte, error) {
	var compressed []byte
	var err error

	switch compressionType {
	case CompressionLZ4:
		compressed, err = compressBlockLZ4(data)
	case CompressionZSTD:
		compressed, err = compressBlockZSTD(data)
	case CompressionNone:
	default:
		return nil, fmt.Errorf("unsupported compression: %d", compressionType)
	}
	if err != nil {
		return nil, err
	}

	// If compression doesn't help (ratio > 0.9), store uncompressed.
	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		result := make([]byte, blockHeaderSize+len(data))
		binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(result[4:], 0) // 0 = uncompressed
		copy(result[blockHeaderSize:], data)
		return result, nil
	}

	result := make([]byte, blockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(result[4:], uint32(len(compressed)))
	copy(result[blockHeaderSize:], compressed)
	return result, nil
}

// compressBlockLZ4 compresses data using LZ4.
func compressBlockLZ4(data []byte) ([]byte, error) {
	maxCompressedSize := lz4.CompressBlockBound(len(data))
	compressed := make([]byte, maxCompressedSize)

	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // Incompressible
	}
	return compressed[:n], nil
}

// compressBlockZSTD compresses data using ZSTD.
func compressBlockZSTD(data []byte) ([]byte, error) {
	enc := getZstdEncoder()
	defer putZstdEncoder(enc)

	return enc.EncodeAll(data, nil), nil
}

// decompressBlock decompresses a framed block.
func decompressBlock(data []byte, compressionType CompressionType) ([]byte, error) {
	if len(data) < blockHeaderSize {
		return nil, errors.New("block too small for header")
	}

	uncompressedSize := binary.LittleEndian.Uint32(data[0:])
	compressedSize := binary.LittleEndian.Uint32(data[4:])

	if compressedSize == 0 {
		// Uncompressed block
		if uint32(len(data)) < blockHeaderSize+uncompressedSize {
			return nil, errors.New("block data too small")
		}
		return data[blockHeaderSize : blockHeaderSize+uncompressedSize], nil
	}

	if uint32(len(data)) < blockHeaderSize+compressedSize {
		return nil, errors.New("compressed block data too small")
	}

	compressedData := data[blockHeaderSize : blockHeaderSize+compressedSize]
	result := make([]byte, uncompressedSize)

	switch compressionType {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(compressedData, result)
		if err != nil {
			return nil, err
		}
		if uint32(n) != uncompressedSize {
			return nil, errors.New("decompressed size mismatch")
		}
		return result, nil

	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(compressedData, result[:0])
		if err != nil {
			return nil, err
		}
		if uint32(len(decoded)) != uncompressedSize {
			return nil, errors.New("decompressed size mismatch")
		}
		return decoded, nil

	default:
		return nil, fmt.Errorf("unsupported compression: %d", compressionType)
	}
}

// SaveToFile writes a snapshot to path, replacing any existing file
// atomically.
func (t *SymbolTable) SaveToFile(ctx context.Context, path string, optFns ...SnapshotOption) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	// Write to a temp file in the same directory so the rename is atomic.
	tmp, err := osFS.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		if tmpName != "" {
			_ = osFS.Remove(tmpName)
		}
	}()

	_ = tmp.Chmod(0644)

	buf := bufio.NewWriterSize(tmp, 256*1024)
	if err := t.WriteSnapshot(ctx, buf, optFns...); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := osFS.Rename(tmpName, path); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	_ = fs.SyncDir(osFS, dir)

	// Success: prevent deferred cleanup from removing the final file.
	tmpName = ""
	return nil
}

// LoadFromFile reads a snapshot written by SaveToFile.
func LoadFromFile(ctx context.Context, path string, optFns ...Option) (*SymbolTable, error) {
	f, err := osFS.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadSnapshot(ctx, bufio.NewReaderSize(f, 256*1024), optFns...)
}
