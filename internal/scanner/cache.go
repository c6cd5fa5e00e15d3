package scanner

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/vonshlovens/zettelkasten/internal/zettel"
)

// cacheVersion is the single leading byte every cache file starts with. A
// file starting with any other byte (or that fails to read at all) is
// treated as absent rather than an error: the caller simply reparses
// everything cold.
const cacheVersion byte = 0x01

// CacheEntry is one cached record: the file's metadata/reference maps as
// they were the last time this path was parsed, plus the mtime it was
// parsed at (used to decide staleness on the next load).
type CacheEntry struct {
	MtimeSecs  int64
	MtimeNanos uint32
	Metadata   *zettel.OrderedMap
	Reference  *zettel.OrderedMap
}

// Cache is a path -> CacheEntry mapping, persisted as a single flat file.
type Cache map[string]CacheEntry

// EntryFor builds a CacheEntry from a freshly parsed note and its source
// file's mtime.
func EntryFor(note *zettel.Note, mtime time.Time) CacheEntry {
	return CacheEntry{
		MtimeSecs:  mtime.Unix(),
		MtimeNanos: uint32(mtime.Nanosecond()),
		Metadata:   note.Metadata,
		Reference:  note.Reference,
	}
}

// IsStale reports whether entry no longer matches mtime. Any stat failure
// upstream of this call should be treated as stale by the caller — this
// function only compares the two mtimes it's given.
func (e CacheEntry) IsStale(mtime time.Time) bool {
	return e.MtimeSecs != mtime.Unix() || e.MtimeNanos != uint32(mtime.Nanosecond())
}

// LoadCache reads a cache file written by SaveCache. A missing file, a
// version mismatch, or any I/O/decode error yields an empty Cache rather
// than an error — the cache is a pure optimization, never a correctness
// requirement.
func LoadCache(path string) Cache {
	f, err := os.Open(path)
	if err != nil {
		return Cache{}
	}
	defer f.Close()

	r := bufio.NewReader(f)

	version, err := r.ReadByte()
	if err != nil || version != cacheVersion {
		return Cache{}
	}

	cache, err := decodeCache(r)
	if err != nil {
		return Cache{}
	}
	return cache
}

// SaveCache writes cache to path, creating parent directories as needed.
func SaveCache(path string, cache Cache) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.Write([]byte{cacheVersion}); err != nil {
		return err
	}
	if err := encodeCache(w, cache); err != nil {
		return err
	}
	return w.Flush()
}

func encodeCache(w io.Writer, cache Cache) error {
	if err := writeUint32(w, uint32(len(cache))); err != nil {
		return err
	}
	for path, entry := range cache {
		if err := writeString(w, path); err != nil {
			return err
		}
		if err := writeInt64(w, entry.MtimeSecs); err != nil {
			return err
		}
		if err := writeUint32(w, entry.MtimeNanos); err != nil {
			return err
		}
		if err := encodeOrderedMap(w, entry.Metadata); err != nil {
			return err
		}
		if err := encodeOrderedMap(w, entry.Reference); err != nil {
			return err
		}
	}
	return nil
}

func decodeCache(r io.Reader) (Cache, error) {
	count, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	cache := make(Cache, count)
	for i := uint32(0); i < count; i++ {
		path, err := readString(r)
		if err != nil {
			return nil, err
		}
		secs, err := readInt64(r)
		if err != nil {
			return nil, err
		}
		nanos, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		meta, err := decodeOrderedMap(r)
		if err != nil {
			return nil, err
		}
		ref, err := decodeOrderedMap(r)
		if err != nil {
			return nil, err
		}
		cache[path] = CacheEntry{MtimeSecs: secs, MtimeNanos: nanos, Metadata: meta, Reference: ref}
	}
	return cache, nil
}

// Value kind tags used by the cache's binary Value encoding. These are
// independent of zettel.Kind's own iota values so the on-disk format
// doesn't silently shift if Kind's declaration order ever changes.
const (
	tagNull byte = iota
	tagBool
	tagInt
	tagFloat
	tagString
	tagList
	tagDateTime
)

func encodeOrderedMap(w io.Writer, m *zettel.OrderedMap) error {
	if m == nil {
		return writeUint32(w, 0)
	}
	keys := m.Keys()
	if err := writeUint32(w, uint32(len(keys))); err != nil {
		return err
	}
	for _, k := range keys {
		if err := writeString(w, k); err != nil {
			return err
		}
		v, _ := m.Get(k)
		if err := encodeValue(w, v); err != nil {
			return err
		}
	}
	return nil
}

func decodeOrderedMap(r io.Reader) (*zettel.OrderedMap, error) {
	count, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	m := zettel.NewOrderedMap()
	for i := uint32(0); i < count; i++ {
		k, err := readString(r)
		if err != nil {
			return nil, err
		}
		v, err := decodeValue(r)
		if err != nil {
			return nil, err
		}
		m.Set(k, v)
	}
	return m, nil
}

func encodeValue(w io.Writer, v zettel.Value) error {
	switch v.Kind() {
	case zettel.KindNull:
		return writeByte(w, tagNull)
	case zettel.KindBool:
		b, _ := v.AsBool()
		if err := writeByte(w, tagBool); err != nil {
			return err
		}
		var bv byte
		if b {
			bv = 1
		}
		return writeByte(w, bv)
	case zettel.KindInt:
		i, _ := v.AsInt()
		if err := writeByte(w, tagInt); err != nil {
			return err
		}
		return writeInt64(w, i)
	case zettel.KindFloat:
		f, _ := v.AsFloat()
		if err := writeByte(w, tagFloat); err != nil {
			return err
		}
		return writeUint64(w, math.Float64bits(f))
	case zettel.KindString:
		s, _ := v.AsString()
		if err := writeByte(w, tagString); err != nil {
			return err
		}
		return writeString(w, s)
	case zettel.KindDateTime:
		t, _ := v.AsTime()
		if err := writeByte(w, tagDateTime); err != nil {
			return err
		}
		return writeInt64(w, t.Unix())
	case zettel.KindList:
		list, _ := v.AsList()
		if err := writeByte(w, tagList); err != nil {
			return err
		}
		if err := writeUint32(w, uint32(len(list))); err != nil {
			return err
		}
		for _, item := range list {
			if err := encodeValue(w, item); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.New("scanner: unknown value kind")
	}
}

func decodeValue(r io.Reader) (zettel.Value, error) {
	tag, err := readByteR(r)
	if err != nil {
		return zettel.Value{}, err
	}
	switch tag {
	case tagNull:
		return zettel.Null(), nil
	case tagBool:
		b, err := readByteR(r)
		if err != nil {
			return zettel.Value{}, err
		}
		return zettel.Bool(b != 0), nil
	case tagInt:
		i, err := readInt64(r)
		if err != nil {
			return zettel.Value{}, err
		}
		return zettel.Int(i), nil
	case tagFloat:
		bits, err := readUint64(r)
		if err != nil {
			return zettel.Value{}, err
		}
		return zettel.Float(math.Float64frombits(bits)), nil
	case tagString:
		s, err := readString(r)
		if err != nil {
			return zettel.Value{}, err
		}
		return zettel.String(s), nil
	case tagDateTime:
		secs, err := readInt64(r)
		if err != nil {
			return zettel.Value{}, err
		}
		return zettel.DateTime(time.Unix(secs, 0).UTC()), nil
	case tagList:
		count, err := readUint32(r)
		if err != nil {
			return zettel.Value{}, err
		}
		items := make([]zettel.Value, 0, count)
		for i := uint32(0); i < count; i++ {
			item, err := decodeValue(r)
			if err != nil {
				return zettel.Value{}, err
			}
			items = append(items, item)
		}
		return zettel.List(items), nil
	default:
		return zettel.Value{}, errors.New("scanner: unknown value tag")
	}
}

func writeByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

func readByteR(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func writeInt64(w io.Writer, v int64) error {
	return writeUint64(w, uint64(v))
}

func readInt64(r io.Reader) (int64, error) {
	v, err := readUint64(r)
	return int64(v), err
}

func writeUint64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

func writeString(w io.Writer, s string) error {
	if err := writeUint32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

func readString(r io.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
