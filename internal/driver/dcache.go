package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"jeff/internal/diag"
	"jeff/internal/validate"
)

// Current schema version - increment when Verdict format or validator
// output changes.
const diskCacheSchemaVersion uint16 = 1

// Digest identifies a cached verdict.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// DiskCache хранит вердикты валидатора по хешу содержимого на диске.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// Verdict is the cached outcome of validating one encoded module.
type Verdict struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Valid    bool
	Findings []*diag.Error
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt uses dir as the cache root.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// VerdictKey hashes the encoded bytes together with every option that
// changes the findings. Jobs does not.
func VerdictKey(content []byte, opts validate.Options) Digest {
	h := sha256.New()
	var hdr [8]byte
	binary.LittleEndian.PutUint16(hdr[0:], diskCacheSchemaVersion)
	if opts.CollectAll {
		hdr[2] = 1
	}
	if opts.Lints {
		hdr[3] = 1
	}
	limit := opts.MaxDiagnostics
	if limit <= 0 {
		limit = validate.DefaultOptions().MaxDiagnostics
	}
	n, err := safecast.Conv[uint32](limit)
	if err != nil {
		n = math.MaxUint32
	}
	binary.LittleEndian.PutUint32(hdr[4:], n)
	_, _ = h.Write(hdr[:])
	_, _ = h.Write(content)
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := key.String()
	// verdicts/<первые 2 hex>/<hex>.mp
	return filepath.Join(c.dir, "verdicts", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a verdict to the disk cache.
func (c *DiskCache) Put(key Digest, v *Verdict) (err error) {
	if c == nil || v == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// после успешного Rename файла уже нет
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	payload := *v
	payload.Schema = diskCacheSchemaVersion
	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads a verdict from the disk cache. A verdict written by another
// schema version counts as a miss.
func (c *DiskCache) Get(key Digest, out *Verdict) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	var v Verdict
	if err := msgpack.NewDecoder(f).Decode(&v); err != nil {
		return false, err
	}
	if v.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	*out = v
	return true, nil
}

// DropAll invalidates the cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
