// Package bolt is a persistent single-file provider on top of bbolt.
// Each record is laid out as 8 bytes big endian expiresAt (unix seconds, 0 = never)
// followed by the raw value, so expiry survives restarts.
package bolt

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"time"

	bbolt "go.etcd.io/bbolt"

	pr "github.com/unkn0wn-root/redcached/provider"
)

const hdr = 8

type Bolt struct {
	db     *bbolt.DB
	bucket []byte
	now    func() time.Time
}

var _ pr.CASProvider = (*Bolt)(nil)

type Config struct {
	Path        string
	Bucket      string        // "" => "redcached"
	OpenTimeout time.Duration // file lock wait; 0 => 1s
}

func Open(cfg Config) (*Bolt, error) {
	if cfg.Path == "" {
		return nil, errors.New("bolt provider: path is required")
	}
	timeout := cfg.OpenTimeout
	if timeout <= 0 {
		timeout = time.Second
	}
	db, err := bbolt.Open(cfg.Path, 0o600, &bbolt.Options{Timeout: timeout})
	if err != nil {
		return nil, err
	}
	bucket := []byte("redcached")
	if cfg.Bucket != "" {
		bucket = []byte(cfg.Bucket)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Bolt{db: db, bucket: bucket, now: time.Now}, nil
}

func (p *Bolt) record(value []byte, ttl time.Duration) []byte {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = p.now().Add(ttl).Unix()
	}
	buf := make([]byte, hdr+len(value))
	binary.BigEndian.PutUint64(buf[:hdr], uint64(expiresAt))
	copy(buf[hdr:], value)
	return buf
}

// live reports whether rec is a well-formed, unexpired record.
func (p *Bolt) live(rec []byte) bool {
	if len(rec) < hdr {
		return false
	}
	expiresAt := int64(binary.BigEndian.Uint64(rec[:hdr]))
	return expiresAt == 0 || p.now().Unix() <= expiresAt
}

func (p *Bolt) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, _, ok, err := p.GetVersioned(ctx, key)
	return v, ok, err
}

func (p *Bolt) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	rec := p.record(value, ttl)
	err := p.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(p.bucket).Put([]byte(key), rec)
	})
	return err == nil, err
}

func (p *Bolt) Del(_ context.Context, key string) error {
	return p.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(p.bucket).Delete([]byte(key))
	})
}

func (p *Bolt) Close(context.Context) error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

// GetVersioned returns a copy of the whole stored record as the version.
func (p *Bolt) GetVersioned(_ context.Context, key string) ([]byte, pr.Version, bool, error) {
	var rec []byte
	err := p.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(p.bucket).Get([]byte(key)); v != nil {
			rec = append([]byte(nil), v...) // bbolt memory is only valid inside the tx
		}
		return nil
	})
	if err != nil || rec == nil || !p.live(rec) {
		return nil, nil, false, err
	}
	return rec[hdr:], rec, true, nil
}

func (p *Bolt) CompareAndSet(_ context.Context, key string, value []byte, ver pr.Version, _ int64, ttl time.Duration) (bool, error) {
	swapped := false
	rec := p.record(value, ttl)
	err := p.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(p.bucket)
		if !p.matches(b.Get([]byte(key)), ver) {
			return nil
		}
		swapped = true
		return b.Put([]byte(key), rec)
	})
	return swapped && err == nil, err
}

func (p *Bolt) CompareAndDelete(_ context.Context, key string, ver pr.Version) (bool, error) {
	if ver == nil {
		return false, nil
	}
	deleted := false
	err := p.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(p.bucket)
		if !p.matches(b.Get([]byte(key)), ver) {
			return nil
		}
		deleted = true
		return b.Delete([]byte(key))
	})
	return deleted && err == nil, err
}

func (p *Bolt) matches(cur []byte, ver pr.Version) bool {
	present := cur != nil && p.live(cur)
	if ver == nil {
		return !present
	}
	want, ok := ver.([]byte)
	return ok && present && bytes.Equal(want, cur)
}
