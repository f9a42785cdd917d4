// Package provision replaces a file based model database with a fresh copy
// of a template before an export. Templates are local files or objects
// addressed as s3://bucket/key.
package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// ErrSameFile is returned when template and destination are the same path.
var ErrSameFile = errors.New("provision: template and destination are the same file")

// Result describes a completed copy.
type Result struct {
	Template    string
	Destination string
	Bytes       int64
	Replaced    bool // an existing destination was overwritten
}

// Provisioner copies templates into place.
type Provisioner struct {
	s3  S3Config
	log *zap.Logger

	store *S3 // created on first s3:// template
}

func New(cfg S3Config, log *zap.Logger) *Provisioner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Provisioner{s3: cfg, log: log}
}

// Provision replaces dest with a copy of template. The copy is written to a
// temporary file next to dest and renamed into place, so a failed copy
// leaves no partial file behind.
func (p *Provisioner) Provision(ctx context.Context, template, dest string) (Result, error) {
	res := Result{Template: template, Destination: dest}
	if strings.TrimSpace(template) == "" || strings.TrimSpace(dest) == "" {
		return res, fmt.Errorf("provision: template and destination are required")
	}
	if template == dest || SameFile(template, dest) {
		return res, ErrSameFile
	}

	src, err := p.open(ctx, template)
	if err != nil {
		return res, err
	}
	defer src.Close()

	if _, err := os.Stat(dest); err == nil {
		res.Replaced = true
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return res, fmt.Errorf("provision: create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*")
	if err != nil {
		return res, fmt.Errorf("provision: temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	n, err := io.Copy(tmp, contextReader{ctx: ctx, r: src})
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return res, fmt.Errorf("provision: copy %s: %w", template, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return res, fmt.Errorf("provision: replace %s: %w", dest, err)
	}
	res.Bytes = n

	p.log.Info("target provisioned from template",
		zap.String("template", template),
		zap.String("target", dest),
		zap.String("size", humanize.Bytes(uint64(n))),
		zap.Bool("replaced", res.Replaced),
	)
	return res, nil
}

func (p *Provisioner) open(ctx context.Context, template string) (io.ReadCloser, error) {
	if bucket, key, ok := ParseS3URL(template); ok {
		if p.store == nil {
			s, err := NewS3(ctx, p.s3)
			if err != nil {
				return nil, err
			}
			p.store = s
		}
		return p.store.Open(ctx, bucket, key)
	}
	if strings.HasPrefix(template, "s3://") {
		return nil, fmt.Errorf("provision: malformed template URL %q; want s3://bucket/key", template)
	}
	return openFile(template)
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("provision: open template: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("provision: stat template: %w", err)
	}
	if st.IsDir() {
		f.Close()
		return nil, fmt.Errorf("provision: template %s is a directory", path)
	}
	return f, nil
}

// SameFile reports whether a and b name the same existing file.
func SameFile(a, b string) bool {
	sa, err := os.Stat(a)
	if err != nil {
		return false
	}
	sb, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(sa, sb)
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(b []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(b)
}
