package storage

import "io"

// ProgressFunc receives monotonically increasing byte counts during one
// transfer, terminating at bytesSent == totalBytes or at failure.
type ProgressFunc func(bytesSent, totalBytes int64)

// progressReader counts bytes as the uploader drains it. It does not
// implement io.Seeker or io.ReaderAt, so the s3 uploader buffers parts
// from it in order and the reported counts stay monotone.
type progressReader struct {
	r     io.Reader
	total int64
	sent  int64
	fn    ProgressFunc
}

func newProgressReader(r io.Reader, total int64, fn ProgressFunc) io.Reader {
	if fn == nil {
		return r
	}
	return &progressReader{r: r, total: total, fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.fn(p.sent, p.total)
	}
	return n, err
}
