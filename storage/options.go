package storage

import "github.com/dot5enko/colquery/compression"

const (
	DefaultPageRows      = 256
	DefaultPageCacheSize = 128
)

type options struct {
	pageRows      int
	codec         compression.Codec
	pageCacheSize int
}

func defaultOptions() options {
	return options{
		pageRows:      DefaultPageRows,
		codec:         compression.Lz4,
		pageCacheSize: DefaultPageCacheSize,
	}
}

// Option configures a Table.
type Option func(*options)

// WithPageRows sets the number of rows a page holds before it is sealed.
func WithPageRows(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pageRows = n
		}
	}
}

// WithCodec sets the codec compressing string heaps of sealed pages.
// nil disables compression.
func WithCodec(c compression.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = compression.None
		}
		o.codec = c
	}
}

// WithPageCacheSize bounds the number of decoded string heaps kept in memory.
func WithPageCacheSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pageCacheSize = n
		}
	}
}
