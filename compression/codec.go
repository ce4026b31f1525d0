package compression

import "fmt"

// Codec compresses sealed page payloads.
type Codec interface {
	Name() string
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) ([]byte, error)
}

type noneCodec struct{}

func (noneCodec) Name() string { return "none" }

func (noneCodec) Compress(src []byte) ([]byte, error) { return src, nil }

func (noneCodec) Decompress(src []byte) ([]byte, error) { return src, nil }

var (
	None Codec = noneCodec{}
	Lz4  Codec = lz4Codec{}
	Zstd Codec = zstdCodec{}
)

// ByName resolves a codec from its configuration name.
func ByName(name string) (Codec, error) {
	switch name {
	case "", "none":
		return None, nil
	case "lz4":
		return Lz4, nil
	case "zstd":
		return Zstd, nil
	default:
		return nil, fmt.Errorf("unknown codec `%s`", name)
	}
}
