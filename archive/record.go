package archive

import "time"

// Entries is the archive's columnar representation of a batch of flux
// results, tagged the way the teacher's PingHeaders tags its columns
// for entrySchemaAttrs to read. Time is the dimension (see Create);
// every other field becomes a TileDB attribute of the same name.
type Entries struct {
	Time          []time.Time `tiledb:"ftype=dim"`
	Serial        []string    `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=5)"`
	Flux          []float64   `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=5)"`
	WindSpeed     []float64   `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=5)"`
	WindDirection []float64   `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=5)"`
	PlumeHeight   []float64   `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=5)"`
	Completeness  []float64   `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=5)"`
}
