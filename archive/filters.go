package archive

import tiledb "github.com/TileDB-Inc/TileDB-Go"

// addFilters sequentially appends compression filters to a pipeline,
// adapted from the teacher's AddFilters.
func addFilters(list *tiledb.FilterList, filters ...*tiledb.Filter) error {
	for _, f := range filters {
		if err := list.AddFilter(f); err != nil {
			return err
		}
	}
	return nil
}

// zstdFilter builds a Zstandard compression filter at the given level,
// adapted from the teacher's ZstdFilter.
func zstdFilter(ctx *tiledb.Context, level int32) (*tiledb.Filter, error) {
	filt, err := tiledb.NewFilter(ctx, tiledb.TILEDB_FILTER_ZSTD)
	if err != nil {
		return nil, err
	}
	if err := filt.SetOption(tiledb.TILEDB_COMPRESSION_LEVEL, level); err != nil {
		filt.Free()
		return nil, err
	}
	return filt, nil
}

// attachFilters sets the same filter list on every given attribute,
// adapted from the teacher's AttachFilters.
func attachFilters(list *tiledb.FilterList, attrs ...*tiledb.Attribute) error {
	for _, attr := range attrs {
		if err := attr.SetFilterList(list); err != nil {
			return err
		}
	}
	return nil
}
