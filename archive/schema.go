package archive

import (
	"errors"
	"reflect"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
	stgpsr "github.com/yuin/stagparser"
)

// entrySchemaAttrs walks t's exported fields and adds one TileDB
// attribute per field tagged `ftype=attr`, skipping the dimension field
// (`ftype=dim`). Adapted from the teacher's schemaAttrs/CreateAttr pair,
// narrowed to the two datatypes Entries actually uses.
func entrySchemaAttrs(t any, schema *tiledb.ArraySchema, ctx *tiledb.Context) error {
	values := reflect.ValueOf(t).Elem()
	types := values.Type()

	tdbDefs, _ := stgpsr.ParseStruct(t, "tiledb")
	filterDefs, _ := stgpsr.ParseStruct(t, "filters")

	for i := 0; i < values.NumField(); i++ {
		name := types.Field(i).Name

		fieldTdb := make(map[string]stgpsr.Definition)
		for _, d := range tdbDefs[name] {
			fieldTdb[d.Name()] = d
		}

		ftypeDef, ok := fieldTdb["ftype"]
		if !ok {
			return errors.Join(ErrCreateAttribute, errors.New("ftype tag not found on "+name))
		}
		ftype, _ := ftypeDef.Attribute("ftype")
		if ftype == "dim" {
			continue
		}

		if err := createAttr(ctx, schema, name, fieldTdb, filterDefs[name]); err != nil {
			return errors.Join(ErrCreateAttribute, err)
		}
	}
	return nil
}

func createAttr(ctx *tiledb.Context, schema *tiledb.ArraySchema, name string, tdb map[string]stgpsr.Definition, filters []stgpsr.Definition) error {
	dtypeDef, ok := tdb["dtype"]
	if !ok {
		return errors.New("dtype tag not found on " + name)
	}
	dtypeName, _ := dtypeDef.Attribute("dtype")

	var dtype tiledb.Datatype
	switch dtypeName {
	case "float64":
		dtype = tiledb.TILEDB_FLOAT64
	case "string":
		dtype = tiledb.TILEDB_STRING_UTF8
	default:
		return errors.New("archive: unsupported dtype " + dtypeName.(string))
	}

	attr, err := tiledb.NewAttribute(ctx, name, dtype)
	if err != nil {
		return err
	}
	defer attr.Free()

	if dtype == tiledb.TILEDB_STRING_UTF8 {
		if err := attr.SetCellValNum(tiledb.TILEDB_VAR_NUM); err != nil {
			return err
		}
	}

	list, err := tiledb.NewFilterList(ctx)
	if err != nil {
		return err
	}
	defer list.Free()

	for _, f := range filters {
		if f.Name() != "zstd" {
			continue
		}
		level, ok := f.Attribute("level")
		if !ok {
			return errors.New("archive: zstd level not given for " + name)
		}
		filt, err := zstdFilter(ctx, int32(level.(int64)))
		if err != nil {
			return err
		}
		defer filt.Free()
		if err := addFilters(list, filt); err != nil {
			return err
		}
	}

	if err := attachFilters(list, attr); err != nil {
		return err
	}

	return schema.AddAttributes(attr)
}

// setEntryFieldBuffers binds every non-Time Entries field to the query
// as a TileDB data buffer, adapted from the teacher's
// setStructFieldBuffers, narrowed to []float64/[]string.
func setEntryFieldBuffers(query *tiledb.Query, e *Entries) error {
	values := reflect.ValueOf(e).Elem()
	types := values.Type()

	for i := 0; i < values.NumField(); i++ {
		name := types.Field(i).Name
		if name == "Time" {
			continue
		}

		field := values.Field(i)
		switch slc := field.Interface().(type) {
		case []float64:
			if _, err := query.SetDataBuffer(name, slc); err != nil {
				return errors.Join(ErrSetBuffer, err)
			}
		case []string:
			// Variable-length attribute: flatten to one byte slice plus
			// an offsets slice, the same pattern the teacher's
			// setStructFieldBuffers uses for its [][]T var-length
			// fields (sliceOffsets), specialized to strings' own bytes
			// rather than a nested numeric slice.
			flat, offsets := flattenStrings(slc)
			if _, err := query.SetOffsetsBuffer(name, offsets); err != nil {
				return errors.Join(ErrSetBuffer, err)
			}
			if _, err := query.SetDataBuffer(name, flat); err != nil {
				return errors.Join(ErrSetBuffer, err)
			}
		}
	}
	return nil
}

// flattenStrings concatenates ss into one byte slice and returns the
// byte offset each element starts at, the buffer shape TileDB expects
// for a TILEDB_STRING_UTF8/TILEDB_VAR_NUM attribute.
func flattenStrings(ss []string) (flat []byte, offsets []uint64) {
	offsets = make([]uint64, len(ss))
	offset := uint64(0)
	for i, s := range ss {
		offsets[i] = offset
		flat = append(flat, s...)
		offset += uint64(len(s))
	}
	return flat, offsets
}
