package reader

import (
	"github.com/parquet-go/parquet-go"
	"github.com/pkg/errors"
)

// SchemaInfo describes a single column of a shard file.
type SchemaInfo struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	PhysicalType string `json:"physical_type"`
	Required     bool   `json:"required"`
	Optional     bool   `json:"optional"`
}

// ExtractSchemaInfo reads column metadata from the shard at path. Shards
// produced by the conversion step have flat schemas, so only top-level
// fields are reported.
func ExtractSchemaInfo(path string) ([]SchemaInfo, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open parquet file")
	}
	defer func() { _ = r.Close() }()

	var infos []SchemaInfo
	for _, field := range r.Schema().Fields() {
		infos = append(infos, SchemaInfo{
			Name:         field.Name(),
			Type:         friendlyType(field),
			PhysicalType: physicalType(field),
			Required:     field.Required(),
			Optional:     field.Optional(),
		})
	}
	return infos, nil
}

func physicalType(field parquet.Field) string {
	if field.Type() == nil {
		return "GROUP"
	}
	switch field.Type().Kind() {
	case parquet.Boolean:
		return "BOOLEAN"
	case parquet.Int32:
		return "INT32"
	case parquet.Int64:
		return "INT64"
	case parquet.Int96:
		return "INT96"
	case parquet.Float:
		return "FLOAT"
	case parquet.Double:
		return "DOUBLE"
	case parquet.ByteArray:
		return "BYTE_ARRAY"
	case parquet.FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	default:
		return "UNKNOWN"
	}
}

func friendlyType(field parquet.Field) string {
	if field.Type() == nil {
		return "group"
	}
	if lt := field.Type().LogicalType(); lt != nil && lt.UTF8 != nil {
		return "string"
	}
	switch field.Type().Kind() {
	case parquet.Boolean:
		return "bool"
	case parquet.Int32:
		return "int32"
	case parquet.Int64:
		return "int64"
	case parquet.Float:
		return "float32"
	case parquet.Double:
		return "float64"
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return "bytes"
	default:
		return "unknown"
	}
}
