package roster

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "data/employees.json"

//go:embed roster.schema.json
var documentSchema string

var (
	ErrUnsupportedFormat = errors.New("unsupported roster format")
	ErrInvalidDocument   = errors.New("invalid roster document")
)

var validate = validator.New()

// Source produces the raw roster once at startup.
type Source interface {
	Load(ctx context.Context) ([]EmployeeRecord, error)
}

// Open loads the roster from src. A source failure is not fatal: the store
// is empty and the failure is logged.
func Open(ctx context.Context, src Source, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	records, err := src.Load(ctx)
	if err != nil {
		logger.Warn("using an empty roster", zap.Error(err))
		return NewStore(nil)
	}

	logger.Info("roster loaded", zap.Int("employees", len(records)))
	return NewStore(records)
}

// FileSource reads a JSON or YAML roster document from disk.
type FileSource struct {
	Path   string
	Logger *zap.Logger
}

func (f *FileSource) Load(_ context.Context) ([]EmployeeRecord, error) {
	path := strings.TrimSpace(f.Path)
	if path == "" {
		path = DefaultPath
	}
	return LoadFile(path, f.Logger)
}

// LoadFile reads the roster document at path. JSON documents are checked
// against the document schema before records are decoded.
func LoadFile(path string, logger *zap.Logger) ([]EmployeeRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roster file %q: %w", path, err)
	}

	var doc any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := validateDocument(data); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing roster json %q: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing roster yaml %q: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	return Decode(doc, logger)
}

func validateDocument(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(documentSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		issues = append(issues, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(issues, "; "))
}

// Decode converts a generic roster document ({"employees": [...]} or a bare
// list) into records. Entries that fail decoding or validation, and entries
// with a duplicate id, are skipped with a warning.
func Decode(doc any, logger *zap.Logger) ([]EmployeeRecord, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var items []any
	switch v := doc.(type) {
	case map[string]any:
		raw, ok := v["employees"]
		if !ok {
			return nil, fmt.Errorf("%w: missing employees key", ErrInvalidDocument)
		}
		list, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: employees must be a list", ErrInvalidDocument)
		}
		items = list
	case []any:
		items = v
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unexpected document type %T", ErrInvalidDocument, doc)
	}

	c := newCollector(len(items), logger)
	for i, item := range items {
		record, err := decodeRecord(item)
		if err != nil {
			logger.Warn("skipping malformed employee record", zap.Int("index", i), zap.Error(err))
			continue
		}
		c.add(record, zap.Int("index", i))
	}

	return c.records, nil
}

func decodeRecord(item any) (EmployeeRecord, error) {
	var record EmployeeRecord
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: wholeNumberHook,
		Result:     &record,
	})
	if err != nil {
		return EmployeeRecord{}, err
	}
	if err := decoder.Decode(item); err != nil {
		return EmployeeRecord{}, err
	}
	return record, nil
}

// wholeNumberHook rejects fractional numbers for integer fields. JSON numbers
// arrive as float64 and would otherwise be truncated.
func wholeNumberHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}

	var f float64
	switch v := data.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	default:
		return data, nil
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, fmt.Errorf("%v is not a whole number", data)
	}
	return data, nil
}

// collector admits valid records and drops repeated ids, keeping the first.
type collector struct {
	records []EmployeeRecord
	seen    map[int]struct{}
	logger  *zap.Logger
}

func newCollector(size int, logger *zap.Logger) *collector {
	return &collector{
		records: make([]EmployeeRecord, 0, size),
		seen:    make(map[int]struct{}, size),
		logger:  logger,
	}
}

func (c *collector) add(record EmployeeRecord, position zap.Field) {
	if err := Validate(record); err != nil {
		c.logger.Warn("skipping invalid employee record", position, zap.Int("id", record.ID), zap.Error(err))
		return
	}

	if _, dup := c.seen[record.ID]; dup {
		c.logger.Warn("skipping employee record with duplicate id", position, zap.Int("id", record.ID))
		return
	}
	c.seen[record.ID] = struct{}{}

	c.records = append(c.records, record)
}

// Validate checks the required fields of a record.
func Validate(record EmployeeRecord) error {
	return validate.Struct(record)
}
