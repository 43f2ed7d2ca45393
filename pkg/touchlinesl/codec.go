package touchlinesl

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

type Encoding string

const (
	EncodingJSON Encoding = "json"
	EncodingCBOR Encoding = "cbor"
	EncodingYAML Encoding = "yaml"
)

var (
	ErrUnknownEncoding = errors.New("unknown snapshot encoding")
	ErrMissingModuleID = errors.New("snapshot has no module id")
)

var cborEncMode cbor.EncMode
var cborDecMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	cborEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create snapshot CBOR encoder mode: %v", err))
	}

	// pollers may send repeated keys or indefinite length items
	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyQuiet,
		IndefLength: cbor.IndefLengthAllowed,
	}
	cborDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create snapshot CBOR decoder mode: %v", err))
	}
}

func ParseEncoding(value string) (Encoding, error) {
	switch enc := Encoding(value); enc {
	case EncodingJSON, EncodingCBOR, EncodingYAML:
		return enc, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEncoding, value)
	}
}

// Decode parses a snapshot payload. Zones are indexed by id; on duplicated ids the last one wins.
func Decode(encoding Encoding, data []byte) (*Snapshot, error) {
	var w SnapshotDocument
	var err error
	switch encoding {
	case EncodingJSON:
		err = json.Unmarshal(data, &w)
	case EncodingCBOR:
		err = cborDecMode.Unmarshal(data, &w)
	case EncodingYAML:
		err = yaml.Unmarshal(data, &w)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, encoding)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s snapshot: %w", encoding, err)
	}
	if w.Module.ID == "" {
		return nil, ErrMissingModuleID
	}
	return w.Snapshot(), nil
}

func Encode(encoding Encoding, snapshot *Snapshot) ([]byte, error) {
	if snapshot == nil {
		return nil, errors.New("nil snapshot")
	}
	w := snapshot.Document()
	switch encoding {
	case EncodingJSON:
		return json.Marshal(w)
	case EncodingCBOR:
		return cborEncMode.Marshal(w)
	case EncodingYAML:
		return yaml.Marshal(w)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, encoding)
	}
}
