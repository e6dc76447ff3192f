// Package artifact loads compiled ink! contract bundles (wasm bytecode plus
// the JSON metadata describing constructors, messages and events) and
// resolves constructor entry points.
package artifact

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/blake2b"

	"github.com/avense/inkdeploy/types"
)

// Artifact is an immutable contract bundle: the wasm blob, its code hash,
// and the parsed constructor descriptors. Safe for concurrent reads.
type Artifact struct {
	Wasm     []byte
	CodeHash types.Hash
	Metadata Metadata
}

// Metadata holds the constructor descriptors extracted from the bundle.
type Metadata struct {
	ContractName string
	Constructors []Constructor
}

// Constructor describes one deployable entry point.
type Constructor struct {
	Label    string
	Selector [4]byte
	Args     []Arg
	Payable  bool
}

// Arg is an ordered constructor parameter descriptor.
type Arg struct {
	Label string
	Type  string
}

// bundleJSON mirrors the on-disk `.contract` bundle layout. Only the fields
// the deployer needs are decoded.
type bundleJSON struct {
	Source struct {
		Wasm string `json:"wasm"`
	} `json:"source"`
	Contract struct {
		Name string `json:"name"`
	} `json:"contract"`
	Spec struct {
		Constructors []struct {
			Label    string `json:"label"`
			Selector string `json:"selector"`
			Payable  bool   `json:"payable"`
			Args     []struct {
				Label string          `json:"label"`
				Type  json.RawMessage `json:"type"`
			} `json:"args"`
		} `json:"constructors"`
	} `json:"spec"`
}

// argTypeJSON covers the two metadata shapes seen in the wild: a plain type
// name string, or an object with a displayName path.
type argTypeJSON struct {
	DisplayName []string `json:"displayName"`
}

// Load reads a contract bundle from path. Bundles with a .zst suffix are
// transparently zstd-decompressed before parsing.
func Load(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open zstd artifact: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return LoadBundle(data)
}

// LoadBundle parses a contract bundle from raw JSON bytes.
func LoadBundle(data []byte) (*Artifact, error) {
	var bundle bundleJSON
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, &MetadataError{Reason: "invalid bundle JSON", Err: err}
	}

	if bundle.Source.Wasm == "" {
		return nil, &MetadataError{Reason: "bundle has no source.wasm"}
	}
	wasm, err := hex.DecodeString(strings.TrimPrefix(bundle.Source.Wasm, "0x"))
	if err != nil {
		return nil, &MetadataError{Reason: "source.wasm is not valid hex", Err: err}
	}

	meta := Metadata{ContractName: bundle.Contract.Name}
	for i, c := range bundle.Spec.Constructors {
		ctor, err := parseConstructor(i, c.Label, c.Selector, c.Payable, c.Args)
		if err != nil {
			return nil, err
		}
		meta.Constructors = append(meta.Constructors, ctor)
	}

	return &Artifact{
		Wasm:     wasm,
		CodeHash: types.Hash(blake2b.Sum256(wasm)),
		Metadata: meta,
	}, nil
}

func parseConstructor(i int, label, selector string, payable bool, args []struct {
	Label string          `json:"label"`
	Type  json.RawMessage `json:"type"`
}) (Constructor, error) {
	if label == "" {
		return Constructor{}, &MetadataError{Reason: fmt.Sprintf("constructor %d has no label", i)}
	}
	sel, err := parseSelector(selector)
	if err != nil {
		return Constructor{}, &MetadataError{
			Reason: fmt.Sprintf("constructor %q has a malformed selector", label),
			Err:    err,
		}
	}
	ctor := Constructor{Label: label, Selector: sel, Payable: payable}
	for _, a := range args {
		typeName, err := parseArgType(a.Type)
		if err != nil {
			return Constructor{}, &MetadataError{
				Reason: fmt.Sprintf("constructor %q argument %q has a malformed type", label, a.Label),
				Err:    err,
			}
		}
		ctor.Args = append(ctor.Args, Arg{Label: a.Label, Type: typeName})
	}
	return ctor, nil
}

func parseSelector(s string) ([4]byte, error) {
	var sel [4]byte
	if s == "" {
		return sel, fmt.Errorf("selector missing")
	}
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return sel, err
	}
	if len(b) != 4 {
		return sel, fmt.Errorf("selector must be 4 bytes, got %d", len(b))
	}
	copy(sel[:], b)
	return sel, nil
}

func parseArgType(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("type missing")
	}
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		if name == "" {
			return "", fmt.Errorf("type name empty")
		}
		return name, nil
	}
	var t argTypeJSON
	if err := json.Unmarshal(raw, &t); err != nil {
		return "", err
	}
	if len(t.DisplayName) == 0 {
		return "", fmt.Errorf("type has no displayName")
	}
	return t.DisplayName[len(t.DisplayName)-1], nil
}
