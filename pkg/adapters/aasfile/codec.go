// Package aasfile reads and writes packages as .json, .yaml, .xml or .aasx files.
package aasfile

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/aretw0/aastree/internal/dto"
	"github.com/aretw0/aastree/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format is a serialization format.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	XML  Format = "xml"
	AASX Format = "aasx"
)

// Formats lists the supported formats.
var Formats = []Format{JSON, YAML, XML, AASX}

const (
	aasxEnvironment = "aasx/environment.json"
	aasxFiles       = "aasx/files/"
)

// FormatOf derives the format from a file extension.
func FormatOf(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	case ".xml":
		return XML, nil
	case ".aasx":
		return AASX, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, filepath.Ext(filename))
}

// Marshal encodes pkg in the given format.
func Marshal(pkg *domain.Package, format Format) ([]byte, error) {
	if format == AASX {
		return marshalArchive(pkg)
	}
	env, err := dto.FromPackage(pkg, true)
	if err != nil {
		return nil, err
	}
	return encode(env, format)
}

func encode(env dto.Environment, format Format) ([]byte, error) {
	switch format {
	case JSON:
		return json.MarshalIndent(env, "", "  ")
	case YAML:
		return yaml.Marshal(env)
	case XML:
		data, err := xml.MarshalIndent(env, "", "  ")
		if err != nil {
			return nil, err
		}
		return append([]byte(xml.Header), data...), nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
}

// Unmarshal decodes a package named name.
func Unmarshal(data []byte, format Format, name string) (*domain.Package, error) {
	if format == AASX {
		return unmarshalArchive(data, name)
	}
	env, err := decode(data, format)
	if err != nil {
		return nil, err
	}
	return env.ToPackage(name)
}

func decode(data []byte, format Format) (dto.Environment, error) {
	var env dto.Environment
	switch format {
	case JSON:
		if err := json.Unmarshal(data, &env); err != nil {
			return env, fmt.Errorf("failed to parse json package: %w", err)
		}
	case YAML:
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return env, fmt.Errorf("failed to parse yaml package: %w", err)
		}
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &env,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return env, err
		}
		if err := dec.Decode(raw); err != nil {
			return env, fmt.Errorf("failed to decode yaml package: %w", err)
		}
	case XML:
		if err := xml.Unmarshal(data, &env); err != nil {
			return env, fmt.Errorf("failed to parse xml package: %w", err)
		}
	default:
		return env, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
	return env, nil
}

// marshalArchive writes the environment as JSON and every supplementary file
// as its own part. The environment lists the files without content.
func marshalArchive(pkg *domain.Package) ([]byte, error) {
	env, err := dto.FromPackage(pkg, false)
	if err != nil {
		return nil, err
	}
	for _, name := range pkg.Files.Names() {
		f, _ := pkg.Files.Get(name)
		env.Files = append(env.Files, dto.File{Name: name, ContentType: f.ContentType})
	}
	manifest, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if err := writePart(zw, aasxEnvironment, manifest); err != nil {
		return nil, err
	}
	for _, name := range pkg.Files.Names() {
		f, _ := pkg.Files.Get(name)
		if err := writePart(zw, aasxFiles+name, f.Data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish archive: %w", err)
	}
	return buf.Bytes(), nil
}

func writePart(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create part %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write part %s: %w", name, err)
	}
	return nil
}

func unmarshalArchive(data []byte, name string) (*domain.Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	parts := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		parts[path.Clean(f.Name)] = f
	}
	manifest, ok := parts[aasxEnvironment]
	if !ok {
		return nil, fmt.Errorf("%w: archive has no %s", domain.ErrUnsupportedFormat, aasxEnvironment)
	}
	raw, err := readPart(manifest)
	if err != nil {
		return nil, err
	}
	env, err := decode(raw, JSON)
	if err != nil {
		return nil, err
	}
	files := env.Files
	env.Files = nil
	pkg, err := env.ToPackage(name)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		part, ok := parts[path.Clean(aasxFiles+f.Name)]
		if !ok {
			return nil, fmt.Errorf("%w: supplementary file %s", domain.ErrNotFound, f.Name)
		}
		content, err := readPart(part)
		if err != nil {
			return nil, err
		}
		pkg.Files.Add(f.Name, f.ContentType, content)
	}
	return pkg, nil
}

func readPart(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open part %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read part %s: %w", f.Name, err)
	}
	return data, nil
}
