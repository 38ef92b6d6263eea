// Package rotationfile reads rotation configurations from YAML, TOML or JSON
// files, picked by extension.
package rotationfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/arnavshah/rotation-api-go/pkg/models"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for files whose extension is not recognized
var ErrUnknownFormat = errors.New("unknown rotation file format")

// Format is a supported encoding
type Format string

const (
	YAML Format = "yaml"
	TOML Format = "toml"
	JSON Format = "json"
)

// FormatOf picks the format from the file extension
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	case ".json":
		return JSON, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Load reads the rotation configuration at path
func Load(path string) (models.ScheduleInput, error) {
	format, err := FormatOf(path)
	if err != nil {
		return models.ScheduleInput{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return models.ScheduleInput{}, fmt.Errorf("failed to read rotation file: %w", err)
	}
	return Decode(data, format)
}

// Decode parses data in the given format
func Decode(data []byte, format Format) (models.ScheduleInput, error) {
	var in models.ScheduleInput
	var err error

	switch format {
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&in)
	case TOML:
		var md toml.MetaData
		md, err = toml.Decode(string(data), &in)
		if err == nil {
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				err = fmt.Errorf("unknown keys %v", undecoded)
			}
		}
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&in)
	default:
		return models.ScheduleInput{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if err != nil {
		return models.ScheduleInput{}, fmt.Errorf("failed to decode %s rotation: %w", format, err)
	}
	if in.Weeks == 0 {
		in.Weeks = models.DefaultWeeks
	}
	return in, nil
}
