package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// readInput reads content from a file or stdin
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == InputSourceStdin {
		return io.ReadAll(stdin)
	}

	return os.ReadFile(path)
}

// writeOutput writes content to a file or stdout
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == FlagDefaultOutput || path == "" {
		_, err := stdout.Write(data)
		return err
	}

	return os.WriteFile(path, data, FilePermissions)
}

// loadData merges the data file and the inline JSON, inline values winning
func loadData(dataJSON, dataFilePath string) (map[string]any, error) {
	data := make(map[string]any)

	if dataFilePath != "" {
		content, err := os.ReadFile(dataFilePath)
		if err != nil {
			return nil, inputError(ErrMsgReadFileFailed, err)
		}
		switch strings.ToLower(filepath.Ext(dataFilePath)) {
		case DataExtJSON:
			if err := json.Unmarshal(content, &data); err != nil {
				return nil, inputError(ErrMsgInvalidJSON, err)
			}
		case DataExtYAML, DataExtYML:
			if err := yaml.Unmarshal(content, &data); err != nil {
				return nil, inputError(ErrMsgInvalidYAML, err)
			}
		default:
			return nil, inputError(ErrMsgDataFileFormat, nil)
		}
	}

	if dataJSON != "" {
		var inline map[string]any
		if err := json.Unmarshal([]byte(dataJSON), &inline); err != nil {
			return nil, inputError(ErrMsgInvalidJSON, err)
		}
		for k, v := range inline {
			data[k] = v
		}
	}

	return data, nil
}
